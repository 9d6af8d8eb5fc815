package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"firestige.xyz/rtde/internal/config"
	"firestige.xyz/rtde/internal/metrics"
	"firestige.xyz/rtde/internal/rtde"
)

var watchLimit int

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream controller output fields to stdout",
	Long: `Connect to the controller, register the configured output recipe and
print every received data package as name=value pairs, one package per line.

Examples:
  rtdectl watch -c config.yml             # stream until interrupted
  rtdectl watch -c config.yml --limit 10  # stop after 10 packages`,
	Run: func(cmd *cobra.Command, args []string) {
		runWatchCommand()
	},
}

func init() {
	watchCmd.Flags().IntVar(&watchLimit, "limit", 0,
		"stop after this many data packages (0 = stream until interrupted)")
	rootCmd.AddCommand(watchCmd)
}

func runWatchCommand() {
	cfg := loadRuntime()

	recipe, err := config.LoadRecipe(cfg.Recipes.File, cfg.Recipes.Output, rtde.DirectionOutput)
	if err != nil {
		exitWithError("failed to load output recipe", err)
	}

	if cfg.Metrics.Enabled {
		srv := metrics.NewServer(cfg.Metrics.Listen, cfg.Metrics.Path)
		srv.Start()
		defer srv.Stop(context.Background())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := newClient(cfg)
	defer client.Disconnect()

	if err := setupSession(ctx, cfg, client); err != nil {
		exitWithError("session setup failed", err)
	}
	if err := step(ctx, cfg, func(c context.Context) error { return client.SetupOutputs(c, recipe) }); err != nil {
		exitWithError("output recipe setup failed", err)
	}
	if err := step(ctx, cfg, client.Start); err != nil {
		exitWithError("failed to start streaming", err)
	}

	received := 0
	for ctx.Err() == nil {
		var values map[string]any
		err := step(ctx, cfg, func(c context.Context) error {
			var rerr error
			values, rerr = client.ReceiveData(c)
			return rerr
		})
		if errors.Is(err, rtde.ErrTimeout) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			exitWithError("receive failed", err)
		}

		fmt.Println(formatValues(values))
		received++
		if watchLimit > 0 && received >= watchLimit {
			break
		}
	}
}

func newClient(cfg *config.Config) *rtde.Client {
	opts := []rtde.Option{rtde.WithOutputFrequency(cfg.Controller.Frequency)}
	if cfg.Controller.Lenient {
		opts = append(opts, rtde.WithUnknownPackagePolicy(rtde.UnknownSkip))
	}
	return rtde.NewClient(cfg.Controller.Address, opts...)
}

// setupSession connects and negotiates the configured protocol version.
func setupSession(ctx context.Context, cfg *config.Config, client *rtde.Client) error {
	if err := step(ctx, cfg, client.Connect); err != nil {
		return err
	}
	if err := step(ctx, cfg, func(c context.Context) error {
		return client.Negotiate(c, cfg.Controller.ProtocolVersion)
	}); err != nil {
		return err
	}
	return nil
}

// step runs one engine operation under the configured per-operation timeout.
func step(ctx context.Context, cfg *config.Config, op func(context.Context) error) error {
	opCtx, cancel := context.WithTimeout(ctx, cfg.Controller.Timeout)
	defer cancel()
	return op(opCtx)
}

func formatValues(values map[string]any) string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%v", name, values[name])
	}
	return strings.Join(parts, " ")
}
