package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"firestige.xyz/rtde/internal/config"
	"firestige.xyz/rtde/internal/rtde"
)

var sendCmd = &cobra.Command{
	Use:   "send field=value ...",
	Short: "Send one input data package to the controller",
	Long: `Connect to the controller, register the configured input recipe and send
a single data package built from the field=value arguments. Every field of
the input recipe must be given. Vector components are comma-separated.

Examples:
  rtdectl send -c config.yml speed_slider_mask=1 speed_slider_fraction=0.5
  rtdectl send -c config.yml input_double_register_0=3.14`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runSendCommand(args)
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
}

func runSendCommand(args []string) {
	cfg := loadRuntime()

	recipe, err := config.LoadRecipe(cfg.Recipes.File, cfg.Recipes.Input, rtde.DirectionInput)
	if err != nil {
		exitWithError("failed to load input recipe", err)
	}

	values, err := parseArgValues(recipe, args)
	if err != nil {
		exitWithError("invalid field value", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := newClient(cfg)
	defer client.Disconnect()

	if err := setupSession(ctx, cfg, client); err != nil {
		exitWithError("session setup failed", err)
	}
	if err := step(ctx, cfg, func(c context.Context) error { return client.SetupInputs(c, recipe) }); err != nil {
		exitWithError("input recipe setup failed", err)
	}
	if err := step(ctx, cfg, client.Start); err != nil {
		exitWithError("failed to start streaming", err)
	}
	if err := client.SendInput(values); err != nil {
		exitWithError("failed to send input package", err)
	}
}

// parseArgValues converts field=value arguments into typed values per the
// recipe's field types.
func parseArgValues(recipe *rtde.Recipe, args []string) (map[string]any, error) {
	types := make(map[string]rtde.FieldType, len(recipe.Fields()))
	for _, f := range recipe.Fields() {
		types[f.Name] = f.Type
	}

	values := make(map[string]any, len(args))
	for _, arg := range args {
		name, raw, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, &argError{arg: arg, reason: "expected field=value"}
		}
		ft, known := types[name]
		if !known {
			return nil, &argError{arg: arg, reason: "field not in input recipe"}
		}
		v, err := rtde.ParseValue(ft, raw)
		if err != nil {
			return nil, &argError{arg: arg, reason: err.Error()}
		}
		values[name] = v
	}
	return values, nil
}

type argError struct {
	arg    string
	reason string
}

func (e *argError) Error() string {
	return e.arg + ": " + e.reason
}
