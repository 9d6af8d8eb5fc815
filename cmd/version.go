package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"firestige.xyz/rtde/internal/rtde"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Query the controller's software version",
	Run: func(cmd *cobra.Command, args []string) {
		runVersionCommand()
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersionCommand() {
	cfg := loadRuntime()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := newClient(cfg)
	defer client.Disconnect()

	if err := setupSession(ctx, cfg, client); err != nil {
		exitWithError("session setup failed", err)
	}

	var version rtde.ControllerVersion
	err := step(ctx, cfg, func(c context.Context) error {
		var verr error
		version, verr = client.ControllerVersion(c)
		return verr
	})
	if err != nil {
		exitWithError("controller version query failed", err)
	}

	fmt.Printf("controller %s (protocol version %d)\n", version, client.ProtocolVersion())
}
