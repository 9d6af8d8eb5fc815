// Package cmd implements CLI commands using cobra framework.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"firestige.xyz/rtde/internal/config"
	"firestige.xyz/rtde/internal/log"
)

var configFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rtdectl",
	Short: "rtdectl - Real-Time Data Exchange client",
	Long: `rtdectl talks to a controller over the Real-Time Data Exchange protocol:
it negotiates a protocol version, registers field recipes and streams typed
state fields out of (and command fields into) the controller.

Recipes are declared in a YAML file referenced from the config; see
'rtdectl validate' for offline recipe checking.`,
	Version: "0.1.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "/etc/rtde/config.yml",
		"config file path")
}

// loadRuntime loads the config file and installs the configured logger.
func loadRuntime() *config.Config {
	cfg, err := config.Load(configFile)
	if err != nil {
		exitWithError("failed to load configuration", err)
	}
	if err := log.Init(cfg.Log); err != nil {
		exitWithError("failed to initialize logging", err)
	}
	return cfg
}

// exitWithError prints error message and exits with code 1
func exitWithError(msg string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	}
	os.Exit(1)
}
