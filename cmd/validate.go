package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"firestige.xyz/rtde/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a recipe file without contacting a controller",
	Long: `Validate a declarative recipe file: every field type must be a known
protocol type and field names must be unique within each recipe.

This is useful for pre-checking recipe definitions before deploying them.

Examples:
  rtdectl validate -f recipes.yml`,
	Run: func(cmd *cobra.Command, args []string) {
		runValidateCommand()
	},
}

var validateRecipeFile string

func init() {
	validateCmd.Flags().StringVarP(&validateRecipeFile, "file", "f", "",
		"recipe file to validate (required)")
	validateCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(validateCmd)
}

func runValidateCommand() {
	summaries, err := config.ValidateRecipeFile(validateRecipeFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "INVALID: %v\n", err)
		os.Exit(1)
	}

	for _, s := range summaries {
		fmt.Printf("VALID: recipe %q — %d field(s)\n", s.Key, s.Fields)
	}
}
