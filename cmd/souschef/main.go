// Package main provides the souschef CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose bool
	apiKey  string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "souschef",
	Short: "souschef - cooking assistant in your terminal",
	Long: `souschef is a terminal cooking assistant.

It combines a Gemini-backed chat for cooking questions with a local
recipe collection that can be rescaled to any number of servings.
Conversation history, recipes, and the API key persist between runs.

Run without arguments to start the interactive chat.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// The --api-key flag wins over every other credential source.
		if apiKey != "" {
			os.Setenv("GEMINI_API_KEY", apiKey)
		}

		// Skip logger init for interactive mode (it has its own UI)
		if cmd.Use == "souschef" && cmd.CalledAs() == "souschef" {
			return nil
		}
		if cmd.Name() == "browse" {
			return nil
		}

		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: launch interactive chat
		return runInteractiveChat()
	},
}

// recipesCmd groups the recipe collection commands
var recipesCmd = &cobra.Command{
	Use:   "recipes",
	Short: "Browse and rescale the recipe collection",
}

var recipesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all recipes",
	RunE:  listRecipes,
}

var recipesShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one recipe with ingredients and instructions",
	Args:  cobra.ExactArgs(1),
	RunE:  showRecipe,
}

var recipesScaleCmd = &cobra.Command{
	Use:   "scale [id] [servings]",
	Short: "Rescale a recipe to a new serving count",
	Long: `Rescales every ingredient amount proportionally to the new serving
count and persists the result. Amounts are rounded to two decimal places.

Example:
  souschef recipes scale 1 2`,
	Args: cobra.ExactArgs(2),
	RunE: scaleRecipe,
}

var recipesBrowseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse recipes interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRecipeBrowser()
	},
}

// configCmd manages the persisted configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage souschef configuration",
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key [key]",
	Short: "Store the Gemini API key",
	Args:  cobra.ExactArgs(1),
	RunE:  setAPIKey,
}

var configSetThemeCmd = &cobra.Command{
	Use:   "set-theme [light|dark]",
	Short: "Set the UI color theme",
	Args:  cobra.ExactArgs(1),
	RunE:  setTheme,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	RunE:  showConfigPath,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Gemini API key (or set GEMINI_API_KEY env)")

	recipesCmd.AddCommand(recipesListCmd)
	recipesCmd.AddCommand(recipesShowCmd)
	recipesCmd.AddCommand(recipesScaleCmd)
	recipesCmd.AddCommand(recipesBrowseCmd)

	configCmd.AddCommand(configSetKeyCmd)
	configCmd.AddCommand(configSetThemeCmd)
	configCmd.AddCommand(configPathCmd)

	rootCmd.AddCommand(recipesCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
