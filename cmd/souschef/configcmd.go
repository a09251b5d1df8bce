// This file implements the config subcommands.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"souschef/internal/config"
)

// setAPIKey stores the credential in the persisted key slot so both the
// chat and future runs pick it up.
func setAPIKey(cmd *cobra.Command, args []string) error {
	a, err := newApp(logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.saveAPIKey(args[0]); err != nil {
		return err
	}
	fmt.Println("API key saved.")
	return nil
}

func setTheme(cmd *cobra.Command, args []string) error {
	theme := args[0]
	if theme != "light" && theme != "dark" {
		return fmt.Errorf("invalid theme %q, use light or dark", theme)
	}

	path, err := config.File()
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	cfg.Theme = theme
	if err := cfg.Save(path); err != nil {
		return err
	}
	fmt.Printf("Theme set to %s.\n", theme)
	return nil
}

func showConfigPath(cmd *cobra.Command, args []string) error {
	path, err := config.File()
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}
