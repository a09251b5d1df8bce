// This file implements the recipes subcommands.
package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"souschef/cmd/souschef/ui"
	"souschef/internal/recipes"
)

func listRecipes(cmd *cobra.Command, args []string) error {
	a, err := newApp(logger)
	if err != nil {
		return err
	}
	defer a.Close()

	styles := ui.StylesFor(a.cfg.Theme)

	fmt.Println(styles.Title.Render("Recipes"))
	for _, r := range a.recipes.All() {
		line := fmt.Sprintf("%3d  %-24s %d servings", r.ID, r.Name, r.Servings)
		fmt.Println(styles.Body.Render(line))
	}
	return nil
}

func showRecipe(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid recipe id %q", args[0])
	}

	a, err := newApp(logger)
	if err != nil {
		return err
	}
	defer a.Close()

	r, err := a.recipes.Get(id)
	if err != nil {
		return err
	}

	fmt.Print(renderRecipe(r, ui.StylesFor(a.cfg.Theme)))
	return nil
}

func scaleRecipe(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid recipe id %q", args[0])
	}
	servings, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid serving count %q", args[1])
	}

	a, err := newApp(logger)
	if err != nil {
		return err
	}
	defer a.Close()

	r, err := a.recipes.Rescale(id, servings)
	if err != nil {
		return err
	}

	styles := ui.StylesFor(a.cfg.Theme)
	fmt.Println(styles.Success.Render(fmt.Sprintf("Rescaled %q to %d servings", r.Name, r.Servings)))
	fmt.Print(renderRecipe(r, styles))
	return nil
}

// renderRecipe formats one recipe for terminal output.
func renderRecipe(r recipes.Recipe, styles ui.Styles) string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(fmt.Sprintf("%s (%d servings)", r.Name, r.Servings)))
	sb.WriteString("\n")

	for _, ing := range r.Ingredients {
		sb.WriteString(styles.Body.Render("  • " + formatIngredient(ing)))
		sb.WriteString("\n")
	}

	if r.Instructions != "" {
		sb.WriteString("\n")
		sb.WriteString(styles.Muted.Render(r.Instructions))
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatIngredient renders an amount without trailing zeros, e.g. "250 g
// flour" or "0.33 tsp salt".
func formatIngredient(ing recipes.Ingredient) string {
	amount := strconv.FormatFloat(ing.Amount, 'f', -1, 64)
	if ing.Unit == "" {
		return fmt.Sprintf("%s %s", amount, ing.Name)
	}
	return fmt.Sprintf("%s %s %s", amount, ing.Unit, ing.Name)
}
