package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"souschef/cmd/souschef/ui"
	"souschef/internal/recipes"
	"souschef/internal/storage"
)

func testBrowser(t *testing.T) browserModel {
	t.Helper()
	store := recipes.NewStore(storage.NewFileBackend(t.TempDir()), nil)
	store.SeedIfEmpty(recipes.DefaultRecipes())
	return browserModel{
		styles: ui.NewStyles(ui.LightTheme()),
		store:  store,
		list:   store.All(),
	}
}

func TestRescaleSelected_AdjustsAndPersists(t *testing.T) {
	m := testBrowser(t)
	m.showing = true

	before := m.list[0].Servings
	m.rescaleSelected(1)

	assert.Equal(t, before+1, m.list[0].Servings)

	stored, err := m.store.Get(m.list[0].ID)
	require.NoError(t, err)
	assert.Equal(t, before+1, stored.Servings)
}

func TestRescaleSelected_StopsAtBounds(t *testing.T) {
	m := testBrowser(t)
	m.showing = true

	_, err := m.store.Rescale(m.list[0].ID, maxServings)
	require.NoError(t, err)
	m.list = m.store.All()

	m.rescaleSelected(1)
	assert.Equal(t, maxServings, m.list[0].Servings)

	_, err = m.store.Rescale(m.list[0].ID, minServings)
	require.NoError(t, err)
	m.list = m.store.All()

	m.rescaleSelected(-1)
	assert.Equal(t, minServings, m.list[0].Servings)
}

func TestFormatIngredient(t *testing.T) {
	assert.Equal(t, "250 g flour",
		formatIngredient(recipes.Ingredient{Name: "flour", Amount: 250, Unit: "g"}))
	assert.Equal(t, "2 eggs",
		formatIngredient(recipes.Ingredient{Name: "eggs", Amount: 2}))
	assert.Equal(t, "0.33 tsp salt",
		formatIngredient(recipes.Ingredient{Name: "salt", Amount: 0.33, Unit: "tsp"}))
}
