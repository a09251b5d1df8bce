package recipes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"souschef/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(storage.NewFileBackend(t.TempDir()), nil)
}

func TestSeedIfEmpty_Idempotent(t *testing.T) {
	store := newTestStore(t)

	store.SeedIfEmpty(DefaultRecipes())
	store.SeedIfEmpty(DefaultRecipes())

	assert.Len(t, store.All(), len(DefaultRecipes()))
}

func TestSeedIfEmpty_LeavesExistingDataAlone(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Put(Recipe{ID: 42, Name: "Toast", Servings: 1}))

	store.SeedIfEmpty(DefaultRecipes())

	all := store.All()
	require.Len(t, all, 1)
	assert.Equal(t, "Toast", all[0].Name)
}

func TestRescale_HalvesAmounts(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Put(Recipe{
		ID:          1,
		Name:        "Pasta Bake",
		Servings:    4,
		Ingredients: []Ingredient{{Name: "pasta", Amount: 400, Unit: "g"}},
	}))

	updated, err := store.Rescale(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Servings)
	assert.Equal(t, 200.0, updated.Ingredients[0].Amount)
}

func TestRescale_ProportionalScaling(t *testing.T) {
	// For servings s and amount a, rescaling to k*s yields round(a*k, 2).
	store := newTestStore(t)
	require.NoError(t, store.Put(Recipe{
		ID:       1,
		Servings: 2,
		Ingredients: []Ingredient{
			{Name: "rice", Amount: 150, Unit: "g"},
			{Name: "stock", Amount: 333, Unit: "ml"},
		},
	}))

	updated, err := store.Rescale(1, 6)
	require.NoError(t, err)
	assert.Equal(t, 450.0, updated.Ingredients[0].Amount)
	assert.Equal(t, 999.0, updated.Ingredients[1].Amount)
}

func TestRescale_RoundsToTwoDecimals(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Put(Recipe{
		ID:       1,
		Servings: 3,
		Ingredients: []Ingredient{
			{Name: "saffron", Amount: 1, Unit: "g"},
			{Name: "vanilla", Amount: 2, Unit: "g"},
		},
	}))

	updated, err := store.Rescale(1, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.33, updated.Ingredients[0].Amount)
	assert.Equal(t, 0.67, updated.Ingredients[1].Amount)
}

func TestRescale_SameServingsKeepsAmounts(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Put(Recipe{
		ID:          1,
		Servings:    4,
		Ingredients: []Ingredient{{Name: "butter", Amount: 12.5, Unit: "g"}},
	}))

	updated, err := store.Rescale(1, 4)
	require.NoError(t, err)
	assert.InDelta(t, 12.5, updated.Ingredients[0].Amount, 0.001)
}

func TestRescale_OnlyTouchesTargetRecipe(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Put(Recipe{
		ID: 1, Servings: 2,
		Ingredients: []Ingredient{{Name: "flour", Amount: 100, Unit: "g"}},
	}))
	require.NoError(t, store.Put(Recipe{
		ID: 2, Servings: 2,
		Ingredients: []Ingredient{{Name: "sugar", Amount: 50, Unit: "g"}},
	}))

	_, err := store.Rescale(1, 4)
	require.NoError(t, err)

	other, err := store.Get(2)
	require.NoError(t, err)
	assert.Equal(t, 50.0, other.Ingredients[0].Amount)
	assert.Equal(t, 2, other.Servings)
}

func TestRescale_Errors(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Rescale(99, 2)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(Recipe{ID: 1, Servings: 2}))
	_, err = store.Rescale(1, 0)
	assert.ErrorIs(t, err, ErrInvalidServings)
}

func TestStore_PersistsAcrossReload(t *testing.T) {
	backend := storage.NewFileBackend(t.TempDir())

	store := NewStore(backend, nil)
	store.SeedIfEmpty(DefaultRecipes())
	_, err := store.Rescale(1, 8)
	require.NoError(t, err)

	reloaded := NewStore(backend, nil)
	r, err := reloaded.Get(1)
	require.NoError(t, err)
	assert.Equal(t, 8, r.Servings)
	assert.Equal(t, 500.0, r.Ingredients[0].Amount) // 250g flour doubled

	// Reload never re-seeds a populated collection.
	reloaded.SeedIfEmpty(DefaultRecipes())
	assert.Len(t, reloaded.All(), len(DefaultRecipes()))
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Put(Recipe{ID: 7, Servings: 1}))
	require.NoError(t, store.Delete(7))
	assert.ErrorIs(t, store.Delete(7), ErrNotFound)
}
