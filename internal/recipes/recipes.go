// Package recipes holds the recipe collection: a set of recipes keyed by ID,
// persisted under a fixed slot, with proportional ingredient rescaling when
// the serving count changes.
package recipes

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"go.uber.org/zap"

	"souschef/internal/storage"
)

// Ingredient is one line of a recipe.
type Ingredient struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// Recipe is a named list of ingredients plus instructions. Ingredient
// amounts are proportional to Servings: rescaling preserves the ratio
// amount/servings for every ingredient.
type Recipe struct {
	ID           int          `json:"id"`
	Name         string       `json:"name"`
	Ingredients  []Ingredient `json:"ingredients"`
	Instructions string       `json:"instructions"`
	Servings     int          `json:"servings"`
}

var (
	// ErrNotFound is returned for operations on an unknown recipe ID.
	ErrNotFound = errors.New("recipes: recipe not found")
	// ErrInvalidServings is returned when a serving count below 1 is requested.
	ErrInvalidServings = errors.New("recipes: servings must be at least 1")
)

// Store is the recipe collection, persisted as a unit under the recipes slot.
type Store struct {
	mu      sync.RWMutex
	backend storage.Backend
	logger  *zap.Logger
	byID    map[int]Recipe
}

// NewStore creates a recipe store hydrated from the backend. A missing or
// unreadable slot yields an empty collection.
func NewStore(backend storage.Backend, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{backend: backend, logger: logger, byID: make(map[int]Recipe)}

	data, err := backend.Load(storage.SlotRecipes)
	if err == nil {
		var list []Recipe
		if err := json.Unmarshal(data, &list); err != nil {
			logger.Warn("discarding unreadable recipe collection", zap.Error(err))
		} else {
			for _, r := range list {
				s.byID[r.ID] = r
			}
		}
	} else if err != storage.ErrNotFound {
		logger.Warn("loading recipe collection", zap.Error(err))
	}

	return s
}

// SeedIfEmpty populates an empty collection with the given defaults and
// persists. A non-empty collection is left untouched, so calling this on
// every load is safe.
func (s *Store) SeedIfEmpty(defaults []Recipe) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.byID) > 0 {
		return
	}
	for _, r := range defaults {
		s.byID[r.ID] = r
	}
	s.persistLocked()
}

// All returns the recipes sorted by ID.
func (s *Store) All() []Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Recipe, 0, len(s.byID))
	for _, r := range s.byID {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Get returns one recipe by ID.
func (s *Store) Get(id int) (Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.byID[id]
	if !ok {
		return Recipe{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return r, nil
}

// Put inserts or replaces a recipe (IDs are caller-assigned) and persists.
func (s *Store) Put(r Recipe) error {
	if r.Servings < 1 {
		return ErrInvalidServings
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[r.ID] = r
	s.persistLocked()
	return nil
}

// Delete removes a recipe and persists.
func (s *Store) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	delete(s.byID, id)
	s.persistLocked()
	return nil
}

// Rescale replaces the recipe's serving count and scales every ingredient
// amount by newServings/oldServings, rounded to two decimal places
// (half away from zero). Repeated rescales compound rounding error; there is
// no hidden unscaled baseline. Returns the updated recipe.
func (s *Store) Rescale(id, newServings int) (Recipe, error) {
	if newServings < 1 {
		return Recipe{}, ErrInvalidServings
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byID[id]
	if !ok {
		return Recipe{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}

	factor := float64(newServings) / float64(r.Servings)

	scaled := r
	scaled.Servings = newServings
	scaled.Ingredients = make([]Ingredient, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		ing.Amount = roundAmount(ing.Amount * factor)
		scaled.Ingredients[i] = ing
	}

	s.byID[id] = scaled
	s.persistLocked()
	return scaled, nil
}

// roundAmount rounds to two decimal places, half away from zero.
func roundAmount(x float64) float64 {
	return math.Round(x*100) / 100
}

func (s *Store) persistLocked() {
	list := make([]Recipe, 0, len(s.byID))
	for _, r := range s.byID {
		list = append(list, r)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })

	data, err := json.Marshal(list)
	if err != nil {
		s.logger.Error("marshaling recipe collection", zap.Error(err))
		return
	}
	if err := s.backend.Save(storage.SlotRecipes, data); err != nil {
		s.logger.Error("persisting recipe collection", zap.Error(err))
	}
}
