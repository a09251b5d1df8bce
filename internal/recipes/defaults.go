package recipes

// DefaultRecipes is the built-in collection seeded on first run.
func DefaultRecipes() []Recipe {
	return []Recipe{
		{
			ID:   1,
			Name: "Classic Pancakes",
			Ingredients: []Ingredient{
				{Name: "flour", Amount: 250, Unit: "g"},
				{Name: "milk", Amount: 400, Unit: "ml"},
				{Name: "eggs", Amount: 2, Unit: ""},
				{Name: "sugar", Amount: 30, Unit: "g"},
				{Name: "baking powder", Amount: 2, Unit: "tsp"},
			},
			Instructions: "Whisk the dry ingredients, add milk and eggs, rest the batter " +
				"for 10 minutes, then fry ladlefuls in a hot buttered pan until golden on both sides.",
			Servings: 4,
		},
		{
			ID:   2,
			Name: "Tomato Soup",
			Ingredients: []Ingredient{
				{Name: "canned tomatoes", Amount: 800, Unit: "g"},
				{Name: "onion", Amount: 1, Unit: ""},
				{Name: "vegetable stock", Amount: 500, Unit: "ml"},
				{Name: "olive oil", Amount: 2, Unit: "tbsp"},
				{Name: "cream", Amount: 100, Unit: "ml"},
			},
			Instructions: "Sweat the onion in olive oil, add tomatoes and stock, simmer " +
				"for 20 minutes, blend until smooth and finish with cream.",
			Servings: 4,
		},
		{
			ID:   3,
			Name: "Guacamole",
			Ingredients: []Ingredient{
				{Name: "avocados", Amount: 3, Unit: ""},
				{Name: "lime juice", Amount: 2, Unit: "tbsp"},
				{Name: "red onion", Amount: 0.5, Unit: ""},
				{Name: "coriander", Amount: 15, Unit: "g"},
				{Name: "salt", Amount: 0.5, Unit: "tsp"},
			},
			Instructions: "Mash the avocados, fold in finely chopped onion and coriander, " +
				"season with lime juice and salt.",
			Servings: 6,
		},
	}
}
