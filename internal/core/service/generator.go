package service

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rl1809/pantry/internal/core/domain"
)

type sampleProduct struct {
	name string
	unit string
}

var sampleProducts = []sampleProduct{
	{"milk", "ml"},
	{"eggs", "pcs"},
	{"flour", "g"},
	{"sugar", "g"},
	{"butter", "g"},
	{"salt", "tsp"},
	{"tomato", "pcs"},
	{"cheese", "g"},
	{"onion", "pcs"},
	{"garlic", "pcs"},
	{"turmeric", "tsp"},
	{"banana", "pcs"},
	{"chicken", "g"},
	{"pork", "g"},
	{"bacon", "g"},
	{"cucumber", "pcs"},
}

var sampleCategories = []string{"breakfast", "lunch", "dinner", "dessert", "snack"}

var sampleDescriptions = []string{
	"Simple and tasty",
	"A family favourite",
	"Quick and easy to make",
	"A traditional dish",
	"A healthy choice",
}

type recipeCreator interface {
	Create(ctx context.Context, in RecipeInput) (domain.Recipe, error)
}

// RecipeGenerator fills the catalog with random sample recipes.
type RecipeGenerator struct {
	recipes recipeCreator
	rnd     *rand.Rand
}

func NewRecipeGenerator(recipes recipeCreator, rnd *rand.Rand) *RecipeGenerator {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &RecipeGenerator{recipes: recipes, rnd: rnd}
}

// Generate creates n recipes and returns them in creation order. It stops at
// the first failure and returns the recipes created so far.
func (g *RecipeGenerator) Generate(ctx context.Context, n int) ([]domain.Recipe, error) {
	created := make([]domain.Recipe, 0, max(n, 0))
	for i := 0; i < n; i++ {
		recipe, err := g.recipes.Create(ctx, g.randomRecipe())
		if err != nil {
			return created, fmt.Errorf("generate recipe %d of %d: %w", i+1, n, err)
		}
		created = append(created, recipe)
	}
	return created, nil
}

func (g *RecipeGenerator) randomRecipe() RecipeInput {
	count := 1 + g.rnd.IntN(4)
	ingredients := make([]IngredientInput, 0, count)
	for range count {
		p := sampleProducts[g.rnd.IntN(len(sampleProducts))]
		// 1.00 to 10.00 with two decimal places
		qty := decimal.NewFromInt(int64(100 + g.rnd.IntN(901))).Shift(-2)
		ingredients = append(ingredients, IngredientInput{Name: p.name, Unit: p.unit, Quantity: qty})
	}
	return RecipeInput{
		Title:       "Recipe " + uuid.NewString()[:8],
		Description: sampleDescriptions[g.rnd.IntN(len(sampleDescriptions))],
		Category:    sampleCategories[g.rnd.IntN(len(sampleCategories))],
		Ingredients: ingredients,
	}
}
