package handler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rl1809/pantry/internal/adapter/memory"
	"github.com/rl1809/pantry/internal/core/domain"
	"github.com/rl1809/pantry/internal/core/service"
	"github.com/rl1809/pantry/internal/port"
)

const testUserID = "user-1"

type fixture struct {
	svc Services
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	return newFixtureWithIndex(t, memory.NewSearchIndex())
}

func newFixtureWithIndex(t *testing.T, index port.SearchIndex) fixture {
	t.Helper()
	products := memory.NewProductStore()
	pantry := memory.NewPantryStore(products)
	recipes := memory.NewRecipeStore()
	users := memory.NewUserStore(domain.User{ID: testUserID, Email: "cook@example.com"})
	resolver := service.NewProductResolver(products, index)

	return fixture{svc: Services{
		Resolver:  resolver,
		Pantry:    service.NewPantryService(users, pantry, resolver),
		Recipes:   service.NewRecipeService(users, recipes, pantry, resolver, service.DefaultTopN),
		Favorites: service.NewFavoriteService(users, recipes, memory.NewFavoriteStore(recipes)),
	}}
}

func (f fixture) createRecipe(t *testing.T, title string, ingredients ...service.IngredientInput) domain.Recipe {
	t.Helper()
	r, err := f.svc.Recipes.Create(context.Background(), service.RecipeInput{Title: title, Ingredients: ingredients})
	require.NoError(t, err)
	return r
}

// unavailableIndex searches normally but refuses every document write.
type unavailableIndex struct {
	*memory.SearchIndex
}

func (unavailableIndex) Index(context.Context, domain.Product) error {
	return errors.New("connection refused")
}
