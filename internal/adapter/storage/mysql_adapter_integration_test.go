//go:build integration

package storage_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/rl1809/pantry/internal/adapter/storage"
	"github.com/rl1809/pantry/internal/core/domain"
	"github.com/rl1809/pantry/internal/testutil/containers"
)

type MySQLSuite struct {
	suite.Suite
	mysql   *containers.MySQLContainer
	adapter *storage.MySQLAdapter
	ctx     context.Context
	user    domain.User
}

func TestMySQLSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(MySQLSuite))
}

func (s *MySQLSuite) SetupSuite() {
	s.mysql = containers.MySQL(s.T())
	s.Require().NoError(storage.MigrateUp(s.mysql.DSN))
	// a second run is a no-op
	s.Require().NoError(storage.MigrateUp(s.mysql.DSN))
	s.adapter = storage.NewMySQLAdapter(s.mysql.DB)
}

func (s *MySQLSuite) SetupTest() {
	s.ctx = context.Background()
	s.Require().NoError(s.mysql.Truncate(s.ctx, "favorites", "recipe_ingredients", "recipes", "pantry_items", "products", "users"))
	s.user = s.newUser("cook@example.com")
}

func (s *MySQLSuite) newUser(email string) domain.User {
	u := domain.User{ID: uuid.NewString(), Email: email, FullName: "Cook", CreatedAt: time.Now().UTC().Truncate(time.Microsecond)}
	s.Require().NoError(s.adapter.Users.Create(s.ctx, u))
	return u
}

func (s *MySQLSuite) newProduct(name, unit string) domain.Product {
	p := domain.Product{ID: uuid.NewString(), Name: name, Unit: unit, CreatedAt: time.Now().UTC()}
	s.Require().NoError(s.adapter.Products.Create(s.ctx, p))
	return p
}

func (s *MySQLSuite) TestUsers() {
	found, err := s.adapter.Users.FindByID(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Equal(s.user.Email, found.Email)

	byEmail, err := s.adapter.Users.FindByEmail(s.ctx, "cook@example.com")
	s.Require().NoError(err)
	s.Equal(s.user.ID, byEmail.ID)

	err = s.adapter.Users.Create(s.ctx, domain.User{ID: uuid.NewString(), Email: "cook@example.com"})
	s.ErrorIs(err, domain.ErrConflict)

	_, err = s.adapter.Users.FindByID(s.ctx, "missing")
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *MySQLSuite) TestProducts() {
	p := s.newProduct("Olive Oil", "ML")

	found, err := s.adapter.Products.FindByName(s.ctx, "olive oil")
	s.Require().NoError(err)
	s.Equal(p.ID, found.ID)
	s.Equal("olive oil", found.Name)
	s.Equal("ml", found.Unit)

	noUnit := s.newProduct("salt", "")
	found, err = s.adapter.Products.FindByID(s.ctx, noUnit.ID)
	s.Require().NoError(err)
	s.Empty(found.Unit)

	err = s.adapter.Products.Create(s.ctx, domain.Product{ID: uuid.NewString(), Name: "OLIVE OIL", CreatedAt: time.Now()})
	s.ErrorIs(err, domain.ErrConflict)

	_, err = s.adapter.Products.FindByName(s.ctx, "truffle")
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *MySQLSuite) TestPantryAddIsAdditive() {
	p := s.newProduct("milk", "l")

	_, err := s.adapter.Pantry.AddQuantity(s.ctx, s.user.ID, p.ID, decimal.RequireFromString("1.0"))
	s.Require().NoError(err)
	item, err := s.adapter.Pantry.AddQuantity(s.ctx, s.user.ID, p.ID, decimal.RequireFromString("0.5"))
	s.Require().NoError(err)

	s.True(item.Quantity.Equal(decimal.RequireFromString("1.5")), item.Quantity.String())
	s.Equal("milk", item.ProductName)
	s.Equal("l", item.Unit)
	s.Equal(2, item.Version)
}

func (s *MySQLSuite) TestPantryAddBeyondColumnRangeIsInvalid() {
	p := s.newProduct("rice", "g")

	_, err := s.adapter.Pantry.AddQuantity(s.ctx, s.user.ID, p.ID, decimal.RequireFromString("999999999"))
	s.Require().NoError(err)
	_, err = s.adapter.Pantry.AddQuantity(s.ctx, s.user.ID, p.ID, decimal.NewFromInt(1))
	s.ErrorIs(err, domain.ErrInvalidInput)

	items, err := s.adapter.Pantry.ListByUser(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.True(items[0].Quantity.Equal(decimal.RequireFromString("999999999")), items[0].Quantity.String())
}

func (s *MySQLSuite) TestPantryAddUnknownProduct() {
	_, err := s.adapter.Pantry.AddQuantity(s.ctx, s.user.ID, "missing", decimal.NewFromInt(1))
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *MySQLSuite) TestPantrySetQuantity() {
	p := s.newProduct("flour", "g")
	other := s.newUser("other@example.com")
	_, err := s.adapter.Pantry.AddQuantity(s.ctx, s.user.ID, p.ID, decimal.NewFromInt(500))
	s.Require().NoError(err)

	_, err = s.adapter.Pantry.SetQuantity(s.ctx, other.ID, p.ID, decimal.NewFromInt(1))
	s.ErrorIs(err, domain.ErrNotFound)

	// same value twice still succeeds
	for range 2 {
		item, err := s.adapter.Pantry.SetQuantity(s.ctx, s.user.ID, p.ID, decimal.NewFromInt(200))
		s.Require().NoError(err)
		s.True(item.Quantity.Equal(decimal.NewFromInt(200)))
	}
}

func (s *MySQLSuite) TestPantryDeleteAndList() {
	b := s.newProduct("butter", "g")
	a := s.newProduct("apple", "pcs")
	for _, p := range []domain.Product{b, a} {
		_, err := s.adapter.Pantry.AddQuantity(s.ctx, s.user.ID, p.ID, decimal.NewFromInt(1))
		s.Require().NoError(err)
	}

	items, err := s.adapter.Pantry.ListByUser(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Require().Len(items, 2)
	s.Equal("apple", items[0].ProductName)

	s.NoError(s.adapter.Pantry.Delete(s.ctx, s.user.ID, a.ID))
	s.NoError(s.adapter.Pantry.Delete(s.ctx, s.user.ID, a.ID))

	items, err = s.adapter.Pantry.ListByUser(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Len(items, 1)
}

func (s *MySQLSuite) TestPantryConcurrentAdds() {
	p := s.newProduct("sugar", "g")
	const workers = 30

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.adapter.Pantry.AddQuantity(s.ctx, s.user.ID, p.ID, decimal.RequireFromString("0.5"))
			assert.NoError(s.T(), err)
		}()
	}
	wg.Wait()

	items, err := s.adapter.Pantry.ListByUser(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.True(items[0].Quantity.Equal(decimal.NewFromInt(15)), items[0].Quantity.String())
}

func (s *MySQLSuite) TestRecipesAndFavorites() {
	flour := s.newProduct("flour", "g")
	eggs := s.newProduct("eggs", "pcs")
	pancakes := domain.Recipe{
		ID: uuid.NewString(), Title: "Pancakes", Description: "Fluffy", Category: "breakfast",
		CreatedAt: time.Now().UTC(),
		Ingredients: []domain.IngredientLine{
			{ProductID: flour.ID, Quantity: decimal.NewFromInt(200)},
			{ProductID: eggs.ID, Quantity: decimal.NewFromInt(2)},
		},
	}
	soup := domain.Recipe{
		ID: uuid.NewString(), Title: "Soup", Category: "lunch", CreatedAt: time.Now().UTC(),
		Ingredients: []domain.IngredientLine{{ProductID: eggs.ID, Quantity: decimal.RequireFromString("0.5")}},
	}
	s.Require().NoError(s.adapter.Recipes.Save(s.ctx, pancakes))
	s.Require().NoError(s.adapter.Recipes.Save(s.ctx, soup))

	got, err := s.adapter.Recipes.FindByID(s.ctx, pancakes.ID)
	s.Require().NoError(err)
	s.Require().Len(got.Ingredients, 2)
	s.Equal("flour", got.Ingredients[0].ProductName)
	s.Equal("g", got.Ingredients[0].Unit)
	s.True(got.Ingredients[1].Quantity.Equal(decimal.NewFromInt(2)))

	all, err := s.adapter.Recipes.FindAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal(pancakes.ID, all[0].ID)
	s.Len(all[0].Ingredients, 2)
	s.Len(all[1].Ingredients, 1)

	lunch, err := s.adapter.Recipes.FindByCategory(s.ctx, "lunch")
	s.Require().NoError(err)
	s.Require().Len(lunch, 1)
	s.Equal(soup.ID, lunch[0].ID)

	_, err = s.adapter.Recipes.FindByID(s.ctx, "missing")
	s.ErrorIs(err, domain.ErrNotFound)

	s.Require().NoError(s.adapter.Favorites.Add(s.ctx, s.user.ID, soup.ID))
	s.Require().NoError(s.adapter.Favorites.Add(s.ctx, s.user.ID, pancakes.ID))
	s.Require().NoError(s.adapter.Favorites.Add(s.ctx, s.user.ID, soup.ID))

	favs, err := s.adapter.Favorites.ListByUser(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Require().Len(favs, 2)
	s.Equal(soup.ID, favs[0].ID)
	s.Equal(pancakes.ID, favs[1].ID)
	s.Len(favs[1].Ingredients, 2)

	s.Require().NoError(s.adapter.Favorites.Remove(s.ctx, s.user.ID, soup.ID))
	s.Require().NoError(s.adapter.Favorites.Remove(s.ctx, s.user.ID, soup.ID))
	favs, err = s.adapter.Favorites.ListByUser(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Len(favs, 1)
}

func (s *MySQLSuite) TestRecipeSaveIsAtomic() {
	flour := s.newProduct("flour", "g")
	broken := domain.Recipe{
		ID: uuid.NewString(), Title: "Broken", CreatedAt: time.Now().UTC(),
		Ingredients: []domain.IngredientLine{
			{ProductID: flour.ID, Quantity: decimal.NewFromInt(1)},
			{ProductID: "missing", Quantity: decimal.NewFromInt(1)},
		},
	}

	err := s.adapter.Recipes.Save(s.ctx, broken)
	s.ErrorIs(err, domain.ErrNotFound)

	all, err := s.adapter.Recipes.FindAll(s.ctx)
	s.Require().NoError(err)
	s.Empty(all)
}
