package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/rl1809/pantry/internal/core/domain"
)

type StoreSuite struct {
	suite.Suite
	ctx       context.Context
	products  *ProductStore
	pantry    *PantryStore
	recipes   *RecipeStore
	favorites *FavoriteStore
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.products = NewProductStore()
	s.pantry = NewPantryStore(s.products)
	s.recipes = NewRecipeStore()
	s.favorites = NewFavoriteStore(s.recipes)
}

func (s *StoreSuite) product(name, unit string) domain.Product {
	p := domain.Product{ID: uuid.NewString(), Name: name, Unit: unit}
	s.Require().NoError(s.products.Create(s.ctx, p))
	return p
}

func (s *StoreSuite) TestProducts() {
	s.Run("finds by name case-insensitively", func() {
		p := s.product("Olive  Oil", "ml")

		found, err := s.products.FindByName(s.ctx, "OLIVE OIL")
		s.Require().NoError(err)
		s.Equal(p.ID, found.ID)
		s.Equal("olive oil", found.Name)
	})

	s.Run("duplicate name conflicts", func() {
		s.product("rice", "g")
		err := s.products.Create(s.ctx, domain.Product{ID: uuid.NewString(), Name: "Rice"})
		s.ErrorIs(err, domain.ErrConflict)
	})

	s.Run("unknown id is not found", func() {
		_, err := s.products.FindByID(s.ctx, "missing")
		s.ErrorIs(err, domain.ErrNotFound)
	})
}

func (s *StoreSuite) TestPantryAddAccumulates() {
	p := s.product("milk", "l")

	_, err := s.pantry.AddQuantity(s.ctx, "u1", p.ID, decimal.RequireFromString("1.0"))
	s.Require().NoError(err)
	item, err := s.pantry.AddQuantity(s.ctx, "u1", p.ID, decimal.RequireFromString("0.5"))
	s.Require().NoError(err)

	s.True(item.Quantity.Equal(decimal.RequireFromString("1.5")), item.Quantity.String())
	s.Equal("milk", item.ProductName)
	s.Equal("l", item.Unit)
	s.Equal(2, item.Version)
}

func (s *StoreSuite) TestPantryAddRejectsTotalBeyondStorableRange() {
	p := s.product("rice", "g")

	_, err := s.pantry.AddQuantity(s.ctx, "u1", p.ID, decimal.RequireFromString("999999999"))
	s.Require().NoError(err)
	_, err = s.pantry.AddQuantity(s.ctx, "u1", p.ID, decimal.NewFromInt(1))
	s.ErrorIs(err, domain.ErrInvalidInput)

	items, err := s.pantry.ListByUser(s.ctx, "u1")
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.True(items[0].Quantity.Equal(decimal.RequireFromString("999999999")), items[0].Quantity.String())
}

func (s *StoreSuite) TestPantrySetQuantityIsScopedToUser() {
	p := s.product("flour", "g")
	_, err := s.pantry.AddQuantity(s.ctx, "owner", p.ID, decimal.NewFromInt(500))
	s.Require().NoError(err)

	_, err = s.pantry.SetQuantity(s.ctx, "intruder", p.ID, decimal.NewFromInt(1))
	s.ErrorIs(err, domain.ErrNotFound)

	item, err := s.pantry.SetQuantity(s.ctx, "owner", p.ID, decimal.NewFromInt(200))
	s.Require().NoError(err)
	s.True(item.Quantity.Equal(decimal.NewFromInt(200)))
}

func (s *StoreSuite) TestPantryDeleteAndList() {
	b := s.product("butter", "g")
	a := s.product("apple", "pcs")
	for _, p := range []domain.Product{b, a} {
		_, err := s.pantry.AddQuantity(s.ctx, "u1", p.ID, decimal.NewFromInt(1))
		s.Require().NoError(err)
	}

	items, err := s.pantry.ListByUser(s.ctx, "u1")
	s.Require().NoError(err)
	s.Require().Len(items, 2)
	s.Equal("apple", items[0].ProductName)

	s.NoError(s.pantry.Delete(s.ctx, "u1", a.ID))
	s.NoError(s.pantry.Delete(s.ctx, "u1", a.ID))

	items, err = s.pantry.ListByUser(s.ctx, "u1")
	s.Require().NoError(err)
	s.Len(items, 1)
}

func (s *StoreSuite) TestPantryConcurrentAdds() {
	p := s.product("sugar", "g")
	const workers = 50

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.pantry.AddQuantity(s.ctx, "u1", p.ID, decimal.RequireFromString("0.1"))
			assert.NoError(s.T(), err)
		}()
	}
	wg.Wait()

	items, err := s.pantry.ListByUser(s.ctx, "u1")
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.True(items[0].Quantity.Equal(decimal.NewFromInt(5)), items[0].Quantity.String())
}

func (s *StoreSuite) TestRecipesAndFavorites() {
	first := domain.Recipe{ID: "r1", Title: "Pancakes", Category: "Breakfast"}
	second := domain.Recipe{ID: "r2", Title: "Soup", Category: "lunch"}
	s.Require().NoError(s.recipes.Save(s.ctx, first))
	s.Require().NoError(s.recipes.Save(s.ctx, second))
	s.ErrorIs(s.recipes.Save(s.ctx, first), domain.ErrConflict)

	all, err := s.recipes.FindAll(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"r1", "r2"}, recipeIDs(all))

	breakfast, err := s.recipes.FindByCategory(s.ctx, "breakfast")
	s.Require().NoError(err)
	s.Equal([]string{"r1"}, recipeIDs(breakfast))

	s.Require().NoError(s.favorites.Add(s.ctx, "u1", "r2"))
	s.Require().NoError(s.favorites.Add(s.ctx, "u1", "r1"))
	s.Require().NoError(s.favorites.Add(s.ctx, "u1", "r2"))

	favs, err := s.favorites.ListByUser(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal([]string{"r2", "r1"}, recipeIDs(favs))

	s.Require().NoError(s.favorites.Remove(s.ctx, "u1", "r2"))
	s.Require().NoError(s.favorites.Remove(s.ctx, "u1", "r2"))
	favs, err = s.favorites.ListByUser(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal([]string{"r1"}, recipeIDs(favs))
}

func (s *StoreSuite) TestRecipeReadsDoNotShareIngredients() {
	line := domain.IngredientLine{ProductID: "p1", ProductName: "flour", Quantity: decimal.NewFromInt(200)}
	s.Require().NoError(s.recipes.Save(s.ctx, domain.Recipe{ID: "r1", Title: "Bread", Ingredients: []domain.IngredientLine{line}}))

	got, err := s.recipes.FindByID(s.ctx, "r1")
	s.Require().NoError(err)
	got.Ingredients[0].Quantity = decimal.Zero

	all, err := s.recipes.FindAll(s.ctx)
	s.Require().NoError(err)
	all[0].Ingredients[0].ProductID = "changed"

	again, err := s.recipes.FindByID(s.ctx, "r1")
	s.Require().NoError(err)
	s.Equal("p1", again.Ingredients[0].ProductID)
	s.True(again.Ingredients[0].Quantity.Equal(decimal.NewFromInt(200)))
}

func recipeIDs(rs []domain.Recipe) []string {
	ids := make([]string, 0, len(rs))
	for _, r := range rs {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestSearchIndex(t *testing.T) {
	ctx := context.Background()
	idx := NewSearchIndex()
	for _, name := range []string{"tomato", "cherry tomato", "milk", "oat milk"} {
		assert.NoError(t, idx.Index(ctx, domain.Product{ID: name + "-id", Name: name}))
	}

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"exact", "Tomato", "tomato"},
		{"misspelled", "tomatp", "tomato"},
		{"more tokens win", "cherry tomato", "cherry tomato"},
		{"short tokens need exact match", "mlk", ""},
		{"no match", "chocolate", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits, err := idx.Search(ctx, tt.query, 1)
			assert.NoError(t, err)
			if tt.want == "" {
				assert.Empty(t, hits)
				return
			}
			if assert.Len(t, hits, 1) {
				assert.Equal(t, tt.want, hits[0].Name)
				assert.Equal(t, tt.want+"-id", hits[0].ProductID)
			}
		})
	}
}

func TestSearchIndexReindexOverwrites(t *testing.T) {
	ctx := context.Background()
	idx := NewSearchIndex()
	assert.NoError(t, idx.Index(ctx, domain.Product{ID: "old", Name: "basil"}))
	assert.NoError(t, idx.Index(ctx, domain.Product{ID: "new", Name: "Basil"}))

	hits, err := idx.Search(ctx, "basil", 10)
	assert.NoError(t, err)
	if assert.Len(t, hits, 1) {
		assert.Equal(t, "new", hits[0].ProductID)
	}
}

func TestWithinOneEdit(t *testing.T) {
	assert.True(t, withinOneEdit("milk", "milc"))
	assert.True(t, withinOneEdit("tomatoes", "tomatoe"))
	assert.True(t, withinOneEdit("butter", "buter"))
	assert.False(t, withinOneEdit("butter", "bitten"))
	assert.False(t, withinOneEdit("egg", "eggplant"))
}
