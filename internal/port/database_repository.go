package port

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/rl1809/pantry/internal/core/domain"
)

//go:generate mockgen -source=database_repository.go -destination=../mocks/database_repository_mock.go -package=mocks

type ProductStore interface {
	// FindByName looks a product up by canonical name, case-insensitively.
	// Returns domain.ErrNotFound when no row exists.
	FindByName(ctx context.Context, name string) (domain.Product, error)

	FindByID(ctx context.Context, id string) (domain.Product, error)

	// Create persists a new product. Returns domain.ErrConflict when the
	// name unique constraint is violated by a concurrent writer.
	Create(ctx context.Context, product domain.Product) error
}

type PantryRepository interface {
	// AddQuantity atomically inserts the (user, product) row or adds delta to it
	// and returns the resulting state.
	AddQuantity(ctx context.Context, userID, productID string, delta decimal.Decimal) (domain.PantryItem, error)

	// SetQuantity replaces the quantity of an existing row.
	// Returns domain.ErrNotFound when the user does not own the product.
	SetQuantity(ctx context.Context, userID, productID string, quantity decimal.Decimal) (domain.PantryItem, error)

	// Delete removes the row if present.
	Delete(ctx context.Context, userID, productID string) error

	ListByUser(ctx context.Context, userID string) ([]domain.PantryItem, error)
}

type RecipeRepository interface {
	// Save persists a recipe and its ingredient lines atomically.
	Save(ctx context.Context, recipe domain.Recipe) error

	FindByID(ctx context.Context, id string) (domain.Recipe, error)

	// FindAll and FindByCategory return recipes in creation order.
	FindAll(ctx context.Context) ([]domain.Recipe, error)
	FindByCategory(ctx context.Context, category string) ([]domain.Recipe, error)
}

type FavoriteRepository interface {
	// Add is a no-op when the link already exists.
	Add(ctx context.Context, userID, recipeID string) error

	// Remove is a no-op when the link does not exist.
	Remove(ctx context.Context, userID, recipeID string) error

	ListByUser(ctx context.Context, userID string) ([]domain.Recipe, error)
}

type UserDirectory interface {
	FindByID(ctx context.Context, id string) (domain.User, error)
}
