package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rl1809/pantry/internal/core/domain"
	"github.com/rl1809/pantry/internal/metrics"
	"github.com/rl1809/pantry/internal/port"
)

type PantryService struct {
	users    port.UserDirectory
	pantry   port.PantryRepository
	resolver Resolver
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

func NewPantryService(users port.UserDirectory, pantry port.PantryRepository, resolver Resolver, opts ...Option) *PantryService {
	o := buildOptions(opts)
	return &PantryService{
		users:    users,
		pantry:   pantry,
		resolver: resolver,
		logger:   o.logger,
		metrics:  o.metrics,
	}
}

// Add resolves rawName to a canonical product and adds quantity to the user's
// stock of it. Repeated adds accumulate.
func (s *PantryService) Add(ctx context.Context, userID, rawName, unit string, quantity decimal.Decimal) (domain.PantryItem, error) {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return domain.PantryItem{}, err
	}
	if !quantity.IsPositive() {
		return domain.PantryItem{}, domain.InvalidInput("quantity must be positive, got %s", quantity)
	}
	if err := domain.CheckQuantityRange(quantity); err != nil {
		return domain.PantryItem{}, err
	}

	res, err := s.resolver.Resolve(ctx, rawName, unit)
	if err != nil {
		return domain.PantryItem{}, fmt.Errorf("resolve product: %w", err)
	}
	if res.Warning != nil {
		s.logger.Warn("pantry add continues without search index", zap.String("product_id", res.Product.ID), zap.Error(res.Warning))
	}

	product := res.Product
	if product.ConflictsWith(unit) {
		return domain.PantryItem{}, &domain.UnitMismatchError{
			Product:   product.Name,
			Expected:  product.Unit,
			Requested: domain.NormalizeUnit(unit),
		}
	}

	if err := ctx.Err(); err != nil {
		return domain.PantryItem{}, err
	}
	item, err := s.pantry.AddQuantity(ctx, userID, product.ID, quantity)
	if errors.Is(err, domain.ErrConflict) {
		s.logger.Debug("pantry upsert conflicted, retrying", zap.String("user_id", userID), zap.String("product_id", product.ID))
		item, err = s.pantry.AddQuantity(ctx, userID, product.ID, quantity)
	}
	if err != nil {
		return domain.PantryItem{}, fmt.Errorf("add %s to pantry: %w", product.Name, err)
	}
	s.metrics.IncPantryWrite("add")
	item.Warning = res.Warning
	return item, nil
}

// Update replaces the quantity of a product the user already holds.
func (s *PantryService) Update(ctx context.Context, userID, productID string, quantity decimal.Decimal) (domain.PantryItem, error) {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return domain.PantryItem{}, err
	}
	if quantity.IsNegative() {
		return domain.PantryItem{}, domain.InvalidInput("quantity must not be negative, got %s", quantity)
	}
	if err := domain.CheckQuantityRange(quantity); err != nil {
		return domain.PantryItem{}, err
	}

	item, err := s.pantry.SetQuantity(ctx, userID, productID, quantity)
	if err != nil {
		return domain.PantryItem{}, fmt.Errorf("update pantry item %s: %w", productID, err)
	}
	s.metrics.IncPantryWrite("update")
	return item, nil
}

// Delete removes a product from the user's pantry. Deleting an absent item is not an error.
func (s *PantryService) Delete(ctx context.Context, userID, productID string) error {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return err
	}
	if err := s.pantry.Delete(ctx, userID, productID); err != nil {
		return fmt.Errorf("delete pantry item %s: %w", productID, err)
	}
	s.metrics.IncPantryWrite("delete")
	return nil
}

func (s *PantryService) List(ctx context.Context, userID string) ([]domain.PantryItem, error) {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	items, err := s.pantry.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list pantry: %w", err)
	}
	return items, nil
}

// Snapshot returns the user's pantry keyed by product ID.
func (s *PantryService) Snapshot(ctx context.Context, userID string) (domain.Snapshot, error) {
	items, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return domain.NewSnapshot(items), nil
}

func requireUser(ctx context.Context, users port.UserDirectory, userID string) error {
	if userID == "" {
		return domain.InvalidInput("user id is required")
	}
	if _, err := users.FindByID(ctx, userID); err != nil {
		return fmt.Errorf("user %s: %w", userID, err)
	}
	return nil
}
