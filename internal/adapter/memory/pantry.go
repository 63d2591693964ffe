package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/pantry/internal/core/domain"
)

type pantryKey struct {
	userID    string
	productID string
}

// PantryStore is a mutex-guarded pantry ledger. It reads product names and
// units from the product store the same way the SQL adapter joins them.
type PantryStore struct {
	mu       sync.Mutex
	products *ProductStore
	items    map[pantryKey]domain.PantryItem
	now      func() time.Time
}

func NewPantryStore(products *ProductStore) *PantryStore {
	return &PantryStore{
		products: products,
		items:    make(map[pantryKey]domain.PantryItem),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *PantryStore) AddQuantity(ctx context.Context, userID, productID string, delta decimal.Decimal) (domain.PantryItem, error) {
	if err := ctx.Err(); err != nil {
		return domain.PantryItem{}, err
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return domain.PantryItem{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := pantryKey{userID, productID}
	item, ok := s.items[key]
	if !ok {
		item = domain.PantryItem{UserID: userID, ProductID: productID, Quantity: decimal.Zero}
	}
	total := item.Quantity.Add(delta)
	if total.GreaterThanOrEqual(domain.MaxQuantity) {
		return domain.PantryItem{}, domain.InvalidInput("pantry quantity %s must be below %s", total, domain.MaxQuantity)
	}
	item.ProductName = product.Name
	item.Unit = product.Unit
	item.Quantity = total
	item.Version++
	item.UpdatedAt = s.now()
	s.items[key] = item
	return item, nil
}

func (s *PantryStore) SetQuantity(ctx context.Context, userID, productID string, quantity decimal.Decimal) (domain.PantryItem, error) {
	if err := ctx.Err(); err != nil {
		return domain.PantryItem{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pantryKey{userID, productID}
	item, ok := s.items[key]
	if !ok {
		return domain.PantryItem{}, domain.ErrNotFound
	}
	item.Quantity = quantity
	item.Version++
	item.UpdatedAt = s.now()
	s.items[key] = item
	return item, nil
}

func (s *PantryStore) Delete(ctx context.Context, userID, productID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, pantryKey{userID, productID})
	return nil
}

func (s *PantryStore) ListByUser(_ context.Context, userID string) ([]domain.PantryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]domain.PantryItem, 0)
	for key, item := range s.items {
		if key.userID == userID {
			items = append(items, item)
		}
	}
	slices.SortFunc(items, func(a, b domain.PantryItem) int {
		return cmp.Or(cmp.Compare(a.ProductName, b.ProductName), cmp.Compare(a.ProductID, b.ProductID))
	})
	return items, nil
}
