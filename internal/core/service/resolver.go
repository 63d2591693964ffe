package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rl1809/pantry/internal/core/domain"
	"github.com/rl1809/pantry/internal/metrics"
	"github.com/rl1809/pantry/internal/port"
)

// Resolution is the outcome of mapping a free-text name onto a canonical product.
type Resolution struct {
	Product domain.Product
	Created bool // a new product row was written
	Healed  bool // the row was recreated from a search hit the store did not know

	// Warning is set when the product was stored but could not be indexed.
	// It wraps domain.ErrIndexUnavailable and does not invalidate Product.
	Warning error
}

// Resolver maps raw product names onto canonical products.
type Resolver interface {
	Resolve(ctx context.Context, rawName, unit string) (Resolution, error)
}

type ProductResolver struct {
	products port.ProductStore
	index    port.SearchIndex
	logger   *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewProductResolver(products port.ProductStore, index port.SearchIndex, opts ...Option) *ProductResolver {
	o := buildOptions(opts)
	return &ProductResolver{
		products: products,
		index:    index,
		logger:   o.logger,
		metrics:  o.metrics,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Resolve returns the canonical product for rawName, creating it when neither
// the search index nor the store knows it. The unit is only used when a
// product is created; checking it against an existing product is up to the caller.
func (r *ProductResolver) Resolve(ctx context.Context, rawName, unit string) (Resolution, error) {
	name := domain.NormalizeName(rawName)
	if name == "" {
		return Resolution{}, domain.InvalidInput("product name is required")
	}
	unit = domain.NormalizeUnit(unit)

	hit, ok := r.topHit(ctx, name)
	if !ok {
		return r.create(ctx, name, unit, metrics.OutcomeCreated)
	}

	hitName := domain.NormalizeName(hit.Name)
	product, err := r.products.FindByName(ctx, hitName)
	if err == nil {
		r.metrics.IncResolution(metrics.OutcomeHit)
		return Resolution{Product: product}, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return Resolution{}, fmt.Errorf("load product %q: %w", hitName, err)
	}

	r.logger.Warn("search index references unknown product, healing",
		zap.String("query", name),
		zap.String("name", hitName),
		zap.String("stale_id", hit.ProductID),
	)
	res, err := r.create(ctx, hitName, unit, metrics.OutcomeHealed)
	if err != nil {
		return Resolution{}, err
	}
	res.Healed = res.Created
	return res, nil
}

// topHit consults only the highest ranked hit. A failing index degrades to a miss.
func (r *ProductResolver) topHit(ctx context.Context, name string) (domain.SearchHit, bool) {
	hits, err := r.index.Search(ctx, name, 1)
	if err != nil {
		r.metrics.IncSearchIndexError("search")
		r.logger.Warn("product search failed, treating as miss", zap.String("name", name), zap.Error(err))
		return domain.SearchHit{}, false
	}
	if len(hits) == 0 || domain.NormalizeName(hits[0].Name) == "" {
		return domain.SearchHit{}, false
	}
	return hits[0], true
}

func (r *ProductResolver) create(ctx context.Context, name, unit, outcome string) (Resolution, error) {
	if err := ctx.Err(); err != nil {
		return Resolution{}, err
	}

	product := domain.Product{
		ID:        uuid.NewString(),
		Name:      name,
		Unit:      unit,
		CreatedAt: r.now(),
	}
	err := r.products.Create(ctx, product)
	if errors.Is(err, domain.ErrConflict) {
		// Another request created the same name first; its row wins.
		winner, err := r.products.FindByName(ctx, name)
		if err != nil {
			return Resolution{}, fmt.Errorf("re-read product %q after conflict: %w", name, err)
		}
		r.metrics.IncResolution(metrics.OutcomeConflictReread)
		r.logger.Debug("product created concurrently, using winner", zap.String("name", name), zap.String("id", winner.ID))
		// The winner may be a row whose own index write failed.
		return Resolution{Product: winner, Warning: r.indexProduct(ctx, winner)}, nil
	}
	if err != nil {
		return Resolution{}, fmt.Errorf("create product %q: %w", name, err)
	}
	r.metrics.IncResolution(outcome)

	res := Resolution{Product: product, Created: true}
	res.Warning = r.indexProduct(ctx, product)
	return res, nil
}

// indexProduct writes the product's search document. A failure is returned as a
// warning wrapping ErrIndexUnavailable; the store row stays authoritative.
func (r *ProductResolver) indexProduct(ctx context.Context, product domain.Product) error {
	err := r.index.Index(ctx, product)
	if err == nil {
		return nil
	}
	r.metrics.IncSearchIndexError("index")
	r.logger.Warn("product stored but not indexed", zap.String("name", product.Name), zap.String("id", product.ID), zap.Error(err))
	if !errors.Is(err, domain.ErrIndexUnavailable) {
		err = fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}
	return fmt.Errorf("index product %q: %w", product.Name, err)
}
