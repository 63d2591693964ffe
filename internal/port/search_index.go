package port

import (
	"context"

	"github.com/rl1809/pantry/internal/core/domain"
)

//go:generate mockgen -source=search_index.go -destination=../mocks/search_index_mock.go -package=mocks

type SearchIndex interface {
	// Search returns hits ordered by the index's own relevance score.
	Search(ctx context.Context, query string, limit int) ([]domain.SearchHit, error)

	// Index upserts the product's document.
	Index(ctx context.Context, product domain.Product) error
}
