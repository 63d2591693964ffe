package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/rl1809/pantry/internal/core/domain"
)

// minFuzzyLen is the shortest token allowed to match with one edit.
const minFuzzyLen = 4

// SearchIndex is an in-process stand-in for the RediSearch index. A document
// scores 1 per query token it contains and 0.5 per token it matches within
// one edit.
type SearchIndex struct {
	mu   sync.RWMutex
	docs map[string]domain.SearchHit // keyed by canonical name
}

func NewSearchIndex() *SearchIndex {
	return &SearchIndex{docs: make(map[string]domain.SearchHit)}
}

func (x *SearchIndex) Index(ctx context.Context, product domain.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	x.mu.Lock()
	defer x.mu.Unlock()

	name := domain.NormalizeName(product.Name)
	x.docs[name] = domain.SearchHit{ProductID: product.ID, Name: name}
	return nil
}

func (x *SearchIndex) Search(ctx context.Context, query string, limit int) ([]domain.SearchHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	terms := domain.Tokens(query)
	if len(terms) == 0 || limit <= 0 {
		return nil, nil
	}

	x.mu.RLock()
	hits := make([]domain.SearchHit, 0)
	for _, doc := range x.docs {
		if score := scoreTokens(terms, domain.Tokens(doc.Name)); score > 0 {
			doc.Score = score
			hits = append(hits, doc)
		}
	}
	x.mu.RUnlock()

	slices.SortFunc(hits, func(a, b domain.SearchHit) int {
		return cmp.Or(cmp.Compare(b.Score, a.Score), cmp.Compare(len(a.Name), len(b.Name)), cmp.Compare(a.Name, b.Name))
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func scoreTokens(terms, doc []string) float64 {
	var score float64
	for _, t := range terms {
		best := 0.0
		for _, d := range doc {
			switch {
			case t == d:
				best = 1
			case best == 0 && len(t) >= minFuzzyLen && withinOneEdit(t, d):
				best = 0.5
			}
		}
		score += best
	}
	return score
}

// withinOneEdit reports whether a and b differ by at most one insertion,
// deletion or substitution.
func withinOneEdit(a, b string) bool {
	ra, rb := []rune(a), []rune(b)
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}
	if len(ra)-len(rb) > 1 {
		return false
	}
	i, j, edits := 0, 0, 0
	for i < len(ra) && j < len(rb) {
		if ra[i] == rb[j] {
			i++
			j++
			continue
		}
		edits++
		if edits > 1 {
			return false
		}
		if len(ra) == len(rb) {
			j++
		}
		i++
	}
	return edits+(len(ra)-i) <= 1
}
