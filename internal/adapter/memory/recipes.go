package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/rl1809/pantry/internal/core/domain"
)

// RecipeStore keeps recipes in creation order.
type RecipeStore struct {
	mu    sync.RWMutex
	byID  map[string]domain.Recipe
	order []string
}

func NewRecipeStore() *RecipeStore {
	return &RecipeStore{byID: make(map[string]domain.Recipe)}
}

func (s *RecipeStore) Save(ctx context.Context, recipe domain.Recipe) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[recipe.ID]; ok {
		return domain.ErrConflict
	}
	recipe.Ingredients = slices.Clone(recipe.Ingredients)
	s.byID[recipe.ID] = recipe
	s.order = append(s.order, recipe.ID)
	return nil
}

func (s *RecipeStore) FindByID(_ context.Context, id string) (domain.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.byID[id]
	if !ok {
		return domain.Recipe{}, domain.ErrNotFound
	}
	return cloneRecipe(r), nil
}

func (s *RecipeStore) FindAll(_ context.Context) ([]domain.Recipe, error) {
	return s.filter(func(domain.Recipe) bool { return true }), nil
}

// FindByCategory matches categories case-insensitively, like the SQL collation does.
func (s *RecipeStore) FindByCategory(_ context.Context, category string) ([]domain.Recipe, error) {
	return s.filter(func(r domain.Recipe) bool { return strings.EqualFold(r.Category, category) }), nil
}

func (s *RecipeStore) filter(keep func(domain.Recipe) bool) []domain.Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Recipe, 0, len(s.order))
	for _, id := range s.order {
		if r := s.byID[id]; keep(r) {
			out = append(out, cloneRecipe(r))
		}
	}
	return out
}

// cloneRecipe detaches the ingredient lines so callers cannot mutate stored state.
func cloneRecipe(r domain.Recipe) domain.Recipe {
	r.Ingredients = slices.Clone(r.Ingredients)
	return r
}
