package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/rl1809/pantry/internal/core/domain"
)

// FavoriteStore keeps each user's favorite recipe IDs in the order they were added.
type FavoriteStore struct {
	mu      sync.Mutex
	recipes *RecipeStore
	links   map[string][]string
}

func NewFavoriteStore(recipes *RecipeStore) *FavoriteStore {
	return &FavoriteStore{recipes: recipes, links: make(map[string][]string)}
}

func (s *FavoriteStore) Add(ctx context.Context, userID, recipeID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !slices.Contains(s.links[userID], recipeID) {
		s.links[userID] = append(s.links[userID], recipeID)
	}
	return nil
}

func (s *FavoriteStore) Remove(ctx context.Context, userID, recipeID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.links[userID] = slices.DeleteFunc(s.links[userID], func(id string) bool { return id == recipeID })
	return nil
}

func (s *FavoriteStore) ListByUser(ctx context.Context, userID string) ([]domain.Recipe, error) {
	s.mu.Lock()
	ids := slices.Clone(s.links[userID])
	s.mu.Unlock()

	out := make([]domain.Recipe, 0, len(ids))
	for _, id := range ids {
		r, err := s.recipes.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
