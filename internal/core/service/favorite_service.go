package service

import (
	"context"
	"fmt"

	"github.com/rl1809/pantry/internal/core/domain"
	"github.com/rl1809/pantry/internal/port"
)

// FavoriteService manages the per-user set of favorite recipes.
type FavoriteService struct {
	users     port.UserDirectory
	recipes   port.RecipeRepository
	favorites port.FavoriteRepository
}

func NewFavoriteService(users port.UserDirectory, recipes port.RecipeRepository, favorites port.FavoriteRepository) *FavoriteService {
	return &FavoriteService{users: users, recipes: recipes, favorites: favorites}
}

func (s *FavoriteService) Add(ctx context.Context, userID, recipeID string) (domain.Recipe, error) {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return domain.Recipe{}, err
	}
	recipe, err := s.recipes.FindByID(ctx, recipeID)
	if err != nil {
		return domain.Recipe{}, fmt.Errorf("recipe %s: %w", recipeID, err)
	}
	if err := s.favorites.Add(ctx, userID, recipeID); err != nil {
		return domain.Recipe{}, fmt.Errorf("add favorite: %w", err)
	}
	return recipe, nil
}

func (s *FavoriteService) Remove(ctx context.Context, userID, recipeID string) error {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return err
	}
	if err := s.favorites.Remove(ctx, userID, recipeID); err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}

func (s *FavoriteService) List(ctx context.Context, userID string) ([]domain.Recipe, error) {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	recipes, err := s.favorites.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return recipes, nil
}
