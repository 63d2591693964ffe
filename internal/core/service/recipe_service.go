package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rl1809/pantry/internal/core/domain"
	"github.com/rl1809/pantry/internal/metrics"
	"github.com/rl1809/pantry/internal/port"
)

type RecipeInput struct {
	Title       string
	Description string
	Category    string
	Ingredients []IngredientInput
}

type IngredientInput struct {
	Name     string
	Unit     string
	Quantity decimal.Decimal
}

type RecipeService struct {
	users    port.UserDirectory
	recipes  port.RecipeRepository
	pantry   port.PantryRepository
	resolver Resolver
	topN     int
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

func NewRecipeService(users port.UserDirectory, recipes port.RecipeRepository, pantry port.PantryRepository, resolver Resolver, topN int, opts ...Option) *RecipeService {
	o := buildOptions(opts)
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &RecipeService{
		users:    users,
		recipes:  recipes,
		pantry:   pantry,
		resolver: resolver,
		topN:     topN,
		logger:   o.logger,
		metrics:  o.metrics,
	}
}

// Create validates the input, resolves every ingredient to a canonical product
// and stores the recipe with its lines in one write.
func (s *RecipeService) Create(ctx context.Context, in RecipeInput) (domain.Recipe, error) {
	if err := validateRecipe(in); err != nil {
		return domain.Recipe{}, err
	}

	lines := make([]domain.IngredientLine, 0, len(in.Ingredients))
	for _, ing := range in.Ingredients {
		res, err := s.resolver.Resolve(ctx, ing.Name, ing.Unit)
		if err != nil {
			return domain.Recipe{}, fmt.Errorf("resolve ingredient %q: %w", ing.Name, err)
		}
		if res.Warning != nil {
			s.logger.Warn("ingredient stored but not indexed", zap.String("product_id", res.Product.ID), zap.Error(res.Warning))
		}
		p := res.Product
		if p.ConflictsWith(ing.Unit) {
			return domain.Recipe{}, &domain.UnitMismatchError{
				Product:   p.Name,
				Expected:  p.Unit,
				Requested: domain.NormalizeUnit(ing.Unit),
			}
		}
		lines = append(lines, domain.IngredientLine{
			ProductID:   p.ID,
			ProductName: p.Name,
			Unit:        p.Unit,
			Quantity:    ing.Quantity,
		})
	}

	recipe := domain.Recipe{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
		Ingredients: lines,
		CreatedAt:   time.Now().UTC(),
	}
	if err := ctx.Err(); err != nil {
		return domain.Recipe{}, err
	}
	if err := s.recipes.Save(ctx, recipe); err != nil {
		return domain.Recipe{}, fmt.Errorf("save recipe: %w", err)
	}
	s.logger.Info("recipe created", zap.String("recipe_id", recipe.ID), zap.Int("ingredients", len(lines)))
	return recipe, nil
}

func validateRecipe(in RecipeInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return domain.InvalidInput("recipe title is required")
	}
	if len(in.Ingredients) == 0 {
		return domain.InvalidInput("recipe needs at least one ingredient")
	}
	for i, ing := range in.Ingredients {
		if domain.NormalizeName(ing.Name) == "" {
			return domain.InvalidInput("ingredient %d: name is required", i+1)
		}
		if !ing.Quantity.IsPositive() {
			return domain.InvalidInput("ingredient %d: quantity must be positive, got %s", i+1, ing.Quantity)
		}
		if err := domain.CheckQuantityRange(ing.Quantity); err != nil {
			return fmt.Errorf("ingredient %d: %w", i+1, err)
		}
	}
	return nil
}

// List returns all recipes, or those in category when it is not blank.
func (s *RecipeService) List(ctx context.Context, category string) ([]domain.Recipe, error) {
	var (
		recipes []domain.Recipe
		err     error
	)
	if category = strings.TrimSpace(category); category == "" {
		recipes, err = s.recipes.FindAll(ctx)
	} else {
		recipes, err = s.recipes.FindByCategory(ctx, category)
	}
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, nil
}

func (s *RecipeService) Get(ctx context.Context, id string) (domain.Recipe, error) {
	recipe, err := s.recipes.FindByID(ctx, id)
	if err != nil {
		return domain.Recipe{}, fmt.Errorf("recipe %s: %w", id, err)
	}
	return recipe, nil
}

// MatchRecipes ranks recipes by how well the user's pantry covers them.
// An empty pantry returns no matches without reading the catalog.
func (s *RecipeService) MatchRecipes(ctx context.Context, userID, category string) ([]domain.RecipeMatch, error) {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}

	items, err := s.pantry.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load pantry: %w", err)
	}
	snapshot := domain.NewSnapshot(items)
	if len(snapshot) == 0 {
		return []domain.RecipeMatch{}, nil
	}

	recipes, err := s.List(ctx, category)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	matches := Rank(snapshot, recipes, s.topN)
	s.metrics.ObserveMatch(start, len(matches))
	return matches, nil
}
