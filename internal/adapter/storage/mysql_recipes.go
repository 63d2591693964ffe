package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rl1809/pantry/internal/core/domain"
)

type RecipeRepository struct {
	db *sql.DB
}

// recipeSelect yields one row per ingredient line. Callers order by recipe
// first so that each recipe's lines are contiguous.
const recipeSelect = `
	SELECT r.id, r.title, r.description, r.category, r.created_at,
	       ri.product_id, p.name, COALESCE(p.unit, ''), ri.quantity
	FROM recipes r
	JOIN recipe_ingredients ri ON ri.recipe_id = r.id
	JOIN products p ON p.id = ri.product_id`

func (r *RecipeRepository) Save(ctx context.Context, recipe domain.Recipe) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO recipes (id, title, description, category, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		recipe.ID, recipe.Title, recipe.Description, recipe.Category, recipe.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert recipe: %w", translateError(err))
	}

	for i, line := range recipe.Ingredients {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO recipe_ingredients (recipe_id, position, product_id, quantity)
			VALUES (?, ?, ?, ?)`,
			recipe.ID, i, line.ProductID, line.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert ingredient %d: %w", i, translateError(err))
		}
	}

	return tx.Commit()
}

func (r *RecipeRepository) FindByID(ctx context.Context, id string) (domain.Recipe, error) {
	recipes, err := queryRecipes(ctx, r.db, recipeSelect+` WHERE r.id = ? ORDER BY ri.position`, id)
	if err != nil {
		return domain.Recipe{}, err
	}
	if len(recipes) == 0 {
		return domain.Recipe{}, domain.ErrNotFound
	}
	return recipes[0], nil
}

func (r *RecipeRepository) FindAll(ctx context.Context) ([]domain.Recipe, error) {
	return queryRecipes(ctx, r.db, recipeSelect+` ORDER BY r.seq, ri.position`)
}

func (r *RecipeRepository) FindByCategory(ctx context.Context, category string) ([]domain.Recipe, error) {
	return queryRecipes(ctx, r.db, recipeSelect+` WHERE r.category = ? ORDER BY r.seq, ri.position`, category)
}

// queryRecipes folds consecutive rows with the same recipe ID into one recipe.
func queryRecipes(ctx context.Context, q querier, query string, args ...any) ([]domain.Recipe, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recipes: %w", err)
	}
	defer rows.Close()

	recipes := make([]domain.Recipe, 0)
	for rows.Next() {
		var (
			rec  domain.Recipe
			line domain.IngredientLine
		)
		err := rows.Scan(&rec.ID, &rec.Title, &rec.Description, &rec.Category, &rec.CreatedAt,
			&line.ProductID, &line.ProductName, &line.Unit, &line.Quantity)
		if err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		if n := len(recipes); n > 0 && recipes[n-1].ID == rec.ID {
			recipes[n-1].Ingredients = append(recipes[n-1].Ingredients, line)
			continue
		}
		rec.Ingredients = []domain.IngredientLine{line}
		recipes = append(recipes, rec)
	}
	return recipes, rows.Err()
}
