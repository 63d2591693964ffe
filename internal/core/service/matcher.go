package service

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/rl1809/pantry/internal/core/domain"
)

// DefaultTopN is the number of recipes returned by a match when not configured.
const DefaultTopN = 5

var one = decimal.NewFromInt(1)

// Rank scores every recipe against the pantry and returns at most topN recipes
// with a positive score, best first. Equal scores keep their input order.
func Rank(pantry domain.Snapshot, recipes []domain.Recipe, topN int) []domain.RecipeMatch {
	if len(pantry) == 0 || topN <= 0 {
		return []domain.RecipeMatch{}
	}

	matches := make([]domain.RecipeMatch, 0, len(recipes))
	for _, r := range recipes {
		score := Score(pantry, r)
		if score <= 0 {
			continue
		}
		matches = append(matches, domain.RecipeMatch{Recipe: r, Score: score})
	}

	slices.SortStableFunc(matches, func(a, b domain.RecipeMatch) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})

	if len(matches) > topN {
		matches = matches[:topN]
	}
	return matches
}

// Score sums per-ingredient coverage, each capped at 1. Lines with a
// non-positive required quantity contribute nothing.
func Score(pantry domain.Snapshot, recipe domain.Recipe) float64 {
	total := decimal.Zero
	for _, line := range recipe.Ingredients {
		total = total.Add(coverage(pantry[line.ProductID], line.Quantity))
	}
	return total.InexactFloat64()
}

func coverage(available, required decimal.Decimal) decimal.Decimal {
	if !required.IsPositive() || !available.IsPositive() {
		return decimal.Zero
	}
	if available.GreaterThanOrEqual(required) {
		return one
	}
	return available.Div(required)
}
