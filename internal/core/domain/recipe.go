package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Recipe struct {
	ID          string
	Title       string
	Description string
	Category    string
	Ingredients []IngredientLine
	CreatedAt   time.Time
}

type IngredientLine struct {
	ProductID   string
	ProductName string
	Unit        string
	Quantity    decimal.Decimal
}

type RecipeMatch struct {
	Recipe Recipe
	Score  float64
}
