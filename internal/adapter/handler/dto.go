package handler

import (
	"github.com/shopspring/decimal"

	"github.com/rl1809/pantry/internal/core/domain"
	"github.com/rl1809/pantry/internal/core/service"
)

// Request and response messages shared by the HTTP API and the gRPC service.
// UserID fields are filled from the X-User-ID header over HTTP.

type ResolveProductRequest struct {
	Name string `json:"name"`
	Unit string `json:"unit,omitempty"`
}

type ProductResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Unit    string `json:"unit,omitempty"`
	Created bool   `json:"created"`
	Healed  bool   `json:"healed,omitempty"`
	Warning string `json:"warning,omitempty"`
}

type AddItemRequest struct {
	UserID   string          `json:"user_id,omitempty"`
	Name     string          `json:"name"`
	Unit     string          `json:"unit,omitempty"`
	Quantity decimal.Decimal `json:"quantity"`
}

type UpdateItemRequest struct {
	UserID    string          `json:"user_id,omitempty"`
	ProductID string          `json:"product_id,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
}

type DeleteItemRequest struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
}

type ListItemsRequest struct {
	UserID string `json:"user_id"`
}

type PantryItemResponse struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
	Warning   string          `json:"warning,omitempty"`
}

type ListItemsResponse struct {
	Items []PantryItemResponse `json:"items"`
}

type MatchRecipesRequest struct {
	UserID   string `json:"user_id"`
	Category string `json:"category,omitempty"`
}

type MatchRecipesResponse struct {
	Matches []RecipeMatchResponse `json:"matches"`
}

type RecipeMatchResponse struct {
	Recipe RecipeResponse `json:"recipe"`
	Score  float64        `json:"score"`
}

type IngredientRequest struct {
	Name     string          `json:"name"`
	Unit     string          `json:"unit,omitempty"`
	Quantity decimal.Decimal `json:"quantity"`
}

type CreateRecipeRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Category    string              `json:"category"`
	Ingredients []IngredientRequest `json:"ingredients"`
}

type IngredientResponse struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
}

type RecipeResponse struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Category    string               `json:"category"`
	Ingredients []IngredientResponse `json:"ingredients"`
}

type Empty struct{}

func toProductResponse(res service.Resolution) ProductResponse {
	out := ProductResponse{
		ID:      res.Product.ID,
		Name:    res.Product.Name,
		Unit:    res.Product.Unit,
		Created: res.Created,
		Healed:  res.Healed,
	}
	if res.Warning != nil {
		out.Warning = res.Warning.Error()
	}
	return out
}

func toPantryItemResponse(it domain.PantryItem) PantryItemResponse {
	out := PantryItemResponse{
		ProductID: it.ProductID,
		Name:      it.ProductName,
		Unit:      it.Unit,
		Quantity:  it.Quantity,
	}
	if it.Warning != nil {
		out.Warning = it.Warning.Error()
	}
	return out
}

func toPantryItemResponses(items []domain.PantryItem) []PantryItemResponse {
	out := make([]PantryItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toPantryItemResponse(it))
	}
	return out
}

func toRecipeResponse(r domain.Recipe) RecipeResponse {
	lines := make([]IngredientResponse, 0, len(r.Ingredients))
	for _, l := range r.Ingredients {
		lines = append(lines, IngredientResponse{
			ProductID: l.ProductID,
			Name:      l.ProductName,
			Unit:      l.Unit,
			Quantity:  l.Quantity,
		})
	}
	return RecipeResponse{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Ingredients: lines,
	}
}

func toRecipeResponses(rs []domain.Recipe) []RecipeResponse {
	out := make([]RecipeResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, toRecipeResponse(r))
	}
	return out
}

func toMatchResponses(ms []domain.RecipeMatch) []RecipeMatchResponse {
	out := make([]RecipeMatchResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, RecipeMatchResponse{Recipe: toRecipeResponse(m.Recipe), Score: m.Score})
	}
	return out
}

func (req CreateRecipeRequest) toInput() service.RecipeInput {
	in := service.RecipeInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Ingredients: make([]service.IngredientInput, 0, len(req.Ingredients)),
	}
	for _, ing := range req.Ingredients {
		in.Ingredients = append(in.Ingredients, service.IngredientInput{Name: ing.Name, Unit: ing.Unit, Quantity: ing.Quantity})
	}
	return in
}
