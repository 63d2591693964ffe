package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/rl1809/pantry/internal/adapter/memory"
	"github.com/rl1809/pantry/internal/core/service"
)

type HTTPHandlerSuite struct {
	suite.Suite
	fx     fixture
	router http.Handler
}

func TestHTTPHandlerSuite(t *testing.T) {
	suite.Run(t, new(HTTPHandlerSuite))
}

func (s *HTTPHandlerSuite) SetupTest() {
	s.fx = newFixture(s.T())
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("# metrics"))
	})
	s.router = NewHTTPHandler(s.fx.svc, nil, 0).Router(metrics)
}

func (s *HTTPHandlerSuite) do(method, path, user string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			s.Require().NoError(json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if user != "" {
		req.Header.Set(UserHeader, user)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (s *HTTPHandlerSuite) TestHealthAndMetrics() {
	rec := s.do(http.MethodGet, "/health", "", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"status":"ok"}`, rec.Body.String())

	rec = s.do(http.MethodGet, "/metrics", "", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "# metrics")
}

func (s *HTTPHandlerSuite) TestResolveProduct() {
	rec := s.do(http.MethodPost, "/api/products/resolve", "", ResolveProductRequest{Name: "Olive Oil", Unit: "ml"})
	s.Require().Equal(http.StatusCreated, rec.Code)
	first := decodeBody[ProductResponse](s.T(), rec)
	s.Equal("olive oil", first.Name)
	s.True(first.Created)

	rec = s.do(http.MethodPost, "/api/products/resolve", "", ResolveProductRequest{Name: "olive  oil"})
	s.Require().Equal(http.StatusOK, rec.Code)
	second := decodeBody[ProductResponse](s.T(), rec)
	s.Equal(first.ID, second.ID)
	s.False(second.Created)

	rec = s.do(http.MethodPost, "/api/products/resolve", "", ResolveProductRequest{Name: " "})
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HTTPHandlerSuite) TestPantryLifecycle() {
	rec := s.do(http.MethodPost, "/api/pantry", testUserID, `{"name":"Milk","unit":"l","quantity":"1.0"}`)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/pantry", testUserID, `{"name":"milk","unit":"l","quantity":0.5}`)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	item := decodeBody[PantryItemResponse](s.T(), rec)
	s.True(item.Quantity.Equal(decimal.RequireFromString("1.5")), item.Quantity.String())

	rec = s.do(http.MethodPut, "/api/pantry/"+item.ProductID, testUserID, `{"quantity":"3"}`)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/pantry", testUserID, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	list := decodeBody[ListItemsResponse](s.T(), rec)
	s.Require().Len(list.Items, 1)
	s.True(list.Items[0].Quantity.Equal(decimal.NewFromInt(3)))

	rec = s.do(http.MethodDelete, "/api/pantry/"+item.ProductID, testUserID, nil)
	s.Equal(http.StatusNoContent, rec.Code)
	rec = s.do(http.MethodDelete, "/api/pantry/"+item.ProductID, testUserID, nil)
	s.Equal(http.StatusNoContent, rec.Code)
}

func (s *HTTPHandlerSuite) TestErrorMapping() {
	rec := s.do(http.MethodPost, "/api/pantry", testUserID, `{"name":"milk","unit":"l","quantity":"1"}`)
	s.Require().Equal(http.StatusOK, rec.Code)

	tests := []struct {
		name   string
		method string
		path   string
		user   string
		body   any
		want   int
	}{
		{"unit mismatch", http.MethodPost, "/api/pantry", testUserID, `{"name":"milk","unit":"kg","quantity":"1"}`, http.StatusConflict},
		{"non-positive quantity", http.MethodPost, "/api/pantry", testUserID, `{"name":"milk","unit":"l","quantity":"0"}`, http.StatusBadRequest},
		{"quantity finer than stored scale", http.MethodPost, "/api/pantry", testUserID, `{"name":"milk","unit":"l","quantity":"0.0004"}`, http.StatusBadRequest},
		{"quantity beyond stored range", http.MethodPost, "/api/pantry", testUserID, `{"name":"milk","unit":"l","quantity":"10000000000"}`, http.StatusBadRequest},
		{"malformed body", http.MethodPost, "/api/pantry", testUserID, `{"name":`, http.StatusBadRequest},
		{"unknown user", http.MethodGet, "/api/pantry", "ghost", nil, http.StatusNotFound},
		{"missing user header", http.MethodGet, "/api/pantry", "", nil, http.StatusUnauthorized},
		{"update missing item", http.MethodPut, "/api/pantry/nope", testUserID, `{"quantity":"1"}`, http.StatusNotFound},
		{"unknown recipe", http.MethodGet, "/api/recipes/nope", "", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			rec := s.do(tt.method, tt.path, tt.user, tt.body)
			s.Equal(tt.want, rec.Code, rec.Body.String())
		})
	}

	rec = s.do(http.MethodPost, "/api/pantry", testUserID, `{"name":"milk","unit":"kg","quantity":"1"}`)
	body := decodeBody[ErrorResponse](s.T(), rec)
	s.Equal("l", body.ExpectedUnit)
}

func TestPantryAddReportsIndexWarning(t *testing.T) {
	fx := newFixtureWithIndex(t, unavailableIndex{memory.NewSearchIndex()})
	router := NewHTTPHandler(fx.svc, nil, 0).Router(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/pantry", strings.NewReader(`{"name":"saffron","unit":"g","quantity":"0.5"}`))
	req.Header.Set(UserHeader, testUserID)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	item := decodeBody[PantryItemResponse](t, rec)
	assert.Equal(t, "saffron", item.Name)
	assert.True(t, item.Quantity.Equal(decimal.RequireFromString("0.5")))
	assert.Contains(t, item.Warning, "search index unavailable")
}

func (s *HTTPHandlerSuite) TestRecipesMatchesAndFavorites() {
	rec := s.do(http.MethodPost, "/api/recipes", "", CreateRecipeRequest{
		Title:    "Pancakes",
		Category: "breakfast",
		Ingredients: []IngredientRequest{
			{Name: "flour", Unit: "g", Quantity: decimal.NewFromInt(200)},
			{Name: "eggs", Unit: "pcs", Quantity: decimal.NewFromInt(2)},
		},
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	pancakes := decodeBody[RecipeResponse](s.T(), rec)
	s.Len(pancakes.Ingredients, 2)

	s.fx.createRecipe(s.T(), "Salad", service.IngredientInput{Name: "cucumber", Unit: "pcs", Quantity: decimal.NewFromInt(1)})

	rec = s.do(http.MethodGet, "/api/recipes?category=breakfast", "", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Len(decodeBody[[]RecipeResponse](s.T(), rec), 1)

	rec = s.do(http.MethodGet, "/api/recipes/matches", testUserID, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Empty(decodeBody[MatchRecipesResponse](s.T(), rec).Matches)

	s.do(http.MethodPost, "/api/pantry", testUserID, `{"name":"flour","unit":"g","quantity":"500"}`)
	s.do(http.MethodPost, "/api/pantry", testUserID, `{"name":"eggs","unit":"pcs","quantity":"1"}`)

	rec = s.do(http.MethodGet, "/api/recipes/matches", testUserID, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	matches := decodeBody[MatchRecipesResponse](s.T(), rec).Matches
	s.Require().Len(matches, 1)
	s.Equal(pancakes.ID, matches[0].Recipe.ID)
	s.InDelta(1.5, matches[0].Score, 1e-9)

	rec = s.do(http.MethodPost, "/api/recipes/"+pancakes.ID+"/favorites", testUserID, nil)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	rec = s.do(http.MethodGet, "/api/favorites", testUserID, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Len(decodeBody[[]RecipeResponse](s.T(), rec), 1)

	rec = s.do(http.MethodDelete, "/api/recipes/"+pancakes.ID+"/favorites", testUserID, nil)
	s.Equal(http.StatusNoContent, rec.Code)
	rec = s.do(http.MethodGet, "/api/favorites", testUserID, nil)
	s.Empty(decodeBody[[]RecipeResponse](s.T(), rec))

	rec = s.do(http.MethodPost, "/api/recipes/nope/favorites", testUserID, nil)
	assert.Equal(s.T(), http.StatusNotFound, rec.Code)
}
