package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/rl1809/pantry/internal/core/domain"
	"github.com/rl1809/pantry/internal/core/service"
)

// UserHeader carries the caller's user ID, set by the gateway in front of the service.
const UserHeader = "X-User-ID"

type ctxKey int

const userIDKey ctxKey = iota

// Services bundles the core operations exposed by the transports.
type Services struct {
	Resolver  service.Resolver
	Pantry    *service.PantryService
	Recipes   *service.RecipeService
	Favorites *service.FavoriteService
}

type HTTPHandler struct {
	svc     Services
	logger  *zap.Logger
	timeout time.Duration
}

type ErrorResponse struct {
	Error        string `json:"error"`
	ExpectedUnit string `json:"expected_unit,omitempty"`
}

func NewHTTPHandler(svc Services, logger *zap.Logger, timeout time.Duration) *HTTPHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPHandler{svc: svc, logger: logger, timeout: timeout}
}

// Router mounts the API. metrics may be nil.
func (h *HTTPHandler) Router(metrics http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Get("/health", h.HealthCheck)
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	r.Route("/api", func(r chi.Router) {
		if h.timeout > 0 {
			r.Use(middleware.Timeout(h.timeout))
		}
		r.Post("/products/resolve", h.ResolveProduct)
		r.Get("/recipes", h.ListRecipes)
		r.Post("/recipes", h.CreateRecipe)
		r.Get("/recipes/{recipeID}", h.GetRecipe)

		r.Group(func(r chi.Router) {
			r.Use(requireUserHeader)
			r.Get("/pantry", h.ListPantry)
			r.Post("/pantry", h.AddPantryItem)
			r.Put("/pantry/{productID}", h.UpdatePantryItem)
			r.Delete("/pantry/{productID}", h.DeletePantryItem)
			r.Get("/recipes/matches", h.MatchRecipes)
			r.Get("/favorites", h.ListFavorites)
			r.Post("/recipes/{recipeID}/favorites", h.AddFavorite)
			r.Delete("/recipes/{recipeID}/favorites", h.RemoveFavorite)
		})
	})
	return r
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) ResolveProduct(w http.ResponseWriter, r *http.Request) {
	var req ResolveProductRequest
	if !h.decode(w, r, &req) {
		return
	}
	res, err := h.svc.Resolver.Resolve(r.Context(), req.Name, req.Unit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, toProductResponse(res))
}

func (h *HTTPHandler) ListPantry(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Pantry.List(r.Context(), userID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ListItemsResponse{Items: toPantryItemResponses(items)})
}

func (h *HTTPHandler) AddPantryItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if !h.decode(w, r, &req) {
		return
	}
	item, err := h.svc.Pantry.Add(r.Context(), userID(r.Context()), req.Name, req.Unit, req.Quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPantryItemResponse(item))
}

func (h *HTTPHandler) UpdatePantryItem(w http.ResponseWriter, r *http.Request) {
	var req UpdateItemRequest
	if !h.decode(w, r, &req) {
		return
	}
	item, err := h.svc.Pantry.Update(r.Context(), userID(r.Context()), chi.URLParam(r, "productID"), req.Quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPantryItemResponse(item))
}

func (h *HTTPHandler) DeletePantryItem(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Pantry.Delete(r.Context(), userID(r.Context()), chi.URLParam(r, "productID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) ListRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.svc.Recipes.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecipeResponses(recipes))
}

func (h *HTTPHandler) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	var req CreateRecipeRequest
	if !h.decode(w, r, &req) {
		return
	}
	recipe, err := h.svc.Recipes.Create(r.Context(), req.toInput())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRecipeResponse(recipe))
}

func (h *HTTPHandler) GetRecipe(w http.ResponseWriter, r *http.Request) {
	recipe, err := h.svc.Recipes.Get(r.Context(), chi.URLParam(r, "recipeID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecipeResponse(recipe))
}

func (h *HTTPHandler) MatchRecipes(w http.ResponseWriter, r *http.Request) {
	matches, err := h.svc.Recipes.MatchRecipes(r.Context(), userID(r.Context()), r.URL.Query().Get("category"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MatchRecipesResponse{Matches: toMatchResponses(matches)})
}

func (h *HTTPHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.svc.Favorites.List(r.Context(), userID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecipeResponses(recipes))
}

func (h *HTTPHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	recipe, err := h.svc.Favorites.Add(r.Context(), userID(r.Context()), chi.URLParam(r, "recipeID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRecipeResponse(recipe))
}

func (h *HTTPHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Favorites.Remove(r.Context(), userID(r.Context()), chi.URLParam(r, "recipeID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var mismatch *domain.UnitMismatchError
	switch {
	case errors.As(err, &mismatch):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error(), ExpectedUnit: mismatch.Expected})
	case errors.Is(err, domain.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	default:
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

func (h *HTTPHandler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func requireUserHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(UserHeader)
		if id == "" {
			writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing " + UserHeader + " header"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, id)))
	})
}

func userID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
