package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rl1809/pantry/internal/config"
)

func newMemoryApp(t *testing.T) *App {
	t.Helper()
	v := viper.New()
	v.Set("store", "memory")
	cfg, err := config.Load(v)
	require.NoError(t, err)

	a, err := New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestMemoryAppServesDemoUser(t *testing.T) {
	a := newMemoryApp(t)
	router := a.HTTPHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/pantry", strings.NewReader(`{"name":"rice","unit":"g","quantity":"250"}`))
	req.Header.Set("X-User-ID", DemoUserID)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pantry_product_resolutions_total")
	assert.Contains(t, rec.Body.String(), "pantry_writes_total")
}

func TestEnsureUserIsIdempotent(t *testing.T) {
	ctx := context.Background()
	a := newMemoryApp(t)

	first, err := a.EnsureUser(ctx, "chef@example.com", "Chef")
	require.NoError(t, err)
	second, err := a.EnsureUser(ctx, "chef@example.com", "Someone Else")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	demo, err := a.EnsureUser(ctx, "demo@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, DemoUserID, demo.ID)
}

func TestSeedRecipesThenMatch(t *testing.T) {
	ctx := context.Background()
	a := newMemoryApp(t)

	created, err := a.Generator.Generate(ctx, 20)
	require.NoError(t, err)
	require.Len(t, created, 20)

	first := created[0].Ingredients[0]
	_, err = a.Services.Pantry.Add(ctx, DemoUserID, first.ProductName, first.Unit, first.Quantity)
	require.NoError(t, err)

	matches, err := a.Services.Recipes.MatchRecipes(ctx, DemoUserID, "")
	require.NoError(t, err)
	assert.NotEmpty(t, matches)
	assert.LessOrEqual(t, len(matches), a.Config.Match.TopN)
}
