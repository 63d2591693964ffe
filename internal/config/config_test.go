package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Store)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, ":50051", cfg.GRPC.Addr)
	assert.Equal(t, 5, cfg.Match.TopN)
	assert.Equal(t, "products_idx", cfg.Search.Index)
	assert.Equal(t, 5*time.Second, cfg.Request.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.MySQL.ConnMaxLifetime)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PANTRY_MATCH_TOP_N", "10")
	t.Setenv("PANTRY_STORE", "memory")
	t.Setenv("PANTRY_SEARCH_LANGUAGE", "russian")
	t.Setenv("PANTRY_REQUEST_TIMEOUT", "250ms")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Match.TopN)
	assert.Equal(t, "memory", cfg.Store)
	assert.Equal(t, "russian", cfg.Search.Language)
	assert.Equal(t, 250*time.Millisecond, cfg.Request.Timeout)
}

func TestLoad_ExplicitValueWins(t *testing.T) {
	t.Setenv("PANTRY_HTTP_ADDR", ":9000")

	v := viper.New()
	v.Set("http.addr", ":7000")

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.HTTP.Addr)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"zero top n", map[string]string{"PANTRY_MATCH_TOP_N": "0"}},
		{"unknown store", map[string]string{"PANTRY_STORE": "cassandra"}},
		{"non-positive timeout", map[string]string{"PANTRY_REQUEST_TIMEOUT": "-1s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, val := range tt.env {
				t.Setenv(k, val)
			}
			_, err := Load(viper.New())
			assert.Error(t, err)
		})
	}
}
