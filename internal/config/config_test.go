package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-rental-session/internal/config"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")

	c, err := config.New()
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8000", c.GetAPIBaseURL())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, 5*time.Minute, c.GetRefreshWindow())
	require.Equal(t, config.StoreFile, c.GetStoreType())
	require.Equal(t, ":8000", c.GetDevServerAddr())
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("http://localhost:5173"))
	require.Equal(t, "/login", c.GetLoginPath())
	require.Equal(t, []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}, c.GetAllowedMethods())
	require.Contains(t, c.GetAllowedHeaders(), "Authorization")
}

func TestNew_EnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("API_BASE_URL", "https://api.rentals.example")
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("REDIS_KEY", "custom:key")
	t.Setenv("DEVSERVER_PORT", ":9000")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("LOGIN_PATH", "/account/sign-in")
	t.Setenv("ALLOWED_METHODS", "get, post")
	t.Setenv("ALLOWED_HEADERS", "authorization,x-tenant")

	c, err := config.New()
	require.NoError(t, err)
	require.Equal(t, "https://api.rentals.example", c.GetAPIBaseURL())
	require.Equal(t, config.StoreRedis, c.GetStoreType())
	require.Equal(t, "custom:key", c.GetRedisKey())
	require.Equal(t, ":9000", c.GetDevServerAddr())
	require.Equal(t, 3*time.Second, c.GetHTTPTimeout())
	require.Equal(t, "/account/sign-in", c.GetLoginPath())
	require.Equal(t, []string{"GET", "POST"}, c.GetAllowedMethods())
	require.Equal(t, []string{"Authorization", "X-Tenant"}, c.GetAllowedHeaders())
}

func TestNew_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(path, []byte(`
api_base_url: https://staging.rentals.example
session:
  refresh_window: 2m
store:
  type: memory
`), 0o600)
	require.NoError(t, err)
	t.Setenv("CONFIG_PATH", path)

	c, err := config.New()
	require.NoError(t, err)
	require.Equal(t, "https://staging.rentals.example", c.GetAPIBaseURL())
	require.Equal(t, 2*time.Minute, c.GetRefreshWindow())
	require.Equal(t, config.StoreMemory, c.GetStoreType())
}

func TestStoreVars_UnknownTypeFallsBackToFile(t *testing.T) {
	require.Equal(t, config.StoreFile, config.StoreVars{Type: "sqlite"}.GetStoreType())
}
