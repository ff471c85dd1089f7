package authtest_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/go-rental-session/authapi"
	"github.com/jrsteele09/go-rental-session/authtest"
	apperrors "github.com/jrsteele09/go-rental-session/internal/errors"
	"github.com/jrsteele09/go-rental-session/token"
	"github.com/jrsteele09/go-rental-session/users"
	"github.com/stretchr/testify/require"
)

func TestBackend(t *testing.T) {
	ctx := context.Background()
	backend, srv := authtest.Start(t)
	client := authapi.New(srv.URL, srv.Client())

	registered, err := client.Register(ctx, authapi.RegisterRequest{
		Username: "lena",
		Email:    "lena@example.com",
		Password: "secret1",
		Role:     "landlord",
	})
	require.NoError(t, err)
	require.Equal(t, "landlord", registered.User.Role)

	claims, err := token.Decode(registered.Tokens.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "landlord", claims.Role)
	require.Equal(t, "lena", claims.Username)

	t.Run("duplicate registration", func(t *testing.T) {
		_, err := client.Register(ctx, authapi.RegisterRequest{Username: "lena", Email: "lena@example.com", Password: "secret1"})
		var apiErr *authapi.APIError
		require.True(t, apperrors.As(err, &apiErr))
		require.Equal(t, http.StatusConflict, apiErr.StatusCode)
	})

	t.Run("login", func(t *testing.T) {
		result, err := client.Login(ctx, "LENA@example.com", "secret1")
		require.NoError(t, err)
		require.Equal(t, "lena", result.User.Username)

		_, err = client.Login(ctx, "lena@example.com", "wrong-password")
		require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("refresh", func(t *testing.T) {
		before := backend.RefreshCalls()
		accessToken, err := client.Refresh(ctx, registered.Tokens.RefreshToken)
		require.NoError(t, err)
		require.NotEmpty(t, accessToken)
		require.Equal(t, before+1, backend.RefreshCalls())

		_, err = client.Refresh(ctx, registered.Tokens.AccessToken)
		require.ErrorIs(t, err, apperrors.ErrRefreshRejected)

		backend.FailRefresh(true)
		_, err = client.Refresh(ctx, registered.Tokens.RefreshToken)
		require.ErrorIs(t, err, apperrors.ErrRefreshRejected)
		backend.FailRefresh(false)
	})

	t.Run("logout revokes the access token", func(t *testing.T) {
		result, err := client.Login(ctx, "lena@example.com", "secret1")
		require.NoError(t, err)

		require.NoError(t, client.Logout(ctx, result.Tokens.AccessToken))
		require.Error(t, client.Logout(ctx, result.Tokens.AccessToken))
	})
}

func TestBackend_ProtectedRoutes(t *testing.T) {
	backend, srv := authtest.Start(t)
	user, err := backend.AddUser("omar", "omar@example.com", "secret1", users.RoleTenant)
	require.NoError(t, err)
	accessToken, _, err := backend.IssueTokens(user)
	require.NoError(t, err)

	get := func(path, bearer string) *http.Response {
		req, err := http.NewRequest(http.MethodGet, srv.URL+path, nil)
		require.NoError(t, err)
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}
		resp, err := srv.Client().Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { _ = resp.Body.Close() })
		return resp
	}

	require.Equal(t, http.StatusUnauthorized, get("/api/properties", "").StatusCode)
	require.Equal(t, http.StatusOK, get("/api/properties", accessToken).StatusCode)
	require.Equal(t, http.StatusOK, get(authapi.RouteMe, accessToken).StatusCode)

	backend.RejectAlways(true)
	require.Equal(t, http.StatusUnauthorized, get("/api/properties", accessToken).StatusCode)
	backend.RejectAlways(false)

	backend.SetAccessTTL(-time.Minute)
	expired, _, err := backend.IssueTokens(user)
	require.NoError(t, err)
	require.True(t, token.IsExpired(expired))
	require.Equal(t, http.StatusUnauthorized, get("/api/properties", expired).StatusCode)
}

func TestBackend_CORS(t *testing.T) {
	backend := authtest.New(
		authtest.WithAllowedOrigins("http://app.example"),
		authtest.WithCORS([]string{"GET", "POST"}, []string{"X-Custom"}),
	)

	preflight := func(method, headers string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, authapi.RouteMe, nil)
		req.Header.Set("Origin", "http://app.example")
		req.Header.Set("Access-Control-Request-Method", method)
		if headers != "" {
			req.Header.Set("Access-Control-Request-Headers", headers)
		}
		rec := httptest.NewRecorder()
		backend.Handler().ServeHTTP(rec, req)
		return rec
	}

	t.Run("configured method and header", func(t *testing.T) {
		rec := preflight(http.MethodGet, "X-Custom")
		require.Equal(t, "http://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "GET", rec.Header().Get("Access-Control-Allow-Methods"))
		require.Equal(t, "X-Custom", rec.Header().Get("Access-Control-Allow-Headers"))
	})

	t.Run("method outside the list", func(t *testing.T) {
		rec := preflight(http.MethodDelete, "")
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("defaults allow authorization", func(t *testing.T) {
		backend = authtest.New(authtest.WithAllowedOrigins("http://app.example"), authtest.WithCORS(nil, nil))
		rec := preflight(http.MethodDelete, "Authorization")
		require.Equal(t, "DELETE", rec.Header().Get("Access-Control-Allow-Methods"))
		require.Equal(t, "Authorization", rec.Header().Get("Access-Control-Allow-Headers"))
	})
}
