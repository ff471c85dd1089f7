package authapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/go-rental-session/authapi"
	apperrors "github.com/jrsteele09/go-rental-session/internal/errors"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, handler http.HandlerFunc) *authapi.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return authapi.New(srv.URL, srv.Client())
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestLogin(t *testing.T) {
	t.Run("valid response", func(t *testing.T) {
		client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, authapi.RouteLogin, r.URL.Path)
			require.Equal(t, http.MethodPost, r.Method)

			var req authapi.LoginRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, "amy@example.com", req.Email)
			require.Equal(t, "secret1", req.Password)

			writeJSON(w, http.StatusOK, `{
				"message": "Login successful",
				"user": {"id": 7, "username": "amy", "email": "amy@example.com", "role": "landlord"},
				"tokens": {"access_token": "acc", "refresh_token": "ref"}
			}`)
		})

		result, err := client.Login(context.Background(), "amy@example.com", "secret1")
		require.NoError(t, err)
		require.Equal(t, "acc", result.Tokens.AccessToken)
		require.Equal(t, "ref", result.Tokens.RefreshToken)
		require.Equal(t, authapi.UserID("7"), result.User.ID)
		require.Equal(t, "amy", result.User.Username)
		require.Equal(t, "landlord", result.User.Role)
		require.Equal(t, "Login successful", result.Message)
	})

	t.Run("missing refresh token", func(t *testing.T) {
		client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"user": {"id": "u1", "username": "amy"}, "tokens": {"access_token": "acc"}}`)
		})

		_, err := client.Login(context.Background(), "amy@example.com", "secret1")
		var decodeErr *apperrors.DecodeError
		require.True(t, apperrors.As(err, &decodeErr))
		require.Equal(t, "tokens.refresh_token", decodeErr.Field)
	})

	t.Run("missing user", func(t *testing.T) {
		client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"tokens": {"access_token": "acc", "refresh_token": "ref"}}`)
		})

		_, err := client.Login(context.Background(), "amy@example.com", "secret1")
		var decodeErr *apperrors.DecodeError
		require.True(t, apperrors.As(err, &decodeErr))
		require.Equal(t, "user", decodeErr.Field)
	})

	t.Run("bad credentials", func(t *testing.T) {
		client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, `{"error": "Invalid credentials"}`)
		})

		_, err := client.Login(context.Background(), "amy@example.com", "wrong")
		require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

		var apiErr *authapi.APIError
		require.True(t, apperrors.As(err, &apiErr))
		require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		require.Equal(t, "Invalid credentials", apiErr.Message)
	})

	t.Run("empty input is rejected locally", func(t *testing.T) {
		client := authapi.New("http://127.0.0.1:1", nil)
		_, err := client.Login(context.Background(), "", "")
		require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})
}

func TestRegister(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, authapi.RouteRegister, r.URL.Path)

		var req authapi.RegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Username == "taken" {
			writeJSON(w, http.StatusConflict, `{"error": "User already exists", "details": "username taken"}`)
			return
		}
		writeJSON(w, http.StatusCreated, `{
			"message": "User registered successfully",
			"user": {"id": 1, "username": "bob", "role": "tenant"},
			"tokens": {"access_token": "acc", "refresh_token": "ref"}
		}`)
	})

	result, err := client.Register(context.Background(), authapi.RegisterRequest{Username: "bob", Email: "bob@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.Equal(t, "tenant", result.User.Role)

	_, err = client.Register(context.Background(), authapi.RegisterRequest{Username: "taken", Email: "t@example.com", Password: "secret1"})
	var apiErr *authapi.APIError
	require.True(t, apperrors.As(err, &apiErr))
	require.Equal(t, http.StatusConflict, apiErr.StatusCode)
	require.Equal(t, "username taken", apiErr.Details)
}

func TestRefresh(t *testing.T) {
	t.Run("sends refresh token as bearer", func(t *testing.T) {
		client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, authapi.RouteRefresh, r.URL.Path)
			require.Equal(t, "Bearer ref", r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, `{"access_token": "new-acc"}`)
		})

		accessToken, err := client.Refresh(context.Background(), "ref")
		require.NoError(t, err)
		require.Equal(t, "new-acc", accessToken)
	})

	t.Run("non-2xx is a rejection", func(t *testing.T) {
		for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusInternalServerError} {
			client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, status, `{"error": "Invalid refresh token"}`)
			})

			_, err := client.Refresh(context.Background(), "ref")
			require.ErrorIs(t, err, apperrors.ErrRefreshRejected)
		}
	})

	t.Run("missing access token", func(t *testing.T) {
		client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{}`)
		})

		_, err := client.Refresh(context.Background(), "ref")
		var decodeErr *apperrors.DecodeError
		require.True(t, apperrors.As(err, &decodeErr))
		require.Equal(t, "access_token", decodeErr.Field)
	})

	t.Run("no refresh token", func(t *testing.T) {
		client := authapi.New("http://127.0.0.1:1", nil)
		_, err := client.Refresh(context.Background(), "")
		require.ErrorIs(t, err, apperrors.ErrNoRefreshToken)
	})
}

func TestLogout(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer acc" {
			writeJSON(w, http.StatusUnauthorized, `{"error": "Missing token"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"message": "Logged out"}`)
	})

	require.NoError(t, client.Logout(context.Background(), "acc"))
	require.Error(t, client.Logout(context.Background(), "other"))
}

func TestDecodeProfile(t *testing.T) {
	user, err := authapi.DecodeProfile([]byte(`{"user": {"id": "abc", "username": "amy", "role": "admin"}}`))
	require.NoError(t, err)
	require.Equal(t, authapi.UserID("abc"), user.ID)
	require.Equal(t, "admin", user.Role)

	_, err = authapi.DecodeProfile([]byte(`{"user": {"id": 1}}`))
	var decodeErr *apperrors.DecodeError
	require.True(t, apperrors.As(err, &decodeErr))
	require.Equal(t, "user.username", decodeErr.Field)

	_, err = authapi.DecodeProfile([]byte(`not json`))
	require.True(t, apperrors.As(err, &decodeErr))
	require.Equal(t, "body", decodeErr.Field)
}
