package authtest

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jrsteele09/go-rental-session/authapi"
)

// Start serves a new Backend on a local listener for the duration of the test
func Start(tb testing.TB, options ...Option) (*Backend, *httptest.Server) {
	tb.Helper()
	b := New(options...)
	srv := httptest.NewServer(b.Handler())
	tb.Cleanup(srv.Close)
	return b, srv
}

// NewStubServer answers every login with the given tokens and user role,
// for exercising responses a real backend would not produce.
func NewStubServer(tb testing.TB, accessToken, refreshToken, userRole string) *httptest.Server {
	tb.Helper()
	r := chi.NewRouter()
	r.Post(authapi.RouteLogin, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, authResponse{
			Message: "Login successful",
			User:    authapi.User{ID: "1", Username: "stub", Role: userRole},
			Tokens:  tokens{AccessToken: accessToken, RefreshToken: refreshToken},
		})
	})
	srv := httptest.NewServer(r)
	tb.Cleanup(srv.Close)
	return srv
}
