package authtest

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/jrsteele09/go-rental-session/token/jwt"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyVerified stores the verified access token
const ContextKeyVerified ContextKey = "verified"

// VerifiedFromContext returns the token verified by RequireAuth
func VerifiedFromContext(ctx context.Context) *jwt.Verified {
	v, _ := ctx.Value(ContextKeyVerified).(*jwt.Verified)
	if v == nil {
		return &jwt.Verified{}
	}
	return v
}

// RequireAuth validates a Bearer access token
func (b *Backend) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if b.rejectAlways.Load() {
			writeError(w, http.StatusUnauthorized, "Invalid token", "rejected")
			return
		}

		raw, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Missing Authorization header", "")
			return
		}

		verified, err := b.inspector.Verify(raw, jwt.TypeAccess)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token", err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyVerified, verified)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LoggingMiddleware logs the method, path and status of each request
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Info().
			Str("method", colourMethod(r.Method)).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("Request")
	})
}

func bearerToken(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func colourMethod(method string) string {
	colour, ok := methodColours[method]
	if !ok {
		colour = gray
	}
	return fmt.Sprintf("%s%-7s%s", colour, method, resetColour)
}
