package authtest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-rental-session/authapi"
	apperrors "github.com/jrsteele09/go-rental-session/internal/errors"
	"github.com/jrsteele09/go-rental-session/token/jwt"
	"github.com/jrsteele09/go-rental-session/users"
	"github.com/rs/zerolog/log"
)

var errUserExists = errors.New("user already exists")

type authResponse struct {
	Message string       `json:"message"`
	User    authapi.User `json:"user"`
	Tokens  tokens       `json:"tokens"`
}

type tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (b *Backend) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req authapi.RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
			return
		}

		role := users.DefaultRole
		if req.Role != "" {
			parsed, err := users.ParseRole(req.Role)
			if err != nil {
				writeError(w, http.StatusBadRequest, "Validation failed", err.Error())
				return
			}
			role = parsed
		}

		user, err := b.createUser(req.Username, req.Email, req.Password, role)
		switch {
		case errors.Is(err, errUserExists):
			writeError(w, http.StatusConflict, "User already exists", err.Error())
			return
		case err != nil:
			writeError(w, http.StatusBadRequest, "Validation failed", err.Error())
			return
		}

		b.writeTokens(w, http.StatusCreated, "User registered successfully", user)
	}
}

func (b *Backend) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req authapi.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
			return
		}
		if req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "Email and password are required", "")
			return
		}

		user, err := b.users.GetByEmail(req.Email)
		if err != nil || !users.CheckPasswordHash(req.Password, user.PasswordHash) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials", "")
			return
		}

		b.writeTokens(w, http.StatusOK, "Login successful", user)
	}
}

func (b *Backend) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.refreshCalls.Add(1)
		if b.failRefresh.Load() {
			writeError(w, http.StatusUnauthorized, "Invalid refresh token", "refresh disabled")
			return
		}

		raw, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Missing refresh token", "")
			return
		}
		verified, err := b.inspector.Verify(raw, jwt.TypeRefresh)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid refresh token", err.Error())
			return
		}
		if _, err := b.users.GetByID(verified.Identity.UserID); err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid refresh token", "user no longer exists")
			return
		}

		accessToken, err := b.creator.RefreshAccessToken(verified.Identity)
		if err != nil {
			log.Err(err).Msg("Failed to issue access token")
			writeError(w, http.StatusInternalServerError, "Token refresh failed", "")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"access_token": accessToken})
	}
}

func (b *Backend) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		verified := VerifiedFromContext(r.Context())
		b.revoked.Add(verified.ID, verified.ExpiresAt)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully logged out"})
	}
}

func (b *Backend) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := b.users.GetByID(VerifiedFromContext(r.Context()).Identity.UserID)
		if err != nil {
			writeError(w, http.StatusNotFound, "User not found", "")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user": wireUser(user)})
	}
}

func (b *Backend) ValidateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := VerifiedFromContext(r.Context()).Identity
		writeJSON(w, http.StatusOK, map[string]any{
			"valid": true,
			"user":  id,
		})
	}
}

func (b *Backend) DeleteAccountHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		verified := VerifiedFromContext(r.Context())
		if err := b.users.Delete(verified.Identity.UserID); err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				writeError(w, http.StatusNotFound, "User not found", "")
				return
			}
			writeError(w, http.StatusInternalServerError, "Failed to delete account", err.Error())
			return
		}
		b.revoked.Add(verified.ID, verified.ExpiresAt)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Account deleted successfully"})
	}
}

// EchoHandler answers any /api/* request with what it received
func (b *Backend) EchoHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		id := VerifiedFromContext(r.Context()).Identity
		writeJSON(w, http.StatusOK, map[string]any{
			"method":       r.Method,
			"path":         r.URL.Path,
			"user_id":      id.UserID,
			"role":         id.Role,
			"content_type": r.Header.Get("Content-Type"),
			"request_id":   r.Header.Get("X-Request-ID"),
			"body":         string(body),
		})
	}
}

func (b *Backend) createUser(username, email, password string, role users.RoleType) (*users.User, error) {
	if err := users.ValidateRegistration(username, email, password); err != nil {
		return nil, err
	}
	if _, err := b.users.GetByEmail(email); err == nil {
		return nil, errUserExists
	}
	if _, err := b.users.GetByUsername(username); err == nil {
		return nil, errUserExists
	}

	hash, err := users.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &users.User{
		Email:        users.NormalizeEmail(email),
		Username:     strings.TrimSpace(username),
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    jwt.NowTimeFunc().UTC(),
	}
	if err := b.users.Upsert(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (b *Backend) writeTokens(w http.ResponseWriter, status int, message string, user *users.User) {
	accessToken, refreshToken, err := b.IssueTokens(user)
	if err != nil {
		log.Err(err).Str("username", user.Username).Msg("Failed to issue tokens")
		writeError(w, http.StatusInternalServerError, "Token generation failed", "")
		return
	}
	writeJSON(w, status, authResponse{
		Message: message,
		User:    wireUser(user),
		Tokens:  tokens{AccessToken: accessToken, RefreshToken: refreshToken},
	})
}

func wireUser(user *users.User) authapi.User {
	return authapi.User{
		ID:        authapi.UserID(user.ID),
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role.String(),
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("Failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, errorBody{Error: message, Details: details})
}
