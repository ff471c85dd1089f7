package authapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	apperrors "github.com/jrsteele09/go-rental-session/internal/errors"
	"github.com/jrsteele09/go-rental-session/internal/utils"
)

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"` // tenant when omitted
}

// UserID accepts both numeric and string identifiers
type UserID string

func (id *UserID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	*id = UserID(n.String())
	return nil
}

// User is the profile returned alongside tokens and by /auth/me
type User struct {
	ID        UserID `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"` // may be absent or invalid; see token.ResolveRole
	CreatedAt string `json:"created_at,omitempty"`
}

// TokenPair is a validated access/refresh pair
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// LoginResult is a validated login or registration response
type LoginResult struct {
	Message string
	Tokens  TokenPair
	User    User
}

// loginResponse is the wire shape; pointers distinguish absent from empty
type loginResponse struct {
	Message *string `json:"message,omitempty"`
	Tokens  *struct {
		AccessToken  *string `json:"access_token,omitempty"`
		RefreshToken *string `json:"refresh_token,omitempty"`
	} `json:"tokens,omitempty"`
	User *struct {
		ID        UserID  `json:"id"`
		Username  *string `json:"username,omitempty"`
		Email     *string `json:"email,omitempty"`
		Role      *string `json:"role,omitempty"`
		CreatedAt *string `json:"created_at,omitempty"`
	} `json:"user,omitempty"`
}

func (r *loginResponse) validate() (*LoginResult, error) {
	if r.Tokens == nil {
		return nil, apperrors.MissingField("tokens")
	}
	if utils.Value(r.Tokens.AccessToken) == "" {
		return nil, apperrors.MissingField("tokens.access_token")
	}
	if utils.Value(r.Tokens.RefreshToken) == "" {
		return nil, apperrors.MissingField("tokens.refresh_token")
	}
	if r.User == nil {
		return nil, apperrors.MissingField("user")
	}
	if utils.Value(r.User.Username) == "" {
		return nil, apperrors.MissingField("user.username")
	}

	return &LoginResult{
		Message: utils.Value(r.Message),
		Tokens: TokenPair{
			AccessToken:  *r.Tokens.AccessToken,
			RefreshToken: *r.Tokens.RefreshToken,
		},
		User: User{
			ID:        r.User.ID,
			Username:  *r.User.Username,
			Email:     utils.Value(r.User.Email),
			Role:      utils.Value(r.User.Role),
			CreatedAt: utils.Value(r.User.CreatedAt),
		},
	}, nil
}

// refreshResponse is the wire shape of POST /auth/refresh
type refreshResponse struct {
	AccessToken *string `json:"access_token,omitempty"`
}

func (r *refreshResponse) validate() (string, error) {
	if utils.Value(r.AccessToken) == "" {
		return "", apperrors.MissingField("access_token")
	}
	return *r.AccessToken, nil
}

// profileResponse is the wire shape of GET /auth/me
type profileResponse struct {
	User *User `json:"user,omitempty"`
}

// DecodeProfile validates a /auth/me response body
func DecodeProfile(body []byte) (*User, error) {
	var r profileResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, &apperrors.DecodeError{Field: "body", Reason: "invalid json", Err: err}
	}
	if r.User == nil {
		return nil, apperrors.MissingField("user")
	}
	if r.User.Username == "" {
		return nil, apperrors.MissingField("user.username")
	}
	return r.User, nil
}

// errorResponse is the error body the API returns on failure
type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// APIError is a non-2xx response from the auth API
type APIError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "request failed"
	}
	if e.Details != "" {
		return fmt.Sprintf("auth api: %d %s (%s)", e.StatusCode, msg, e.Details)
	}
	return fmt.Sprintf("auth api: %d %s", e.StatusCode, msg)
}
