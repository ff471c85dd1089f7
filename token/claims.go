package token

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-rental-session/internal/errors"
	"github.com/jrsteele09/go-rental-session/internal/utils"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Claims holds the access token fields the client needs. Signatures are not
// verified here; the server remains the authority on token validity.
type Claims struct {
	Subject   string
	UserID    string
	Username  string
	Role      string // raw role claim, may not be a valid role
	Type      string // "access" or "refresh" when the issuer sets it
	ID        string // jti
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// identity is the JSON document some issuers encode into the sub claim
type identity struct {
	UserID   any    `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Decode reads the claims of a JWT without verifying its signature. A token
// without an exp claim is rejected.
func Decode(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "empty token")
	}

	parsed, _, err := jwtlib.NewParser().ParseUnverified(raw, jwtlib.MapClaims{})
	if err != nil {
		return nil, apperrors.Wrapf(errors.Join(apperrors.ErrInvalidToken, err), "parse token")
	}

	mapClaims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "error extracting claims")
	}

	exp, err := mapClaims.GetExpirationTime()
	if err != nil {
		return nil, apperrors.Wrapf(errors.Join(apperrors.ErrInvalidToken, err), "exp claim")
	}
	if exp == nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidToken, "token missing exp claim")
	}

	c := &Claims{ExpiresAt: exp.Time}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.Time
	}
	c.Subject, _ = mapClaims["sub"].(string)
	c.Username, _ = mapClaims["username"].(string)
	c.Role, _ = mapClaims["role"].(string)
	c.Type, _ = mapClaims["type"].(string)
	c.ID, _ = mapClaims["jti"].(string)

	// The marketplace back end packs user_id, username and role into a JSON sub
	if strings.HasPrefix(c.Subject, "{") {
		var id identity
		if err := json.Unmarshal([]byte(c.Subject), &id); err == nil {
			c.UserID = idString(id.UserID)
			if c.Username == "" {
				c.Username = id.Username
			}
			if c.Role == "" {
				c.Role = id.Role
			}
		}
	} else {
		c.UserID = c.Subject
	}

	if c.Role == "" {
		if roles, ok := mapClaims["roles"].([]any); ok {
			if names := utils.Strings(roles); len(names) > 0 {
				c.Role = names[0]
			}
		}
	}

	return c, nil
}

// Remaining returns the lifetime left on the token at the current time
func (c *Claims) Remaining() time.Duration {
	return c.ExpiresAt.Sub(NowTimeFunc())
}

func idString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return ""
	}
}
