package jwt

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-rental-session/token/keys"
	"github.com/jrsteele09/go-rental-session/users"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Identity is encoded as JSON into the sub claim, matching the marketplace back end
type Identity struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Creator handles JWT token creation for access and refresh tokens
type Creator struct {
	signer     keys.Signer
	accessTTL  time.Duration
	refreshTTL time.Duration
	lock       sync.RWMutex
}

// NewCreator creates a new JWT creator
func NewCreator(signer keys.Signer, accessTTL, refreshTTL time.Duration) *Creator {
	return &Creator{
		signer:     signer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// SetAccessTTL changes the lifetime of tokens issued from now on
func (c *Creator) SetAccessTTL(ttl time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.accessTTL = ttl
}

func (c *Creator) ttl(tokenType string) time.Duration {
	c.lock.RLock()
	defer c.lock.RUnlock()
	if tokenType == TypeRefresh {
		return c.refreshTTL
	}
	return c.accessTTL
}

// CreateAccessToken creates a short-lived access token for the user
func (c *Creator) CreateAccessToken(user *users.User) (string, error) {
	return c.create(user, TypeAccess)
}

// CreateRefreshToken creates a long-lived refresh token for the user
func (c *Creator) CreateRefreshToken(user *users.User) (string, error) {
	return c.create(user, TypeRefresh)
}

// RefreshAccessToken issues a new access token for the identity held by a verified refresh token
func (c *Creator) RefreshAccessToken(id Identity) (string, error) {
	return c.create(&users.User{ID: id.UserID, Username: id.Username, Role: users.RoleType(id.Role)}, TypeAccess)
}

func (c *Creator) create(user *users.User, tokenType string) (string, error) {
	sub, err := json.Marshal(Identity{UserID: user.ID, Username: user.Username, Role: string(user.Role)})
	if err != nil {
		return "", fmt.Errorf("failed to encode identity: %w", err)
	}

	now := NowTimeFunc()
	claims := jwtlib.MapClaims{
		"sub":      string(sub),
		"username": user.Username,
		"role":     string(user.Role),
		"type":     tokenType,
		"iat":      now.Unix(),
		"exp":      now.Add(c.ttl(tokenType)).Unix(),
		"jti":      uuid.New().String(),
	}

	signed, err := c.signer.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return signed, nil
}
