package session

import "context"

// Key names a persisted session entry
type Key string

const (
	KeyAccessToken  Key = "access_token"
	KeyRefreshToken Key = "refresh_token"
	KeyRole         Key = "role"
	KeyUsername     Key = "username"
)

// Keys lists every persisted entry in a fixed order
func Keys() []Key {
	return []Key{KeyAccessToken, KeyRefreshToken, KeyRole, KeyUsername}
}

// Values is the persisted layout: four independent string entries
type Values map[Key]string

// Store persists session values. Implementations must write all entries of
// a Set together and treat Clear on an empty store as a no-op.
type Store interface {
	// Get returns the stored values, or empty Values when nothing is stored
	Get(ctx context.Context) (Values, error)

	// Set replaces every stored entry
	Set(ctx context.Context, values Values) error

	// Clear removes every entry
	Clear(ctx context.Context) error
}
