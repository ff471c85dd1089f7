package token

import "time"

// ProactiveRefreshWindow is the remaining lifetime below which an access
// token is refreshed before it is used.
const ProactiveRefreshWindow = 5 * time.Minute

// IsExpired reports whether the token's exp is at or before the current time.
// Missing, malformed and undecodable tokens count as expired.
func IsExpired(raw string) bool {
	c, err := Decode(raw)
	if err != nil {
		return true
	}
	return !c.ExpiresAt.After(NowTimeFunc())
}

// NeedsProactiveRefresh reports whether less than ProactiveRefreshWindow of
// the token's lifetime remains.
func NeedsProactiveRefresh(raw string) bool {
	return NeedsRefreshWithin(raw, ProactiveRefreshWindow)
}

// NeedsRefreshWithin reports whether the remaining lifetime is under window.
// Undecodable tokens return false: IsExpired already covers them.
func NeedsRefreshWithin(raw string, window time.Duration) bool {
	c, err := Decode(raw)
	if err != nil {
		return false
	}
	return c.Remaining() < window
}

// Expiry returns the token's exp claim
func Expiry(raw string) (time.Time, bool) {
	c, err := Decode(raw)
	if err != nil {
		return time.Time{}, false
	}
	return c.ExpiresAt, true
}
