package token

import "time"

// State is the lifecycle position of an access token
type State int

const (
	StateNone       State = iota // no access token held
	StateValid                   // outside the refresh window
	StateNearExpiry              // inside the refresh window, not yet expired
	StateExpired                 // expired or undecodable
	StateRefreshing              // a refresh call is in flight
	StateFailed                  // refresh failed; credentials cleared
)

func (s State) String() string {
	switch s {
	case StateNone:
		return "none"
	case StateValid:
		return "valid"
	case StateNearExpiry:
		return "near_expiry"
	case StateExpired:
		return "expired"
	case StateRefreshing:
		return "refreshing"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// UsableWithoutRefresh is true only for StateValid
func (s State) UsableWithoutRefresh() bool {
	return s == StateValid
}

// StateOf classifies a stored access token
func StateOf(raw string, window time.Duration) State {
	if raw == "" {
		return StateNone
	}
	if IsExpired(raw) {
		return StateExpired
	}
	if NeedsRefreshWithin(raw, window) {
		return StateNearExpiry
	}
	return StateValid
}
