package token

import "github.com/jrsteele09/go-rental-session/users"

// RoleSource records where a resolved role came from
type RoleSource string

const (
	RoleFromToken RoleSource = "token"
	RoleFromUser  RoleSource = "user"
	RoleDefaulted RoleSource = "default"
)

// ResolveRole picks the session role after login. A valid role claim in the
// access token wins, then a valid userRole, then users.DefaultRole.
func ResolveRole(accessToken, userRole string) (users.RoleType, RoleSource) {
	if c, err := Decode(accessToken); err == nil {
		if r, err := users.ParseRole(c.Role); err == nil {
			return r, RoleFromToken
		}
	}
	if r, err := users.ParseRole(userRole); err == nil {
		return r, RoleFromUser
	}
	return users.DefaultRole, RoleDefaulted
}
