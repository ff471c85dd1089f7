package users

import (
	"slices"
	"strings"

	apperrors "github.com/jrsteele09/go-rental-session/internal/errors"
)

// RoleType is the marketplace role carried in the access token
type RoleType string

const (
	RoleTenant   RoleType = "tenant"   // Browses properties and requests bookings
	RoleLandlord RoleType = "landlord" // Manages own property listings
	RoleAdmin    RoleType = "admin"    // Moderates users and listings
)

// DefaultRole is stored when neither the token nor the user record carries a valid role
const DefaultRole = RoleTenant

// Roles lists every valid role
func Roles() []RoleType {
	return []RoleType{RoleTenant, RoleLandlord, RoleAdmin}
}

func (r RoleType) IsValid() bool {
	return slices.Contains(Roles(), r)
}

func (r RoleType) String() string {
	return string(r)
}

// ParseRole accepts a role name in any case
func ParseRole(s string) (RoleType, error) {
	r := RoleType(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", apperrors.Wrapf(apperrors.ErrInvalidRole, "%q", s)
	}
	return r, nil
}

// HasAnyRole reports whether r is one of allowed. An empty allowed list admits every valid role.
func (r RoleType) HasAnyRole(allowed ...RoleType) bool {
	if !r.IsValid() {
		return false
	}
	if len(allowed) == 0 {
		return true
	}
	return slices.Contains(allowed, r)
}
