package users

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID           string    `json:"id,omitempty"`         // Unique identifier for the user
	Email        string    `json:"email,omitempty"`      // User's email address
	Username     string    `json:"username,omitempty"`   // Unique username
	PasswordHash string    `json:"-"`                    // Hashed version of the user's password - never serialize
	Role         RoleType  `json:"role,omitempty"`       // Marketplace role
	CreatedAt    time.Time `json:"created_at,omitempty"` // Registration time
}

// ValidateRegistration applies the marketplace sign-up rules
func ValidateRegistration(username, email, password string) error {
	if len(strings.TrimSpace(username)) < 3 {
		return fmt.Errorf("username must be at least 3 characters long")
	}
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return fmt.Errorf("invalid email format")
	}
	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters long")
	}
	return nil
}

// NormalizeEmail lower-cases and trims an email address for lookups
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
