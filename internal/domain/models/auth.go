package models

import "github.com/golang-jwt/jwt/v5"

// AuthClaims represents the JWT claims issued by the auth provider.
// The subject claim carries the user ID.
type AuthClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// GetUserID returns the user ID from the subject claim.
func (c *AuthClaims) GetUserID() string {
	return c.Subject
}
