package domain

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the bearer token claims issued by the authentication provider.
type Claims struct {
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}
