package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims is the access token payload. Tokens carry identity only,
// every authenticated caller can use the whole API.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}
