package jwtutil

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/ldrseguros/estetica-backend/pkg/config"
)

var cfg *config.JWTConfig

// UserClaims represents the JWT claims for an authenticated account
type UserClaims struct {
	Email    string `json:"email"`
	UserID   uint   `json:"id"`
	Role     string `json:"role"`
	TenantID *uint  `json:"tenantId,omitempty"` // nil for SUPER_ADMIN accounts
	jwt.RegisteredClaims
}

// Initialize stores the JWT configuration for token operations
func Initialize(c *config.JWTConfig) {
	cfg = c
}

// GenerateToken creates a signed token carrying account identity, role and tenant
func GenerateToken(email string, userID uint, role string, tenantID *uint) (string, error) {
	if cfg == nil {
		return "", errors.New("jwt configuration not initialized")
	}

	claims := UserClaims{
		Email:    email,
		UserID:   userID,
		Role:     role,
		TenantID: tenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(cfg.ExpirationHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.SigningKey))
}

// ValidateToken validates and parses the JWT token
func ValidateToken(tokenString string) (*UserClaims, error) {
	if cfg == nil {
		return nil, errors.New("jwt configuration not initialized")
	}

	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(cfg.SigningKey), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}
