package utils

import (
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/mmdatafocus/pos_backend/config"
)

type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

type JwtCustomClaim struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	TokenType TokenType `json:"token_type"`
	jwt.StandardClaims
}

// JwtGenerate signs a token of the given type; the claim carries a fresh jti.
func JwtGenerate(userID int, username string, role string, tokenType TokenType) (string, *JwtCustomClaim, error) {
	settings := config.GetAuthSettings()
	lifespan := settings.AccessTokenExpiry
	if tokenType == RefreshToken {
		lifespan = settings.RefreshTokenExpiry
	}
	now := time.Now()
	claim := &JwtCustomClaim{
		ID:        userID,
		Username:  username,
		Role:      role,
		TokenType: tokenType,
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.NewString(),
			Subject:   username,
			ExpiresAt: now.Add(lifespan).Unix(),
			IssuedAt:  now.Unix(),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claim)
	token, err := t.SignedString(settings.Secret)
	if err != nil {
		return "", nil, err
	}
	return token, claim, nil
}

// JwtValidate parses and verifies the token, returning its claims.
// Expired, malformed or foreign-signed tokens yield ErrUnauthorized.
func JwtValidate(token string) (*JwtCustomClaim, error) {
	secret := config.GetAuthSettings().Secret
	parsed, err := jwt.ParseWithClaims(token, &JwtCustomClaim{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("there's a problem with the signing method")
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrUnauthorized
	}
	claim, ok := parsed.Claims.(*JwtCustomClaim)
	if !ok {
		return nil, ErrUnauthorized
	}
	return claim, nil
}

// RemainingLifetime is how long the claim stays valid, zero once expired.
func (c *JwtCustomClaim) RemainingLifetime() time.Duration {
	d := time.Until(time.Unix(c.ExpiresAt, 0))
	if d < 0 {
		return 0
	}
	return d
}
