// Package auth mints and verifies the session tokens handed out at login.
package auth

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/libertalk/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the username; the session id travels as the JWT ID.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// GenerateToken signs a token for username bound to sessionID.
func GenerateToken(username, sessionID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		Username: username,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies tokenString and returns its claims. Any failure,
// expiry included, wraps common.ErrorInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInvalidToken, err)
	}

	if !token.Valid || claims.Username == "" || claims.ID == "" {
		return nil, common.ErrorInvalidToken
	}

	return claims, nil
}
