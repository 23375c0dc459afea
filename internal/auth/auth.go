package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"tessera/internal/metadata"
)

// TokenResponse is returned after a successful credential exchange.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	RefreshID   string `json:"refresh_id"`
}

// Claims are the JWT claims of a gateway access token. Table and Role are
// the runtime face of a synthesized grant: the token authorizes exactly one
// principal at one role tier on one table.
type Claims struct {
	jwt.RegisteredClaims
	Table string `json:"table"`
	Role  string `json:"role"`
}

const AccessTokenTTL = 15 * time.Minute

// GenerateAccessToken creates a signed JWT for a principal's grant.
func GenerateAccessToken(principal, table string, role metadata.Role, secret string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenTTL)),
		},
		Table: table,
		Role:  string(role),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// ParseAccessToken validates and parses a JWT, returning the claims.
func ParseAccessToken(tokenStr string, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// Principal converts validated claims into the request principal context.
func (c *Claims) Principal() *metadata.PrincipalContext {
	return &metadata.PrincipalContext{
		ID:    c.Subject,
		Table: c.Table,
		Role:  metadata.Role(c.Role),
	}
}

// GenerateRefreshID creates a new opaque refresh identifier.
func GenerateRefreshID() string {
	return uuid.New().String()
}

// HashSecret hashes a plaintext principal secret with bcrypt.
func HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(hash), nil
}

// CheckSecret compares a plaintext secret against a bcrypt hash.
func CheckSecret(secret, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}
