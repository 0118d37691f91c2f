// Package auth implements phone/SMS sign-in and JWT session tokens.
package auth

import (
	"errors"
	"fmt"
	"time"

	"skillswap/backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims is the payload of access and refresh tokens. Subject holds the user id.
type Claims struct {
	Role models.UserRole `json:"role"`
	Type string          `json:"type"`
	jwt.RegisteredClaims
}

// TokenManager signs and validates HS256 tokens.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL, now: time.Now}
}

// AccessTTL is the lifetime of access tokens.
func (m *TokenManager) AccessTTL() time.Duration { return m.accessTTL }

// RefreshTTL is the lifetime of refresh tokens.
func (m *TokenManager) RefreshTTL() time.Duration { return m.refreshTTL }

// IssueAccess creates a short-lived access token.
func (m *TokenManager) IssueAccess(user *models.User) (string, error) {
	return m.issue(user, TokenTypeAccess, m.accessTTL)
}

// IssueRefresh creates a refresh token.
func (m *TokenManager) IssueRefresh(user *models.User) (string, error) {
	return m.issue(user, TokenTypeRefresh, m.refreshTTL)
}

func (m *TokenManager) issue(user *models.User, tokenType string, ttl time.Duration) (string, error) {
	now := m.now()
	claims := &Claims{
		Role: user.Role,
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

// Parse validates signature, expiry and the expected token type.
func (m *TokenManager) Parse(tokenString, wantType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	if claims.Type != wantType {
		return nil, errors.New("unexpected token type")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}
