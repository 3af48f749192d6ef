package security

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const parentSubject = "parent"

// ErrInvalidToken is returned for missing, expired or forged parent tokens
var ErrInvalidToken = errors.New("invalid parent token")

// TokenManager issues and validates the signed token that unlocks the parent area
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// ParentClaims are the claims carried by a parent token
type ParentClaims struct {
	jwt.RegisteredClaims
}

// NewTokenManager creates a manager. An empty secret is replaced with random
// bytes, which invalidates tokens on restart.
func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("failed to generate token secret: %w", err)
		}
	}
	return &TokenManager{secret: key, ttl: ttl, now: time.Now}, nil
}

// Issue returns a signed token, its session id and expiry
func (m *TokenManager) Issue() (token, sessionID string, expires time.Time, err error) {
	now := m.now()
	expires = now.Add(m.ttl)
	sessionID = GenerateSessionID()

	claims := ParentClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   parentSubject,
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("failed to sign parent token: %w", err)
	}
	return token, sessionID, expires, nil
}

// Validate checks the signature and expiry and returns the claims
func (m *TokenManager) Validate(token string) (*ParentClaims, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithSubject(parentSubject),
		jwt.WithTimeFunc(m.now),
	)

	claims := &ParentClaims{}
	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}
