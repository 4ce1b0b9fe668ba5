// Package auth contains the password hasher and the session token codec.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authdir/internal/clock"
	"github.com/dmitrijs2005/authdir/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the JWT payload: who signed in, with which role, until when.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// SessionClaims is the verified content of a session token.
type SessionClaims struct {
	Username   string
	Role       string
	Expiration int64 // unix seconds
}

// TokenCodec signs and verifies HS256 session tokens.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
	parser *jwt.Parser
}

func NewTokenCodec(secret []byte, ttl time.Duration, c clock.Clock) (*TokenCodec, error) {
	if len(secret) == 0 {
		return nil, errors.New("token secret must not be empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}
	if c == nil {
		c = clock.NewRealClock()
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.Now),
	)

	return &TokenCodec{secret: secret, ttl: ttl, clock: c, parser: parser}, nil
}

// Issue returns a signed token for username/role expiring ttl from now.
func (c *TokenCodec) Issue(username, role string) (string, SessionClaims, error) {
	now := c.clock.Now()
	expiresAt := jwt.NewNumericDate(now.Add(c.ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: expiresAt,
		},
	})

	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", SessionClaims{}, fmt.Errorf("%w: %v", common.ErrorEncoding, err)
	}

	return tokenString, SessionClaims{Username: username, Role: role, Expiration: expiresAt.Unix()}, nil
}

// Validate checks signature, algorithm and expiry. Every failure wraps
// common.ErrInvalidToken; expiry also wraps common.ErrTokenExpired.
func (c *TokenCodec) Validate(tokenString string) (SessionClaims, error) {
	claims := &Claims{}

	token, err := c.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return SessionClaims{}, fmt.Errorf("%w: %w", common.ErrInvalidToken, common.ErrTokenExpired)
		}
		return SessionClaims{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return SessionClaims{}, common.ErrInvalidToken
	}

	return SessionClaims{
		Username:   claims.Username,
		Role:       claims.Role,
		Expiration: claims.ExpiresAt.Unix(),
	}, nil
}
