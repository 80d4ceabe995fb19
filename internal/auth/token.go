// Package auth mints and verifies the bearer tokens that carry the current actor.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/garyjia/claimflow/internal/domain/entity"
)

var (
	// ErrInvalidToken is returned for a token that fails verification
	ErrInvalidToken = errors.New("invalid token")

	// ErrMissingSecret is returned when no signing secret is configured
	ErrMissingSecret = errors.New("jwt secret is not configured")
)

// Claims are the JWT claims identifying an actor
type Claims struct {
	Role entity.Role `json:"role"`
	Name string      `json:"name"`
	jwt.RegisteredClaims
}

// Actor returns the actor the claims describe
func (c *Claims) Actor() entity.Actor {
	return entity.Actor{ID: c.Subject, Role: c.Role, DisplayName: c.Name}
}

// TokenService issues and parses HS256 tokens
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a TokenService
func NewTokenService(secret, issuer string, ttl time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenService{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for the actor
func (s *TokenService) Issue(actor entity.Actor) (string, error) {
	if actor.ID == "" || !actor.Role.IsValid() {
		return "", fmt.Errorf("cannot issue token for actor %q with role %q", actor.ID, actor.Role)
	}

	now := s.now()
	claims := Claims{
		Role: actor.Role,
		Name: actor.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Parse verifies the token and returns the actor it carries
func (s *TokenService) Parse(token string) (entity.Actor, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return entity.Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Subject == "" || !claims.Role.IsValid() {
		return entity.Actor{}, fmt.Errorf("%w: missing subject or unknown role", ErrInvalidToken)
	}
	return claims.Actor(), nil
}

// Peek reads the actor from a token without verifying its signature. Clients
// use it to label their session; the server still verifies every request.
func Peek(token string) (entity.Actor, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return entity.Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" || !claims.Role.IsValid() {
		return entity.Actor{}, fmt.Errorf("%w: missing subject or unknown role", ErrInvalidToken)
	}
	return claims.Actor(), nil
}
