package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const stateAudience = "oauth-state"

var ErrMissingStateSecret = errors.New("oauth state secret is not configured")

// IssueState returns a short-lived HS256 token used as the OAuth "state"
// parameter. It carries the account id through the provider redirect, where
// no bearer token is available.
func IssueState(secret, accountID string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", ErrMissingStateSecret
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   accountID,
		Audience:  jwt.ClaimStrings{stateAudience},
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseState validates a state token and returns the account id inside it.
func ParseState(secret, state string) (string, error) {
	if secret == "" {
		return "", ErrMissingStateSecret
	}
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(state, &claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithAudience(stateAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("invalid oauth state: %w", err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("invalid oauth state: missing subject")
	}
	return claims.Subject, nil
}
