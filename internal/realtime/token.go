package realtime

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Custom token errors
var (
	// ErrInvalidToken indicates a websocket token that failed validation
	ErrInvalidToken = errors.New("invalid websocket token")

	// ErrTokenExpired indicates a websocket token past its expiry
	ErrTokenExpired = errors.New("websocket token expired")
)

// wsClaims is the payload of a short-lived websocket token
type wsClaims struct {
	UserAddress string `json:"user_address"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and validates the short-lived HS256 tokens that gate
// websocket subscriptions
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer creates a websocket token issuer
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Mint issues a token bound to the given user address
func (i *TokenIssuer) Mint(userAddress string) (string, error) {
	now := time.Now()
	claims := wsClaims{
		UserAddress: userAddress,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign websocket token: %w", err)
	}
	return signed, nil
}

// Validate parses a token and returns the user address it is bound to
func (i *TokenIssuer) Validate(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &wsClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*wsClaims)
	if !ok || !token.Valid || claims.UserAddress == "" {
		return "", ErrInvalidToken
	}
	return claims.UserAddress, nil
}
