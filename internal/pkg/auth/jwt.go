package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/studycrew/web/internal/pkg/apperrors"
)

// SignerConfig defines how client-side storage values are signed
type SignerConfig struct {
	SecretKey   string
	TokenIssuer string
	// TTL bounds how long a signed value is accepted. Zero means no expiry.
	TTL time.Duration
}

// ValueSigner wraps client-stored strings in HS256 tokens so a browser can
// read them back to us but cannot forge them.
type ValueSigner struct {
	config SignerConfig
}

// NewValueSigner creates a new ValueSigner
func NewValueSigner(config SignerConfig) *ValueSigner {
	return &ValueSigner{
		config: config,
	}
}

// ValueClaims defines the signed token content. Key binds the token to the
// storage entry it was written under.
type ValueClaims struct {
	Key   string `json:"k"`
	Value string `json:"v"`
	jwt.RegisteredClaims
}

// Sign returns a token carrying value for the storage entry key
func (s *ValueSigner) Sign(key, value string) (string, error) {
	now := time.Now()
	claims := &ValueClaims{
		Key:   key,
		Value: value,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
			Issuer:   s.config.TokenIssuer,
			ID:       uuid.New().String(),
		},
	}
	if s.config.TTL != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.config.TTL))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign %q: %w", key, err)
	}
	return signed, nil
}

// Verify checks the token and returns the value it carries for key
func (s *ValueSigner) Verify(key, tokenString string) (string, error) {
	if tokenString == "" {
		return "", apperrors.ErrTokenInvalid
	}

	token, err := jwt.ParseWithClaims(tokenString, &ValueClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.SecretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apperrors.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", apperrors.ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*ValueClaims)
	if !ok || !token.Valid {
		return "", apperrors.ErrTokenInvalid
	}
	if s.config.TokenIssuer != "" && claims.Issuer != s.config.TokenIssuer {
		return "", apperrors.ErrTokenInvalid
	}
	if claims.Key != key {
		return "", apperrors.ErrTokenInvalid
	}
	return claims.Value, nil
}
