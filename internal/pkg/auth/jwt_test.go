package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studycrew/web/internal/pkg/apperrors"
)

func newSigner(ttl time.Duration) *ValueSigner {
	return NewValueSigner(SignerConfig{
		SecretKey:   "test-secret",
		TokenIssuer: "studycrew.test",
		TTL:         ttl,
	})
}

func TestSignVerifyRoundTrip(t *testing.T) {
	s := newSigner(time.Hour)

	token, err := s.Sign("role", "assistant")
	require.NoError(t, err)

	value, err := s.Verify("role", token)
	require.NoError(t, err)
	assert.Equal(t, "assistant", value)
}

func TestVerifyRejectsOtherKey(t *testing.T) {
	s := newSigner(0)

	token, err := s.Sign("role", "assistant")
	require.NoError(t, err)

	_, err = s.Verify("user", token)
	assert.True(t, errors.Is(err, apperrors.ErrTokenInvalid))
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	token, err := NewValueSigner(SignerConfig{SecretKey: "other", TokenIssuer: "studycrew.test"}).Sign("role", "assistant")
	require.NoError(t, err)

	_, err = newSigner(0).Verify("role", token)
	assert.True(t, errors.Is(err, apperrors.ErrTokenInvalid))
}

func TestVerifyRejectsTampering(t *testing.T) {
	s := newSigner(0)

	_, err := s.Verify("role", "assistant")
	assert.Error(t, err)

	_, err = s.Verify("role", "")
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestVerifyExpired(t *testing.T) {
	s := newSigner(-time.Minute)

	token, err := s.Sign("role", "user")
	require.NoError(t, err)

	_, err = s.Verify("role", token)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}
