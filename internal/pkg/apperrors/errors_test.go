package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil, "fallback"))
	assert.Equal(t, "fallback", UserMessage(errors.New("boom"), "fallback"))

	ce := NewCustomError(ErrInvalidCredentials, "Invalid credentials").WithStatus(401)
	assert.Equal(t, "Invalid credentials", UserMessage(ce, "fallback"))

	wrapped := fmt.Errorf("login: %w", ce)
	assert.Equal(t, "Invalid credentials", UserMessage(wrapped, "fallback"))

	empty := NewCustomError(ErrLoginFailed, "")
	assert.Equal(t, "fallback", UserMessage(empty, "fallback"))
}

func TestCustomErrorUnwrap(t *testing.T) {
	err := fmt.Errorf("courses: %w", NewCustomError(ErrFetchCourses, "Failed to fetch courses"))

	assert.True(t, errors.Is(err, ErrFetchCourses))
	assert.True(t, Is(err, ErrInvalidResponse, ErrFetchCourses))
	assert.False(t, Is(err, ErrInvalidResponse))
	assert.Equal(t, "courses: Failed to fetch courses", err.Error())
}
