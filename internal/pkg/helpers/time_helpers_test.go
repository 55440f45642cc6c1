package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 5*time.Second, ParseDuration("5s", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("soon", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("-3s", time.Minute))
}

func TestMaxAgeSeconds(t *testing.T) {
	assert.Equal(t, 3600, MaxAgeSeconds(time.Hour))
	assert.Equal(t, 0, MaxAgeSeconds(0))
}
