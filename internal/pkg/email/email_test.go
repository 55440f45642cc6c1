package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studycrew/web/internal/pkg/logger"
)

func TestContactMessageEscapesInput(t *testing.T) {
	msg, err := ContactMessage([]string{"hello@studycrew.app"}, "Ada", "ada@example.com", "<script>alert(1)</script>")
	require.NoError(t, err)

	assert.Equal(t, []string{"hello@studycrew.app"}, msg.To)
	assert.Equal(t, "ada@example.com", msg.ReplyTo)
	assert.Equal(t, "StudyCrew contact: Ada", msg.Subject)
	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "&lt;script&gt;")
}

func TestNewSenderWithoutKeyLogs(t *testing.T) {
	s := NewSender(Config{}, logger.Nop())
	_, ok := s.(*LogSender)
	require.True(t, ok)

	res, err := s.Send(context.Background(), Message{To: []string{"x@y.z"}, Subject: "hi"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.MessageID)
}

func TestResendSender(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "StudyCrew <noreply@studycrew.app>", body["from"])
		assert.Equal(t, "hi", body["subject"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"msg_123"}`))
	}))
	defer srv.Close()

	s := NewResendSender("re_test", "StudyCrew <noreply@studycrew.app>", logger.Nop())
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	s.client.BaseURL = base

	res, err := s.Send(context.Background(), Message{To: []string{"team@studycrew.app"}, Subject: "hi", HTML: "<p>x</p>"})
	require.NoError(t, err)
	assert.Equal(t, "msg_123", res.MessageID)
}
