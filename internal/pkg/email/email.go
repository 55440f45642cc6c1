// Package email delivers contact-form messages.
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Message is an outgoing email
type Message struct {
	To      []string
	From    string
	Subject string
	HTML    string
	ReplyTo string
}

// Result describes an accepted message
type Result struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers messages
type Sender interface {
	Send(ctx context.Context, msg Message) (Result, error)
}

// Config selects and configures a Sender
type Config struct {
	ResendAPIKey string
	From         string
}

// NewSender returns a Resend-backed sender, or a LogSender when no API key
// is configured.
func NewSender(cfg Config, logger zerolog.Logger) Sender {
	if cfg.ResendAPIKey == "" {
		logger.Warn().Msg("Resend API key not configured - contact messages will only be logged")
		return NewLogSender(logger)
	}
	return NewResendSender(cfg.ResendAPIKey, cfg.From, logger)
}

// LogSender logs messages instead of delivering them
type LogSender struct {
	logger zerolog.Logger
}

func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger.With().Str("component", "email").Logger()}
}

func (s *LogSender) Send(_ context.Context, msg Message) (Result, error) {
	s.logger.Info().
		Strs("to", msg.To).
		Str("reply_to", msg.ReplyTo).
		Str("subject", msg.Subject).
		Msg("Email not sent (no provider configured)")
	now := time.Now()
	return Result{MessageID: fmt.Sprintf("log-%d", now.UnixNano()), SentAt: now}, nil
}

var contactTemplate = template.Must(template.New("contact").Parse(`<html>
<body>
	<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		<h2 style="color: #333;">New message from the StudyCrew contact form</h2>
		<p><strong>{{.Name}}</strong> &lt;{{.Email}}&gt; wrote:</p>
		<p style="white-space: pre-wrap;">{{.Body}}</p>
	</div>
</body>
</html>`))

// ContactMessage builds the message sent to the team for a contact-form
// submission. Replies go to the visitor.
func ContactMessage(to []string, name, from, body string) (Message, error) {
	var buf bytes.Buffer
	data := struct{ Name, Email, Body string }{name, from, body}
	if err := contactTemplate.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("render contact email: %w", err)
	}
	return Message{
		To:      to,
		Subject: "StudyCrew contact: " + strings.TrimSpace(name),
		HTML:    buf.String(),
		ReplyTo: from,
	}, nil
}
