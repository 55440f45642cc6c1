package email

import (
	"context"
	"fmt"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

// ResendSender sends through the Resend API
type ResendSender struct {
	client *resend.Client
	from   string
	logger zerolog.Logger
}

// NewResendSender creates a sender using apiKey; from is used when a
// message has no sender of its own.
func NewResendSender(apiKey, from string, logger zerolog.Logger) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
		logger: logger.With().Str("component", "email").Logger(),
	}
}

func (s *ResendSender) Send(ctx context.Context, msg Message) (Result, error) {
	from := msg.From
	if from == "" {
		from = s.from
	}

	params := &resend.SendEmailRequest{
		From:    from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
	}
	if msg.ReplyTo != "" {
		params.ReplyTo = msg.ReplyTo
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		s.logger.Error().Err(err).Strs("to", msg.To).Str("subject", msg.Subject).Msg("Resend send failed")
		return Result{}, fmt.Errorf("resend send failed: %w", err)
	}

	s.logger.Info().Str("message_id", sent.Id).Strs("to", msg.To).Msg("Email sent")
	return Result{MessageID: sent.Id, SentAt: time.Now()}, nil
}
