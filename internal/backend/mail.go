package backend

import (
	"context"

	applog "posdash/internal/log"
)

// Message is an outgoing transactional email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers auth emails such as confirmation and recovery links.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes messages to the structured log instead of sending them.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, msg Message) error {
	applog.Info(ctx, "outgoing email", "to", msg.To, "subject", msg.Subject, "body", msg.Body)
	return nil
}
