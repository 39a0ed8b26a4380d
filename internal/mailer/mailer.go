// Package mailer sends the firm's transactional email.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// Message is one outgoing email.
type Message struct {
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Invitation builds the email sent to a newly invited user.
func Invitation(firmName, email, role string) Message {
	return Message{
		To:      []string{email},
		Subject: fmt.Sprintf("You have been invited to %s", firmName),
		TextBody: fmt.Sprintf("Hello,\n\nYou have been invited to join %s as %s.\n"+
			"Sign up with this email address to activate your account.\n", firmName, role),
		HTMLBody: fmt.Sprintf("<p>Hello,</p><p>You have been invited to join <strong>%s</strong> as %s.</p>"+
			"<p>Sign up with this email address to activate your account.</p>", firmName, role),
	}
}

/* ================================= Log ================================== */

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	log *zap.SugaredLogger
}

func NewLogMailer(log *zap.SugaredLogger) *LogMailer { return &LogMailer{log: log} }

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.log.Infow("email not sent (test mode)",
		"to", strings.Join(msg.To, ","),
		"subject", msg.Subject,
		"text", msg.TextBody,
	)
	return nil
}

/* ================================ Resend ================================ */

// ResendMailer sends through the Resend API.
type ResendMailer struct {
	client *resend.Client
	from   string
	log    *zap.SugaredLogger
}

func NewResendMailer(apiKey, from string, log *zap.SugaredLogger) (*ResendMailer, error) {
	if apiKey == "" {
		return nil, errors.New("RESEND_API_KEY not configured")
	}
	return &ResendMailer{client: resend.NewClient(apiKey), from: from, log: log}, nil
}

func (m *ResendMailer) Send(ctx context.Context, msg Message) error {
	if msg.HTMLBody == "" && msg.TextBody == "" {
		return errors.New("email must have either HTMLBody or TextBody")
	}
	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTMLBody,
		Text:    msg.TextBody,
	}
	sent, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("send via resend: %w", err)
	}
	m.log.Infow("email sent", "id", sent.Id, "to", strings.Join(msg.To, ","))
	return nil
}
