// Package mailer sends transactional email. The SMTP implementation talks to
// a relay configured via MAIL_HOST/MAIL_PORT; when no host is configured the
// log mailer stands in so development environments need no relay.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"fluss/internal/middleware"
)

// Mailer delivers a single message to a single recipient.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPMailer delivers mail through a plain SMTP relay.
type SMTPMailer struct {
	addr string
	from string
}

// NewSMTP creates a mailer for the relay at host:port.
func NewSMTP(host, port, from string) *SMTPMailer {
	return &SMTPMailer{addr: host + ":" + port, from: from}
}

func (m *SMTPMailer) Send(_ context.Context, to, subject, body string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	msg.WriteString(body)

	return smtp.SendMail(m.addr, nil, m.from, []string{to}, []byte(msg.String()))
}

// LogMailer writes the message to the structured log instead of delivering
// it. Used when MAIL_HOST is empty.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, to, subject, body string) error {
	middleware.Logger.InfoContext(ctx, "mail delivery skipped (no MAIL_HOST configured)",
		"to", to,
		"subject", subject,
		"body", body,
	)
	return nil
}

// FromConfig picks the SMTP mailer when a relay host is configured and the
// log mailer otherwise.
func FromConfig(host, port, from string) Mailer {
	if host == "" {
		return LogMailer{}
	}
	return NewSMTP(host, port, from)
}
