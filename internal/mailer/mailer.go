// Package mailer is the outbound email transport consumed by the
// notification engine. Delivery is best-effort: callers log failures and
// move on.
package mailer

import (
	"log/slog"

	"gopkg.in/gomail.v2"
)

// Message is one outbound email.
type Message struct {
	To      []string
	Subject string
	Body    string
}

// Sender delivers a message, or reports why it could not.
type Sender interface {
	Send(m Message) error
}

// SMTPSender delivers through an SMTP relay.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(host string, port int, user, pass, from string) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   from,
	}
}

func (s *SMTPSender) Send(m Message) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", m.To...)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/plain", m.Body)
	return s.dialer.DialAndSend(msg)
}

// LogSender stands in when no SMTP relay is configured: it logs what would
// have been sent and reports success.
type LogSender struct {
	Log *slog.Logger
}

func (s *LogSender) Send(m Message) error {
	s.Log.Info("email not sent (no SMTP configured)",
		"to", m.To, "subject", m.Subject)
	return nil
}
