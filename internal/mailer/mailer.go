// Package mailer provides outbound email delivery over SMTP.
package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
)

// Mailer is the outbound-mail transport used to deliver reset links.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPConfig holds the SMTP relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
}

type smtpMailer struct {
	cfg SMTPConfig
}

// NewSMTP creates a Mailer that delivers through an SMTP relay with
// plain auth.
func NewSMTP(cfg SMTPConfig) Mailer {
	return &smtpMailer{cfg: cfg}
}

func (m *smtpMailer) Send(to, subject, body string) error {
	e := email.NewEmail()
	e.From = m.cfg.User
	e.To = []string{to}
	e.Subject = subject
	e.HTML = []byte(body)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	return e.Send(addr, auth)
}
