package mail

import (
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"
)

var ErrNotConfigured = errors.New("smtp relay not configured")

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (c SMTPConfig) Valid() bool {
	return c.Host != "" && c.Port > 0 && c.From != ""
}

type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// SMTPMailer sends through whatever relay the caller passes in, so relay
// settings changed at runtime apply to the next message.
type SMTPMailer struct {
	dial func(cfg SMTPConfig, m *gomail.Message) error
}

func NewSMTPMailer() *SMTPMailer {
	return &SMTPMailer{dial: dialAndSend}
}

func dialAndSend(cfg SMTPConfig, m *gomail.Message) error {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return d.DialAndSend(m)
}

func (s *SMTPMailer) Send(cfg SMTPConfig, e Email) error {
	if !cfg.Valid() {
		return ErrNotConfigured
	}
	if e.To == "" {
		return errors.New("email recipient is empty")
	}

	m := BuildMessage(cfg.From, e)
	if err := s.dial(cfg, m); err != nil {
		return fmt.Errorf("send email to %s: %w", e.To, err)
	}
	return nil
}

func BuildMessage(from string, e Email) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", e.To)
	m.SetHeader("Subject", e.Subject)
	m.SetBody("text/plain", e.TextBody)
	if e.HTMLBody != "" {
		m.AddAlternative("text/html", e.HTMLBody)
	}
	return m
}
