package mailer

import (
	"log"
	"net/smtp"
	"os"

	"github.com/domodwyer/mailyak/v3"
)

// Mailer is the notification sink for the itinerary flows.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// SMTPMailer sends HTML mail through the configured SMTP relay.
type SMTPMailer struct {
	host string
	addr string
	from string
	auth smtp.Auth
}

func NewSMTP() *SMTPMailer {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "no-reply@wayfare.app"
	}

	var auth smtp.Auth
	if user := os.Getenv("SMTP_USERNAME"); user != "" {
		auth = smtp.PlainAuth("", user, os.Getenv("SMTP_PASSWORD"), host)
	}

	return &SMTPMailer{
		host: host,
		addr: host + ":" + port,
		from: from,
		auth: auth,
	}
}

func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	mail := mailyak.New(m.addr, m.auth)
	mail.From(m.from)
	mail.To(to)
	mail.Subject(subject)
	mail.HTML().Set(htmlBody)
	return mail.Send()
}

// LogMailer drops mail into the log, used when SMTP is not configured and in
// tests.
type LogMailer struct{}

func (LogMailer) Send(to, subject, htmlBody string) error {
	log.Printf("[mailer] to=%s subject=%q (%d bytes)", to, subject, len(htmlBody))
	return nil
}

// FromEnv picks the SMTP mailer when a host is configured, the log mailer
// otherwise.
func FromEnv() Mailer {
	if os.Getenv("SMTP_HOST") == "" {
		log.Println("[mailer] SMTP_HOST not set; mail goes to the log")
		return LogMailer{}
	}
	return NewSMTP()
}
