package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
)

type SmtpConfig struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
	// To is the operator address alerts are delivered to.
	To string `json:"to"`
}

// Mailer sends plain-text operator alerts. A zero-config Mailer is
// valid and silently drops everything, so callers don't need to guard
// against alerting being unconfigured.
type Mailer struct {
	config SmtpConfig
}

func New(config SmtpConfig) Mailer {
	return Mailer{config: config}
}

func (m Mailer) Enabled() bool {
	return m.config.Server != "" && m.config.To != ""
}

func (m Mailer) Send(subject, body string) error {
	if !m.Enabled() {
		return nil
	}

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Pricewatch <%s>", m.config.EmailAddress)
	mail.To = []string{m.config.To}
	mail.Subject = subject
	mail.Text = []byte(body)

	addr := fmt.Sprintf("%s:%d", m.config.Server, m.config.Port)
	err := mail.Send(
		addr,
		smtp.PlainAuth("", m.config.EmailAddress, m.config.Password, m.config.Server),
	)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		return mail.Send(addr, nil)
	}
	return err
}
