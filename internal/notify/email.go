package notify

import (
	"fmt"

	"github.com/ldrseguros/estetica-backend/pkg/config"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailSender delivers booking messages through SendGrid
type EmailSender struct {
	fromEmail string
	fromName  string
	client    *sendgrid.Client
}

func NewEmailSender(cfg *config.NotifyConfig) *EmailSender {
	return &EmailSender{
		fromEmail: cfg.SendGridFromEmail,
		fromName:  cfg.SendGridFromName,
		client:    sendgrid.NewSendClient(cfg.SendGridAPIKey),
	}
}

func (e *EmailSender) Channel() string { return "email" }

// Send delivers a plain-text email with the booking message as body
func (e *EmailSender) Send(to, message string) error {
	from := mail.NewEmail(e.fromName, e.fromEmail)
	recipient := mail.NewEmail("", to)
	email := mail.NewSingleEmail(from, "Atualização do seu agendamento", recipient, message, message)

	resp, err := e.client.Send(email)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	return nil
}
