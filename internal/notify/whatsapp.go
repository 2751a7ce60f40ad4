package notify

import (
	"errors"

	"github.com/ldrseguros/estetica-backend/pkg/config"
	"github.com/twilio/twilio-go"
	api "github.com/twilio/twilio-go/rest/api/v2010"
)

// WhatsAppSender delivers messages through the Twilio WhatsApp API
type WhatsAppSender struct {
	from   string
	client *twilio.RestClient
}

func NewWhatsAppSender(cfg *config.NotifyConfig) *WhatsAppSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})
	return &WhatsAppSender{
		from:   cfg.TwilioWhatsAppNum,
		client: client,
	}
}

func (w *WhatsAppSender) Channel() string { return "whatsapp" }

// Send pushes a single WhatsApp message
func (w *WhatsAppSender) Send(to, message string) error {
	params := &api.CreateMessageParams{}
	params.SetBody(message)
	params.SetFrom("whatsapp:" + w.from)
	params.SetTo("whatsapp:" + to)

	resp, err := w.client.Api.CreateMessage(params)
	if err != nil {
		return err
	}
	if resp.Sid == nil {
		return errors.New("twilio returned no message sid")
	}
	return nil
}
