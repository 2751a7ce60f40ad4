package notify

import (
	"fmt"

	"github.com/ldrseguros/estetica-backend/internal/booking"
	"github.com/ldrseguros/estetica-backend/internal/model"
	"github.com/ldrseguros/estetica-backend/pkg/config"
	"github.com/ldrseguros/estetica-backend/prometheus"
	"go.uber.org/zap"
)

// Notifier sends booking lifecycle messages to a client. Implementations are
// best-effort: a failed send is logged and never fails the booking write.
type Notifier interface {
	Send(to, message string) error
	Channel() string
}

// Dispatcher fans a booking event out to every configured channel
type Dispatcher struct {
	notifiers []Notifier
	log       *zap.Logger
}

// NewDispatcher wires the channels that have credentials configured
func NewDispatcher(cfg *config.NotifyConfig, log *zap.Logger) *Dispatcher {
	d := &Dispatcher{log: log}
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" {
		d.notifiers = append(d.notifiers, NewWhatsAppSender(cfg))
	}
	if cfg.SendGridAPIKey != "" {
		d.notifiers = append(d.notifiers, NewEmailSender(cfg))
	}
	return d
}

// BookingCreated dispatches a confirmation message. Callers run it in a
// goroutine; errors are logged and swallowed.
func (d *Dispatcher) BookingCreated(b *model.Booking) {
	view := booking.Project(*b)
	msg := fmt.Sprintf("Olá %s! Seu agendamento para %s às %s foi recebido. Total: R$ %.2f.",
		b.Client.Name, view.Date, b.Time, view.TotalPrice)
	d.send(b, msg)
}

// BookingCancelled dispatches a cancellation notice
func (d *Dispatcher) BookingCancelled(b *model.Booking) {
	msg := fmt.Sprintf("Olá %s! Seu agendamento de %s às %s foi cancelado.",
		b.Client.Name, b.Date.Format("2006-01-02"), b.Time)
	d.send(b, msg)
}

// BookingRescheduled dispatches the new slot
func (d *Dispatcher) BookingRescheduled(b *model.Booking) {
	msg := fmt.Sprintf("Olá %s! Seu agendamento foi remarcado para %s às %s.",
		b.Client.Name, b.Date.Format("2006-01-02"), b.Time)
	d.send(b, msg)
}

func (d *Dispatcher) send(b *model.Booking, message string) {
	for _, n := range d.notifiers {
		to := destination(n.Channel(), b)
		if to == "" {
			continue
		}
		if err := n.Send(to, message); err != nil {
			prometheus.RecordNotification(n.Channel(), "error")
			d.log.Error("Notification send failed",
				zap.String("channel", n.Channel()),
				zap.Uint("booking_id", b.ID),
				zap.Error(err))
			continue
		}
		prometheus.RecordNotification(n.Channel(), "sent")
	}
}

func destination(channel string, b *model.Booking) string {
	switch channel {
	case "whatsapp":
		if b.ClientPhone != "" {
			return b.ClientPhone
		}
		return b.Client.WhatsApp
	case "email":
		return b.Client.User.Email
	}
	return ""
}
