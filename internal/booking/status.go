package booking

import (
	"fmt"
	"strings"

	"github.com/ldrseguros/estetica-backend/internal/model"
)

// transitions is the closed booking state machine. completed and cancelled
// are terminal; rescheduled behaves like a fresh pending slot.
var transitions = map[string][]string{
	model.StatusPending:     {model.StatusConfirmed, model.StatusCancelled, model.StatusRescheduled},
	model.StatusConfirmed:   {model.StatusCompleted, model.StatusCancelled, model.StatusRescheduled},
	model.StatusRescheduled: {model.StatusConfirmed, model.StatusCompleted, model.StatusCancelled, model.StatusRescheduled},
	model.StatusCompleted:   {},
	model.StatusCancelled:   {},
}

// ValidStatus reports whether s is a member of the closed status set
func ValidStatus(s string) bool {
	_, ok := transitions[strings.ToLower(s)]
	return ok
}

// CanTransition reports whether from -> to is in the transition table
func CanTransition(from, to string) bool {
	from = strings.ToLower(from)
	to = strings.ToLower(to)
	if from == to {
		return from == model.StatusRescheduled
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition applies a status change to a booking after checking the
// transition table. The update is not persisted here.
func Transition(b *model.Booking, to string) error {
	to = strings.ToLower(to)
	if !ValidStatus(to) {
		return model.NewBadRequest(fmt.Sprintf("unknown booking status %q", to))
	}
	if !CanTransition(b.Status, to) {
		return model.NewInvalidTransition(
			fmt.Sprintf("cannot transition booking from %s to %s", strings.ToLower(b.Status), to))
	}
	b.Status = to
	return nil
}
