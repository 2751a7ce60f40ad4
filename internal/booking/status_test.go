package booking

import (
	"testing"

	"github.com/ldrseguros/estetica-backend/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestValidStatus(t *testing.T) {
	for _, s := range []string{"pending", "confirmed", "completed", "cancelled", "rescheduled"} {
		assert.True(t, ValidStatus(s), s)
	}
	assert.True(t, ValidStatus("PENDING"), "case insensitive")
	assert.False(t, ValidStatus("canceled"))
	assert.False(t, ValidStatus("done"))
	assert.False(t, ValidStatus(""))
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		ok       bool
	}{
		{model.StatusPending, model.StatusConfirmed, true},
		{model.StatusPending, model.StatusCancelled, true},
		{model.StatusPending, model.StatusRescheduled, true},
		{model.StatusPending, model.StatusCompleted, false},
		{model.StatusPending, model.StatusPending, false},

		{model.StatusConfirmed, model.StatusCompleted, true},
		{model.StatusConfirmed, model.StatusCancelled, true},
		{model.StatusConfirmed, model.StatusRescheduled, true},
		{model.StatusConfirmed, model.StatusPending, false},

		{model.StatusRescheduled, model.StatusConfirmed, true},
		{model.StatusRescheduled, model.StatusCompleted, true},
		{model.StatusRescheduled, model.StatusCancelled, true},
		{model.StatusRescheduled, model.StatusRescheduled, true},
		{model.StatusRescheduled, model.StatusPending, false},

		{model.StatusCompleted, model.StatusCancelled, false},
		{model.StatusCompleted, model.StatusRescheduled, false},
		{model.StatusCancelled, model.StatusPending, false},
		{model.StatusCancelled, model.StatusConfirmed, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.ok, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestTransition(t *testing.T) {
	b := &model.Booking{Status: model.StatusPending}

	assert.NoError(t, Transition(b, "CONFIRMED"))
	assert.Equal(t, model.StatusConfirmed, b.Status)

	err := Transition(b, model.StatusPending)
	assert.Error(t, err)
	assert.Equal(t, model.StatusConfirmed, b.Status, "status unchanged on illegal transition")

	assert.Error(t, Transition(b, "nonsense"))
}
