package booking

import (
	"testing"
	"time"

	"github.com/ldrseguros/estetica-backend/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestAddMinutes(t *testing.T) {
	tests := []struct {
		in      string
		minutes int
		want    string
	}{
		{"14:30", 90, "16:00"},
		{"09:00", 0, "09:00"},
		{"23:30", 90, "01:00"}, // wraps past midnight
		{"00:00", 1440, "00:00"},
		{"08:15", 45, "09:00"},
		{"bogus", 30, "bogus"}, // malformed input passes through
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, AddMinutes(tt.in, tt.minutes), "%s + %d", tt.in, tt.minutes)
	}
}

func TestProject(t *testing.T) {
	date := time.Date(2024, 6, 15, 12, 0, 0, 0, time.Local)
	b := model.Booking{
		Date:   date,
		Time:   "14:30",
		Status: "PENDING",
		Services: []model.Service{
			{Title: "Lavagem", Price: 120, DurationMin: 60},
			{Title: "Polimento", Price: 350, DurationMin: 30},
		},
	}

	view := Project(b)
	assert.Equal(t, "2024-06-15", view.Date)
	assert.Equal(t, "pending", view.Status)
	assert.Equal(t, "16:00", view.EndTime)
	assert.Equal(t, 470.0, view.TotalPrice)
}

func TestProjectDurationFallback(t *testing.T) {
	b := model.Booking{
		Date:     time.Date(2024, 6, 15, 12, 0, 0, 0, time.Local),
		Time:     "10:00",
		Status:   model.StatusPending,
		Services: []model.Service{{Title: "Lavagem", Price: 80}}, // no duration set
	}

	view := Project(b)
	assert.Equal(t, "11:00", view.EndTime, "unset duration falls back to 60 minutes")
}

func TestProjectAll(t *testing.T) {
	views := ProjectAll(nil)
	assert.NotNil(t, views)
	assert.Empty(t, views)
}
