package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/ldrseguros/estetica-backend/internal/model"
)

// View is the list/detail projection of a booking. TotalPrice and EndTime are
// derived from the linked services on every read; nothing is cached.
type View struct {
	model.Booking
	Date       string  `json:"date"`
	Status     string  `json:"status"`
	EndTime    string  `json:"end_time"`
	TotalPrice float64 `json:"total_price"`
}

// Project computes the derived view fields for one booking
func Project(b model.Booking) View {
	total := 0.0
	minutes := 0
	for i := range b.Services {
		total += b.Services[i].Price
		minutes += b.Services[i].Duration()
	}

	return View{
		Booking:    b,
		Date:       b.Date.Format("2006-01-02"),
		Status:     strings.ToLower(b.Status),
		EndTime:    AddMinutes(b.Time, minutes),
		TotalPrice: total,
	}
}

// ProjectAll projects a slice of bookings for list responses
func ProjectAll(bookings []model.Booking) []View {
	views := make([]View, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, Project(b))
	}
	return views
}

// AddMinutes adds a minute count to an HH:MM string, wrapping past midnight.
// A malformed time is returned unchanged; validation happens at write time.
func AddMinutes(hhmm string, minutes int) string {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return hhmm
	}
	total := (t.Hour()*60 + t.Minute() + minutes) % (24 * 60)
	if total < 0 {
		total += 24 * 60
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
