package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ldrseguros/estetica-backend/internal/booking"
	"github.com/ldrseguros/estetica-backend/internal/model"
	"github.com/ldrseguros/estetica-backend/pkg/database"
	"github.com/ldrseguros/estetica-backend/pkg/logger"
	"github.com/ldrseguros/estetica-backend/prometheus"
)

type monthCount struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

// DashboardStats aggregates the numbers shown on the admin home screen
func DashboardStats(c echo.Context) error {
	log := logger.FromContext(c)
	scoped, tenantID, err := tenantDB(c)
	if err != nil {
		return respondError(c, log, err)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	today, err := booking.NormalizeDate(time.Now().Format("2006-01-02"))
	if err != nil {
		return respondError(c, log, err)
	}

	var bookingsToday int64
	if err := scoped.Model(&model.Booking{}).
		Where("date = ? AND status <> ?", today, model.StatusCancelled).
		Count(&bookingsToday).Error; err != nil {
		return respondError(c, log, err)
	}

	var totalBookings int64
	if err := scoped.Model(&model.Booking{}).Count(&totalBookings).Error; err != nil {
		return respondError(c, log, err)
	}

	var totalClients int64
	if err := scoped.Model(&model.ClientProfile{}).Count(&totalClients).Error; err != nil {
		return respondError(c, log, err)
	}

	// The join needs a qualified tenant column, so this one query bypasses
	// the scoped handle on purpose.
	var revenue float64
	if err := database.GetDB().Model(&model.Booking{}).
		Joins("JOIN booking_services bs ON bs.booking_id = bookings.id").
		Joins("JOIN services s ON s.id = bs.service_id").
		Where("bookings.tenant_id = ? AND bookings.status = ?", tenantID, model.StatusCompleted).
		Select("COALESCE(SUM(s.price), 0)").
		Scan(&revenue).Error; err != nil {
		return respondError(c, log, err)
	}

	newClients, err := newClientsPerMonth(c, 6)
	if err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"bookingsToday":      bookingsToday,
		"totalBookings":      totalBookings,
		"totalClients":       totalClients,
		"totalRevenue":       revenue,
		"newClientsPerMonth": newClients,
	})
}

// newClientsPerMonth buckets client signups by calendar month, newest last.
// Aggregation happens in Go rather than SQL so the query stays portable
// across postgres and the sqlite test database.
func newClientsPerMonth(c echo.Context, months int) ([]monthCount, error) {
	scoped, _, err := tenantDB(c)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local).
		AddDate(0, -(months - 1), 0)

	var createdAts []time.Time
	if err := scoped.Model(&model.ClientProfile{}).
		Where("created_at >= ?", start).
		Pluck("created_at", &createdAts).Error; err != nil {
		return nil, err
	}

	byMonth := make(map[string]int64, months)
	for _, t := range createdAts {
		byMonth[t.Format("2006-01")]++
	}

	out := make([]monthCount, 0, months)
	for i := 0; i < months; i++ {
		m := start.AddDate(0, i, 0).Format("2006-01")
		out = append(out, monthCount{Month: m, Count: byMonth[m]})
	}
	return out, nil
}
