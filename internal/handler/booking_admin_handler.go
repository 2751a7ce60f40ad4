package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ldrseguros/estetica-backend/internal/booking"
	"github.com/ldrseguros/estetica-backend/internal/model"
	"github.com/ldrseguros/estetica-backend/pkg/database"
	"github.com/ldrseguros/estetica-backend/pkg/logger"
	"github.com/ldrseguros/estetica-backend/prometheus"
	"go.uber.org/zap"
)

// BookingRequest is the admin booking creation payload. ClientID tolerates
// either a profile id or an account id.
type BookingRequest struct {
	ClientID            uint   `json:"clientId"`
	VehicleID           uint   `json:"vehicleId"`
	ServiceIDs          []uint `json:"serviceIds"`
	Date                string `json:"date"`
	Time                string `json:"time"`
	Status              string `json:"status"`
	SpecialInstructions string `json:"specialInstructions"`
	Location            string `json:"location"`
	ClientPhone         string `json:"clientPhone"`
}

// ListAdminBookings returns all tenant bookings, optionally filtered by
// date and status.
func ListAdminBookings(c echo.Context) error {
	log := logger.FromContext(c)
	scoped, _, err := tenantDB(c)
	if err != nil {
		return respondError(c, log, err)
	}

	query := scoped.Preload("Client").Preload("Vehicle").Preload("Services")

	if dateStr := c.QueryParam("date"); dateStr != "" {
		date, err := booking.NormalizeDate(dateStr)
		if err != nil {
			return respondError(c, log, err)
		}
		query = query.Where("date = ?", date)
	}
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", strings.ToLower(status))
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var bookings []model.Booking
	if err := query.Order("date, time").Find(&bookings).Error; err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, booking.ProjectAll(bookings))
}

// CreateAdminBooking creates a booking on behalf of any tenant client
func CreateAdminBooking(c echo.Context) error {
	log := logger.FromContext(c)
	_, tenantID, err := tenantDB(c)
	if err != nil {
		return respondError(c, log, err)
	}

	var req BookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	created, err := booking.Create(database.GetDB(), tenantID, booking.CreateInput{
		ClientRef:           req.ClientID,
		VehicleID:           req.VehicleID,
		ServiceIDs:          req.ServiceIDs,
		Date:                req.Date,
		Time:                req.Time,
		Status:              req.Status,
		SpecialInstructions: req.SpecialInstructions,
		Location:            req.Location,
		ClientPhone:         req.ClientPhone,
	})
	if err != nil {
		if model.HTTPStatus(err) == http.StatusConflict {
			prometheus.SlotConflictCounter.Inc()
		}
		return respondError(c, log, err)
	}

	prometheus.RecordBookingOperation("create")
	notifyBooking(c, created.ID, tenantID, dispatcherCreated)

	log.Info("Booking created",
		zap.Uint("booking_id", created.ID),
		zap.Uint("tenant_id", tenantID),
		zap.String("date", req.Date),
		zap.String("time", req.Time))

	return c.JSON(http.StatusCreated, booking.Project(*created))
}

// GetAdminBooking returns one booking with projected fields
func GetAdminBooking(c echo.Context) error {
	log := logger.FromContext(c)
	scoped, _, err := tenantDB(c)
	if err != nil {
		return respondError(c, log, err)
	}
	id, err := paramID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	b, err := booking.RequireBookingInTenant(scoped, id)
	if err != nil {
		return respondError(c, log, err)
	}
	return c.JSON(http.StatusOK, booking.Project(*b))
}

// UpdateAdminBooking applies a partial admin update; status changes go
// through the transition table.
func UpdateAdminBooking(c echo.Context) error {
	log := logger.FromContext(c)
	_, tenantID, err := tenantDB(c)
	if err != nil {
		return respondError(c, log, err)
	}
	id, err := paramID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	var req struct {
		Date                *string `json:"date"`
		Time                *string `json:"time"`
		Status              *string `json:"status"`
		ServiceIDs          []uint  `json:"serviceIds"`
		SpecialInstructions *string `json:"specialInstructions"`
		Location            *string `json:"location"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	updated, err := booking.Update(database.GetDB(), tenantID, id, booking.UpdateInput{
		Date:                req.Date,
		Time:                req.Time,
		Status:              req.Status,
		ServiceIDs:          req.ServiceIDs,
		SpecialInstructions: req.SpecialInstructions,
		Location:            req.Location,
	})
	if err != nil {
		if model.HTTPStatus(err) == http.StatusConflict {
			prometheus.SlotConflictCounter.Inc()
		}
		return respondError(c, log, err)
	}

	prometheus.RecordBookingOperation("update")
	return c.JSON(http.StatusOK, booking.Project(*updated))
}

// DeleteAdminBooking removes a booking and its service links
func DeleteAdminBooking(c echo.Context) error {
	log := logger.FromContext(c)
	scoped, _, err := tenantDB(c)
	if err != nil {
		return respondError(c, log, err)
	}
	id, err := paramID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	b, err := booking.RequireBookingInTenant(scoped, id)
	if err != nil {
		return respondError(c, log, err)
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := booking.Delete(database.GetDB(), b); err != nil {
		return respondError(c, log, err)
	}

	prometheus.RecordBookingOperation("delete")
	log.Info("Booking deleted", zap.Uint("booking_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "booking deleted"})
}

// CancelAdminBooking cancels a booking through the transition table
func CancelAdminBooking(c echo.Context) error {
	return adminStatusChange(c, "cancel")
}

// CompleteAdminBooking marks a booking completed
func CompleteAdminBooking(c echo.Context) error {
	return adminStatusChange(c, "complete")
}

func adminStatusChange(c echo.Context, op string) error {
	log := logger.FromContext(c)
	scoped, tenantID, err := tenantDB(c)
	if err != nil {
		return respondError(c, log, err)
	}
	id, err := paramID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	b, err := booking.RequireBookingInTenant(scoped, id)
	if err != nil {
		return respondError(c, log, err)
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	switch op {
	case "cancel":
		err = booking.Cancel(database.GetDB(), b)
	case "complete":
		err = booking.Complete(database.GetDB(), b)
	}
	if err != nil {
		return respondError(c, log, err)
	}

	prometheus.RecordBookingOperation(op)
	if op == "cancel" {
		notifyBooking(c, b.ID, tenantID, dispatcherCancelled)
	}

	log.Info("Booking status changed",
		zap.Uint("booking_id", b.ID),
		zap.String("operation", op),
		zap.String("status", b.Status))
	return c.JSON(http.StatusOK, booking.Project(*b))
}

// AvailableSlots returns the tenant's free slot times for a date. Public:
// clients check availability before authenticating.
func AvailableSlots(c echo.Context) error {
	log := logger.FromContext(c)
	scoped, _, err := tenantDB(c)
	if err != nil {
		return respondError(c, log, err)
	}

	dateStr := c.QueryParam("date")
	if dateStr == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "date query parameter is required"})
	}

	slots, err := booking.AvailableSlots(scoped, cfg.Booking.SlotTimes, dateStr)
	if err != nil {
		return respondError(c, log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"date": dateStr, "slots": slots})
}

// Notification kinds dispatched after booking writes
type notifyKind int

const (
	dispatcherCreated notifyKind = iota
	dispatcherCancelled
	dispatcherRescheduled
)

// notifyBooking reloads the booking with its relations and dispatches the
// message in the background. Failures never affect the response.
func notifyBooking(c echo.Context, bookingID, tenantID uint, kind notifyKind) {
	if dispatcher == nil {
		return
	}
	log := logger.FromContext(c)

	go func() {
		b, err := booking.RequireBookingInTenant(
			database.ForTenant(tenantID).Preload("Client.User"), bookingID)
		if err != nil {
			log.Error("Failed to load booking for notification", zap.Error(err))
			return
		}
		switch kind {
		case dispatcherCreated:
			dispatcher.BookingCreated(b)
		case dispatcherCancelled:
			dispatcher.BookingCancelled(b)
		case dispatcherRescheduled:
			dispatcher.BookingRescheduled(b)
		}
	}()
}
