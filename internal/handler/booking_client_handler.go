package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ldrseguros/estetica-backend/internal/booking"
	"github.com/ldrseguros/estetica-backend/internal/middleware"
	"github.com/ldrseguros/estetica-backend/internal/model"
	"github.com/ldrseguros/estetica-backend/pkg/database"
	"github.com/ldrseguros/estetica-backend/pkg/logger"
	"github.com/ldrseguros/estetica-backend/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// clientContext resolves the caller's client profile on the tenant-scoped
// handle. Accounts without a profile row are rejected with 403.
func clientContext(c echo.Context) (*gorm.DB, uint, *model.ClientProfile, error) {
	scoped, tenantID, err := tenantDB(c)
	if err != nil {
		return nil, 0, nil, err
	}
	claims := middleware.Claims(c)
	if claims == nil {
		return nil, 0, nil, model.NewUnauthorized("authentication required")
	}
	profile, err := booking.ResolveClientProfile(scoped, claims.UserID)
	if err != nil {
		return nil, 0, nil, err
	}
	return scoped, tenantID, profile, nil
}

// ListClientBookings returns the caller's own bookings
func ListClientBookings(c echo.Context) error {
	log := logger.FromContext(c)
	scoped, _, profile, err := clientContext(c)
	if err != nil {
		return respondError(c, log, err)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var bookings []model.Booking
	err = scoped.Preload("Vehicle").Preload("Services").
		Where("client_id = ?", profile.ID).
		Order("date DESC, time DESC").
		Find(&bookings).Error
	if err != nil {
		return respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, booking.ProjectAll(bookings))
}

// CreateClientBooking creates a booking for the caller's own vehicle. The
// client reference is always the resolved profile id, never caller input.
func CreateClientBooking(c echo.Context) error {
	log := logger.FromContext(c)
	_, tenantID, profile, err := clientContext(c)
	if err != nil {
		return respondError(c, log, err)
	}

	var req struct {
		VehicleID           uint   `json:"vehicleId"`
		ServiceIDs          []uint `json:"serviceIds"`
		Date                string `json:"date"`
		Time                string `json:"time"`
		SpecialInstructions string `json:"specialInstructions"`
		Location            string `json:"location"`
		ClientPhone         string `json:"clientPhone"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	created, err := booking.Create(database.GetDB(), tenantID, booking.CreateInput{
		ClientRef:           profile.ID,
		VehicleID:           req.VehicleID,
		ServiceIDs:          req.ServiceIDs,
		Date:                req.Date,
		Time:                req.Time,
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

	log.Info("Client booking created",
		zap.Uint("booking_id", created.ID),
		zap.Uint("client_id", profile.ID))
	return c.JSON(http.StatusCreated, booking.Project(*created))
}

// GetClientBooking returns one booking if it belongs to the caller
func GetClientBooking(c echo.Context) error {
	log := logger.FromContext(c)
	scoped, _, profile, err := clientContext(c)
	if err != nil {
		return respondError(c, log, err)
	}
	id, err := paramID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	b, err := booking.RequireBookingOwner(scoped, profile.ID, id)
	if err != nil {
		return respondError(c, log, err)
	}
	return c.JSON(http.StatusOK, booking.Project(*b))
}

// CancelClientBooking cancels the caller's booking through the transition
// table. Completed and already-cancelled bookings are rejected.
func CancelClientBooking(c echo.Context) error {
	log := logger.FromContext(c)
	scoped, tenantID, profile, err := clientContext(c)
	if err != nil {
		return respondError(c, log, err)
	}
	id, err := paramID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	b, err := booking.RequireBookingOwner(scoped, profile.ID, id)
	if err != nil {
		return respondError(c, log, err)
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := booking.Cancel(database.GetDB(), b); err != nil {
		return respondError(c, log, err)
	}

	prometheus.RecordBookingOperation("cancel")
	notifyBooking(c, b.ID, tenantID, dispatcherCancelled)

	log.Info("Client booking cancelled", zap.Uint("booking_id", b.ID))
	return c.JSON(http.StatusOK, booking.Project(*b))
}

// RescheduleClientBooking moves the caller's booking to a new slot
func RescheduleClientBooking(c echo.Context) error {
	log := logger.FromContext(c)
	scoped, tenantID, profile, err := clientContext(c)
	if err != nil {
		return respondError(c, log, err)
	}
	id, err := paramID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	var req struct {
		Date string `json:"date"`
		Time string `json:"time"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}
	if req.Date == "" || req.Time == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "date and time are required"})
	}

	b, err := booking.RequireBookingOwner(scoped, profile.ID, id)
	if err != nil {
		return respondError(c, log, err)
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := booking.Reschedule(database.GetDB(), tenantID, b, req.Date, req.Time); err != nil {
		if model.HTTPStatus(err) == http.StatusConflict {
			prometheus.SlotConflictCounter.Inc()
		}
		return respondError(c, log, err)
	}

	prometheus.RecordBookingOperation("reschedule")
	notifyBooking(c, b.ID, tenantID, dispatcherRescheduled)

	log.Info("Client booking rescheduled",
		zap.Uint("booking_id", b.ID),
		zap.String("date", req.Date),
		zap.String("time", req.Time))
	return c.JSON(http.StatusOK, booking.Project(*b))
}
