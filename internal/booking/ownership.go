package booking

import (
	"errors"

	"github.com/ldrseguros/estetica-backend/internal/model"
	"gorm.io/gorm"
)

// RequireVehicleOwner loads a vehicle on a tenant-scoped handle and asserts
// it belongs to the given client profile.
func RequireVehicleOwner(db *gorm.DB, clientID, vehicleID uint) (*model.Vehicle, error) {
	vehicle, err := requireVehicle(db, vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle.ClientID != clientID {
		return nil, model.NewForbidden("vehicle does not belong to this client")
	}
	return vehicle, nil
}

// RequireVehicleInTenant loads a vehicle on a tenant-scoped handle. The scope
// itself enforces the tenant check: a cross-tenant id simply does not resolve.
func RequireVehicleInTenant(db *gorm.DB, vehicleID uint) (*model.Vehicle, error) {
	return requireVehicle(db, vehicleID)
}

func requireVehicle(db *gorm.DB, vehicleID uint) (*model.Vehicle, error) {
	var vehicle model.Vehicle
	err := db.First(&vehicle, vehicleID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NewNotFound("vehicle not found")
		}
		return nil, err
	}
	return &vehicle, nil
}

// RequireBookingOwner loads a booking with its relations and asserts it
// belongs to the given client profile.
func RequireBookingOwner(db *gorm.DB, clientID, bookingID uint) (*model.Booking, error) {
	b, err := RequireBookingInTenant(db, bookingID)
	if err != nil {
		return nil, err
	}
	if b.ClientID != clientID {
		return nil, model.NewForbidden("booking does not belong to this client")
	}
	return b, nil
}

// RequireBookingInTenant loads a booking with client, vehicle and services
// preloaded, on a tenant-scoped handle.
func RequireBookingInTenant(db *gorm.DB, bookingID uint) (*model.Booking, error) {
	var b model.Booking
	err := db.Preload("Client").Preload("Vehicle").Preload("Services").First(&b, bookingID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NewNotFound("booking not found")
		}
		return nil, err
	}
	return &b, nil
}
