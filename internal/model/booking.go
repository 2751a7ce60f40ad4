package model

import (
	"time"
)

// Booking status values. The set is closed: writes go through the transition
// table in internal/booking and unknown values are rejected.
const (
	StatusPending     = "pending"
	StatusConfirmed   = "confirmed"
	StatusCompleted   = "completed"
	StatusCancelled   = "cancelled"
	StatusRescheduled = "rescheduled"
)

// Booking links one client, one vehicle and N services for a tenant at a
// date/time slot. The composite unique index keeps two bookings from landing
// on the same vehicle slot; a violation surfaces as a 409.
//
// Booking rows are hard-deleted: a soft-delete marker would keep cancelled
// rows inside the slot uniqueness index and block rebooking the slot.
type Booking struct {
	ID                  uint      `json:"id" gorm:"primaryKey"`
	Date                time.Time `json:"date" gorm:"uniqueIndex:idx_booking_slot;not null"`
	Time                string    `json:"time" gorm:"type:varchar(5);uniqueIndex:idx_booking_slot;not null"`
	Status              string    `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	SpecialInstructions string    `json:"special_instructions,omitempty" gorm:"type:text"`
	Location            string    `json:"location,omitempty" gorm:"type:varchar(255)"`
	ClientPhone         string    `json:"client_phone,omitempty" gorm:"type:varchar(30)"`
	ClientID            uint      `json:"client_id" gorm:"index;not null"`
	VehicleID           uint      `json:"vehicle_id" gorm:"uniqueIndex:idx_booking_slot;not null"`
	TenantID            uint      `json:"tenant_id" gorm:"uniqueIndex:idx_booking_slot,where:status <> 'cancelled';index;not null"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`

	Client   ClientProfile `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	Vehicle  Vehicle       `json:"vehicle,omitempty" gorm:"foreignKey:VehicleID"`
	Services []Service     `json:"services,omitempty" gorm:"many2many:booking_services"`
}
