package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/ldrseguros/estetica-backend/internal/model"
	"github.com/ldrseguros/estetica-backend/pkg/database"
	"gorm.io/gorm"
)

// CreateInput carries everything needed to write a booking. ClientRef may be
// a ClientProfile id or an account id (admin path); the client path passes the
// already-resolved profile id.
type CreateInput struct {
	ClientRef           uint
	VehicleID           uint
	ServiceIDs          []uint
	Date                string // YYYY-MM-DD
	Time                string // HH:MM
	Status              string
	SpecialInstructions string
	Location            string
	ClientPhone         string
}

// UpdateInput carries the mutable fields of an admin booking update. Nil
// pointers leave the field untouched.
type UpdateInput struct {
	Date                *string
	Time                *string
	Status              *string
	ServiceIDs          []uint
	SpecialInstructions *string
	Location            *string
}

// NormalizeDate parses a YYYY-MM-DD string and reconstructs it as a local
// noon timestamp. Anchoring at hour 12 keeps the stored value on the same
// calendar day when it is later rendered in a different timezone.
func NormalizeDate(s string) (time.Time, error) {
	parsed, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, model.NewBadRequest(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", s))
	}
	return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 12, 0, 0, 0, time.Local), nil
}

// ValidateTime checks an HH:MM wall-clock string
func ValidateTime(s string) error {
	if _, err := time.Parse("15:04", s); err != nil {
		return model.NewBadRequest(fmt.Sprintf("invalid time %q, expected HH:MM", s))
	}
	return nil
}

// Create validates ownership, tenant membership and slot availability, then
// writes the booking and its service links in one transaction.
func Create(db *gorm.DB, tenantID uint, in CreateInput) (*model.Booking, error) {
	if in.ClientRef == 0 || in.VehicleID == 0 || len(in.ServiceIDs) == 0 || in.Date == "" || in.Time == "" {
		return nil, model.NewBadRequest("clientId, vehicleId, serviceIds, date and time are required")
	}

	date, err := NormalizeDate(in.Date)
	if err != nil {
		return nil, err
	}
	if err := ValidateTime(in.Time); err != nil {
		return nil, err
	}

	status := strings.ToLower(in.Status)
	if status == "" {
		status = model.StatusPending
	}
	if !ValidStatus(status) {
		return nil, model.NewBadRequest(fmt.Sprintf("unknown booking status %q", in.Status))
	}

	var created *model.Booking
	err = db.Transaction(func(tx *gorm.DB) error {
		scoped := database.ScopedTo(tx, tenantID)

		client, err := ResolveClientRef(scoped, in.ClientRef)
		if err != nil {
			return err
		}

		vehicle, err := RequireVehicleOwner(scoped, client.ID, in.VehicleID)
		if err != nil {
			return err
		}

		services, err := requireServices(scoped, in.ServiceIDs)
		if err != nil {
			return err
		}

		if err := requireFreeSlot(scoped, vehicle.ID, date, in.Time, 0); err != nil {
			return err
		}

		b := model.Booking{
			Date:                date,
			Time:                in.Time,
			Status:              status,
			SpecialInstructions: in.SpecialInstructions,
			Location:            in.Location,
			ClientPhone:         in.ClientPhone,
			ClientID:            client.ID,
			VehicleID:           vehicle.ID,
			TenantID:            tenantID,
			Services:            services,
		}

		// Omit("Services.*") writes the booking_services join rows without
		// re-upserting the service records themselves.
		if err := tx.Omit("Services.*").Create(&b).Error; err != nil {
			if isUniqueViolation(err) {
				return model.NewConflict("time slot already booked for this vehicle")
			}
			return err
		}

		created = &b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update applies an admin booking update. Status changes go through the
// transition table; date or time changes re-check the slot.
func Update(db *gorm.DB, tenantID, bookingID uint, in UpdateInput) (*model.Booking, error) {
	var updated *model.Booking
	err := db.Transaction(func(tx *gorm.DB) error {
		scoped := database.ScopedTo(tx, tenantID)

		b, err := RequireBookingInTenant(scoped, bookingID)
		if err != nil {
			return err
		}

		if in.Date != nil {
			date, err := NormalizeDate(*in.Date)
			if err != nil {
				return err
			}
			b.Date = date
		}
		if in.Time != nil {
			if err := ValidateTime(*in.Time); err != nil {
				return err
			}
			b.Time = *in.Time
		}
		if in.Date != nil || in.Time != nil {
			if err := requireFreeSlot(scoped, b.VehicleID, b.Date, b.Time, b.ID); err != nil {
				return err
			}
		}
		if in.SpecialInstructions != nil {
			b.SpecialInstructions = *in.SpecialInstructions
		}
		if in.Location != nil {
			b.Location = *in.Location
		}
		if in.Status != nil && !strings.EqualFold(*in.Status, b.Status) {
			if err := Transition(b, *in.Status); err != nil {
				return err
			}
		}

		if in.ServiceIDs != nil {
			services, err := requireServices(scoped, in.ServiceIDs)
			if err != nil {
				return err
			}
			if err := tx.Model(b).Association("Services").Replace(services); err != nil {
				return err
			}
			b.Services = services
		}

		if err := tx.Omit("Services").Save(b).Error; err != nil {
			if isUniqueViolation(err) {
				return model.NewConflict("time slot already booked for this vehicle")
			}
			return err
		}
		updated = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Cancel moves a booking to cancelled if the transition table allows it
func Cancel(db *gorm.DB, b *model.Booking) error {
	if err := Transition(b, model.StatusCancelled); err != nil {
		return err
	}
	return db.Model(b).Update("status", b.Status).Error
}

// Complete moves a booking to completed
func Complete(db *gorm.DB, b *model.Booking) error {
	if err := Transition(b, model.StatusCompleted); err != nil {
		return err
	}
	return db.Model(b).Update("status", b.Status).Error
}

// Reschedule overwrites the slot and marks the booking rescheduled. Legal
// from any non-terminal state.
func Reschedule(db *gorm.DB, tenantID uint, b *model.Booking, dateStr, timeStr string) error {
	date, err := NormalizeDate(dateStr)
	if err != nil {
		return err
	}
	if err := ValidateTime(timeStr); err != nil {
		return err
	}
	if err := Transition(b, model.StatusRescheduled); err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		scoped := database.ScopedTo(tx, tenantID)
		if err := requireFreeSlot(scoped, b.VehicleID, date, timeStr, b.ID); err != nil {
			return err
		}
		b.Date = date
		b.Time = timeStr
		err := tx.Model(b).Updates(map[string]interface{}{
			"date":   b.Date,
			"time":   b.Time,
			"status": b.Status,
		}).Error
		if err != nil && isUniqueViolation(err) {
			return model.NewConflict("time slot already booked for this vehicle")
		}
		return err
	})
}

// Delete removes a booking and its service links
func Delete(db *gorm.DB, b *model.Booking) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(b).Association("Services").Clear(); err != nil {
			return err
		}
		return tx.Delete(b).Error
	})
}

// requireServices loads the requested services on a tenant-scoped handle. A
// count mismatch means an id is unknown or belongs to another tenant.
func requireServices(db *gorm.DB, ids []uint) ([]model.Service, error) {
	var services []model.Service
	if err := db.Where("id IN ?", ids).Find(&services).Error; err != nil {
		return nil, err
	}
	if len(services) != len(ids) {
		return nil, model.NewBadRequest("one or more services do not exist for this tenant")
	}
	return services, nil
}

// requireFreeSlot rejects a second active booking on the same vehicle slot.
// The unique index on (tenant_id, vehicle_id, date, time) backs this check
// against concurrent writers; this read gives the friendlier error first.
func requireFreeSlot(db *gorm.DB, vehicleID uint, date time.Time, timeStr string, excludeID uint) error {
	var count int64
	q := db.Model(&model.Booking{}).
		Where("vehicle_id = ? AND date = ? AND time = ?", vehicleID, date, timeStr).
		Where("status NOT IN ?", []string{model.StatusCancelled})
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return model.NewConflict("time slot already booked for this vehicle")
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
