package booking

import (
	"github.com/ldrseguros/estetica-backend/internal/model"
	"gorm.io/gorm"
)

// DeleteVehicle removes a vehicle together with its bookings and their
// service links, so no join rows are left dangling. Deletes are physical:
// a soft-delete marker would leave rows that count as orphans once the
// owning record is gone. Runs in one transaction.
func DeleteVehicle(db *gorm.DB, vehicle *model.Vehicle) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var bookingIDs []uint
		if err := tx.Model(&model.Booking{}).
			Where("vehicle_id = ?", vehicle.ID).
			Pluck("id", &bookingIDs).Error; err != nil {
			return err
		}
		if len(bookingIDs) > 0 {
			if err := tx.Exec("DELETE FROM booking_services WHERE booking_id IN ?", bookingIDs).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", bookingIDs).Delete(&model.Booking{}).Error; err != nil {
				return err
			}
		}
		return tx.Unscoped().Delete(vehicle).Error
	})
}

// DeleteClientAccount removes a client profile, its vehicles, bookings and
// service links, and finally the auth account itself. Everything happens in
// a single transaction so a failure leaves no partial state behind.
func DeleteClientAccount(db *gorm.DB, profile *model.ClientProfile) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var bookingIDs []uint
		if err := tx.Model(&model.Booking{}).
			Where("client_id = ?", profile.ID).
			Pluck("id", &bookingIDs).Error; err != nil {
			return err
		}
		if len(bookingIDs) > 0 {
			if err := tx.Exec("DELETE FROM booking_services WHERE booking_id IN ?", bookingIDs).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", bookingIDs).Delete(&model.Booking{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Unscoped().Where("client_id = ?", profile.ID).Delete(&model.Vehicle{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Delete(profile).Error; err != nil {
			return err
		}
		return tx.Unscoped().Where("id = ?", profile.UserID).Delete(&model.User{}).Error
	})
}
