package booking

import (
	"github.com/ldrseguros/estetica-backend/internal/model"
	"gorm.io/gorm"
)

// AvailableSlots returns the tenant's slot grid minus times already taken by
// an active booking on the given date. With no vehicle known yet this is a
// coarse availability hint, not a reservation.
func AvailableSlots(db *gorm.DB, grid []string, dateStr string) ([]string, error) {
	date, err := NormalizeDate(dateStr)
	if err != nil {
		return nil, err
	}

	var taken []string
	err = db.Model(&model.Booking{}).
		Where("date = ?", date).
		Where("status NOT IN ?", []string{model.StatusCancelled}).
		Pluck("time", &taken).Error
	if err != nil {
		return nil, err
	}

	busy := make(map[string]bool, len(taken))
	for _, t := range taken {
		busy[t] = true
	}

	free := make([]string, 0, len(grid))
	for _, slot := range grid {
		if !busy[slot] {
			free = append(free, slot)
		}
	}
	return free, nil
}
