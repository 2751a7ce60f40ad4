package model

import (
	"time"

	"gorm.io/gorm"
)

// DefaultServiceDuration is assumed when a service has no duration set
const DefaultServiceDuration = 60

// Service is a catalog entry (wash, polish, ceramic coating...) scoped to a
// tenant. A service cannot be deleted while any booking still links to it.
type Service struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Title       string         `json:"title" gorm:"type:varchar(100)"`
	Description string         `json:"description" gorm:"type:text"`
	Price       float64        `json:"price"`
	DurationMin int            `json:"duration_min" gorm:"default:60"`
	ImageURL    string         `json:"image_url" gorm:"type:varchar(255)"`
	TenantID    uint           `json:"tenant_id" gorm:"index;not null"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// Duration returns the service duration in minutes, falling back to the
// default when unset.
func (s *Service) Duration() int {
	if s.DurationMin <= 0 {
		return DefaultServiceDuration
	}
	return s.DurationMin
}
