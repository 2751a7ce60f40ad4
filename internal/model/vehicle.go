package model

import (
	"time"

	"gorm.io/gorm"
)

// Vehicle belongs to exactly one ClientProfile and is scoped to a tenant.
// Plate uniqueness is checked in the admin path only; the client self-service
// path allows duplicate plates.
type Vehicle struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Brand     string         `json:"brand" gorm:"type:varchar(50)"`
	Model     string         `json:"model" gorm:"type:varchar(50)"`
	Year      int            `json:"year"`
	Plate     string         `json:"plate" gorm:"type:varchar(10);index"`
	Color     string         `json:"color" gorm:"type:varchar(30)"`
	ClientID  uint           `json:"client_id" gorm:"index;not null"`
	TenantID  uint           `json:"tenant_id" gorm:"index;not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Client ClientProfile `json:"client,omitempty" gorm:"foreignKey:ClientID"`
}
