package model

import (
	"time"

	"gorm.io/gorm"
)

// ClientProfile is the customer-facing profile owned 1:1 by a CLIENT account.
// It is created inside the same transaction as its User; deleting it cascades
// through vehicles and bookings (see handler.DeleteClient).
type ClientProfile struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"type:varchar(100)"`
	WhatsApp  string         `json:"whatsapp" gorm:"type:varchar(30)"`
	UserID    uint           `json:"user_id" gorm:"uniqueIndex;not null"`
	TenantID  uint           `json:"tenant_id" gorm:"index;not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// EmployeeProfile is the staff profile owned 1:1 by an EMPLOYEE account
type EmployeeProfile struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"type:varchar(100)"`
	Position  string         `json:"position" gorm:"type:varchar(50)"`
	UserID    uint           `json:"user_id" gorm:"uniqueIndex;not null"`
	TenantID  uint           `json:"tenant_id" gorm:"index;not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
