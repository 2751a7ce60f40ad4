package model

import (
	"time"

	"gorm.io/gorm"
)

// Subscription status values for a tenant account
const (
	SubscriptionTrial    = "TRIAL"
	SubscriptionActive   = "ACTIVE"
	SubscriptionPastDue  = "PAST_DUE"
	SubscriptionCanceled = "CANCELED"
	SubscriptionExpired  = "EXPIRED"
)

// Tenant represents one detailing business. Every domain row carries a tenant
// id; cross-tenant reads and writes are rejected at the middleware and query
// scope layers.
type Tenant struct {
	ID                 uint           `json:"id" gorm:"primaryKey"`
	Name               string         `json:"name" gorm:"type:varchar(100)"`
	Subdomain          string         `json:"subdomain" gorm:"type:varchar(63);uniqueIndex"`
	SubscriptionStatus string         `json:"subscription_status" gorm:"type:varchar(20);default:'TRIAL'"`
	PlanID             *uint          `json:"plan_id,omitempty" gorm:"index"`
	StripeCustomerID   string         `json:"-" gorm:"type:varchar(100)"`
	TrialEndsAt        *time.Time     `json:"trial_ends_at,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `json:"-" gorm:"index"`

	Plan *SubscriptionPlan `json:"plan,omitempty" gorm:"foreignKey:PlanID"`
}

// SubscriptionPlan is a sellable plan listed on the public signup page
type SubscriptionPlan struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	Name          string         `json:"name" gorm:"type:varchar(50)"`
	Description   string         `json:"description" gorm:"type:text"`
	MonthlyPrice  float64        `json:"monthly_price"`
	StripePriceID string         `json:"-" gorm:"type:varchar(100)"`
	MaxEmployees  int            `json:"max_employees" gorm:"default:5"`
	Active        bool           `json:"active" gorm:"default:true"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}

// SubscriptionBlocked reports whether the tenant's subscription no longer
// admits tenant-scoped operations.
func (t *Tenant) SubscriptionBlocked() bool {
	switch t.SubscriptionStatus {
	case SubscriptionCanceled, SubscriptionExpired:
		return true
	}
	return false
}
