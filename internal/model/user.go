package model

import (
	"time"

	"gorm.io/gorm"
)

// Account roles
const (
	RoleClient      = "CLIENT"
	RoleEmployee    = "EMPLOYEE"
	RoleTenantAdmin = "TENANT_ADMIN"
	RoleSuperAdmin  = "SUPER_ADMIN"
)

// User is a login identity. Email is unique within a tenant; a user owns at
// most one ClientProfile or EmployeeProfile depending on its role. TenantID is
// nil only for SUPER_ADMIN accounts.
type User struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Email     string         `json:"email" gorm:"type:varchar(100);uniqueIndex:idx_users_email_tenant"`
	Password  string         `json:"-" gorm:"type:varchar(255)"`
	Role      string         `json:"role" gorm:"type:varchar(20);not null;default:'CLIENT'"`
	TenantID  *uint          `json:"tenant_id,omitempty" gorm:"uniqueIndex:idx_users_email_tenant;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// IsStaff reports whether the role may use the tenant admin surface
func (u *User) IsStaff() bool {
	return u.Role == RoleEmployee || u.Role == RoleTenantAdmin || u.Role == RoleSuperAdmin
}
