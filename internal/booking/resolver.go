package booking

import (
	"errors"

	"github.com/ldrseguros/estetica-backend/internal/model"
	"gorm.io/gorm"
)

// ResolveClientProfile maps an authenticated CLIENT account id to its profile.
// A missing profile row means the account was created without a completed
// profile transaction, so the caller is rejected rather than served.
func ResolveClientProfile(db *gorm.DB, accountID uint) (*model.ClientProfile, error) {
	var profile model.ClientProfile
	err := db.Where("user_id = ?", accountID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NewForbidden("no client profile for this account")
		}
		return nil, err
	}
	return &profile, nil
}

// ResolveTenant returns the tenant id attached to an account
func ResolveTenant(db *gorm.DB, accountID uint) (uint, error) {
	var user model.User
	err := db.First(&user, accountID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, model.NewNotFound("account not found")
		}
		return 0, err
	}
	if user.TenantID == nil {
		return 0, model.NewNotFound("account has no tenant")
	}
	return *user.TenantID, nil
}

// ResolveClientRef normalizes the dual client identifier convention: admin
// callers send either a ClientProfile id or the underlying account id. The
// profile id is tried first, then the account id. The handle must already be
// tenant-scoped so neither lookup can cross tenants.
func ResolveClientRef(db *gorm.DB, ref uint) (*model.ClientProfile, error) {
	var profile model.ClientProfile
	err := db.Where("id = ?", ref).First(&profile).Error
	if err == nil {
		return &profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = db.Where("user_id = ?", ref).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NewNotFound("client not found")
		}
		return nil, err
	}
	return &profile, nil
}
