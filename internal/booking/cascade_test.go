package booking

import (
	"testing"

	"github.com/ldrseguros/estetica-backend/internal/model"
	"github.com/ldrseguros/estetica-backend/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteClientAccount(t *testing.T) {
	db := newTestDB(t)
	f := seedTenant(t, db, "detail-a")
	other := seedTenant(t, db, "detail-b")

	createBooking(t, db, f, "2024-06-15", "10:00")
	createBooking(t, db, f, "2024-06-16", "10:00")
	keep := createBooking(t, db, other, "2024-06-15", "10:00")

	scoped := database.ScopedTo(db, f.tenant.ID)
	require.NoError(t, DeleteClientAccount(scoped, &f.client))

	// Nothing of the deleted client survives
	var bookings, vehicles, profiles, users, links int64
	db.Model(&model.Booking{}).Where("client_id = ?", f.client.ID).Count(&bookings)
	db.Model(&model.Vehicle{}).Where("client_id = ?", f.client.ID).Count(&vehicles)
	db.Unscoped().Model(&model.ClientProfile{}).Where("id = ?", f.client.ID).Count(&profiles)
	db.Unscoped().Model(&model.User{}).Where("id = ?", f.user.ID).Count(&users)
	db.Table("booking_services").
		Where("booking_id NOT IN (?)", db.Model(&model.Booking{}).Select("id")).
		Count(&links)

	assert.Zero(t, bookings)
	assert.Zero(t, vehicles)
	assert.Zero(t, profiles)
	assert.Zero(t, users)
	assert.Zero(t, links, "no orphaned service links")

	// The other tenant's data is untouched
	var remaining model.Booking
	require.NoError(t, db.First(&remaining, keep.ID).Error)
	assert.Equal(t, other.tenant.ID, remaining.TenantID)
}

func TestDeleteVehicle(t *testing.T) {
	db := newTestDB(t)
	f := seedTenant(t, db, "detail-a")

	createBooking(t, db, f, "2024-06-15", "10:00")
	scoped := database.ScopedTo(db, f.tenant.ID)
	require.NoError(t, DeleteVehicle(scoped, &f.vehicle))

	var bookings, vehicles, links int64
	db.Model(&model.Booking{}).Count(&bookings)
	db.Model(&model.Vehicle{}).Count(&vehicles)
	db.Table("booking_services").Count(&links)
	assert.Zero(t, bookings)
	assert.Zero(t, vehicles)
	assert.Zero(t, links)

	// The client itself survives a vehicle delete
	var profile model.ClientProfile
	require.NoError(t, db.First(&profile, f.client.ID).Error)
}
