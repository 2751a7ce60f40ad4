package booking

import (
	"net/http"
	"testing"

	"github.com/ldrseguros/estetica-backend/internal/model"
	"github.com/ldrseguros/estetica-backend/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveClientRef(t *testing.T) {
	db := newTestDB(t)
	f := seedTenant(t, db, "detail-a")
	scoped := database.ScopedTo(db, f.tenant.ID)

	// Profile id resolves directly
	p, err := ResolveClientRef(scoped, f.client.ID)
	require.NoError(t, err)
	assert.Equal(t, f.client.ID, p.ID)

	// An account id with no matching profile id falls through to the
	// user_id lookup. Pad the users table so the two id spaces diverge.
	for i := 0; i < 3; i++ {
		u := model.User{Email: string(rune('a'+i)) + "@pad.example.com", Role: model.RoleClient, TenantID: &f.tenant.ID}
		require.NoError(t, db.Create(&u).Error)
	}
	late := model.User{Email: "late@example.com", Role: model.RoleClient, TenantID: &f.tenant.ID}
	require.NoError(t, db.Create(&late).Error)
	lateProfile := model.ClientProfile{Name: "Carla", UserID: late.ID, TenantID: f.tenant.ID}
	require.NoError(t, db.Create(&lateProfile).Error)
	require.NotEqual(t, late.ID, lateProfile.ID)

	p, err = ResolveClientRef(scoped, late.ID)
	require.NoError(t, err)
	assert.Equal(t, lateProfile.ID, p.ID)

	// Unknown reference
	_, err = ResolveClientRef(scoped, 9999)
	assert.Equal(t, http.StatusNotFound, model.HTTPStatus(err))
}

func TestResolveClientRefCrossTenant(t *testing.T) {
	db := newTestDB(t)
	a := seedTenant(t, db, "detail-a")
	b := seedTenant(t, db, "detail-b")

	_, err := ResolveClientRef(database.ScopedTo(db, b.tenant.ID), a.client.ID)
	assert.Equal(t, http.StatusNotFound, model.HTTPStatus(err))
}

func TestResolveClientProfile(t *testing.T) {
	db := newTestDB(t)
	f := seedTenant(t, db, "detail-a")
	scoped := database.ScopedTo(db, f.tenant.ID)

	p, err := ResolveClientProfile(scoped, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, f.client.ID, p.ID)

	// An account without a profile is rejected, not served
	orphan := model.User{Email: "orphan@example.com", Role: model.RoleClient, TenantID: &f.tenant.ID}
	require.NoError(t, db.Create(&orphan).Error)

	_, err = ResolveClientProfile(scoped, orphan.ID)
	assert.Equal(t, http.StatusForbidden, model.HTTPStatus(err))
}

func TestResolveTenant(t *testing.T) {
	db := newTestDB(t)
	f := seedTenant(t, db, "detail-a")

	id, err := ResolveTenant(db, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, f.tenant.ID, id)

	super := model.User{Email: "root@example.com", Role: model.RoleSuperAdmin}
	require.NoError(t, db.Create(&super).Error)
	_, err = ResolveTenant(db, super.ID)
	assert.Equal(t, http.StatusNotFound, model.HTTPStatus(err))

	_, err = ResolveTenant(db, 9999)
	assert.Equal(t, http.StatusNotFound, model.HTTPStatus(err))
}
