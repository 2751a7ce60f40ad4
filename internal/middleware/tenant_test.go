package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/ldrseguros/estetica-backend/internal/model"
	"github.com/ldrseguros/estetica-backend/pkg/database"
	"github.com/ldrseguros/estetica-backend/pkg/jwtutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func guardTestDB(t *testing.T) (*gorm.DB, model.Tenant, model.Tenant) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	a := model.Tenant{Name: "Detail A", Subdomain: "detail-a", SubscriptionStatus: model.SubscriptionActive}
	b := model.Tenant{Name: "Detail B", Subdomain: "detail-b", SubscriptionStatus: model.SubscriptionActive}
	require.NoError(t, db.Create(&a).Error)
	require.NoError(t, db.Create(&b).Error)
	return db, a, b
}

// runGuard sends one request through the guard and reports the response and
// the tenant id the guard resolved
func runGuard(t *testing.T, db *gorm.DB, configure func(req *http.Request, c echo.Context)) (*httptest.ResponseRecorder, uint, bool) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/vehicles/admin", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if configure != nil {
		configure(req, c)
	}

	var resolved uint
	var ok bool
	h := TenantGuard(func() *gorm.DB { return db })(func(c echo.Context) error {
		resolved, ok = TenantID(c)
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec, resolved, ok
}

func TestTenantGuardHeader(t *testing.T) {
	db, a, _ := guardTestDB(t)

	rec, id, ok := runGuard(t, db, func(req *http.Request, c echo.Context) {
		req.Header.Set(TenantIDHeader, strconv.Itoa(int(a.ID)))
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, ok)
	assert.Equal(t, a.ID, id)
}

func TestTenantGuardSubdomain(t *testing.T) {
	db, _, b := guardTestDB(t)

	rec, id, ok := runGuard(t, db, func(req *http.Request, c echo.Context) {
		req.Host = "detail-b.estetica.app"
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, ok)
	assert.Equal(t, b.ID, id)
}

func TestTenantGuardUnknownTenant(t *testing.T) {
	db, _, _ := guardTestDB(t)

	rec, _, ok := runGuard(t, db, func(req *http.Request, c echo.Context) {
		req.Header.Set(TenantIDHeader, "9999")
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, ok)
}

func TestTenantGuardMissingContext(t *testing.T) {
	db, _, _ := guardTestDB(t)

	rec, _, ok := runGuard(t, db, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, ok)
}

func TestTenantGuardClaimsFallback(t *testing.T) {
	db, a, _ := guardTestDB(t)

	rec, id, ok := runGuard(t, db, func(req *http.Request, c echo.Context) {
		c.Set("user", &jwtutil.UserClaims{Role: model.RoleClient, TenantID: &a.ID})
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, ok)
	assert.Equal(t, a.ID, id)
}

func TestTenantGuardCrossTenantRejected(t *testing.T) {
	db, a, b := guardTestDB(t)

	rec, _, ok := runGuard(t, db, func(req *http.Request, c echo.Context) {
		req.Header.Set(TenantIDHeader, strconv.Itoa(int(b.ID)))
		c.Set("user", &jwtutil.UserClaims{Role: model.RoleTenantAdmin, TenantID: &a.ID})
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, ok)
}

func TestTenantGuardSuperAdminBypass(t *testing.T) {
	db, _, b := guardTestDB(t)

	rec, id, ok := runGuard(t, db, func(req *http.Request, c echo.Context) {
		req.Header.Set(TenantIDHeader, strconv.Itoa(int(b.ID)))
		c.Set("user", &jwtutil.UserClaims{Role: model.RoleSuperAdmin})
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, ok)
	assert.Equal(t, b.ID, id)
}

func TestTenantGuardSkipsUnscopedPrefixes(t *testing.T) {
	db, _, _ := guardTestDB(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/public/signup", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := TenantGuard(func() *gorm.DB { return db })(func(c echo.Context) error {
		_, ok := TenantID(c)
		assert.False(t, ok, "no tenant is resolved on unscoped routes")
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTenantGuardAnnotatesLogger(t *testing.T) {
	db, a, _ := guardTestDB(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/vehicles/admin", nil)
	req.Header.Set(TenantIDHeader, strconv.Itoa(int(a.ID)))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	core, logs := observer.New(zapcore.InfoLevel)
	c.Set("logger", zap.New(core))

	h := TenantGuard(func() *gorm.DB { return db })(func(c echo.Context) error {
		inner, ok := c.Get("logger").(*zap.Logger)
		require.True(t, ok)
		inner.Info("handled")
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	require.Equal(t, http.StatusOK, rec.Code)

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.EqualValues(t, a.ID, fields["tenant_id"])
}
