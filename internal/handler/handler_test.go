package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ldrseguros/estetica-backend/internal/billing"
	"github.com/ldrseguros/estetica-backend/internal/booking"
	"github.com/ldrseguros/estetica-backend/internal/model"
	"github.com/ldrseguros/estetica-backend/internal/notify"
	"github.com/ldrseguros/estetica-backend/pkg/config"
	"github.com/ldrseguros/estetica-backend/pkg/database"
	"github.com/ldrseguros/estetica-backend/pkg/jwtutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupHandlerTest swaps the package database for in-memory sqlite and wires
// the handler collaborators with inert providers
func setupHandlerTest(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	database.DB = db

	testCfg := &config.Config{
		JWT:     config.JWTConfig{SigningKey: "test-key", ExpirationHours: 1},
		Booking: config.BookingConfig{SlotTimes: []string{"08:00", "09:00", "10:00"}},
	}
	testCfg.Server.UploadDir = t.TempDir()
	jwtutil.Initialize(&testCfg.JWT)

	log := zap.NewNop()
	Init(testCfg,
		notify.NewDispatcher(&testCfg.Notify, log),
		billing.New(&testCfg.Stripe, billing.NewStatusCache(&testCfg.Redis), log))
	return db
}

func seedHandlerTenant(t *testing.T, db *gorm.DB) (model.Tenant, model.ClientProfile) {
	t.Helper()

	tenant := model.Tenant{Name: "Detail A", Subdomain: "detail-a", SubscriptionStatus: model.SubscriptionActive}
	require.NoError(t, db.Create(&tenant).Error)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := model.User{Email: "ana@example.com", Password: string(hash), Role: model.RoleClient, TenantID: &tenant.ID}
	require.NoError(t, db.Create(&user).Error)
	profile := model.ClientProfile{Name: "Ana", UserID: user.ID, TenantID: tenant.ID}
	require.NoError(t, db.Create(&profile).Error)

	return tenant, profile
}

// request builds an echo context carrying a resolved tenant, the way the
// guard middleware leaves it
func request(method, target, body string, tenantID uint) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if tenantID != 0 {
		c.Set("tenant_id", tenantID)
	}
	return c, rec
}

func TestLogin(t *testing.T) {
	db := setupHandlerTest(t)
	tenant, _ := seedHandlerTenant(t, db)

	c, rec := request(http.MethodPost, "/api/auth/login",
		`{"email":"ana@example.com","password":"secret123"}`, 0)
	require.NoError(t, Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string `json:"token"`
		User  struct {
			Name     string `json:"name"`
			Role     string `json:"role"`
			TenantID *uint  `json:"tenantId"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "Ana", resp.User.Name)
	assert.Equal(t, model.RoleClient, resp.User.Role)
	require.NotNil(t, resp.User.TenantID)
	assert.Equal(t, tenant.ID, *resp.User.TenantID)

	claims, err := jwtutil.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", claims.Email)

	c, rec = request(http.MethodPost, "/api/auth/login",
		`{"email":"ana@example.com","password":"wrong"}`, 0)
	require.NoError(t, Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegister(t *testing.T) {
	db := setupHandlerTest(t)
	tenant, _ := seedHandlerTenant(t, db)

	body := `{"email":"bia@example.com","password":"secret123","name":"Bia","tenantId":` + strconv.Itoa(int(tenant.ID)) + `}`
	c, rec := request(http.MethodPost, "/api/auth/register", body, 0)
	require.NoError(t, Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	// The account and its profile were written together
	var user model.User
	require.NoError(t, db.Where("email = ?", "bia@example.com").First(&user).Error)
	var profile model.ClientProfile
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&profile).Error)
	assert.Equal(t, "Bia", profile.Name)

	// Same email in the same tenant conflicts
	c, rec = request(http.MethodPost, "/api/auth/register", body, 0)
	require.NoError(t, Register(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateAdminVehicleDuplicatePlate(t *testing.T) {
	db := setupHandlerTest(t)
	tenant, profile := seedHandlerTenant(t, db)

	body := `{"brand":"Fiat","model":"Argo","plate":"XYZ9A88","clientId":` + strconv.Itoa(int(profile.ID)) + `}`
	c, rec := request(http.MethodPost, "/api/vehicles/admin", body, tenant.ID)
	require.NoError(t, CreateAdminVehicle(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	c, rec = request(http.MethodPost, "/api/vehicles/admin", body, tenant.ID)
	require.NoError(t, CreateAdminVehicle(c))
	assert.Equal(t, http.StatusConflict, rec.Code)

	// The same plate under another tenant is fine
	other := model.Tenant{Name: "Detail B", Subdomain: "detail-b", SubscriptionStatus: model.SubscriptionActive}
	require.NoError(t, db.Create(&other).Error)
	otherUser := model.User{Email: "cris@example.com", Role: model.RoleClient, TenantID: &other.ID}
	require.NoError(t, db.Create(&otherUser).Error)
	otherProfile := model.ClientProfile{Name: "Cris", UserID: otherUser.ID, TenantID: other.ID}
	require.NoError(t, db.Create(&otherProfile).Error)

	body = `{"brand":"Fiat","model":"Argo","plate":"XYZ9A88","clientId":` + strconv.Itoa(int(otherProfile.ID)) + `}`
	c, rec = request(http.MethodPost, "/api/vehicles/admin", body, other.ID)
	require.NoError(t, CreateAdminVehicle(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreateAdminVehiclePlateCheckFailure(t *testing.T) {
	db := setupHandlerTest(t)
	tenant, profile := seedHandlerTenant(t, db)

	// A broken duplicate check must not read as "no duplicate"
	require.NoError(t, db.Exec("DROP TABLE vehicles").Error)

	body := `{"brand":"Fiat","model":"Argo","plate":"XYZ9A88","clientId":` + strconv.Itoa(int(profile.ID)) + `}`
	c, rec := request(http.MethodPost, "/api/vehicles/admin", body, tenant.ID)
	require.NoError(t, CreateAdminVehicle(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDeleteServiceBlockedByBookings(t *testing.T) {
	db := setupHandlerTest(t)
	tenant, profile := seedHandlerTenant(t, db)

	service := model.Service{Title: "Lavagem", Price: 100, DurationMin: 60, TenantID: tenant.ID}
	require.NoError(t, db.Create(&service).Error)
	vehicle := model.Vehicle{Brand: "Fiat", Model: "Argo", Plate: "XYZ9A88", ClientID: profile.ID, TenantID: tenant.ID}
	require.NoError(t, db.Create(&vehicle).Error)

	b := model.Booking{
		Date:      mustDate(t, "2024-06-15"),
		Time:      "09:00",
		Status:    model.StatusPending,
		ClientID:  profile.ID,
		VehicleID: vehicle.ID,
		TenantID:  tenant.ID,
		Services:  []model.Service{service},
	}
	require.NoError(t, db.Omit("Services.*").Create(&b).Error)

	c, rec := request(http.MethodDelete, "/api/services/admin/1", "", tenant.ID)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(service.ID)))
	require.NoError(t, DeleteService(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Once the booking is gone the service can be removed
	require.NoError(t, db.Exec("DELETE FROM booking_services WHERE booking_id = ?", b.ID).Error)
	require.NoError(t, db.Delete(&b).Error)

	c, rec = request(http.MethodDelete, "/api/services/admin/1", "", tenant.ID)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(service.ID)))
	require.NoError(t, DeleteService(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var remaining int64
	require.NoError(t, db.Model(&model.Service{}).Where("id = ?", service.ID).Count(&remaining).Error)
	assert.Zero(t, remaining)
}

func TestSignupAndCheckSubdomain(t *testing.T) {
	setupHandlerTest(t)

	body := `{"businessName":"Brilho Total","subdomain":"brilho","adminName":"Duda","email":"duda@example.com","password":"secret123"}`
	c, rec := request(http.MethodPost, "/api/public/signup", body, 0)
	require.NoError(t, Signup(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	db := database.GetDB()
	var tenant model.Tenant
	require.NoError(t, db.Where("subdomain = ?", "brilho").First(&tenant).Error)
	assert.Equal(t, model.SubscriptionTrial, tenant.SubscriptionStatus)
	require.NotNil(t, tenant.TrialEndsAt)

	var admin model.User
	require.NoError(t, db.Where("email = ?", "duda@example.com").First(&admin).Error)
	assert.Equal(t, model.RoleTenantAdmin, admin.Role)

	// Taken subdomain conflicts
	c, rec = request(http.MethodPost, "/api/public/signup", body, 0)
	require.NoError(t, Signup(c))
	assert.Equal(t, http.StatusConflict, rec.Code)

	c, rec = request(http.MethodGet, "/api/public/check-subdomain/brilho", "", 0)
	c.SetParamNames("subdomain")
	c.SetParamValues("brilho")
	require.NoError(t, CheckSubdomain(c))
	var check struct {
		Available bool `json:"available"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &check))
	assert.False(t, check.Available)

	c, rec = request(http.MethodGet, "/api/public/check-subdomain/livre", "", 0)
	c.SetParamNames("subdomain")
	c.SetParamValues("livre")
	require.NoError(t, CheckSubdomain(c))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &check))
	assert.True(t, check.Available)
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := booking.NormalizeDate(s)
	require.NoError(t, err)
	return d
}
