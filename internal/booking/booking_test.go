package booking

import (
	"testing"

	"github.com/ldrseguros/estetica-backend/internal/model"
	"github.com/ldrseguros/estetica-backend/pkg/database"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory sqlite database with the full schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// A second connection would see a different in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

type fixture struct {
	tenant  model.Tenant
	user    model.User
	client  model.ClientProfile
	vehicle model.Vehicle
	wash    model.Service
	polish  model.Service
}

// seedTenant creates a tenant with one client, one vehicle and two services
func seedTenant(t *testing.T, db *gorm.DB, subdomain string) fixture {
	t.Helper()

	f := fixture{
		tenant: model.Tenant{
			Name:               subdomain,
			Subdomain:          subdomain,
			SubscriptionStatus: model.SubscriptionActive,
		},
	}
	require.NoError(t, db.Create(&f.tenant).Error)

	f.user = model.User{
		Email:    subdomain + "-client@example.com",
		Password: "hash",
		Role:     model.RoleClient,
		TenantID: &f.tenant.ID,
	}
	require.NoError(t, db.Create(&f.user).Error)

	f.client = model.ClientProfile{
		Name:     "Ana",
		WhatsApp: "+5511999990000",
		UserID:   f.user.ID,
		TenantID: f.tenant.ID,
	}
	require.NoError(t, db.Create(&f.client).Error)

	f.vehicle = model.Vehicle{
		Brand:    "Toyota",
		Model:    "Corolla",
		Year:     2022,
		Plate:    "ABC1D23",
		ClientID: f.client.ID,
		TenantID: f.tenant.ID,
	}
	require.NoError(t, db.Create(&f.vehicle).Error)

	f.wash = model.Service{
		Title:       "Lavagem completa",
		Price:       120,
		DurationMin: 60,
		TenantID:    f.tenant.ID,
	}
	require.NoError(t, db.Create(&f.wash).Error)

	f.polish = model.Service{
		Title:       "Polimento",
		Price:       350,
		DurationMin: 30,
		TenantID:    f.tenant.ID,
	}
	require.NoError(t, db.Create(&f.polish).Error)

	return f
}

// createBooking writes a valid pending booking for the fixture
func createBooking(t *testing.T, db *gorm.DB, f fixture, date, timeStr string) *model.Booking {
	t.Helper()

	b, err := Create(db, f.tenant.ID, CreateInput{
		ClientRef:  f.client.ID,
		VehicleID:  f.vehicle.ID,
		ServiceIDs: []uint{f.wash.ID},
		Date:       date,
		Time:       timeStr,
	})
	require.NoError(t, err)
	return b
}
