package handler

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ldrseguros/estetica-backend/internal/model"
	"github.com/ldrseguros/estetica-backend/pkg/database"
	"github.com/ldrseguros/estetica-backend/pkg/logger"
	"github.com/ldrseguros/estetica-backend/prometheus"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// trialPeriod is how long a fresh tenant can operate before subscribing
const trialPeriod = 14 * 24 * time.Hour

var subdomainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{1,61}[a-z0-9])?$`)

// SignupRequest creates a tenant together with its first admin account
type SignupRequest struct {
	BusinessName string `json:"businessName"`
	Subdomain    string `json:"subdomain"`
	AdminName    string `json:"adminName"`
	Email        string `json:"email"`
	Password     string `json:"password"`
}

// Signup provisions a new tenant on a trial subscription and creates the
// tenant admin account, all in one transaction
func Signup(c echo.Context) error {
	log := logger.FromContext(c)

	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}
	req.Subdomain = strings.ToLower(strings.TrimSpace(req.Subdomain))

	if req.BusinessName == "" || req.Subdomain == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "businessName, subdomain, email and password are required"})
	}
	if !subdomainPattern.MatchString(req.Subdomain) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "subdomain must be lowercase letters, digits and hyphens"})
	}
	if len(req.Password) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "password must have at least 6 characters"})
	}

	db := database.GetDB()

	var taken int64
	if err := db.Model(&model.Tenant{}).Where("subdomain = ?", req.Subdomain).Count(&taken).Error; err != nil {
		return respondError(c, log, err)
	}
	if taken > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"message": "subdomain already in use"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return respondError(c, log, err)
	}

	trialEnd := time.Now().Add(trialPeriod)

	var tenant model.Tenant
	err = db.Transaction(func(tx *gorm.DB) error {
		tenant = model.Tenant{
			Name:               req.BusinessName,
			Subdomain:          req.Subdomain,
			SubscriptionStatus: model.SubscriptionTrial,
			TrialEndsAt:        &trialEnd,
		}
		if err := tx.Create(&tenant).Error; err != nil {
			return err
		}

		admin := model.User{
			Email:    req.Email,
			Password: string(hashed),
			Role:     model.RoleTenantAdmin,
			TenantID: &tenant.ID,
		}
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}

		name := req.AdminName
		if name == "" {
			name = req.BusinessName
		}
		profile := model.EmployeeProfile{
			Name:     name,
			UserID:   admin.ID,
			TenantID: tenant.ID,
		}
		return tx.Create(&profile).Error
	})
	if err != nil {
		return respondError(c, log, err)
	}

	prometheus.RecordSignup()
	log.Info("Tenant signed up",
		zap.Uint("tenant_id", tenant.ID),
		zap.String("subdomain", tenant.Subdomain))

	return c.JSON(http.StatusCreated, echo.Map{
		"tenant": echo.Map{
			"id":          tenant.ID,
			"name":        tenant.Name,
			"subdomain":   tenant.Subdomain,
			"status":      tenant.SubscriptionStatus,
			"trialEndsAt": tenant.TrialEndsAt,
		},
	})
}

// CheckSubdomain tells the signup form whether a subdomain is still free
func CheckSubdomain(c echo.Context) error {
	sub := strings.ToLower(strings.TrimSpace(c.Param("subdomain")))
	if sub == "" || !subdomainPattern.MatchString(sub) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid subdomain"})
	}

	var taken int64
	if err := database.GetDB().Model(&model.Tenant{}).Where("subdomain = ?", sub).Count(&taken).Error; err != nil {
		return respondError(c, logger.FromContext(c), err)
	}
	return c.JSON(http.StatusOK, echo.Map{"subdomain": sub, "available": taken == 0})
}

// ListPlans returns the active subscription plans for the pricing page
func ListPlans(c echo.Context) error {
	log := logger.FromContext(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var plans []model.SubscriptionPlan
	if err := database.GetDB().Where("active = ?", true).Order("monthly_price asc").Find(&plans).Error; err != nil {
		return respondError(c, log, err)
	}
	return c.JSON(http.StatusOK, plans)
}
