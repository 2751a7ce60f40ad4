package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ldrseguros/estetica-backend/internal/model"
	"github.com/ldrseguros/estetica-backend/pkg/database"
	"github.com/ldrseguros/estetica-backend/pkg/jwtutil"
	"github.com/ldrseguros/estetica-backend/pkg/logger"
	"github.com/ldrseguros/estetica-backend/prometheus"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}

	// Find user in database - track DB operation duration
	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	result := database.GetDB().Where("email = ?", req.Email).First(&user)
	if result.Error != nil {
		log.Warn("User not found", zap.String("email", req.Email))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid credentials"})
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Warn("Invalid password", zap.String("email", req.Email))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid credentials"})
	}

	token, err := jwtutil.GenerateToken(user.Email, user.ID, user.Role, user.TenantID)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "token error"})
	}

	log.Info("User logged in",
		zap.String("email", user.Email),
		zap.String("role", user.Role))

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user": echo.Map{
			"id":       user.ID,
			"email":    user.Email,
			"name":     displayName(&user),
			"role":     user.Role,
			"tenantId": user.TenantID,
		},
	})
}

// Register creates a CLIENT account and its profile in one transaction, so a
// half-created account without a profile row is never observed.
func Register(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RegisterCounter.Inc()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
		WhatsApp string `json:"whatsapp"`
		TenantID uint   `json:"tenantId"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse registration request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}

	if req.Email == "" || req.Password == "" || req.Name == "" || req.TenantID == 0 {
		prometheus.RecordAuthError("incomplete_registration")
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "email, password, name and tenantId are required"})
	}

	db := database.GetDB()

	var tenant model.Tenant
	if err := db.First(&tenant, req.TenantID).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "tenant not found"})
	}

	var existing model.User
	err := db.Where("email = ? AND tenant_id = ?", req.Email, req.TenantID).First(&existing).Error
	if err == nil {
		log.Warn("Email already registered", zap.String("email", req.Email))
		prometheus.RecordAuthError("email_already_exists")
		return c.JSON(http.StatusConflict, echo.Map{"message": "email already registered"})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "registration failed"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "registration failed"})
	}

	user := model.User{
		Email:    req.Email,
		Password: string(hashed),
		Role:     model.RoleClient,
		TenantID: &tenant.ID,
	}
	profile := model.ClientProfile{
		Name:     req.Name,
		WhatsApp: req.WhatsApp,
		TenantID: tenant.ID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		profile.UserID = user.ID
		return tx.Create(&profile).Error
	})
	if err != nil {
		log.Error("Failed to create account", zap.Error(err))
		prometheus.RecordAuthError("user_creation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "registration failed"})
	}

	log.Info("Client registered",
		zap.String("email", user.Email),
		zap.Uint("tenant_id", tenant.ID))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "account created",
		"user": echo.Map{
			"id":       user.ID,
			"email":    user.Email,
			"name":     profile.Name,
			"role":     user.Role,
			"tenantId": user.TenantID,
		},
	})
}

// displayName resolves the profile name matching the account's role
func displayName(u *model.User) string {
	db := database.GetDB()
	switch u.Role {
	case model.RoleClient:
		var p model.ClientProfile
		if err := db.Where("user_id = ?", u.ID).First(&p).Error; err == nil {
			return p.Name
		}
	case model.RoleEmployee:
		var p model.EmployeeProfile
		if err := db.Where("user_id = ?", u.ID).First(&p).Error; err == nil {
			return p.Name
		}
	}
	return u.Email
}
