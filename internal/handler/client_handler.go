package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ldrseguros/estetica-backend/internal/booking"
	"github.com/ldrseguros/estetica-backend/internal/model"
	"github.com/ldrseguros/estetica-backend/pkg/database"
	"github.com/ldrseguros/estetica-backend/pkg/logger"
	"github.com/ldrseguros/estetica-backend/prometheus"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ClientRequest is the admin payload for creating or updating client accounts
type ClientRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	WhatsApp string `json:"whatsapp"`
}

// ListClients returns the tenant's client profiles with their accounts
func ListClients(c echo.Context) error {
	log := logger.FromContext(c)
	scoped, _, err := tenantDB(c)
	if err != nil {
		return respondError(c, log, err)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var profiles []model.ClientProfile
	if err := scoped.Preload("User").Order("name asc").Find(&profiles).Error; err != nil {
		return respondError(c, log, err)
	}
	return c.JSON(http.StatusOK, profiles)
}

// CreateClient registers a client account and profile in one transaction
func CreateClient(c echo.Context) error {
	log := logger.FromContext(c)
	_, tenantID, err := tenantDB(c)
	if err != nil {
		return respondError(c, log, err)
	}

	var req ClientRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "name, email and password are required"})
	}

	var exists int64
	if err := database.ForTenant(tenantID).Model(&model.User{}).Where("email = ?", req.Email).Count(&exists).Error; err != nil {
		return respondError(c, log, err)
	}
	if exists > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"message": "email already registered"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return respondError(c, log, err)
	}

	var profile model.ClientProfile
	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		user := model.User{
			Email:    req.Email,
			Password: string(hashed),
			Role:     model.RoleClient,
			TenantID: &tenantID,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		profile = model.ClientProfile{
			Name:     req.Name,
			WhatsApp: req.WhatsApp,
			UserID:   user.ID,
			TenantID: tenantID,
		}
		return tx.Create(&profile).Error
	})
	if err != nil {
		return respondError(c, log, err)
	}

	log.Info("Client created by staff",
		zap.Uint("client_id", profile.ID),
		zap.String("email", req.Email))
	return c.JSON(http.StatusCreated, profile)
}

// GetClient returns one client profile, resolving either the profile id or
// the account id
func GetClient(c echo.Context) error {
	log := logger.FromContext(c)
	scoped, _, err := tenantDB(c)
	if err != nil {
		return respondError(c, log, err)
	}
	id, err := paramID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	profile, err := booking.ResolveClientRef(scoped, id)
	if err != nil {
		return respondError(c, log, err)
	}
	if err := scoped.Preload("User").First(profile, profile.ID).Error; err != nil {
		return respondError(c, log, err)
	}
	return c.JSON(http.StatusOK, profile)
}

// UpdateClient updates a client's profile and contact details
func UpdateClient(c echo.Context) error {
	log := logger.FromContext(c)
	scoped, _, err := tenantDB(c)
	if err != nil {
		return respondError(c, log, err)
	}
	id, err := paramID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	profile, err := booking.ResolveClientRef(scoped, id)
	if err != nil {
		return respondError(c, log, err)
	}

	var req ClientRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}
	if req.Name != "" {
		profile.Name = req.Name
	}
	if req.WhatsApp != "" {
		profile.WhatsApp = req.WhatsApp
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := scoped.Save(profile).Error; err != nil {
		return respondError(c, log, err)
	}
	return c.JSON(http.StatusOK, profile)
}

// DeleteClient removes a client account and everything hanging off it:
// bookings, their service links, vehicles, the profile and the account
func DeleteClient(c echo.Context) error {
	log := logger.FromContext(c)
	scoped, _, err := tenantDB(c)
	if err != nil {
		return respondError(c, log, err)
	}
	id, err := paramID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	profile, err := booking.ResolveClientRef(scoped, id)
	if err != nil {
		return respondError(c, log, err)
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := booking.DeleteClientAccount(scoped, profile); err != nil {
		return respondError(c, log, err)
	}

	log.Info("Client deleted", zap.Uint("client_id", profile.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "client deleted"})
}

// GetClientMe returns the caller's own profile
func GetClientMe(c echo.Context) error {
	log := logger.FromContext(c)
	scoped, _, profile, err := clientContext(c)
	if err != nil {
		return respondError(c, log, err)
	}
	if err := scoped.Preload("User").First(profile, profile.ID).Error; err != nil {
		return respondError(c, log, err)
	}
	return c.JSON(http.StatusOK, profile)
}

// UpdateClientMe lets the caller update their own name and WhatsApp number
func UpdateClientMe(c echo.Context) error {
	log := logger.FromContext(c)
	scoped, _, profile, err := clientContext(c)
	if err != nil {
		return respondError(c, log, err)
	}

	var req ClientRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}
	if req.Name != "" {
		profile.Name = req.Name
	}
	if req.WhatsApp != "" {
		profile.WhatsApp = req.WhatsApp
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := scoped.Save(profile).Error; err != nil {
		return respondError(c, log, err)
	}
	return c.JSON(http.StatusOK, profile)
}
