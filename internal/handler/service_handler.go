package handler

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/ldrseguros/estetica-backend/internal/model"
	"github.com/ldrseguros/estetica-backend/pkg/database"
	"github.com/ldrseguros/estetica-backend/pkg/logger"
	"github.com/ldrseguros/estetica-backend/prometheus"
	"go.uber.org/zap"
)

// ServiceRequest is the catalog create/update payload
type ServiceRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	DurationMin *int     `json:"duration"`
	ImageURL    string   `json:"imageUrl"`
}

// ListServices returns the tenant's catalog. Shared by the public booking
// page and the authenticated apps, so it lives outside the role groups.
func ListServices(c echo.Context) error {
	log := logger.FromContext(c)
	scoped, _, err := tenantDB(c)
	if err != nil {
		return respondError(c, log, err)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var services []model.Service
	if err := scoped.Order("title asc").Find(&services).Error; err != nil {
		return respondError(c, log, err)
	}
	return c.JSON(http.StatusOK, services)
}

// GetService returns one catalog entry
func GetService(c echo.Context) error {
	log := logger.FromContext(c)
	scoped, _, err := tenantDB(c)
	if err != nil {
		return respondError(c, log, err)
	}
	id, err := paramID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	var service model.Service
	if err := scoped.First(&service, id).Error; err != nil {
		return respondError(c, log, model.NewNotFound("service not found"))
	}
	return c.JSON(http.StatusOK, service)
}

// CreateService adds a catalog entry for the tenant
func CreateService(c echo.Context) error {
	log := logger.FromContext(c)
	scoped, tenantID, err := tenantDB(c)
	if err != nil {
		return respondError(c, log, err)
	}

	var req ServiceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}
	if req.Title == "" || req.Price == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "title and price are required"})
	}
	if *req.Price < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "price must not be negative"})
	}

	service := model.Service{
		Title:       req.Title,
		Description: req.Description,
		Price:       *req.Price,
		DurationMin: model.DefaultServiceDuration,
		ImageURL:    req.ImageURL,
		TenantID:    tenantID,
	}
	if req.DurationMin != nil && *req.DurationMin > 0 {
		service.DurationMin = *req.DurationMin
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := scoped.Create(&service).Error; err != nil {
		return respondError(c, log, err)
	}

	log.Info("Service created",
		zap.Uint("service_id", service.ID),
		zap.String("title", service.Title))
	return c.JSON(http.StatusCreated, service)
}

// UpdateService updates a catalog entry
func UpdateService(c echo.Context) error {
	log := logger.FromContext(c)
	scoped, _, err := tenantDB(c)
	if err != nil {
		return respondError(c, log, err)
	}
	id, err := paramID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	var service model.Service
	if err := scoped.First(&service, id).Error; err != nil {
		return respondError(c, log, model.NewNotFound("service not found"))
	}

	var req ServiceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}
	if req.Title != "" {
		service.Title = req.Title
	}
	if req.Description != "" {
		service.Description = req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "price must not be negative"})
		}
		service.Price = *req.Price
	}
	if req.DurationMin != nil && *req.DurationMin > 0 {
		service.DurationMin = *req.DurationMin
	}
	if req.ImageURL != "" {
		service.ImageURL = req.ImageURL
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := scoped.Save(&service).Error; err != nil {
		return respondError(c, log, err)
	}
	return c.JSON(http.StatusOK, service)
}

// DeleteService removes a catalog entry. Entries still referenced by
// bookings are kept, otherwise past bookings would lose their line items.
func DeleteService(c echo.Context) error {
	log := logger.FromContext(c)
	scoped, tenantID, err := tenantDB(c)
	if err != nil {
		return respondError(c, log, err)
	}
	id, err := paramID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	var service model.Service
	if err := scoped.First(&service, id).Error; err != nil {
		return respondError(c, log, model.NewNotFound("service not found"))
	}

	// The link table has no tenant column, so count through bookings on the
	// unscoped handle instead of the tenant-scoped one.
	var linked int64
	if err := database.GetDB().Model(&model.Booking{}).
		Joins("JOIN booking_services bs ON bs.booking_id = bookings.id").
		Where("bs.service_id = ? AND bookings.tenant_id = ?", service.ID, tenantID).
		Count(&linked).Error; err != nil {
		return respondError(c, log, err)
	}
	if linked > 0 {
		log.Warn("Service delete blocked by existing bookings",
			zap.Uint("service_id", service.ID),
			zap.Int64("bookings", linked))
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "service is used by existing bookings and cannot be deleted"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := scoped.Delete(&service).Error; err != nil {
		return respondError(c, log, err)
	}

	log.Info("Service deleted", zap.Uint("service_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "service deleted"})
}

// UploadServiceImage stores a catalog image under the upload directory and
// attaches its public URL to the service
func UploadServiceImage(c echo.Context) error {
	log := logger.FromContext(c)
	scoped, _, err := tenantDB(c)
	if err != nil {
		return respondError(c, log, err)
	}
	id, err := paramID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	var service model.Service
	if err := scoped.First(&service, id).Error; err != nil {
		return respondError(c, log, model.NewNotFound("service not found"))
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "image file is required"})
	}

	ext := filepath.Ext(file.Filename)
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "unsupported image format"})
	}

	src, err := file.Open()
	if err != nil {
		return respondError(c, log, err)
	}
	defer src.Close()

	if err := os.MkdirAll(cfg.Server.UploadDir, 0o755); err != nil {
		return respondError(c, log, err)
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(cfg.Server.UploadDir, name))
	if err != nil {
		return respondError(c, log, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return respondError(c, log, err)
	}

	service.ImageURL = fmt.Sprintf("/uploads/%s", name)

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := scoped.Save(&service).Error; err != nil {
		return respondError(c, log, err)
	}

	log.Info("Service image uploaded",
		zap.Uint("service_id", service.ID),
		zap.String("file", name))
	return c.JSON(http.StatusOK, service)
}
