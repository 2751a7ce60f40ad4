package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ldrseguros/estetica-backend/internal/booking"
	"github.com/ldrseguros/estetica-backend/internal/model"
	"github.com/ldrseguros/estetica-backend/pkg/logger"
	"github.com/ldrseguros/estetica-backend/prometheus"
	"go.uber.org/zap"
)

// VehicleRequest is the creation/update payload for both vehicle paths
type VehicleRequest struct {
	Brand    string `json:"brand"`
	Model    string `json:"model"`
	Year     int    `json:"year"`
	Plate    string `json:"plate"`
	Color    string `json:"color"`
	ClientID uint   `json:"clientId"` // admin path only
}

// ListAdminVehicles returns tenant vehicles, optionally filtered by client
func ListAdminVehicles(c echo.Context) error {
	log := logger.FromContext(c)
	scoped, _, err := tenantDB(c)
	if err != nil {
		return respondError(c, log, err)
	}

	query := scoped.Preload("Client")
	if clientID := c.QueryParam("clientId"); clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var vehicles []model.Vehicle
	if err := query.Find(&vehicles).Error; err != nil {
		return respondError(c, log, err)
	}
	return c.JSON(http.StatusOK, vehicles)
}

// CreateAdminVehicle registers a vehicle for any tenant client. The admin
// path enforces plate uniqueness within the tenant.
func CreateAdminVehicle(c echo.Context) error {
	log := logger.FromContext(c)
	scoped, tenantID, err := tenantDB(c)
	if err != nil {
		return respondError(c, log, err)
	}

	var req VehicleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}
	if req.Brand == "" || req.Model == "" || req.Plate == "" || req.ClientID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "brand, model, plate and clientId are required"})
	}

	client, err := booking.ResolveClientRef(scoped, req.ClientID)
	if err != nil {
		return respondError(c, log, err)
	}

	var count int64
	if err := scoped.Model(&model.Vehicle{}).Where("plate = ?", req.Plate).Count(&count).Error; err != nil {
		return respondError(c, log, err)
	}
	if count > 0 {
		log.Warn("Duplicate plate rejected", zap.String("plate", req.Plate))
		return c.JSON(http.StatusConflict, echo.Map{"message": "a vehicle with this plate already exists"})
	}

	vehicle := model.Vehicle{
		Brand:    req.Brand,
		Model:    req.Model,
		Year:     req.Year,
		Plate:    req.Plate,
		Color:    req.Color,
		ClientID: client.ID,
		TenantID: tenantID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := scoped.Create(&vehicle).Error; err != nil {
		return respondError(c, log, err)
	}

	log.Info("Vehicle created",
		zap.Uint("vehicle_id", vehicle.ID),
		zap.Uint("client_id", client.ID))
	return c.JSON(http.StatusCreated, vehicle)
}

// GetAdminVehicle returns one tenant vehicle
func GetAdminVehicle(c echo.Context) error {
	log := logger.FromContext(c)
	scoped, _, err := tenantDB(c)
	if err != nil {
		return respondError(c, log, err)
	}
	id, err := paramID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	vehicle, err := booking.RequireVehicleInTenant(scoped, id)
	if err != nil {
		return respondError(c, log, err)
	}
	return c.JSON(http.StatusOK, vehicle)
}

// UpdateAdminVehicle updates a tenant vehicle's attributes
func UpdateAdminVehicle(c echo.Context) error {
	log := logger.FromContext(c)
	scoped, _, err := tenantDB(c)
	if err != nil {
		return respondError(c, log, err)
	}
	id, err := paramID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	vehicle, err := booking.RequireVehicleInTenant(scoped, id)
	if err != nil {
		return respondError(c, log, err)
	}

	var req VehicleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}

	applyVehicleUpdate(vehicle, &req)

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := scoped.Save(vehicle).Error; err != nil {
		return respondError(c, log, err)
	}
	return c.JSON(http.StatusOK, vehicle)
}

// DeleteAdminVehicle removes a tenant vehicle and its bookings
func DeleteAdminVehicle(c echo.Context) error {
	log := logger.FromContext(c)
	scoped, _, err := tenantDB(c)
	if err != nil {
		return respondError(c, log, err)
	}
	id, err := paramID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	vehicle, err := booking.RequireVehicleInTenant(scoped, id)
	if err != nil {
		return respondError(c, log, err)
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := booking.DeleteVehicle(scoped, vehicle); err != nil {
		return respondError(c, log, err)
	}

	log.Info("Vehicle deleted", zap.Uint("vehicle_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "vehicle deleted"})
}

// ListClientVehicles returns the caller's own vehicles
func ListClientVehicles(c echo.Context) error {
	log := logger.FromContext(c)
	scoped, _, profile, err := clientContext(c)
	if err != nil {
		return respondError(c, log, err)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var vehicles []model.Vehicle
	if err := scoped.Where("client_id = ?", profile.ID).Find(&vehicles).Error; err != nil {
		return respondError(c, log, err)
	}
	return c.JSON(http.StatusOK, vehicles)
}

// CreateClientVehicle registers a vehicle for the caller. The client path
// deliberately skips the plate uniqueness check (shared or re-registered
// plates are tolerated here).
func CreateClientVehicle(c echo.Context) error {
	log := logger.FromContext(c)
	scoped, tenantID, profile, err := clientContext(c)
	if err != nil {
		return respondError(c, log, err)
	}

	var req VehicleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}
	if req.Brand == "" || req.Model == "" || req.Plate == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "brand, model and plate are required"})
	}

	vehicle := model.Vehicle{
		Brand:    req.Brand,
		Model:    req.Model,
		Year:     req.Year,
		Plate:    req.Plate,
		Color:    req.Color,
		ClientID: profile.ID,
		TenantID: tenantID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := scoped.Create(&vehicle).Error; err != nil {
		return respondError(c, log, err)
	}

	log.Info("Client vehicle created",
		zap.Uint("vehicle_id", vehicle.ID),
		zap.Uint("client_id", profile.ID))
	return c.JSON(http.StatusCreated, vehicle)
}

// GetClientVehicle returns one vehicle if the caller owns it
func GetClientVehicle(c echo.Context) error {
	log := logger.FromContext(c)
	scoped, _, profile, err := clientContext(c)
	if err != nil {
		return respondError(c, log, err)
	}
	id, err := paramID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	vehicle, err := booking.RequireVehicleOwner(scoped, profile.ID, id)
	if err != nil {
		return respondError(c, log, err)
	}
	return c.JSON(http.StatusOK, vehicle)
}

// UpdateClientVehicle updates the caller's own vehicle
func UpdateClientVehicle(c echo.Context) error {
	log := logger.FromContext(c)
	scoped, _, profile, err := clientContext(c)
	if err != nil {
		return respondError(c, log, err)
	}
	id, err := paramID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	vehicle, err := booking.RequireVehicleOwner(scoped, profile.ID, id)
	if err != nil {
		return respondError(c, log, err)
	}

	var req VehicleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}

	applyVehicleUpdate(vehicle, &req)

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := scoped.Save(vehicle).Error; err != nil {
		return respondError(c, log, err)
	}
	return c.JSON(http.StatusOK, vehicle)
}

// DeleteClientVehicle removes the caller's own vehicle and its bookings
func DeleteClientVehicle(c echo.Context) error {
	log := logger.FromContext(c)
	scoped, _, profile, err := clientContext(c)
	if err != nil {
		return respondError(c, log, err)
	}
	id, err := paramID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	vehicle, err := booking.RequireVehicleOwner(scoped, profile.ID, id)
	if err != nil {
		return respondError(c, log, err)
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := booking.DeleteVehicle(scoped, vehicle); err != nil {
		return respondError(c, log, err)
	}

	log.Info("Client vehicle deleted", zap.Uint("vehicle_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "vehicle deleted"})
}

func applyVehicleUpdate(vehicle *model.Vehicle, req *VehicleRequest) {
	if req.Brand != "" {
		vehicle.Brand = req.Brand
	}
	if req.Model != "" {
		vehicle.Model = req.Model
	}
	if req.Year != 0 {
		vehicle.Year = req.Year
	}
	if req.Plate != "" {
		vehicle.Plate = req.Plate
	}
	if req.Color != "" {
		vehicle.Color = req.Color
	}
}
