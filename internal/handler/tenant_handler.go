package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ldrseguros/estetica-backend/internal/model"
	"github.com/ldrseguros/estetica-backend/pkg/database"
	"github.com/ldrseguros/estetica-backend/pkg/logger"
	"github.com/ldrseguros/estetica-backend/prometheus"
	"go.uber.org/zap"
)

// Platform-operator endpoints. These run outside the tenant guard and are
// restricted to SUPER_ADMIN by the route group.

// ListTenants returns every tenant with its plan
func ListTenants(c echo.Context) error {
	log := logger.FromContext(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var tenants []model.Tenant
	if err := database.GetDB().Preload("Plan").Order("created_at desc").Find(&tenants).Error; err != nil {
		return respondError(c, log, err)
	}

	active := 0
	for i := range tenants {
		if !tenants[i].SubscriptionBlocked() {
			active++
		}
	}
	prometheus.UpdateActiveTenants(active)

	return c.JSON(http.StatusOK, tenants)
}

// GetTenant returns one tenant with its plan
func GetTenant(c echo.Context) error {
	log := logger.FromContext(c)
	id, err := paramID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	var tenant model.Tenant
	if err := database.GetDB().Preload("Plan").First(&tenant, id).Error; err != nil {
		return respondError(c, log, model.NewNotFound("tenant not found"))
	}
	return c.JSON(http.StatusOK, tenant)
}

// UpdateTenant lets the platform operator override a tenant's subscription
// state or plan, for support cases the billing webhooks cannot cover
func UpdateTenant(c echo.Context) error {
	log := logger.FromContext(c)
	id, err := paramID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	db := database.GetDB()
	var tenant model.Tenant
	if err := db.First(&tenant, id).Error; err != nil {
		return respondError(c, log, model.NewNotFound("tenant not found"))
	}

	var req struct {
		Name               string `json:"name"`
		SubscriptionStatus string `json:"subscriptionStatus"`
		PlanID             *uint  `json:"planId"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}

	if req.Name != "" {
		tenant.Name = req.Name
	}
	if req.SubscriptionStatus != "" {
		switch req.SubscriptionStatus {
		case model.SubscriptionTrial, model.SubscriptionActive, model.SubscriptionPastDue,
			model.SubscriptionCanceled, model.SubscriptionExpired:
			tenant.SubscriptionStatus = req.SubscriptionStatus
		default:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "unknown subscription status"})
		}
	}
	if req.PlanID != nil {
		var plan model.SubscriptionPlan
		if err := db.First(&plan, *req.PlanID).Error; err != nil {
			return respondError(c, log, model.NewNotFound("plan not found"))
		}
		tenant.PlanID = req.PlanID
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := db.Save(&tenant).Error; err != nil {
		return respondError(c, log, err)
	}

	log.Info("Tenant updated by operator",
		zap.Uint("tenant_id", tenant.ID),
		zap.String("status", tenant.SubscriptionStatus))
	return c.JSON(http.StatusOK, tenant)
}

// PlanRequest is the operator payload for subscription plans
type PlanRequest struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	MonthlyPrice  *float64 `json:"monthlyPrice"`
	StripePriceID string   `json:"stripePriceId"`
	MaxEmployees  *int     `json:"maxEmployees"`
	Active        *bool    `json:"active"`
}

// CreatePlan adds a subscription plan to the catalog
func CreatePlan(c echo.Context) error {
	log := logger.FromContext(c)

	var req PlanRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}
	if req.Name == "" || req.MonthlyPrice == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "name and monthlyPrice are required"})
	}

	plan := model.SubscriptionPlan{
		Name:          req.Name,
		Description:   req.Description,
		MonthlyPrice:  *req.MonthlyPrice,
		StripePriceID: req.StripePriceID,
		Active:        true,
	}
	if req.MaxEmployees != nil {
		plan.MaxEmployees = *req.MaxEmployees
	}
	if req.Active != nil {
		plan.Active = *req.Active
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := database.GetDB().Create(&plan).Error; err != nil {
		return respondError(c, log, err)
	}

	log.Info("Plan created", zap.Uint("plan_id", plan.ID), zap.String("name", plan.Name))
	return c.JSON(http.StatusCreated, plan)
}

// UpdatePlan edits a subscription plan
func UpdatePlan(c echo.Context) error {
	log := logger.FromContext(c)
	id, err := paramID(c)
	if err != nil {
		return respondError(c, log, err)
	}

	db := database.GetDB()
	var plan model.SubscriptionPlan
	if err := db.First(&plan, id).Error; err != nil {
		return respondError(c, log, model.NewNotFound("plan not found"))
	}

	var req PlanRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}
	if req.Name != "" {
		plan.Name = req.Name
	}
	if req.Description != "" {
		plan.Description = req.Description
	}
	if req.MonthlyPrice != nil {
		plan.MonthlyPrice = *req.MonthlyPrice
	}
	if req.StripePriceID != "" {
		plan.StripePriceID = req.StripePriceID
	}
	if req.MaxEmployees != nil {
		plan.MaxEmployees = *req.MaxEmployees
	}
	if req.Active != nil {
		plan.Active = *req.Active
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := db.Save(&plan).Error; err != nil {
		return respondError(c, log, err)
	}
	return c.JSON(http.StatusOK, plan)
}
