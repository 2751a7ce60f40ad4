package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ldrseguros/estetica-backend/internal/model"
	"github.com/ldrseguros/estetica-backend/pkg/database"
	"github.com/ldrseguros/estetica-backend/pkg/logger"
	"github.com/ldrseguros/estetica-backend/prometheus"
	"go.uber.org/zap"
)

// CreateCheckoutSession starts a Stripe subscription checkout for the
// caller's tenant and returns the hosted payment page URL
func CreateCheckoutSession(c echo.Context) error {
	log := logger.FromContext(c)
	_, tenantID, err := tenantDB(c)
	if err != nil {
		return respondError(c, log, err)
	}

	var req struct {
		PlanID uint `json:"planId"`
	}
	if err := c.Bind(&req); err != nil || req.PlanID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "planId is required"})
	}

	db := database.GetDB()

	var tenant model.Tenant
	if err := db.First(&tenant, tenantID).Error; err != nil {
		return respondError(c, log, model.NewNotFound("tenant not found"))
	}

	var plan model.SubscriptionPlan
	if err := db.Where("active = ?", true).First(&plan, req.PlanID).Error; err != nil {
		return respondError(c, log, model.NewNotFound("plan not found"))
	}

	url, err := billingSvc.CreateCheckoutSession(db, &tenant, &plan)
	if err != nil {
		log.Error("Checkout session failed", zap.Error(err))
		return respondError(c, log, err)
	}

	log.Info("Checkout session created",
		zap.Uint("tenant_id", tenantID),
		zap.Uint("plan_id", plan.ID))
	return c.JSON(http.StatusOK, echo.Map{"url": url})
}

// CreatePortalSession returns a Stripe customer portal URL so tenant admins
// can manage their subscription
func CreatePortalSession(c echo.Context) error {
	log := logger.FromContext(c)
	_, tenantID, err := tenantDB(c)
	if err != nil {
		return respondError(c, log, err)
	}

	var tenant model.Tenant
	if err := database.GetDB().First(&tenant, tenantID).Error; err != nil {
		return respondError(c, log, model.NewNotFound("tenant not found"))
	}

	url, err := billingSvc.CreatePortalSession(&tenant)
	if err != nil {
		return respondError(c, log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"url": url})
}

// SubscriptionStatus reports the tenant's current subscription state
func SubscriptionStatus(c echo.Context) error {
	log := logger.FromContext(c)
	_, tenantID, err := tenantDB(c)
	if err != nil {
		return respondError(c, log, err)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	status, err := billingSvc.SubscriptionStatus(c.Request().Context(), database.GetDB(), tenantID)
	if err != nil {
		return respondError(c, log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": status})
}

// StripeWebhook receives billing events from Stripe. It is unauthenticated
// and tenant resolution happens from the event's customer reference, so the
// route sits outside the tenant guard.
func StripeWebhook(c echo.Context) error {
	log := logger.FromContext(c)

	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "unreadable payload"})
	}

	sig := c.Request().Header.Get("Stripe-Signature")
	if err := billingSvc.HandleWebhook(c.Request().Context(), database.GetDB(), payload, sig); err != nil {
		log.Warn("Webhook rejected", zap.Error(err))
		return respondError(c, log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"received": true})
}
