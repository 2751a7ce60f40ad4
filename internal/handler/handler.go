package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/ldrseguros/estetica-backend/internal/billing"
	"github.com/ldrseguros/estetica-backend/internal/middleware"
	"github.com/ldrseguros/estetica-backend/internal/model"
	"github.com/ldrseguros/estetica-backend/internal/notify"
	"github.com/ldrseguros/estetica-backend/pkg/config"
	"github.com/ldrseguros/estetica-backend/pkg/database"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Package-level collaborators wired once at startup
var (
	cfg        *config.Config
	dispatcher *notify.Dispatcher
	billingSvc *billing.Service
)

// Init stores the handler package dependencies
func Init(c *config.Config, d *notify.Dispatcher, b *billing.Service) {
	cfg = c
	dispatcher = d
	billingSvc = b
}

// tenantDB returns a database handle scoped to the request's tenant. The
// guard middleware has already resolved and checked the tenant id.
func tenantDB(c echo.Context) (*gorm.DB, uint, error) {
	id, ok := middleware.TenantID(c)
	if !ok {
		return nil, 0, model.NewForbidden("missing tenant context")
	}
	return database.ForTenant(id), id, nil
}

// respondError maps a domain error to its HTTP response. Unexpected errors
// are logged and collapsed to a generic 500.
func respondError(c echo.Context, log *zap.Logger, err error) error {
	status := model.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Error("Request failed", zap.Error(err))
		return c.JSON(status, echo.Map{"message": "internal server error"})
	}
	return c.JSON(status, echo.Map{"message": err.Error()})
}

// paramID parses the :id route parameter
func paramID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, model.NewBadRequest("invalid id")
	}
	return uint(id), nil
}
