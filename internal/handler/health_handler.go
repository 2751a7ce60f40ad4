package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ldrseguros/estetica-backend/pkg/database"
)

// HealthCheck reports process and database health
func HealthCheck(c echo.Context) error {
	db := "up"
	status := http.StatusOK

	if sqlDB, err := database.GetDB().DB(); err != nil || sqlDB.Ping() != nil {
		db = "down"
		status = http.StatusServiceUnavailable
	}

	return c.JSON(status, echo.Map{
		"status":   "healthy",
		"service":  "estetica-backend",
		"database": db,
	})
}
