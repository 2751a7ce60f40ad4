package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/ldrseguros/estetica-backend/internal/model"
	"github.com/ldrseguros/estetica-backend/pkg/jwtutil"
	"github.com/ldrseguros/estetica-backend/pkg/logger"
	"github.com/ldrseguros/estetica-backend/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const TenantIDHeader = "X-Tenant-ID"

// errNoTenantContext marks a request carrying neither header nor subdomain
var errNoTenantContext = model.NewBadRequest("missing tenant context")

// Path prefixes that are served without a tenant context
var unscopedPrefixes = []string{
	"/health",
	"/metrics",
	"/api/auth",
	"/api/public",
	"/api/payments/webhook",
	"/api/superadmin",
}

// TenantGuard resolves the request's tenant from the X-Tenant-ID header or
// the hostname subdomain and stores it on the context. When the caller is
// authenticated, its token tenant must match the request tenant; SUPER_ADMIN
// bypasses the check. This is the single enforcement point; handlers read
// the resolved id and take a pre-scoped database handle from it.
func TenantGuard(db func() *gorm.DB) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			for _, prefix := range unscopedPrefixes {
				if strings.HasPrefix(path, prefix) {
					return next(c)
				}
			}

			log := logger.FromContext(c)

			claims, _ := c.Get("user").(*jwtutil.UserClaims)

			tenantID, err := resolveRequestTenant(c, db())
			if errors.Is(err, errNoTenantContext) && claims != nil && claims.TenantID != nil {
				// No header or subdomain: fall back to the token's tenant
				tenantID = *claims.TenantID
				err = nil
			}
			if err != nil {
				log.Warn("Tenant resolution failed", zap.Error(err))
				prometheus.RecordTenantGuardRejection("unresolved")
				return c.JSON(model.HTTPStatus(err), echo.Map{"message": err.Error()})
			}

			if claims != nil {
				if claims.Role != model.RoleSuperAdmin {
					if claims.TenantID == nil || *claims.TenantID != tenantID {
						log.Warn("Cross-tenant access rejected",
							zap.Uint("request_tenant", tenantID),
							zap.Any("token_tenant", claims.TenantID))
						prometheus.RecordTenantGuardRejection("mismatch")
						return c.JSON(http.StatusForbidden, echo.Map{"message": "access denied for this tenant"})
					}
				}
			}

			c.Set("tenant_id", tenantID)
			// Downstream FromContext calls now log with the tenant attached
			c.Set("logger", logger.ForTenant(c, tenantID))
			return next(c)
		}
	}
}

// TenantID returns the tenant resolved by the guard for this request
func TenantID(c echo.Context) (uint, bool) {
	id, ok := c.Get("tenant_id").(uint)
	return id, ok
}

func resolveRequestTenant(c echo.Context, db *gorm.DB) (uint, error) {
	// Explicit header wins
	if raw := c.Request().Header.Get(TenantIDHeader); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return 0, model.NewBadRequest("invalid " + TenantIDHeader + " header")
		}
		var tenant model.Tenant
		if err := db.First(&tenant, uint(id)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, model.NewNotFound("tenant not found")
			}
			return 0, err
		}
		return tenant.ID, nil
	}

	// Fall back to the hostname subdomain
	host := c.Request().Host
	if idx := strings.Index(host, ":"); idx >= 0 {
		host = host[:idx]
	}
	parts := strings.Split(host, ".")
	if len(parts) < 3 {
		return 0, errNoTenantContext
	}

	var tenant model.Tenant
	if err := db.Where("subdomain = ?", parts[0]).First(&tenant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, model.NewNotFound("tenant not found")
		}
		return 0, err
	}
	return tenant.ID, nil
}
