package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/ldrseguros/estetica-backend/internal/model"
	"github.com/ldrseguros/estetica-backend/pkg/jwtutil"
	"github.com/ldrseguros/estetica-backend/pkg/logger"
	"github.com/ldrseguros/estetica-backend/prometheus"
	"go.uber.org/zap"
)

// AuthMiddleware validates the JWT token from the Authorization header
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		// Get the Authorization header
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Warn("Missing Authorization header")
			prometheus.RecordAuthError("missing_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "missing authorization token"})
		}

		// Check if it's a Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Invalid Authorization header format")
			prometheus.RecordAuthError("invalid_auth_format")
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid authorization format, expected Bearer token"})
		}

		// Validate the token
		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			log.Warn("Invalid JWT token", zap.Error(err))
			prometheus.RecordAuthError("invalid_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid or expired token"})
		}

		// Store user info in context for later use
		c.Set("user", claims)
		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("role", claims.Role)
		if claims.TenantID != nil {
			c.Set("auth_tenant_id", *claims.TenantID)
		}

		log.Debug("JWT token validated",
			zap.Uint("user_id", claims.UserID),
			zap.String("role", claims.Role))

		return next(c)
	}
}

// RequireRoles rejects the request with 403 when the authenticated role is
// not in the allowlist. SUPER_ADMIN always passes.
func RequireRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get("user").(*jwtutil.UserClaims)
			if !ok {
				prometheus.RecordAuthError("missing_claims")
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "authentication required"})
			}
			if claims.Role == model.RoleSuperAdmin {
				return next(c)
			}
			for _, role := range roles {
				if claims.Role == role {
					return next(c)
				}
			}
			logger.FromContext(c).Warn("Role not allowed",
				zap.String("role", claims.Role),
				zap.Strings("allowed", roles))
			prometheus.RecordAuthError("role_denied")
			return c.JSON(http.StatusForbidden, echo.Map{"message": "insufficient permissions"})
		}
	}
}

// Claims returns the authenticated claims stored by AuthMiddleware
func Claims(c echo.Context) *jwtutil.UserClaims {
	claims, _ := c.Get("user").(*jwtutil.UserClaims)
	return claims
}
