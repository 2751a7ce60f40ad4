package main

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/ldrseguros/estetica-backend/internal/billing"
	"github.com/ldrseguros/estetica-backend/internal/handler"
	"github.com/ldrseguros/estetica-backend/internal/middleware"
	"github.com/ldrseguros/estetica-backend/internal/model"
	"github.com/ldrseguros/estetica-backend/internal/notify"
	"github.com/ldrseguros/estetica-backend/pkg/config"
	"github.com/ldrseguros/estetica-backend/pkg/database"
	"github.com/ldrseguros/estetica-backend/pkg/jwtutil"
	"github.com/ldrseguros/estetica-backend/pkg/logger"
	"github.com/ldrseguros/estetica-backend/prometheus"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting estetica backend...", zap.String("environment", cfg.Server.Env))

	// Initialize database
	err = database.Initialize(database.DBConfig{
		DSN:             cfg.DB.GetDSN(),
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
		LogLevel:        cfg.DB.LogLevel,
	})
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connected and migrated")

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)

	// Wire outbound providers and billing
	dispatcher := notify.NewDispatcher(&cfg.Notify, log)
	statusCache := billing.NewStatusCache(&cfg.Redis)
	billingSvc := billing.New(&cfg.Stripe, statusCache, log)
	handler.Init(cfg, dispatcher, billingSvc)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Operational endpoints
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(prometheus.GetPrometheusHandler()))

	// Uploaded service images are served statically
	e.Static("/uploads", cfg.Server.UploadDir)

	publicLimiter := middleware.NewRateLimiter(5, 10)

	// Authentication
	auth := e.Group("/api/auth", publicLimiter.Middleware())
	auth.POST("/login", handler.Login)
	auth.POST("/register", handler.Register)

	// Tenant signup and pricing page, no authentication
	public := e.Group("/api/public", publicLimiter.Middleware())
	public.POST("/signup", handler.Signup)
	public.GET("/plans", handler.ListPlans)
	public.GET("/check-subdomain/:subdomain", handler.CheckSubdomain)

	// Stripe calls this back directly
	e.POST("/api/payments/webhook", handler.StripeWebhook)

	// Tenant catalog and free slots, readable without an account. The guard
	// resolves the tenant from the header or subdomain here.
	tenantGuard := middleware.TenantGuard(database.GetDB)
	e.GET("/api/services", handler.ListServices, tenantGuard)
	e.GET("/api/bookings/available-slots", handler.AvailableSlots, tenantGuard)

	// Authenticated surface. Auth runs first so the guard can compare the
	// token's tenant against the request tenant.
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware, tenantGuard)

	staff := middleware.RequireRoles(model.RoleTenantAdmin, model.RoleEmployee)
	adminOnly := middleware.RequireRoles(model.RoleTenantAdmin)
	clientOnly := middleware.RequireRoles(model.RoleClient)
	superOnly := middleware.RequireRoles(model.RoleSuperAdmin)

	// Staff booking management
	adminBookings := api.Group("/bookings/admin", staff)
	adminBookings.GET("", handler.ListAdminBookings)
	adminBookings.POST("", handler.CreateAdminBooking)
	adminBookings.GET("/:id", handler.GetAdminBooking)
	adminBookings.PUT("/:id", handler.UpdateAdminBooking)
	adminBookings.DELETE("/:id", handler.DeleteAdminBooking)
	adminBookings.PATCH("/:id/cancel", handler.CancelAdminBooking)
	adminBookings.PATCH("/:id/complete", handler.CompleteAdminBooking)

	// Client self-service bookings
	clientBookings := api.Group("/bookings/client", clientOnly)
	clientBookings.GET("", handler.ListClientBookings)
	clientBookings.POST("", handler.CreateClientBooking)
	clientBookings.GET("/:id", handler.GetClientBooking)
	clientBookings.PUT("/:id/cancel", handler.CancelClientBooking)
	clientBookings.PUT("/:id/reschedule", handler.RescheduleClientBooking)

	// Vehicles
	adminVehicles := api.Group("/vehicles/admin", staff)
	adminVehicles.GET("", handler.ListAdminVehicles)
	adminVehicles.POST("", handler.CreateAdminVehicle)
	adminVehicles.GET("/:id", handler.GetAdminVehicle)
	adminVehicles.PUT("/:id", handler.UpdateAdminVehicle)
	adminVehicles.DELETE("/:id", handler.DeleteAdminVehicle)

	clientVehicles := api.Group("/vehicles/client", clientOnly)
	clientVehicles.GET("", handler.ListClientVehicles)
	clientVehicles.POST("", handler.CreateClientVehicle)
	clientVehicles.GET("/:id", handler.GetClientVehicle)
	clientVehicles.PUT("/:id", handler.UpdateClientVehicle)
	clientVehicles.DELETE("/:id", handler.DeleteClientVehicle)

	// Service catalog management
	adminServices := api.Group("/services/admin", staff)
	adminServices.GET("", handler.ListServices)
	adminServices.POST("", handler.CreateService)
	adminServices.GET("/:id", handler.GetService)
	adminServices.PUT("/:id", handler.UpdateService)
	adminServices.DELETE("/:id", handler.DeleteService)
	adminServices.POST("/:id/image", handler.UploadServiceImage)

	// Client accounts managed by staff
	adminClients := api.Group("/admin/clients", staff)
	adminClients.GET("", handler.ListClients)
	adminClients.POST("", handler.CreateClient)
	adminClients.GET("/:id", handler.GetClient)
	adminClients.PUT("/:id", handler.UpdateClient)
	adminClients.DELETE("/:id", handler.DeleteClient)

	// Client profile self-service
	me := api.Group("/clients/me", clientOnly)
	me.GET("", handler.GetClientMe)
	me.PUT("", handler.UpdateClientMe)

	// Dashboard
	api.GET("/admin/dashboard/stats", handler.DashboardStats, staff)

	// Billing, tenant admin only
	payments := api.Group("/payments", adminOnly)
	payments.POST("/create-checkout-session", handler.CreateCheckoutSession)
	payments.POST("/create-customer-portal", handler.CreatePortalSession)
	payments.GET("/subscription-status", handler.SubscriptionStatus)

	// Platform operator surface
	superadmin := api.Group("/superadmin", superOnly)
	superadmin.GET("/tenants", handler.ListTenants)
	superadmin.GET("/tenants/:id", handler.GetTenant)
	superadmin.PUT("/tenants/:id", handler.UpdateTenant)
	superadmin.POST("/plans", handler.CreatePlan)
	superadmin.PUT("/plans/:id", handler.UpdatePlan)

	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
