package main

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/Deeppati2005/hms/internal/config"
	"github.com/Deeppati2005/hms/internal/domain/account"
	"github.com/Deeppati2005/hms/internal/domain/admin"
	"github.com/Deeppati2005/hms/internal/domain/scheduling"
	"github.com/Deeppati2005/hms/internal/platform/apperr"
	"github.com/Deeppati2005/hms/internal/platform/middleware"
	"github.com/Deeppati2005/hms/internal/platform/telemetry"
)

// newServer builds the echo instance with the global middleware chain and
// the operational endpoints that need no database. The returned group is the
// rate-limited /api prefix.
func newServer(cfg *config.Config, logger zerolog.Logger, tel *telemetry.Provider) (*echo.Echo, *echo.Group) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apperr.ErrorHandler(logger)

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderXRequestID},
	}))
	if cfg.BodyLimit != "" {
		e.Use(echomw.BodyLimit(cfg.BodyLimit))
	}
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	e.Use(tel.MetricsMiddleware())
	e.Use(tel.TracingMiddleware())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	e.GET("/metrics", tel.Handler())

	api := e.Group("/api")
	rl := middleware.DefaultRateLimitConfig()
	if cfg.RateLimitRPS > 0 {
		rl.RequestsPerSecond = cfg.RateLimitRPS
		rl.BurstSize = cfg.RateLimitBurst
	}
	api.Use(middleware.RateLimit(rl))

	return e, api
}

// registerRoutes mounts the role groups and the appointment resource on api.
func registerRoutes(api *echo.Group, accounts *account.Service, sched *scheduling.Service, adminSvc *admin.Service) {
	admins := api.Group("/admins")
	doctors := api.Group("/doctors")
	patients := api.Group("/patients")

	account.NewHandler(accounts, account.RoleAdmin).RegisterRoutes(admins)
	account.NewHandler(accounts, account.RoleDoctor).RegisterRoutes(doctors)
	account.NewHandler(accounts, account.RolePatient).RegisterRoutes(patients)

	schedHandler := scheduling.NewHandler(sched)
	schedHandler.RegisterRoutes(api.Group("/appointments"))
	schedHandler.RegisterDoctorRoutes(doctors)
	schedHandler.RegisterPatientRoutes(patients)

	admin.NewHandler(adminSvc).RegisterRoutes(admins)
}
