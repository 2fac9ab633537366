package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ehr/vitals/internal/config"
	"github.com/ehr/vitals/internal/domain/vitals"
	"github.com/ehr/vitals/internal/platform/auth"
	"github.com/ehr/vitals/internal/platform/metrics"
	"github.com/ehr/vitals/internal/platform/middleware"
	"github.com/ehr/vitals/internal/platform/reporting"
)

const version = "0.1.0"

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the vitals API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd)
		},
	}
	cmd.Flags().StringP("port", "p", "", "listen port (overrides PORT)")
	return cmd
}

// checkSource loads the data file once before serving. An unreadable source
// stops startup; a missing file is allowed since the first added visit
// creates it.
func checkSource(ctx context.Context, svc *vitals.Service, cfg *config.Config, logger zerolog.Logger) error {
	res, err := svc.Load(ctx)
	switch {
	case err == nil:
		logger.Info().
			Str("file", cfg.DataFile).
			Int("patients", res.Store.Len()).
			Int("visits", res.Store.VisitCount()).
			Int("rejected", len(res.Rejected)).
			Msg("vitals file loaded")
		return nil
	case errors.Is(err, fs.ErrNotExist):
		logger.Warn().Str("file", cfg.DataFile).Msg("vitals file not found, it will be created on first add")
		return nil
	default:
		return fmt.Errorf("load vitals file: %w", err)
	}
}

func runServer(cmd *cobra.Command) error {
	svc, cfg, logger, err := loadService(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.ResolvedAuthMode() == "development" {
		logger.Warn().Msg("development auth is active: every request is treated as admin")
	}

	if err := checkSource(cmd.Context(), svc, cfg, logger); err != nil {
		return err
	}

	metrics.Init(prometheus.DefaultRegisterer)
	e := newServer(cfg, svc, logger, promhttp.Handler())

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		var err error
		if cfg.TLSEnabled {
			err = e.StartTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = e.Start(addr)
		}
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

// newServer wires middleware and routes. metricsHandler serves /metrics.
func newServer(cfg *config.Config, svc *vitals.Service, logger zerolog.Logger, metricsHandler http.Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(metrics.HTTPMiddleware())
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	e.GET("/metrics", echo.WrapHandler(metricsHandler))

	apiV1 := e.Group("/api/v1")
	if cfg.ResolvedAuthMode() == "development" {
		apiV1.Use(auth.DevAuthMiddleware())
	} else {
		var key []byte
		if cfg.AuthSigningKey != "" {
			key = []byte(cfg.AuthSigningKey)
		}
		apiV1.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			JWKSURL:    cfg.AuthJWKSURL,
			SigningKey: key,
		}))
	}

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 || rateLimitCfg.BurstSize <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))
	apiV1.Use(middleware.BodyLimit(cfg.BodyLimit, cfg.UploadLimit))

	vitals.NewHandler(svc).RegisterRoutes(apiV1)
	reporting.NewHandler(svc).RegisterRoutes(apiV1)

	return e
}
