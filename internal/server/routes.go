package server

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"adreport/internal/analysis"
	"adreport/internal/db"
	"adreport/internal/handlers"
	"adreport/internal/handlers/api"
	"adreport/internal/middleware"
)

// RegisterRoutes registers all application routes. database may be nil, in
// which case the catalog is read-only.
func (s *Server) RegisterRoutes(ctx context.Context, svc *analysis.Service, database *db.DB) error {
	authMiddleware := middleware.NewAuthMiddleware(s.Cfg)

	// A nil *db.DB must not become a non-nil interface
	var store handlers.ProductStore
	var pinger handlers.Pinger
	if database != nil {
		store = database
		pinger = database
	}

	dashboardHandler := handlers.NewDashboardHandler(svc, s.Cfg)
	exportHandler := handlers.NewExportHandler(svc)
	chartHandler := handlers.NewChartHandler(svc)
	catalogHandler := handlers.NewCatalogHandler(svc.Catalog(), store, s.Cfg, svc.Rules())
	probeHandler := handlers.NewProbeHandler(pinger, svc.Catalog())
	analyzeHandler := api.NewAnalyzeHandler(svc, s.Cfg)
	reportHandler := api.NewReportHandler(svc)

	// Probes and metrics are unauthenticated
	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Everything below knows the user when there is one, error pages included
	s.App.Use(authMiddleware.OptionalAuth)

	// Auth routes
	if s.Cfg.OIDCIssuer != "" {
		authHandler, err := handlers.NewAuthHandler(ctx, s.Cfg)
		if err != nil {
			return err
		}
		s.App.Get("/auth/login", authHandler.Login)
		s.App.Get("/auth/callback", authHandler.Callback)
		s.App.Get("/auth/logout", authHandler.Logout)
	} else {
		if s.Cfg.ClientCertHeader != "" {
			slog.Info("client certificate authentication enabled", "header", s.Cfg.ClientCertHeader)
		} else {
			slog.Warn("no authentication configured, dashboard is open to anyone who can reach it")
		}
		s.App.Get("/auth/login", func(c fiber.Ctx) error {
			return fiber.NewError(fiber.StatusUnauthorized, "A client certificate is required")
		})
	}

	// Dashboard
	s.App.Get("/", authMiddleware.RequireAuth, dashboardHandler.Index)
	s.App.Post("/upload", authMiddleware.RequireAuth, dashboardHandler.Upload)
	s.App.Post("/reset", authMiddleware.RequireAuth, dashboardHandler.Reset)

	// Downloads; the fixed workbook route must precede the table pattern
	s.App.Get("/export/report.xlsx", authMiddleware.RequireAuth, exportHandler.Workbook)
	s.App.Get("/export/:table.csv", authMiddleware.RequireAuth, exportHandler.CSV)
	s.App.Get("/charts/bubble.png", authMiddleware.RequireAuth, chartHandler.Bubble)
	s.App.Get("/charts/spend.png", authMiddleware.RequireAuth, chartHandler.Spend)

	// Catalog; writes need the database
	s.App.Get("/catalog", authMiddleware.RequireAuth, catalogHandler.Index)
	if database != nil {
		s.App.Post("/catalog", authMiddleware.RequireAuth, authMiddleware.RequireEditor, catalogHandler.Save)
		s.App.Delete("/catalog/:code", authMiddleware.RequireAuth, authMiddleware.RequireAdmin, catalogHandler.Delete)
	}

	// JSON API
	v1 := s.App.Group("/api/v1", authMiddleware.RequireAuth)
	v1.Post("/analyze", analyzeHandler.Analyze)
	v1.Get("/summary", reportHandler.Summary)
	v1.Get("/products", reportHandler.Products)
	v1.Get("/keywords", reportHandler.Keywords)
	v1.Get("/daily", reportHandler.Daily)
	if database != nil {
		v1.Get("/uploads", authMiddleware.RequireAdmin, api.NewUploadsHandler(database).List)
	}

	return nil
}
