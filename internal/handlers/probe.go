package handlers

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"adreport/internal/catalog"
	"adreport/internal/models"
)

// Pinger is satisfied by the database.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProbeHandler handles Kubernetes health probe endpoints.
type ProbeHandler struct {
	db      Pinger
	catalog *catalog.Catalog
}

// NewProbeHandler creates a new probe handler. database may be nil when
// no database is configured.
func NewProbeHandler(database Pinger, cat *catalog.Catalog) *ProbeHandler {
	return &ProbeHandler{db: database, catalog: cat}
}

// Liveness handles the /healthz endpoint for Kubernetes liveness probes.
// Returns 200 OK if the application is running.
func (h *ProbeHandler) Liveness(c fiber.Ctx) error {
	return c.JSON(models.HealthResponse{Status: "ok"})
}

// Readiness handles the /readyz endpoint for Kubernetes readiness probes.
// Returns 200 OK if the application can serve traffic.
func (h *ProbeHandler) Readiness(c fiber.Ctx) error {
	resp := models.HealthResponse{Status: "ok", Checks: map[string]string{}}

	if h.db != nil {
		if err := h.db.Ping(c.Context()); err != nil {
			resp.Status = "error"
			resp.Checks["database"] = "unavailable"
			return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
		}
		resp.Checks["database"] = "ok"
	} else {
		resp.Checks["database"] = "disabled"
	}

	if h.catalog != nil {
		if h.catalog.Len() > 0 {
			resp.Checks["catalog"] = "ok"
		} else {
			resp.Checks["catalog"] = "empty"
		}
	}

	return c.JSON(resp)
}
