package api

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"adreport/internal/models"
)

const (
	defaultUploadLimit = 50
	maxUploadLimit     = 500
)

// UploadLister lists stored upload audit entries.
type UploadLister interface {
	ListRecentUploads(ctx context.Context, limit int) ([]models.UploadLog, error)
}

// UploadsHandler serves the upload audit log.
type UploadsHandler struct {
	store UploadLister
}

// NewUploadsHandler creates a new uploads handler.
func NewUploadsHandler(store UploadLister) *UploadsHandler {
	return &UploadsHandler{store: store}
}

// List handles GET /api/v1/uploads?limit=N.
func (h *UploadsHandler) List(c fiber.Ctx) error {
	limit := defaultUploadLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return jsonError(c, fiber.StatusBadRequest, "limit must be a positive integer")
		}
		limit = min(n, maxUploadLimit)
	}

	uploads, err := h.store.ListRecentUploads(c.Context(), limit)
	if err != nil {
		slog.Error("failed to list uploads", "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to list uploads")
	}
	if uploads == nil {
		uploads = []models.UploadLog{}
	}
	return jsonSuccess(c, uploads)
}
