package api

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"

	"adreport/internal/analysis"
	"adreport/internal/config"
	"adreport/internal/middleware"
	"adreport/internal/models"
	"adreport/internal/report"
)

// AnalyzeHandler turns uploaded files into a report without touching the session.
type AnalyzeHandler struct {
	svc *analysis.Service
	cfg *config.Config
}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler(svc *analysis.Service, cfg *config.Config) *AnalyzeHandler {
	return &AnalyzeHandler{svc: svc, cfg: cfg}
}

// AnalyzeResponse is the body of a successful analyze call.
type AnalyzeResponse struct {
	Files  []models.FileResult `json:"files"`
	Report *report.Report      `json:"report"`
}

// Analyze handles POST /api/v1/analyze.
func (h *AnalyzeHandler) Analyze(c fiber.Ctx) error {
	view, ok, err := parseView(c)
	if !ok {
		return err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "expected a multipart form with files")
	}
	uploads, rejected, err := analysis.FromMultipart(form, h.cfg.MaxUploadFiles, h.cfg.MaxUploadBytes())
	switch {
	case errors.Is(err, analysis.ErrNoFiles):
		return jsonError(c, fiber.StatusBadRequest, "no files uploaded")
	case errors.Is(err, analysis.ErrTooManyFiles):
		return jsonError(c, fiber.StatusBadRequest, fmt.Sprintf("at most %d files per request", h.cfg.MaxUploadFiles))
	case err != nil:
		return err
	}

	var userSub string
	if u := middleware.CurrentUser(c); u != nil {
		userSub = u.Sub
	}
	parsed, results := h.svc.Parse(uploads, userSub)
	results = append(rejected, results...)

	if len(parsed) == 0 {
		return jsonErrorWithData(c, fiber.StatusUnprocessableEntity, "no file could be parsed", AnalyzeResponse{Files: results})
	}

	ds := models.NewDataset()
	ds.Merge(parsed...)
	rep := h.svc.Build(ds.Records, view.Filter)
	view.Apply(rep)

	return jsonSuccess(c, AnalyzeResponse{Files: results, Report: rep})
}
