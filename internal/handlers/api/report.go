package api

import (
	"github.com/gofiber/fiber/v3"

	"adreport/internal/analysis"
	"adreport/internal/models"
	"adreport/internal/report"
	"adreport/internal/workspace"
)

// ReportHandler serves the session dataset's report as JSON.
type ReportHandler struct {
	svc *analysis.Service
}

// NewReportHandler creates a new report handler.
func NewReportHandler(svc *analysis.Service) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// SummaryResponse is the body of GET /api/v1/summary.
type SummaryResponse struct {
	Overview   report.Overview       `json:"overview"`
	Files      []models.FileInfo     `json:"files"`
	Accounts   []report.AccountRow   `json:"accounts"`
	Placements []report.PlacementRow `json:"placements"`
}

// Summary handles GET /api/v1/summary.
func (h *ReportHandler) Summary(c fiber.Ctx) error {
	return h.serve(c, func(rep *report.Report, ds *models.Dataset) any {
		return SummaryResponse{
			Overview:   rep.Overview,
			Files:      ds.Files,
			Accounts:   rep.Accounts,
			Placements: rep.Placements,
		}
	})
}

// Products handles GET /api/v1/products.
func (h *ReportHandler) Products(c fiber.Ctx) error {
	return h.serve(c, func(rep *report.Report, _ *models.Dataset) any {
		return rep.Products
	})
}

// Keywords handles GET /api/v1/keywords.
func (h *ReportHandler) Keywords(c fiber.Ctx) error {
	return h.serve(c, func(rep *report.Report, _ *models.Dataset) any {
		return rep.Keywords
	})
}

// Daily handles GET /api/v1/daily.
func (h *ReportHandler) Daily(c fiber.Ctx) error {
	return h.serve(c, func(rep *report.Report, _ *models.Dataset) any {
		return rep.Daily
	})
}

func (h *ReportHandler) serve(c fiber.Ctx, pick func(*report.Report, *models.Dataset) any) error {
	ds, err := workspace.Load(c)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "session unavailable")
	}
	if ds.IsEmpty() {
		return jsonError(c, fiber.StatusNotFound, "no dataset uploaded")
	}
	view, ok, err := parseView(c)
	if !ok {
		return err
	}

	rep := h.svc.Build(ds.Records, view.Filter)
	view.Apply(rep)
	return jsonSuccess(c, pick(rep, ds))
}
