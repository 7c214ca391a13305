package handlers

import (
	"bytes"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"adreport/internal/analysis"
	"adreport/internal/export"
	"adreport/internal/models"
	"adreport/internal/report"
	"adreport/internal/validation"
	"adreport/internal/workspace"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler downloads the filtered report as xlsx or CSV.
type ExportHandler struct {
	svc *analysis.Service
}

// NewExportHandler creates a new export handler.
func NewExportHandler(svc *analysis.Service) *ExportHandler {
	return &ExportHandler{svc: svc}
}

// Workbook handles GET /export/report.xlsx.
func (h *ExportHandler) Workbook(c fiber.Ctx) error {
	rep, _, err := h.load(c)
	if err != nil {
		return err
	}
	data, err := export.WriteWorkbook(rep)
	if err != nil {
		return err
	}
	c.Attachment(exportName(rep.Filter, "", "xlsx"))
	c.Set(fiber.HeaderContentType, xlsxContentType)
	return c.Send(data)
}

// CSV handles GET /export/:table.csv.
func (h *ExportHandler) CSV(c fiber.Ctx) error {
	table := c.Params("table")
	if !export.ValidTable(table) {
		return fiber.NewError(fiber.StatusNotFound, "Unknown table")
	}
	rep, records, err := h.load(c)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, table, rep, records); err != nil {
		if errors.Is(err, export.ErrUnknownTable) {
			return fiber.NewError(fiber.StatusNotFound, "Unknown table")
		}
		return err
	}
	c.Attachment(exportName(rep.Filter, table, "csv"))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	return c.Send(buf.Bytes())
}

// load builds the filtered report and the filtered records of the session dataset.
func (h *ExportHandler) load(c fiber.Ctx) (*report.Report, []models.AdRecord, error) {
	ds, err := workspace.Load(c)
	if err != nil {
		return nil, nil, err
	}
	if ds.IsEmpty() {
		return nil, nil, fiber.NewError(fiber.StatusNotFound, "Upload a report first")
	}
	view, err := parseView(c)
	if err != nil {
		return nil, nil, err
	}
	rep := h.svc.Build(ds.Records, view.Filter)
	view.Apply(rep)
	return rep, view.Filter.Apply(ds.Records), nil
}

// exportName names a download, including the account when exactly one is selected.
func exportName(f report.Filter, table, ext string) string {
	parts := []string{"adreport"}
	if len(f.Accounts) == 1 {
		parts = append(parts, validation.SanitizeFilename(f.Accounts[0]))
	}
	if table != "" {
		parts = append(parts, table)
	}
	parts = append(parts, time.Now().Format("20060102-1504"))
	return strings.Join(parts, "-") + "." + ext
}
