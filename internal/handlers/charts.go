package handlers

import (
	"bytes"
	"errors"

	"github.com/gofiber/fiber/v3"

	"adreport/internal/analysis"
	"adreport/internal/charts"
	"adreport/internal/report"
	"adreport/internal/workspace"
)

const spendBarLimit = 15

// ChartHandler renders PNG charts of the filtered report.
type ChartHandler struct {
	svc *analysis.Service
}

// NewChartHandler creates a new chart handler.
func NewChartHandler(svc *analysis.Service) *ChartHandler {
	return &ChartHandler{svc: svc}
}

// Bubble handles GET /charts/bubble.png.
func (h *ChartHandler) Bubble(c fiber.Ctx) error {
	return h.render(c, func(buf *bytes.Buffer, rep *report.Report) error {
		return charts.Bubble(buf, rep.Products, rep.Overview.Target)
	})
}

// Spend handles GET /charts/spend.png.
func (h *ChartHandler) Spend(c fiber.Ctx) error {
	return h.render(c, func(buf *bytes.Buffer, rep *report.Report) error {
		return charts.SpendBars(buf, rep.Products, spendBarLimit)
	})
}

func (h *ChartHandler) render(c fiber.Ctx, draw func(*bytes.Buffer, *report.Report) error) error {
	ds, err := workspace.Load(c)
	if err != nil {
		return err
	}
	view, err := parseView(c)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := draw(&buf, h.svc.Build(ds.Records, view.Filter)); err != nil {
		if errors.Is(err, charts.ErrNoData) {
			return fiber.NewError(fiber.StatusNotFound, "No data to chart")
		}
		return err
	}
	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Send(buf.Bytes())
}
