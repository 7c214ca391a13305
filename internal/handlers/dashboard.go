package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"

	"adreport/internal/analysis"
	"adreport/internal/config"
	"adreport/internal/export"
	"adreport/internal/middleware"
	"adreport/internal/models"
	"adreport/internal/report"
	"adreport/internal/workspace"
)

const sessionUploadResults = "upload_results"

// DashboardHandler serves the upload form and the report pages.
type DashboardHandler struct {
	svc *analysis.Service
	cfg *config.Config
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(svc *analysis.Service, cfg *config.Config) *DashboardHandler {
	return &DashboardHandler{svc: svc, cfg: cfg}
}

// Index renders the upload form, or the report when a dataset is loaded.
func (h *DashboardHandler) Index(c fiber.Ctx) error {
	ds, err := workspace.Load(c)
	if err != nil {
		return err
	}
	view, err := parseView(c)
	if err != nil {
		return err
	}

	data := fiber.Map{
		"User":           middleware.CurrentUser(c),
		"Results":        popUploadResults(c),
		"MaxUploadMB":    h.cfg.MaxUploadMB,
		"MaxUploadFiles": h.cfg.MaxUploadFiles,
	}
	if ds.IsEmpty() {
		data["Title"] = "Upload"
		return c.Render("index", MergeBranding(data, h.cfg))
	}

	rep := h.svc.Build(ds.Records, view.Filter)
	view.Apply(rep)

	data["Title"] = "Report"
	data["Report"] = rep
	data["View"] = view
	// Already encoded by url.Values
	data["Query"] = template.URL(view.Query())
	data["Files"] = ds.Files
	data["Accounts"] = ds.Accounts()
	data["SelectedAccounts"] = selected(view.Filter.Accounts)
	data["Tabs"] = analysis.Tabs
	data["SortKeys"] = report.SortKeys
	data["Tables"] = export.TableNames
	return c.Render("report", MergeBranding(data, h.cfg))
}

// Upload parses the submitted files into the session dataset.
func (h *DashboardHandler) Upload(c fiber.Ctx) error {
	uploads, rejected, err := readUploads(c, h.cfg)
	if err != nil {
		return err
	}

	var userSub string
	if u := middleware.CurrentUser(c); u != nil {
		userSub = u.Sub
	}
	parsed, results := h.svc.Parse(uploads, userSub)
	results = append(rejected, results...)

	if len(parsed) > 0 {
		ds := models.NewDataset()
		if c.FormValue("append") != "" {
			if ds, err = workspace.Load(c); err != nil {
				return err
			}
		}
		ds.Merge(parsed...)
		if err := workspace.Save(c, ds); err != nil {
			return err
		}
	}

	pushUploadResults(c, results)
	return c.Redirect().To("/")
}

// Reset discards the session dataset.
func (h *DashboardHandler) Reset(c fiber.Ctx) error {
	workspace.Clear(c)
	return c.Redirect().To("/")
}

// readUploads reads the "files" form field within the configured limits.
func readUploads(c fiber.Ctx, cfg *config.Config) ([]analysis.Upload, []models.FileResult, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil, fiber.NewError(fiber.StatusBadRequest, "Expected a multipart form with files")
	}
	uploads, rejected, err := analysis.FromMultipart(form, cfg.MaxUploadFiles, cfg.MaxUploadBytes())
	switch {
	case errors.Is(err, analysis.ErrNoFiles):
		return nil, nil, fiber.NewError(fiber.StatusBadRequest, "No files uploaded")
	case errors.Is(err, analysis.ErrTooManyFiles):
		return nil, nil, fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("At most %d files can be uploaded at once", cfg.MaxUploadFiles))
	case err != nil:
		return nil, nil, err
	}
	return uploads, rejected, nil
}

// pushUploadResults keeps the results for the page shown after the redirect.
func pushUploadResults(c fiber.Ctx, results []models.FileResult) {
	sess := session.FromContext(c)
	if sess == nil {
		return
	}
	if b, err := json.Marshal(results); err == nil {
		sess.Set(sessionUploadResults, string(b))
	}
}

func popUploadResults(c fiber.Ctx) []models.FileResult {
	sess := session.FromContext(c)
	if sess == nil {
		return nil
	}
	raw, _ := sess.Get(sessionUploadResults).(string)
	if raw == "" {
		return nil
	}
	sess.Delete(sessionUploadResults)

	var results []models.FileResult
	if err := json.Unmarshal([]byte(raw), &results); err != nil {
		return nil
	}
	return results
}

func selected(values []string) map[string]bool {
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}
