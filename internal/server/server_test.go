package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/encryptcookie"
	"github.com/gofiber/fiber/v3/middleware/session"

	"adreport/internal/analysis"
	"adreport/internal/config"
	"adreport/internal/metrics"
	"adreport/internal/models"
	"adreport/internal/report"
	"adreport/internal/testutil"
	"adreport/internal/workspace"
)

// TestEncryptedSessionKeepsDataset verifies that the encryptcookie +
// session stack carries the compressed dataset across requests when the
// client replays its encrypted session cookie.
func TestEncryptedSessionKeepsDataset(t *testing.T) {
	encryptionKey := deriveEncryptionKey("test-secret-that-is-long-enough-for-production")

	app := fiber.New()

	// Same order as New: encryptcookie, then session, then handlers
	app.Use(encryptcookie.New(encryptcookie.Config{
		Key: encryptionKey,
	}))
	sessionMiddleware, _ := session.NewWithStore(session.Config{
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})
	app.Use(sessionMiddleware)

	app.Post("/save", func(c fiber.Ctx) error {
		ds := models.NewDataset()
		ds.Merge(&models.ParsedFile{Info: models.FileInfo{Name: "a.csv"}, Records: testutil.SampleRecords()})
		if err := workspace.Save(c, ds); err != nil {
			return err
		}
		return c.SendString("ok")
	})
	app.Get("/load", func(c fiber.Ctx) error {
		ds, err := workspace.Load(c)
		if err != nil {
			return err
		}
		return c.SendString(strconv.Itoa(len(ds.Records)))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/save", nil))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("save: expected 200, got %d: %s", resp.StatusCode, body)
	}
	cookies := resp.Cookies()
	if len(cookies) == 0 {
		t.Fatal("save: no cookies returned")
	}

	// Replay twice; the second round trip uses any refreshed cookies
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/load", nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("load %d failed (possible encryptcookie panic): %v", i+1, err)
		}
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("load %d: expected 200, got %d: %s", i+1, resp.StatusCode, body)
		}
		if string(body) != "4" {
			t.Errorf("load %d: expected 4 records, got %q", i+1, body)
		}
		if refreshed := resp.Cookies(); len(refreshed) > 0 {
			cookies = refreshed
		}
	}
}

func testServer(t *testing.T) *Server {
	t.Helper()
	viewsDir = "../../views"
	staticDir = "../../static"

	cfg := &config.Config{
		Env:                "development",
		BaseURL:            "http://localhost:3000",
		SessionSecret:      "test-secret-that-is-long-enough-for-production",
		SessionIdleTimeout: time.Hour,
		MaxUploadMB:        1,
		MaxUploadFiles:     3,
		SiteTitle:          "AdReport",
	}
	svc, err := analysis.New(config.DefaultRules(), nil, nil)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	s := New(cfg, nil)
	if err := s.RegisterRoutes(context.Background(), svc, nil); err != nil {
		t.Fatalf("failed to register routes: %v", err)
	}
	return s
}

func get(t *testing.T, app *fiber.App, path string, cookies []*http.Cookie) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestRoutes(t *testing.T) {
	s := testServer(t)

	tests := []struct {
		path     string
		status   int
		contains string
	}{
		{"/healthz", http.StatusOK, `"status":"ok"`},
		{"/readyz", http.StatusOK, `"database":"disabled"`},
		{"/metrics", http.StatusOK, "adreport_uploads_total"},
		{"/", http.StatusOK, `name="files"`},
		{"/catalog", http.StatusOK, "상품 카탈로그"},
		{"/static/app.css", http.StatusOK, ".grade-good"},
		{"/api/v1/summary", http.StatusNotFound, `"status":"error"`},
		{"/export/report.xlsx", http.StatusNotFound, "Upload a report first"},
		{"/no/such/page", http.StatusNotFound, ""},
	}

	// Vector metrics only appear once observed
	metrics.Init(nil)
	metrics.ObserveParse("csv", models.OutcomeParsed, 1, time.Millisecond)

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			status, body := get(t, s.App, tt.path, nil)
			if status != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, status, body)
			}
			if tt.contains != "" && !strings.Contains(body, tt.contains) {
				t.Errorf("expected %q in body", tt.contains)
			}
		})
	}
}

func TestUploadThenReport(t *testing.T) {
	s := testServer(t)

	body, contentType := testutil.MultipartBody(t, analysis.FormField,
		[]testutil.MultipartFile{{Name: "brand.csv", Data: []byte(testutil.SampleCSV)}}, nil)
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := s.App.Test(req)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	cookies := resp.Cookies()

	status, page := get(t, s.App, "/", cookies)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, page)
	}
	for _, want := range []string{"업로드 결과", "brand.csv", "A123", "40,000", "300.00%"} {
		if !strings.Contains(page, want) {
			t.Errorf("report page is missing %q", want)
		}
	}

	// Upload results are shown once
	_, page = get(t, s.App, "/?tab=daily&sort=roas", cookies)
	if strings.Contains(page, "업로드 결과") {
		t.Error("upload results should not be shown twice")
	}
	if !strings.Contains(page, "2024-09-02") {
		t.Error("daily tab should list dates")
	}

	status, csv := get(t, s.App, "/export/products.csv?product=a123", cookies)
	if status != http.StatusOK || !strings.Contains(csv, "A123") || strings.Contains(csv, "B456") {
		t.Errorf("unexpected filtered CSV (%d): %s", status, csv)
	}

	status, _ = get(t, s.App, "/?from=bad", cookies)
	if status != http.StatusBadRequest {
		t.Errorf("expected 400 for a bad date, got %d", status)
	}
}

func TestTemplateFuncs(t *testing.T) {
	funcs := TemplateFuncs()

	gradeClass := funcs["gradeClass"].(func(report.Grade) string)
	if got := gradeClass(report.GradeWarn); got != "grade-warn" {
		t.Errorf("gradeClass = %q", got)
	}
	date := funcs["date"].(func(time.Time) string)
	if got := date(time.Time{}); got != "-" {
		t.Errorf("date(zero) = %q", got)
	}
	if got := date(time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)); got != "2024-09-01" {
		t.Errorf("date = %q", got)
	}
	if got := tabLabel("keywords"); got != "키워드별" {
		t.Errorf("tabLabel = %q", got)
	}
	if got := tabLabel("other"); got != "other" {
		t.Errorf("tabLabel fallback = %q", got)
	}
}
