package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"

	"adreport/internal/analysis"
	"adreport/internal/config"
	"adreport/internal/models"
	"adreport/internal/testutil"
	"adreport/internal/workspace"
)

type envelope struct {
	Status string          `json:"status"`
	Error  string          `json:"error"`
	Data   json.RawMessage `json:"data"`
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	svc, err := analysis.New(config.DefaultRules(), nil, nil)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	cfg := &config.Config{MaxUploadMB: 1, MaxUploadFiles: 3}

	app := fiber.New()
	sessionMiddleware, _ := session.NewWithStore()
	app.Use(sessionMiddleware)

	analyze := NewAnalyzeHandler(svc, cfg)
	rep := NewReportHandler(svc)
	app.Post("/api/v1/analyze", analyze.Analyze)
	app.Get("/api/v1/summary", rep.Summary)
	app.Get("/api/v1/products", rep.Products)
	app.Get("/api/v1/keywords", rep.Keywords)
	app.Get("/api/v1/daily", rep.Daily)
	app.Post("/seed", func(c fiber.Ctx) error {
		ds := models.NewDataset()
		ds.Merge(&models.ParsedFile{Info: models.FileInfo{Name: "sample.csv"}, Records: testutil.SampleRecords()})
		return workspace.Save(c, ds)
	})
	return app
}

func call(t *testing.T, app *fiber.App, req *http.Request, cookies []*http.Cookie) (int, envelope) {
	t.Helper()
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp.StatusCode, env
}

func analyzeRequest(t *testing.T, query string, files ...testutil.MultipartFile) *http.Request {
	t.Helper()
	body, contentType := testutil.MultipartBody(t, analysis.FormField, files, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze"+query, body)
	req.Header.Set("Content-Type", contentType)
	return req
}

func TestAnalyze(t *testing.T) {
	app := newTestApp(t)

	status, env := call(t, app, analyzeRequest(t, "?sort=roas",
		testutil.MultipartFile{Name: "brand.csv", Data: []byte(testutil.SampleCSV)},
		testutil.MultipartFile{Name: "junk.csv", Data: []byte("a,b\n1,2\n")},
	), nil)
	if status != http.StatusOK || env.Status != "ok" {
		t.Fatalf("expected ok, got %d %+v", status, env)
	}

	var data struct {
		Files  []models.FileResult `json:"files"`
		Report struct {
			Overview struct {
				Records int `json:"records"`
				Metrics struct {
					Spend string  `json:"spend"`
					ROAS  float64 `json:"roas"`
				} `json:"metrics"`
			} `json:"overview"`
			Products []struct {
				Code string `json:"code"`
			} `json:"products"`
		} `json:"report"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}

	if len(data.Files) != 2 || data.Files[0].Outcome != models.OutcomeParsed || data.Files[1].Outcome != models.OutcomeRejected {
		t.Errorf("unexpected file results: %+v", data.Files)
	}
	if data.Report.Overview.Records != 3 {
		t.Errorf("expected 3 records, got %d", data.Report.Overview.Records)
	}
	if data.Report.Overview.Metrics.Spend != "40000" || data.Report.Overview.Metrics.ROAS != 300 {
		t.Errorf("unexpected overview metrics: %+v", data.Report.Overview.Metrics)
	}
	// A123: 90000/30000 = 300%, B456: 30000/10000 = 300%; ties sort by code
	if len(data.Report.Products) != 2 || data.Report.Products[0].Code != "A123" {
		t.Errorf("unexpected products: %+v", data.Report.Products)
	}
}

func TestAnalyze_Errors(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name   string
		req    *http.Request
		status int
	}{
		{
			name:   "no parsable file",
			req:    analyzeRequest(t, "", testutil.MultipartFile{Name: "junk.csv", Data: []byte("a,b\n")}),
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "no files",
			req:    analyzeRequest(t, ""),
			status: http.StatusBadRequest,
		},
		{
			name:   "bad sort key",
			req:    analyzeRequest(t, "?sort=price", testutil.MultipartFile{Name: "brand.csv", Data: []byte(testutil.SampleCSV)}),
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := call(t, app, tt.req, nil)
			if status != tt.status {
				t.Errorf("expected %d, got %d", tt.status, status)
			}
			if env.Status != "error" || env.Error == "" {
				t.Errorf("expected an error envelope, got %+v", env)
			}
		})
	}
}

func TestReportEndpoints(t *testing.T) {
	app := newTestApp(t)

	status, env := call(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/summary", nil), nil)
	if status != http.StatusNotFound || env.Status != "error" {
		t.Fatalf("expected 404 without a dataset, got %d", status)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/seed", nil))
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	cookies := resp.Cookies()

	tests := []struct {
		path  string
		count int
	}{
		{"/api/v1/products", 3},
		{"/api/v1/products?account=brand", 1},
		{"/api/v1/keywords", 4},
		{"/api/v1/keywords?q=%ED%85%80%EB%B8%94%EB%9F%AC", 1},
		{"/api/v1/daily", 2},
		{"/api/v1/daily?from=2024-09-02", 1},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			status, env := call(t, app, req, cookies)
			if status != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", status, env.Error)
			}
			var rows []json.RawMessage
			if err := json.Unmarshal(env.Data, &rows); err != nil {
				t.Fatalf("failed to decode rows: %v", err)
			}
			if len(rows) != tt.count {
				t.Errorf("expected %d rows, got %d", tt.count, len(rows))
			}
		})
	}

	status, env = call(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/summary", nil), cookies)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	var summary SummaryResponse
	if err := json.Unmarshal(env.Data, &summary); err != nil {
		t.Fatalf("failed to decode summary: %v", err)
	}
	if summary.Overview.Records != 4 || len(summary.Files) != 1 || len(summary.Accounts) != 2 {
		t.Errorf("unexpected summary: %+v", summary)
	}
}
