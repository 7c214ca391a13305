package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"

	"adreport/internal/models"
)

type fakeLister struct {
	uploads   []models.UploadLog
	err       error
	lastLimit int
}

func (f *fakeLister) ListRecentUploads(_ context.Context, limit int) ([]models.UploadLog, error) {
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.uploads) {
		return f.uploads[:limit], nil
	}
	return f.uploads, nil
}

func TestUploadsList(t *testing.T) {
	store := &fakeLister{uploads: []models.UploadLog{
		{FileName: "b.csv", Account: "outlet", Outcome: models.OutcomeParsed, Rows: 12},
		{FileName: "a.pdf", Outcome: models.OutcomeRejected},
	}}
	app := fiber.New()
	app.Get("/api/v1/uploads", NewUploadsHandler(store).List)

	tests := []struct {
		name      string
		url       string
		wantCode  int
		wantLimit int
		wantLen   int
	}{
		{"default limit", "/api/v1/uploads", http.StatusOK, defaultUploadLimit, 2},
		{"explicit limit", "/api/v1/uploads?limit=1", http.StatusOK, 1, 1},
		{"limit capped", "/api/v1/uploads?limit=100000", http.StatusOK, maxUploadLimit, 2},
		{"zero limit", "/api/v1/uploads?limit=0", http.StatusBadRequest, 0, 0},
		{"non-numeric limit", "/api/v1/uploads?limit=ten", http.StatusBadRequest, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store.lastLimit = 0
			code, env := call(t, app, httptest.NewRequest(http.MethodGet, tt.url, nil), nil)
			if code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%s)", code, tt.wantCode, env.Error)
			}
			if store.lastLimit != tt.wantLimit {
				t.Errorf("limit = %d, want %d", store.lastLimit, tt.wantLimit)
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			var got []models.UploadLog
			if err := json.Unmarshal(env.Data, &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(got) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestUploadsList_StoreError(t *testing.T) {
	app := fiber.New()
	app.Get("/api/v1/uploads", NewUploadsHandler(&fakeLister{err: errors.New("connection refused")}).List)

	code, env := call(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/uploads", nil), nil)
	if code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", code)
	}
	if env.Status != "error" {
		t.Errorf("status field = %q, want error", env.Status)
	}
}
