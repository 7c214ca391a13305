package db

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"adreport/internal/models"
)

func TestRecordUpload(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	entries := []models.UploadLog{
		{FileName: "a.csv", Account: "brand", Format: models.FormatCSV, Rows: 10, Outcome: models.OutcomeParsed},
		{FileName: "b.csv", Account: "brand", Format: models.FormatCSV, Rows: 5, Outcome: models.OutcomeParsed},
		{FileName: "c.pdf", Outcome: models.OutcomeRejected},
	}
	for i := range entries {
		if err := db.RecordUpload(ctx, &entries[i]); err != nil {
			t.Fatalf("RecordUpload() error = %v", err)
		}
		if entries[i].ID == uuid.Nil {
			t.Error("RecordUpload() did not set ID")
		}
		if entries[i].CreatedAt.IsZero() {
			t.Error("RecordUpload() did not set CreatedAt")
		}
	}

	recent, err := db.ListRecentUploads(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecentUploads() error = %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("ListRecentUploads() returned %d, want 2", len(recent))
	}

	counts, err := db.GetUploadCounts(ctx)
	if err != nil {
		t.Fatalf("GetUploadCounts() error = %v", err)
	}

	found := false
	for _, c := range counts {
		if c.Account == "brand" && c.Outcome == models.OutcomeParsed {
			found = true
			if c.Count != 2 || c.Rows != 15 {
				t.Errorf("brand/parsed = %+v, want count 2 rows 15", c)
			}
		}
	}
	if !found {
		t.Error("GetUploadCounts() missing brand/parsed")
	}
}
