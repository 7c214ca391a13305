package metrics

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"adreport/internal/models"
)

type fakeStore struct {
	counts []models.UploadCount
	err    error
}

func (f *fakeStore) RecordUpload(ctx context.Context, u *models.UploadLog) error {
	return f.err
}

func (f *fakeStore) GetUploadCounts(ctx context.Context) ([]models.UploadCount, error) {
	return f.counts, f.err
}

func TestUploadCollector(t *testing.T) {
	store := &fakeStore{counts: []models.UploadCount{
		{Account: "brand", Outcome: models.OutcomeParsed, Count: 3, Rows: 120},
		{Account: "", Outcome: models.OutcomeRejected, Count: 1},
	}}
	c := NewUploadCollector(store)

	if n := testutil.CollectAndCount(c); n != 4 {
		t.Errorf("CollectAndCount() = %d, want 4", n)
	}

	expected := `
# HELP adreport_upload_history_total Stored upload count by account and outcome
# TYPE adreport_upload_history_total counter
adreport_upload_history_total{account="",outcome="rejected"} 1
adreport_upload_history_total{account="brand",outcome="parsed"} 3
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(expected), "adreport_upload_history_total"); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
}

func TestUploadCollector_StoreError(t *testing.T) {
	c := NewUploadCollector(&fakeStore{err: errors.New("db down")})
	if n := testutil.CollectAndCount(c); n != 0 {
		t.Errorf("CollectAndCount() = %d, want 0", n)
	}
}

func TestObserveParse(t *testing.T) {
	before := testutil.ToFloat64(uploadsTotal.WithLabelValues("csv", models.OutcomeParsed))
	rowsBefore := testutil.ToFloat64(rowsTotal)

	ObserveParse("csv", models.OutcomeParsed, 42, 10*time.Millisecond)

	if got := testutil.ToFloat64(uploadsTotal.WithLabelValues("csv", models.OutcomeParsed)); got != before+1 {
		t.Errorf("uploads_total = %v, want %v", got, before+1)
	}
	if got := testutil.ToFloat64(rowsTotal); got != rowsBefore+42 {
		t.Errorf("parsed_rows_total = %v, want %v", got, rowsBefore+42)
	}
}

func TestRecordUpload_NoRecorder(t *testing.T) {
	// Without Init there is no store; this must be a no-op.
	RecordUpload(models.UploadLog{FileName: "a.csv"})
}
