package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"adreport/internal/models"
)

var (
	uploadHistoryDesc = prometheus.NewDesc(
		"adreport_upload_history_total",
		"Stored upload count by account and outcome",
		[]string{"account", "outcome"},
		nil,
	)
	uploadHistoryRowsDesc = prometheus.NewDesc(
		"adreport_upload_history_rows_total",
		"Stored parsed row count by account and outcome",
		[]string{"account", "outcome"},
		nil,
	)

	uploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "adreport_uploads_total",
		Help: "Uploaded files handled by this process, by format and outcome",
	}, []string{"format", "outcome"})

	rowsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "adreport_parsed_rows_total",
		Help: "Records parsed from uploaded files",
	})

	parseDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "adreport_parse_duration_seconds",
		Help:    "Time spent parsing one uploaded file",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
	}, []string{"format"})
)

// UploadStore persists and aggregates upload audit entries.
type UploadStore interface {
	RecordUpload(ctx context.Context, u *models.UploadLog) error
	GetUploadCounts(ctx context.Context) ([]models.UploadCount, error)
}

// UploadCollector is a custom Prometheus collector that reads upload
// counts from the database on each scrape.
type UploadCollector struct {
	store UploadStore
}

// NewUploadCollector creates a collector backed by store.
func NewUploadCollector(store UploadStore) *UploadCollector {
	return &UploadCollector{store: store}
}

// Describe sends the metric descriptors to the channel.
func (c *UploadCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- uploadHistoryDesc
	ch <- uploadHistoryRowsDesc
}

// Collect queries the database for upload counts and emits them as counters.
func (c *UploadCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	counts, err := c.store.GetUploadCounts(ctx)
	if err != nil {
		slog.Error("failed to collect upload metrics", "error", err)
		return
	}
	for _, u := range counts {
		ch <- prometheus.MustNewConstMetric(uploadHistoryDesc, prometheus.CounterValue, float64(u.Count), u.Account, u.Outcome)
		ch <- prometheus.MustNewConstMetric(uploadHistoryRowsDesc, prometheus.CounterValue, float64(u.Rows), u.Account, u.Outcome)
	}
}

// Recorder provides async upload recording.
type Recorder struct {
	store UploadStore
}

var (
	recorder     *Recorder
	recorderOnce sync.Once
)

// Init registers the collectors and initializes the recorder.
// Must be called once at startup. store may be nil when no database is configured.
func Init(store UploadStore) {
	recorderOnce.Do(func() {
		prometheus.MustRegister(uploadsTotal, rowsTotal, parseDuration)
		if store != nil {
			recorder = &Recorder{store: store}
			prometheus.MustRegister(NewUploadCollector(store))
		}
	})
}

// ObserveParse records a parse attempt in the process counters.
func ObserveParse(format, outcome string, rows int, took time.Duration) {
	if format == "" {
		format = "unknown"
	}
	uploadsTotal.WithLabelValues(format, outcome).Inc()
	if rows > 0 {
		rowsTotal.Add(float64(rows))
	}
	parseDuration.WithLabelValues(format).Observe(took.Seconds())
}

// RecordUpload asynchronously stores an upload audit entry.
func RecordUpload(entry models.UploadLog) {
	if recorder == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := recorder.store.RecordUpload(ctx, &entry); err != nil {
			slog.Error("failed to record upload", "file", entry.FileName, "outcome", entry.Outcome, "error", err)
		}
	}()
}
