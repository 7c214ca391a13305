// Package analysis ties parsing, the catalog and report building together
// for the web handlers and the JSON API.
package analysis

import (
	"log/slog"
	"time"

	"adreport/internal/catalog"
	"adreport/internal/config"
	"adreport/internal/ingest"
	"adreport/internal/metrics"
	"adreport/internal/models"
	"adreport/internal/report"
	"adreport/internal/validation"
)

const msgDuplicateName = "Duplicate file name in this upload"

// Upload is one file received from a client.
type Upload struct {
	Name string
	Data []byte
}

// Service parses uploads and builds reports.
type Service struct {
	rules   *config.Rules
	parser  *ingest.Parser
	catalog *catalog.Catalog
	logger  *slog.Logger
}

// New creates a service. cat may be nil when no catalog is used.
func New(rules *config.Rules, cat *catalog.Catalog, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	parser, err := ingest.NewParser(rules, logger)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		cat = catalog.New(catalog.FromRules(rules))
	}
	return &Service{rules: rules, parser: parser, catalog: cat, logger: logger}, nil
}

// Rules returns the active rules.
func (s *Service) Rules() *config.Rules {
	return s.rules
}

// Catalog returns the product catalog.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// Parse reads every upload. Files that fail are reported in the results and
// left out of the parsed list; one bad file never rejects the batch. A name
// repeated within the batch is rejected, since the dataset keys files by name.
func (s *Service) Parse(uploads []Upload, userSub string) ([]*models.ParsedFile, []models.FileResult) {
	var parsed []*models.ParsedFile
	results := make([]models.FileResult, 0, len(uploads))
	seen := make(map[string]bool, len(uploads))

	for _, u := range uploads {
		if ok, msg := validation.ValidateUploadName(u.Name); !ok {
			results = append(results, models.FileResult{Name: u.Name, Outcome: models.OutcomeRejected, Error: msg})
			s.record(u.Name, "", models.OutcomeRejected, 0, userSub, 0)
			continue
		}
		if seen[u.Name] {
			results = append(results, models.FileResult{Name: u.Name, Outcome: models.OutcomeRejected, Error: msgDuplicateName})
			s.record(u.Name, "", models.OutcomeRejected, 0, userSub, 0)
			continue
		}
		seen[u.Name] = true

		format, _ := ingest.FormatFor(u.Name)
		start := time.Now()
		pf, err := s.parser.Parse(u.Name, u.Data)
		took := time.Since(start)

		if err != nil {
			outcome := models.OutcomeFailed
			if ingest.IsUserError(err) {
				outcome = models.OutcomeRejected
			}
			s.logger.Warn("upload not parsed", "file", u.Name, "outcome", outcome, "error", err)
			results = append(results, models.FileResult{Name: u.Name, Outcome: outcome, Error: err.Error()})
			s.record(u.Name, format, outcome, 0, userSub, took)
			continue
		}

		s.logger.Info("upload parsed",
			"file", u.Name,
			"account", pf.Info.Account,
			"rows", pf.Info.Rows,
			"skipped", pf.Info.Skipped,
			"duration", took,
		)
		parsed = append(parsed, pf)
		results = append(results, models.ResultFor(pf))
		metrics.ObserveParse(pf.Info.Format, models.OutcomeParsed, pf.Info.Rows, took)
		metrics.RecordUpload(models.UploadLog{
			FileName: pf.Info.Name,
			Account:  pf.Info.Account,
			Format:   pf.Info.Format,
			Rows:     pf.Info.Rows,
			Outcome:  models.OutcomeParsed,
			UserSub:  userSub,
		})
	}
	return parsed, results
}

func (s *Service) record(name, format, outcome string, rows int, userSub string, took time.Duration) {
	metrics.ObserveParse(format, outcome, rows, took)
	metrics.RecordUpload(models.UploadLog{
		FileName: name,
		Format:   format,
		Rows:     rows,
		Outcome:  outcome,
		UserSub:  userSub,
	})
}

// Build filters records and aggregates them with the catalog and thresholds.
func (s *Service) Build(records []models.AdRecord, filter report.Filter) *report.Report {
	return report.Build(records, filter, report.OptionsFromRules(s.rules, s.catalog))
}
