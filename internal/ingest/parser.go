// Package ingest reads advertising report exports into normalized records.
package ingest

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"adreport/internal/config"
	"adreport/internal/extract"
	"adreport/internal/models"
)

// maxWarnings caps the per-file warning list.
const maxWarnings = 20

// DefaultAccount is used when neither an account column nor a file name is available.
const DefaultAccount = "default"

// Parser turns uploaded files into records.
type Parser struct {
	rules     *config.Rules
	extractor *extract.Extractor
	logger    *slog.Logger
}

// NewParser creates a parser for the given rules.
func NewParser(rules *config.Rules, logger *slog.Logger) (*Parser, error) {
	ex, err := extract.New(rules)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{rules: rules, extractor: ex, logger: logger}, nil
}

// Parse reads one file. The first sheet with a recognizable header is used.
func (p *Parser) Parse(name string, data []byte) (*models.ParsedFile, error) {
	table, err := ReadTable(name, data)
	if err != nil {
		return nil, err
	}

	var headerErr error
	for _, sh := range table.Sheets {
		idx, cols, err := DetectHeader(sh.Rows, p.rules.Columns)
		if err != nil {
			if headerErr == nil {
				headerErr = err
			}
			continue
		}

		pf := p.parseRows(name, sh.Rows[idx+1:], cols)
		pf.Info.Format = table.Format
		pf.Info.Encoding = table.Encoding
		if table.Delimiter != 0 {
			pf.Info.Delimiter = string(table.Delimiter)
		}
		pf.Info.Sheet = sh.Name
		pf.Info.HeaderRow = idx + 1

		if len(pf.Records) == 0 {
			return nil, fmt.Errorf("%s: %w", name, ErrNoRecords)
		}

		p.logger.Debug("parsed file",
			"file", name,
			"format", pf.Info.Format,
			"encoding", pf.Info.Encoding,
			"sheet", pf.Info.Sheet,
			"rows", pf.Info.Rows,
			"skipped", pf.Info.Skipped,
			"warnings", len(pf.Info.Warnings),
		)
		return pf, nil
	}

	if headerErr == nil {
		headerErr = ErrNoHeader
	}
	return nil, headerErr
}

type rowWarnings struct {
	list       []string
	suppressed int
}

func (w *rowWarnings) add(format string, args ...any) {
	if len(w.list) >= maxWarnings {
		w.suppressed++
		return
	}
	w.list = append(w.list, fmt.Sprintf(format, args...))
}

func (w *rowWarnings) result() []string {
	if w.suppressed > 0 {
		return append(w.list, fmt.Sprintf("%d more warnings not shown", w.suppressed))
	}
	return w.list
}

func (p *Parser) parseRows(name string, rows [][]string, cols ColumnMap) *models.ParsedFile {
	ex := p.extractor
	fileAccount := AccountFromName(name)

	pf := &models.ParsedFile{Info: models.FileInfo{Name: name}}
	var warn rowWarnings
	accounts := make(map[string]bool)

	for i, row := range rows {
		line := i + 1
		if isBlank(row) {
			pf.Info.Skipped++
			continue
		}

		rawCampaign := cols.Cell(row, config.ColCampaign)
		if ex.IsTotalRow(rawCampaign) || ex.IsTotalRow(cols.Cell(row, config.ColDate)) {
			pf.Info.Skipped++
			continue
		}

		rec := models.AdRecord{
			SourceFile:  name,
			Campaign:    ex.Clean(rawCampaign),
			AdGroup:     ex.Clean(cols.Cell(row, config.ColAdGroup)),
			ProductName: ex.Clean(cols.Cell(row, config.ColProductName)),
		}

		rec.Account = ex.Clean(cols.Cell(row, config.ColAccount))
		if rec.Account == "" {
			rec.Account = fileAccount
		}
		accounts[rec.Account] = true

		if raw := ex.Clean(cols.Cell(row, config.ColDate)); raw != "" {
			d, err := parseDate(raw)
			if err != nil {
				warn.add("row %d: %v", line, err)
			} else {
				rec.Date = d
			}
		}

		counts := []struct {
			col string
			dst *int64
		}{
			{config.ColImpressions, &rec.Impressions},
			{config.ColClicks, &rec.Clicks},
			{config.ColOrders, &rec.Orders},
		}
		for _, c := range counts {
			v, err := parseCount(cols.Cell(row, c.col), ex.IsPlaceholder)
			if err != nil {
				warn.add("row %d %s: %v", line, c.col, err)
			}
			*c.dst = v
		}

		var err error
		if rec.Spend, err = parseNumber(cols.Cell(row, config.ColSpend), ex.IsPlaceholder); err != nil {
			warn.add("row %d %s: %v", line, config.ColSpend, err)
		}
		if rec.Sales, err = parseNumber(cols.Cell(row, config.ColSales), ex.IsPlaceholder); err != nil {
			warn.add("row %d %s: %v", line, config.ColSales, err)
		}

		keyword := ex.Clean(cols.Cell(row, config.ColKeyword))
		placement, nonSearch := ex.NormalizePlacement(cols.Cell(row, config.ColPlacement))
		if placement == "" {
			// No placement column: a keyword implies search traffic.
			if keyword != "" {
				placement = models.PlacementSearch
			} else {
				placement, nonSearch = models.PlacementNonSearch, true
			}
		}
		rec.Placement = placement
		rec.Keyword, rec.NonSearch = ex.NormalizeKeyword(keyword, nonSearch)

		md := ex.Extract(rec.Campaign, rec.AdGroup)
		rec.ProductCode = md.ProductCode
		rec.Target = md.Target
		rec.DateToken = md.DateToken

		pf.Records = append(pf.Records, rec)
	}

	pf.Info.Rows = len(pf.Records)
	pf.Info.Warnings = warn.result()
	pf.Info.Account = fileAccount
	if len(accounts) == 1 {
		for a := range accounts {
			pf.Info.Account = a
		}
	}
	return pf
}

// AccountFromName derives an account name from a file name stem.
func AccountFromName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	stem := strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
	if stem == "" || stem == "." || stem == "/" {
		return DefaultAccount
	}
	return stem
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// IsUserError reports whether err describes a problem with the uploaded file
// rather than a server fault.
func IsUserError(err error) bool {
	var missing *MissingColumnsError
	return errors.Is(err, ErrEmptyFile) ||
		errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrNoHeader) ||
		errors.Is(err, ErrNoRecords) ||
		errors.As(err, &missing)
}
