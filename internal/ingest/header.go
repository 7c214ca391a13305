package ingest

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"adreport/internal/config"
)

// headerScanRows bounds how far down a sheet the header row may sit.
// Exports often start with a title block and report period lines.
const headerScanRows = 30

// ColumnMap maps canonical column names to cell indexes.
type ColumnMap map[string]int

// Has reports whether the column was found.
func (m ColumnMap) Has(col string) bool {
	_, ok := m[col]
	return ok
}

// Cell returns the value of a canonical column in row, or "".
func (m ColumnMap) Cell(row []string, col string) string {
	idx, ok := m[col]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// DetectHeader finds the first row that maps every required column.
func DetectHeader(rows [][]string, aliases map[string][]string) (int, ColumnMap, error) {
	var bestMissing []string
	bestMapped := -1

	limit := len(rows)
	if limit > headerScanRows {
		limit = headerScanRows
	}

	for i := 0; i < limit; i++ {
		cm := MapColumns(rows[i], aliases)
		var missing []string
		for _, col := range config.RequiredColumns {
			if !cm.Has(col) {
				missing = append(missing, col)
			}
		}
		if len(missing) == 0 {
			return i, cm, nil
		}
		if len(cm) > bestMapped {
			bestMapped = len(cm)
			bestMissing = missing
		}
	}

	if bestMissing == nil {
		bestMissing = append([]string(nil), config.RequiredColumns...)
	}
	return -1, nil, &MissingColumnsError{Columns: bestMissing}
}

// MapColumns matches header cells against alias lists. Alias order is
// priority; each cell is claimed by at most one column. Exact matches are
// tried before prefix matches such as "광고비(VAT포함)".
func MapColumns(header []string, aliases map[string][]string) ColumnMap {
	cells := make([]string, len(header))
	for i, h := range header {
		cells[i] = normalizeHeader(h)
	}

	cols := make([]string, 0, len(aliases))
	for col := range aliases {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	cm := make(ColumnMap)
	used := make(map[int]bool)

	match := func(exact bool) {
		for _, col := range cols {
			if cm.Has(col) {
				continue
			}
			for _, alias := range aliases[col] {
				a := normalizeHeader(alias)
				if a == "" {
					continue
				}
				idx := -1
				for i, c := range cells {
					if used[i] || c == "" {
						continue
					}
					if c == a || (!exact && strings.HasPrefix(c, a)) {
						idx = i
						break
					}
				}
				if idx >= 0 {
					cm[col] = idx
					used[idx] = true
					break
				}
			}
		}
	}
	match(true)
	match(false)
	return cm
}

// normalizeHeader NFC-normalizes, lower-cases and drops whitespace and BOMs.
func normalizeHeader(s string) string {
	s = norm.NFC.String(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '\ufeff' {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}
