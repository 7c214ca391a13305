package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"

	"adreport/internal/models"
)

// Sheet is one grid of cells read from a file.
type Sheet struct {
	Name string
	Rows [][]string
}

// Table is the raw content of an upload before header detection.
// Delimited files have a single unnamed sheet.
type Table struct {
	Format    string
	Encoding  string
	Delimiter rune
	Sheets    []Sheet
}

// FormatFor returns the reader format for a file name, or ErrUnsupportedFormat.
func FormatFor(name string) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".tsv", ".txt":
		return models.FormatCSV, nil
	case ".xlsx", ".xlsm":
		return models.FormatXLSX, nil
	case ".xls":
		return models.FormatXLS, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
}

// ReadTable reads every sheet of an upload using the reader for its extension.
func ReadTable(name string, data []byte) (*Table, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	format, err := FormatFor(name)
	if err != nil {
		return nil, err
	}

	switch format {
	case models.FormatCSV:
		return readDelimited(data)
	case models.FormatXLSX:
		return readWorkbook(data)
	default:
		return readLegacyWorkbook(data)
	}
}

// readDelimited decodes text and parses it with a sniffed delimiter.
func readDelimited(data []byte) (*Table, error) {
	text, enc, err := Decode(data)
	if err != nil {
		return nil, err
	}

	delim := sniffDelimiter(text)
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read delimited text: %w", err)
		}
		rows = append(rows, record)
	}

	return &Table{
		Format:    models.FormatCSV,
		Encoding:  enc,
		Delimiter: delim,
		Sheets:    []Sheet{{Rows: rows}},
	}, nil
}

// sniffDelimiter picks the most frequent candidate in the first non-empty line.
func sniffDelimiter(text string) rune {
	line := ""
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) != "" {
			line = l
			break
		}
	}

	best, bestCount := ',', 0
	for _, d := range []rune{',', '\t', ';', '|'} {
		if n := strings.Count(line, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

// readWorkbook reads every sheet of an xlsx workbook with raw cell values.
func readWorkbook(data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	src := &Table{Format: models.FormatXLSX}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}
		src.Sheets = append(src.Sheets, Sheet{Name: name, Rows: rows})
	}
	return src, nil
}

// readLegacyWorkbook reads a BIFF .xls workbook. The reader needs a path, so
// the upload is spooled to a temporary file.
func readLegacyWorkbook(data []byte) (*Table, error) {
	tmp, err := os.CreateTemp("", "adreport-*.xls")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to spool workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to spool workbook: %w", err)
	}

	workbook, err := xls.OpenFile(tmp.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to open .xls workbook: %w", err)
	}

	src := &Table{Format: models.FormatXLS}
	for i := 0; i < workbook.GetNumberSheets(); i++ {
		sh, err := workbook.GetSheet(i)
		if err != nil || sh == nil {
			continue
		}

		var rows [][]string
		for r := 0; r <= sh.GetNumberRows(); r++ {
			row, err := sh.GetRow(r)
			if err != nil || row == nil {
				rows = append(rows, nil)
				continue
			}
			var cells []string
			for _, col := range row.GetCols() {
				if col != nil {
					cells = append(cells, col.GetString())
				} else {
					cells = append(cells, "")
				}
			}
			rows = append(rows, cells)
		}
		src.Sheets = append(src.Sheets, Sheet{Name: sh.GetName(), Rows: rows})
	}
	return src, nil
}
