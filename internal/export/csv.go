package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"adreport/internal/models"
	"adreport/internal/report"
)

// utf8BOM makes Excel open the file as UTF-8 instead of the system code page.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes one table. records feeds the records table and may be nil otherwise.
func WriteCSV(w io.Writer, name string, rep *report.Report, records []models.AdRecord) error {
	t, err := buildTable(name, rep, records)
	if err != nil {
		return fmt.Errorf("%w: %q", err, name)
	}

	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(t.header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	line := make([]string, len(t.header))
	for _, r := range t.rows {
		for i, c := range r.cells {
			line[i] = csvCell(c)
		}
		if err := cw.Write(line[:len(r.cells)]); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvCell(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case decimal.Decimal:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
