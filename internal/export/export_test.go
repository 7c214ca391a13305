package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"adreport/internal/report"
	"adreport/internal/testutil"
)

func sampleReport() *report.Report {
	return report.Build(testutil.SampleRecords(), report.Filter{}, report.Options{
		DefaultTarget:   300,
		WarnRatio:       0.8,
		UnassignedLabel: "미분류",
	})
}

func TestWriteWorkbook(t *testing.T) {
	data, err := WriteWorkbook(sampleReport())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Products", "Keywords", "Daily", "Accounts", "Placements"}, f.GetSheetList())

	code, err := f.GetCellValue("Products", "A2")
	require.NoError(t, err)
	assert.Equal(t, "A123", code)

	roas, err := f.GetCellValue("Products", "J2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "400", roas)

	good, err := f.GetCellStyle("Products", "J2")
	require.NoError(t, err)
	bad, err := f.GetCellStyle("Products", "J4")
	require.NoError(t, err)
	assert.NotEqual(t, good, bad, "ROAS cells are filled by grade")

	spend, err := f.GetCellValue("Summary", "B11", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "60000", spend)

	rows, err := f.GetRows("Daily")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "2024-09-01", rows[1][0])
}

func TestWriteWorkbook_Empty(t *testing.T) {
	data, err := WriteWorkbook(report.Build(nil, report.Filter{}, report.Options{DefaultTarget: 300, WarnRatio: 0.8}))
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	require.True(t, bytes.HasPrefix(data, utf8BOM), "csv starts with a BOM")
	rows, err := csv.NewReader(bytes.NewReader(data[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteCSV_Products(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, TableProducts, sampleReport(), nil))

	rows := readCSV(t, buf.Bytes())
	require.Len(t, rows, 4)
	assert.Equal(t, "상품코드", rows[0][0])
	assert.Equal(t, []string{"A123", "", "300", "달성", "1500", "60", "4", "30000", "120000", "400", "4", "500", "6.67"}, rows[1])
	assert.Equal(t, "미분류", rows[3][0])
}

func TestWriteCSV_Records(t *testing.T) {
	records := testutil.SampleRecords()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, TableRecords, sampleReport(), records))

	rows := readCSV(t, buf.Bytes())
	require.Len(t, rows, len(records)+1)
	assert.Equal(t, "brand", rows[1][0])
	assert.Equal(t, "2024-09-01", rows[1][2])
	assert.Equal(t, "", rows[4][2], "undated record")
}

func TestWriteCSV_UnknownTable(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, "secrets", sampleReport(), nil)
	assert.ErrorIs(t, err, ErrUnknownTable)
	assert.Zero(t, buf.Len())
}

func TestValidTable(t *testing.T) {
	for _, name := range TableNames {
		assert.True(t, ValidTable(name), name)
	}
	assert.False(t, ValidTable("summary"))
}
