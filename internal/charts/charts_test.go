package charts

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adreport/internal/report"
	"adreport/internal/testutil"
)

func sampleProducts() []report.ProductRow {
	return report.Build(testutil.SampleRecords(), report.Filter{}, report.Options{
		DefaultTarget: 300,
		WarnRatio:     0.8,
	}).Products
}

func assertPNG(t *testing.T, data []byte) {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, width, img.Bounds().Dx())
	assert.Equal(t, height, img.Bounds().Dy())
}

func TestBubble(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Bubble(&buf, sampleProducts(), 300))
	assertPNG(t, buf.Bytes())
}

func TestBubble_SinglePoint(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Bubble(&buf, sampleProducts()[:1], 0))
	assertPNG(t, buf.Bytes())
}

func TestBubble_AllZero(t *testing.T) {
	rows := []report.ProductRow{{Code: "Z1"}}
	var buf bytes.Buffer
	require.NoError(t, Bubble(&buf, rows, 300))
	assertPNG(t, buf.Bytes())
}

func TestSpendBars(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SpendBars(&buf, sampleProducts(), 2))
	assertPNG(t, buf.Bytes())
}

func TestNoData(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, Bubble(&buf, nil, 300), ErrNoData)
	assert.ErrorIs(t, SpendBars(&buf, nil, 10), ErrNoData)
	assert.Zero(t, buf.Len())
}

func TestCompact(t *testing.T) {
	assert.Equal(t, "950", compact(950.0))
	assert.Equal(t, "1.5K", compact(1500.0))
	assert.Equal(t, "2.0M", compact(2e6))
	assert.Equal(t, "x", compact("x"))
}
