package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/stockroom/internal/calendar"
	"github.com/smallbiznis/stockroom/internal/report/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleRows() []domain.Row {
	return []domain.Row{
		{
			ProductID:         10000,
			ProductName:       "Widget",
			ProductCategory:   "Tools",
			InitialQuantity:   100,
			Date:              calendar.New(2024, time.January, 2),
			UnitsSold:         10,
			UnitPrice:         decimal.RequireFromString("2.50"),
			TotalRevenue:      decimal.NewFromInt(25),
			RemainingQuantity: 90,
		},
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	revenue := []domain.MonthRevenue{{Month: "01/2024", TotalRevenue: decimal.NewFromInt(25)}}
	require.NoError(t, WriteXLSX(&buf, sampleRows(), revenue))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(reportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, domain.Headers, rows[0])
	assert.Equal(t, "10000", rows[1][0])
	assert.Equal(t, "01/02/2024", rows[1][4])
	assert.Equal(t, "90", rows[1][8])

	month, err := f.GetCellValue(revenueSheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "01/2024", month)
}

func TestRenderPDF(t *testing.T) {
	out, err := RenderPDF(PDFMeta{Title: "Stock", GeneratedAt: "01/10/2024"}, sampleRows())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPDFWidthsCoverGrid(t *testing.T) {
	require.Len(t, pdfWidths, len(domain.Columns))
	sum := 0
	for _, w := range pdfWidths {
		sum += w
	}
	assert.Equal(t, 12, sum)
}
