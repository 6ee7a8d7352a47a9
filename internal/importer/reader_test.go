package importer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const sampleCSV = `Product ID,Date,Product Category,Product Name,Units Sold,Unit Price,Total Revenue,Initial_Quantity
10001,01/02/2024,Electronics,iPhone 14 Pro,2,999.99,1999.98,50
10001,2024-01-03,Electronics,iPhone 14 Pro,1,999.99,999.99,50
10002,13/45/2024,Home,Blender,1,59.5,59.5,20
10003,01/05/2024,Home,Toaster,one,10,10,20
,,,,,,,
`

func TestReadCSV(t *testing.T) {
	records, skipped, err := Read(strings.NewReader(sampleCSV), FormatCSV)
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, int64(10001), records[0].ProductID)
	assert.Equal(t, "01/02/2024", records[0].Date.String())
	assert.Equal(t, "01/03/2024", records[1].Date.String())
	assert.Equal(t, 3, records[1].Line)
	assert.Equal(t, int64(50), records[0].InitialQuantity)
	require.NotNil(t, records[0].TotalRevenue)
	assert.Equal(t, "1999.98", records[0].TotalRevenue.String())

	require.Len(t, skipped, 2)
	assert.Equal(t, 4, skipped[0].Line)
	assert.Equal(t, "malformed_date", skipped[0].Reason)
	assert.Equal(t, 5, skipped[1].Line)
	assert.Equal(t, "invalid_field", skipped[1].Reason)
}

func TestReadMissingColumn(t *testing.T) {
	_, _, err := Read(strings.NewReader("Product ID,Date\n1,01/01/2024\n"), FormatCSV)
	require.ErrorIs(t, err, ErrMissingColumn)
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Product ID", "Product Name", "Product Category", "Initial_Quantity", "Date", "Units Sold", "Unit Price"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{10001, "Widget", "Tools", 30, "03/01/2024", 4, 2.5}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	records, skipped, err := Read(&buf, FormatXLSX)
	require.NoError(t, err)
	assert.Empty(t, skipped)
	require.Len(t, records, 1)
	assert.Equal(t, int64(4), records[0].UnitsSold)
	assert.Equal(t, "2.5", records[0].UnitPrice.String())
	assert.Nil(t, records[0].TotalRevenue)
}

func TestFormatFromPath(t *testing.T) {
	format, err := FormatFromPath("Online Sales Data.CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, format)

	format, err = FormatFromPath("/tmp/export.xlsx")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, format)

	_, err = FormatFromPath("data.json")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseIntAcceptsWholeFloats(t *testing.T) {
	v, err := parseInt("units", "12.0")
	require.NoError(t, err)
	assert.Equal(t, int64(12), v)

	_, err = parseInt("units", "12.5")
	require.ErrorIs(t, err, ErrInvalidField)
}
