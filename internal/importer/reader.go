package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/stockroom/internal/calendar"
	"github.com/xuri/excelize/v2"
)

var (
	ErrMissingColumn     = errors.New("missing_column")
	ErrUnsupportedFormat = errors.New("unsupported_format")
	ErrInvalidField      = errors.New("invalid_field")
)

// Format is the input file kind.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".csv"):
		return FormatCSV, nil
	case strings.HasSuffix(lower, ".xlsx"):
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// Record is one parsed sales line. Line is the 1-based line in the source,
// header included.
type Record struct {
	Line            int
	ProductID       int64
	ProductName     string
	ProductCategory string
	InitialQuantity int64
	Date            calendar.Date
	UnitsSold       int64
	UnitPrice       decimal.Decimal
	TotalRevenue    *decimal.Decimal
}

// RowError explains why a line was not imported.
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

const (
	colProductID       = "product id"
	colProductName     = "product name"
	colProductCategory = "product category"
	colInitialQuantity = "initial_quantity"
	colDate            = "date"
	colUnitsSold       = "units sold"
	colUnitPrice       = "unit price"
	colTotalRevenue    = "total revenue"
)

var requiredColumns = []string{
	colProductID,
	colProductName,
	colProductCategory,
	colInitialQuantity,
	colDate,
	colUnitsSold,
	colUnitPrice,
}

// Read parses r in the given format. Lines that fail to parse are returned as
// RowErrors; only a missing header or an unreadable file fails the whole read.
func Read(r io.Reader, format Format) ([]Record, []RowError, error) {
	var table [][]string
	switch format {
	case FormatCSV:
		reader := csv.NewReader(r)
		reader.FieldsPerRecord = -1
		reader.TrimLeadingSpace = true
		rows, err := reader.ReadAll()
		if err != nil {
			return nil, nil, fmt.Errorf("read csv: %w", err)
		}
		table = rows
	case FormatXLSX:
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("open xlsx: %w", err)
		}
		defer f.Close()
		sheet := f.GetSheetName(0)
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		table = rows
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return parseTable(table)
}

func parseTable(table [][]string) ([]Record, []RowError, error) {
	if len(table) == 0 {
		return nil, nil, fmt.Errorf("%w: empty file", ErrMissingColumn)
	}

	index := make(map[string]int, len(table[0]))
	for i, h := range table[0] {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := index[c]; !ok {
			return nil, nil, fmt.Errorf("%w: %q", ErrMissingColumn, c)
		}
	}

	var (
		records []Record
		skipped []RowError
	)
	for i, row := range table[1:] {
		line := i + 2
		if isBlank(row) {
			continue
		}
		rec, err := parseRow(row, index)
		if err != nil {
			reason := ErrInvalidField.Error()
			if errors.Is(err, calendar.ErrMalformedDate) {
				reason = calendar.ErrMalformedDate.Error()
			}
			skipped = append(skipped, RowError{Line: line, Reason: reason, Detail: err.Error()})
			continue
		}
		rec.Line = line
		records = append(records, rec)
	}
	return records, skipped, nil
}

func parseRow(row []string, index map[string]int) (Record, error) {
	field := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var rec Record
	var err error
	if rec.ProductID, err = parseInt(colProductID, field(colProductID)); err != nil {
		return Record{}, err
	}
	if rec.ProductID <= 0 {
		return Record{}, fmt.Errorf("%w: %s=%q must be positive", ErrInvalidField, colProductID, field(colProductID))
	}
	rec.ProductName = field(colProductName)
	rec.ProductCategory = field(colProductCategory)
	if rec.InitialQuantity, err = parseInt(colInitialQuantity, field(colInitialQuantity)); err != nil {
		return Record{}, err
	}
	if rec.Date, err = calendar.Normalize(field(colDate)); err != nil {
		return Record{}, err
	}
	if rec.UnitsSold, err = parseInt(colUnitsSold, field(colUnitsSold)); err != nil {
		return Record{}, err
	}
	if rec.UnitPrice, err = parseMoney(colUnitPrice, field(colUnitPrice)); err != nil {
		return Record{}, err
	}
	if raw := field(colTotalRevenue); raw != "" {
		total, err := parseMoney(colTotalRevenue, raw)
		if err != nil {
			return Record{}, err
		}
		rec.TotalRevenue = &total
	}
	return rec, nil
}

func parseInt(name, raw string) (int64, error) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err == nil {
		return v, nil
	}
	// Spreadsheets often store whole numbers as 12.0.
	d, derr := decimal.NewFromString(raw)
	if derr == nil && d.IsInteger() {
		return d.IntPart(), nil
	}
	return 0, fmt.Errorf("%w: %s=%q", ErrInvalidField, name, raw)
}

func parseMoney(name, raw string) (decimal.Decimal, error) {
	raw = strings.TrimPrefix(strings.ReplaceAll(raw, ",", ""), "$")
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %s=%q", ErrInvalidField, name, raw)
	}
	return d, nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
