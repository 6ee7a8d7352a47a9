package export

import (
	"fmt"
	"io"

	"github.com/smallbiznis/stockroom/internal/report/domain"
	"github.com/xuri/excelize/v2"
)

const (
	reportSheet  = "Report"
	revenueSheet = "Monthly Revenue"
)

// WriteXLSX writes the report rows, and the monthly revenue series when given,
// as a workbook.
func WriteXLSX(w io.Writer, rows []domain.Row, revenue []domain.MonthRevenue) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	header := make([]any, 0, len(domain.Headers))
	for _, h := range domain.Headers {
		header = append(header, h)
	}
	if err := f.SetSheetRow(reportSheet, "A1", &header); err != nil {
		return err
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(reportSheet, "A1", lastHeader, bold); err != nil {
		return err
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{
			r.ProductID,
			r.ProductName,
			r.ProductCategory,
			r.InitialQuantity,
			r.Date.String(),
			r.UnitsSold,
			r.UnitPrice.InexactFloat64(),
			r.TotalRevenue.InexactFloat64(),
			r.RemainingQuantity,
		}
		if err := f.SetSheetRow(reportSheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if len(revenue) > 0 {
		if _, err := f.NewSheet(revenueSheet); err != nil {
			return err
		}
		if err := f.SetSheetRow(revenueSheet, "A1", &[]any{"Month", "Total Revenue"}); err != nil {
			return err
		}
		if err := f.SetCellStyle(revenueSheet, "A1", "B1", bold); err != nil {
			return err
		}
		for i, m := range revenue {
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(revenueSheet, cell, &[]any{m.Month, m.TotalRevenue.InexactFloat64()}); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}
