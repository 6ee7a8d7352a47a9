package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/smallbiznis/stockroom/internal/calendar"
	forecastdomain "github.com/smallbiznis/stockroom/internal/forecast/domain"
	"github.com/smallbiznis/stockroom/internal/importer"
	inventorydomain "github.com/smallbiznis/stockroom/internal/inventory/domain"
	productdomain "github.com/smallbiznis/stockroom/internal/product/domain"
	reportdomain "github.com/smallbiznis/stockroom/internal/report/domain"
	"github.com/smallbiznis/stockroom/internal/report/export"
)

func (r *Runner) today() calendar.Date {
	return calendar.FromTime(r.deps.Clock.Now())
}

func (r *Runner) printJSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// table writes tab-separated lines aligned into columns.
func (r *Runner) table(header []string, lines [][]string) error {
	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, line := range lines {
		fmt.Fprintln(w, strings.Join(line, "\t"))
	}
	return w.Flush()
}

func itoa(v int64) string { return strconv.FormatInt(v, 10) }

func (r *Runner) printProducts(items []productdomain.Response) error {
	lines := make([][]string, 0, len(items))
	for _, p := range items {
		remaining := "-"
		if p.RemainingQuantity != nil {
			remaining = itoa(*p.RemainingQuantity)
		}
		lines = append(lines, []string{itoa(p.ProductID), p.Name, p.Category, itoa(p.InitialQuantity), remaining})
	}
	return r.table([]string{"PRODUCT ID", "NAME", "CATEGORY", "INITIAL", "REMAINING"}, lines)
}

func (r *Runner) printSale(s *inventorydomain.SaleResponse) error {
	return r.table(
		[]string{"PRODUCT ID", "DATE", "UNITS SOLD", "UNIT PRICE", "TOTAL REVENUE", "REMAINING"},
		[][]string{{
			itoa(s.ProductID),
			s.Date,
			itoa(s.UnitsSold),
			s.UnitPrice.StringFixed(2),
			s.TotalRevenue.StringFixed(2),
			itoa(s.RemainingQuantity),
		}},
	)
}

func (r *Runner) printBalances(rec *inventorydomain.Reconciliation) error {
	fmt.Fprintf(r.out, "product %d: initial %d, remaining %d\n", rec.ProductID, rec.InitialQuantity, rec.Remaining())
	lines := make([][]string, 0, len(rec.Balances))
	for _, b := range rec.Balances {
		lines = append(lines, []string{b.Date.String(), itoa(b.UnitsSold), itoa(b.RemainingQuantity)})
	}
	return r.table([]string{"DATE", "UNITS SOLD", "REMAINING"}, lines)
}

func (r *Runner) printSnapshots(snapshots []inventorydomain.Snapshot) error {
	lines := make([][]string, 0, len(snapshots))
	for _, s := range snapshots {
		lines = append(lines, []string{
			s.Date.String(),
			strconv.Itoa(s.Revision),
			string(s.Kind),
			itoa(s.Quantity),
			itoa(s.RemainingQuantity),
			s.CreatedAt.Format(time.RFC3339),
		})
	}
	return r.table([]string{"DATE", "REVISION", "KIND", "QUANTITY", "REMAINING", "RECORDED AT"}, lines)
}

func (r *Runner) printReconciliations(results []inventorydomain.Reconciliation) error {
	lines := make([][]string, 0, len(results))
	for _, rec := range results {
		lines = append(lines, []string{
			itoa(rec.ProductID),
			itoa(rec.Remaining()),
			strconv.Itoa(rec.SalesUpdated),
			strconv.Itoa(rec.SnapshotsAppended),
		})
	}
	return r.table([]string{"PRODUCT ID", "REMAINING", "SALES UPDATED", "SNAPSHOTS APPENDED"}, lines)
}

func (r *Runner) printForecast(f *forecastdomain.Forecast) error {
	fmt.Fprintf(r.out, "product %d: current %d, average daily usage %s\n",
		f.ProductID, f.CurrentQuantity, strconv.FormatFloat(f.AverageDelta, 'f', 2, 64))
	lines := make([][]string, 0, len(f.Points))
	for _, p := range f.Points {
		lines = append(lines, []string{p.Date.String(), strconv.FormatFloat(p.Quantity, 'f', 2, 64)})
	}
	return r.table([]string{"DATE", "QUANTITY"}, lines)
}

func (r *Runner) printRows(rows []reportdomain.Row) error {
	lines := make([][]string, 0, len(rows))
	for _, row := range rows {
		line := make([]string, 0, len(reportdomain.Columns))
		for _, c := range reportdomain.Columns {
			line = append(line, row.Value(c))
		}
		lines = append(lines, line)
	}
	return r.table(reportdomain.Headers, lines)
}

func (r *Runner) printRevenue(months []reportdomain.MonthRevenue) error {
	lines := make([][]string, 0, len(months))
	for _, m := range months {
		lines = append(lines, []string{m.Month, m.TotalRevenue.StringFixed(2)})
	}
	return r.table([]string{"MONTH", "TOTAL REVENUE"}, lines)
}

func (r *Runner) printImport(res *importer.Result) error {
	fmt.Fprintf(r.out, "batch %s: %d rows, %d imported, %d products created, %d skipped, %d rejected\n",
		res.BatchID, res.Rows, res.Imported, res.ProductsCreated, len(res.Skipped), len(res.Rejected))
	if res.RevenueMismatches > 0 {
		fmt.Fprintf(r.out, "%d rows carried a total revenue that did not match units x price; recomputed\n", res.RevenueMismatches)
	}
	problems := append(append([]importer.RowError{}, res.Skipped...), res.Rejected...)
	if len(problems) == 0 {
		return nil
	}
	lines := make([][]string, 0, len(problems))
	for _, p := range problems {
		lines = append(lines, []string{strconv.Itoa(p.Line), p.Reason, p.Detail})
	}
	return r.table([]string{"LINE", "REASON", "DETAIL"}, lines)
}

func (r *Runner) exportReport(ctx context.Context, format, path string, rows []reportdomain.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	switch format {
	case formatXLSX:
		months, merr := r.deps.Reports.MonthlyRevenue(ctx)
		if merr != nil && !errors.Is(merr, reportdomain.ErrNoData) {
			f.Close()
			return merr
		}
		err = export.WriteXLSX(f, rows, months)
	case formatPDF:
		var doc []byte
		doc, err = export.RenderPDF(export.PDFMeta{
			Title:       "Inventory report",
			GeneratedAt: r.deps.Clock.Now().Format(time.RFC1123),
		}, rows)
		if err == nil {
			_, err = f.Write(doc)
		}
	}

	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
