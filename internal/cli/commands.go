package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	authdomain "github.com/smallbiznis/stockroom/internal/auth/domain"
	forecastdomain "github.com/smallbiznis/stockroom/internal/forecast/domain"
	"github.com/smallbiznis/stockroom/internal/importer"
	inventorydomain "github.com/smallbiznis/stockroom/internal/inventory/domain"
	"github.com/smallbiznis/stockroom/internal/lock"
	productdomain "github.com/smallbiznis/stockroom/internal/product/domain"
	"github.com/smallbiznis/stockroom/internal/reconcile"
	reportdomain "github.com/smallbiznis/stockroom/internal/report/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (r *Runner) add(ctx context.Context, args []string) error {
	fs := r.flags("add")
	id := fs.Int64("id", 0, "product id (0 assigns the next free id)")
	name := fs.String("name", "", "product name")
	category := fs.String("category", "", "product category")
	initial := fs.Int64("initial", 0, "initial quantity")
	sold := fs.Int64("sold", 0, "units sold on the opening date")
	var price decimalFlag
	fs.Var(&price, "price", "unit price")
	var date dateFlag
	fs.Var(&date, "date", "opening date, MM/DD/YYYY (default today)")
	attrs := attrFlag{}
	fs.Var(attrs, "attr", "extra attribute key=value (repeatable)")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := parse(fs, args); err != nil {
		return err
	}

	resp, err := r.deps.Products.Add(ctx, productdomain.AddRequest{
		ProductID:       *id,
		Name:            *name,
		Category:        *category,
		InitialQuantity: *initial,
		UnitPrice:       price.value,
		UnitsSold:       *sold,
		Date:            date.date,
		Attributes:      attrs,
	})
	if err != nil {
		return err
	}
	if *asJSON {
		return r.printJSON(resp)
	}
	return r.printProducts([]productdomain.Response{*resp})
}

func (r *Runner) update(ctx context.Context, args []string) error {
	fs := r.flags("update")
	id := fs.Int64("id", 0, "product id")
	sold := fs.Int64("sold", 0, "units sold on the targeted sale")
	initial := fs.Int64("initial", 0, "new initial quantity")
	var price decimalFlag
	fs.Var(&price, "price", "unit price of the targeted sale")
	var date dateFlag
	fs.Var(&date, "date", "date of the sale to change, MM/DD/YYYY (default the latest sale)")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requireID("id", *id); err != nil {
		return err
	}

	set := setFlags(fs)
	req := productdomain.UpdateRequest{ProductID: *id}
	if set["sold"] {
		req.UnitsSold = sold
	}
	if set["price"] {
		req.UnitPrice = &price.value
	}
	if set["initial"] {
		req.InitialQuantity = initial
	}
	if set["date"] {
		req.Date = &date.date
	}

	resp, err := r.deps.Products.Update(ctx, req)
	if err != nil {
		return err
	}
	if *asJSON {
		return r.printJSON(resp)
	}
	return r.printProducts([]productdomain.Response{*resp})
}

func (r *Runner) remove(ctx context.Context, args []string) error {
	fs := r.flags("delete")
	id := fs.Int64("id", 0, "product id")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requireID("id", *id); err != nil {
		return err
	}
	if err := r.deps.Products.Delete(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "deleted product %d\n", *id)
	return nil
}

func (r *Runner) get(ctx context.Context, args []string) error {
	fs := r.flags("get")
	id := fs.Int64("id", 0, "product id")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requireID("id", *id); err != nil {
		return err
	}
	resp, err := r.deps.Products.Get(ctx, *id)
	if err != nil {
		return err
	}
	if *asJSON {
		return r.printJSON(resp)
	}
	return r.printProducts([]productdomain.Response{*resp})
}

func (r *Runner) list(ctx context.Context, args []string) error {
	fs := r.flags("list")
	category := fs.String("category", "", "only products in this category")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := parse(fs, args); err != nil {
		return err
	}
	items, err := r.deps.Products.List(ctx, productdomain.ListRequest{Category: *category})
	if err != nil {
		return err
	}
	if *asJSON {
		return r.printJSON(items)
	}
	return r.printProducts(items)
}

func (r *Runner) sell(ctx context.Context, args []string) error {
	fs := r.flags("sell")
	id := fs.Int64("id", 0, "product id")
	units := fs.Int64("units", 0, "units sold")
	var price decimalFlag
	fs.Var(&price, "price", "unit price")
	var date dateFlag
	fs.Var(&date, "date", "sale date, MM/DD/YYYY (default today)")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requireID("id", *id); err != nil {
		return err
	}

	resp, err := r.deps.Ledger.RecordSale(ctx, inventorydomain.RecordSaleRequest{
		ProductID: *id,
		Date:      date.date,
		UnitsSold: *units,
		UnitPrice: price.value,
	})
	if err != nil {
		return err
	}
	if *asJSON {
		return r.printJSON(resp)
	}
	return r.printSale(resp)
}

func (r *Runner) adjust(ctx context.Context, args []string) error {
	fs := r.flags("adjust")
	id := fs.Int64("id", 0, "product id")
	initial := fs.Int64("initial", -1, "new initial quantity")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requireID("id", *id); err != nil {
		return err
	}
	if !setFlags(fs)["initial"] {
		return fmt.Errorf("%w: -initial is required", ErrUsage)
	}

	rec, err := r.deps.Ledger.Adjust(ctx, *id, *initial)
	if err != nil {
		return err
	}
	if *asJSON {
		return r.printJSON(rec)
	}
	return r.printBalances(rec)
}

func (r *Runner) quantity(ctx context.Context, args []string) error {
	fs := r.flags("quantity")
	id := fs.Int64("id", 0, "product id")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requireID("id", *id); err != nil {
		return err
	}
	remaining, err := r.deps.Ledger.CurrentQuantity(ctx, *id)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out, remaining)
	return nil
}

func (r *Runner) history(ctx context.Context, args []string) error {
	fs := r.flags("history")
	id := fs.Int64("id", 0, "product id")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requireID("id", *id); err != nil {
		return err
	}
	snapshots, err := r.deps.Ledger.History(ctx, *id)
	if err != nil {
		return err
	}
	if *asJSON {
		return r.printJSON(snapshots)
	}
	return r.printSnapshots(snapshots)
}

func (r *Runner) reconcile(ctx context.Context, args []string) error {
	fs := r.flags("reconcile")
	id := fs.Int64("id", 0, "product id (default every product)")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := parse(fs, args); err != nil {
		return err
	}

	var results []inventorydomain.Reconciliation
	if *id > 0 {
		rec, err := r.reconcileOne(ctx, *id)
		if err != nil {
			return err
		}
		results = append(results, *rec)
	} else {
		all, err := reconcile.ReconcileAll(ctx, r.deps.DB, r.deps.ProductRepo, r.deps.Reconciler)
		if err != nil {
			return err
		}
		results = all
	}

	if *asJSON {
		return r.printJSON(results)
	}
	return r.printReconciliations(results)
}

func (r *Runner) reconcileOne(ctx context.Context, id int64) (*inventorydomain.Reconciliation, error) {
	release, err := r.deps.Locker.Acquire(ctx, lock.ProductKey(id))
	if err != nil {
		return nil, err
	}
	defer release()

	var rec *inventorydomain.Reconciliation
	err = r.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		rec, err = r.deps.Reconciler.Reconcile(ctx, tx, id, inventorydomain.SnapshotKindCorrection)
		return err
	})
	return rec, err
}

func (r *Runner) forecast(ctx context.Context, args []string) error {
	fs := r.flags("forecast")
	id := fs.Int64("id", 0, "product id")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requireID("id", *id); err != nil {
		return err
	}

	forecast, err := r.deps.Forecasts.Forecast(ctx, *id)
	if errors.Is(err, forecastdomain.ErrNoData) {
		fmt.Fprintf(r.out, "no sales data for product %d\n", *id)
		return nil
	}
	if err != nil {
		return err
	}
	if *asJSON {
		return r.printJSON(forecast)
	}
	return r.printForecast(forecast)
}

const (
	formatTable = "table"
	formatJSON  = "json"
	formatXLSX  = "xlsx"
	formatPDF   = "pdf"
)

func (r *Runner) report(ctx context.Context, args []string) error {
	fs := r.flags("report")
	searchColumn := fs.String("search-column", "", "column to search")
	search := fs.String("search", "", "case-insensitive text the column must contain")
	sortColumn := fs.String("sort", "", "column to sort by")
	order := fs.String("order", "ASC", "ASC or DESC")
	format := fs.String("format", formatTable, "table, json, xlsx or pdf")
	out := fs.String("out", "", "output file for xlsx and pdf")
	if err := parse(fs, args); err != nil {
		return err
	}

	rows, err := r.deps.Reports.Rows(ctx, reportdomain.Query{
		SearchColumn: *searchColumn,
		SearchTerm:   *search,
		SortColumn:   *sortColumn,
		SortOrder:    *order,
	})
	if err != nil {
		return err
	}

	switch *format {
	case formatTable:
		return r.printRows(rows)
	case formatJSON:
		return r.printJSON(rows)
	case formatXLSX, formatPDF:
		if *out == "" {
			return fmt.Errorf("%w: -out is required for %s", ErrUsage, *format)
		}
		if err := r.exportReport(ctx, *format, *out, rows); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "wrote %d rows to %s\n", len(rows), *out)
		return nil
	default:
		return fmt.Errorf("%w: unknown format %q", ErrInvalidFlag, *format)
	}
}

func (r *Runner) monthlyInventory(ctx context.Context, args []string) error {
	fs := r.flags("monthly-inventory")
	var month monthFlag
	fs.Var(&month, "month", "month as MM/YYYY (default this month)")
	if err := parse(fs, args); err != nil {
		return err
	}
	if month.date.IsZero() {
		month.date = r.today()
	}

	total, err := r.deps.Reports.MonthlyInventory(ctx, month.date)
	if errors.Is(err, reportdomain.ErrNoData) {
		fmt.Fprintf(r.out, "no inventory recorded for %s\n", month.date.MonthKey())
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "%s\t%d\n", month.date.MonthKey(), total)
	return nil
}

func (r *Runner) monthlyRevenue(ctx context.Context, args []string) error {
	fs := r.flags("monthly-revenue")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := parse(fs, args); err != nil {
		return err
	}
	months, err := r.deps.Reports.MonthlyRevenue(ctx)
	if errors.Is(err, reportdomain.ErrNoData) {
		fmt.Fprintln(r.out, "no sales recorded")
		return nil
	}
	if err != nil {
		return err
	}
	if *asJSON {
		return r.printJSON(months)
	}
	return r.printRevenue(months)
}

func (r *Runner) importFile(ctx context.Context, args []string) error {
	fs := r.flags("import")
	path := fs.String("file", "", "CSV or XLSX file")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *path == "" {
		return fmt.Errorf("%w: -file is required", ErrUsage)
	}
	format, err := importer.FormatFromPath(*path)
	if err != nil {
		return err
	}
	f, err := os.Open(*path)
	if err != nil {
		return err
	}
	defer f.Close()

	result, err := r.deps.Importer.Import(ctx, f, format)
	if err != nil {
		return err
	}
	if *asJSON {
		return r.printJSON(result)
	}
	return r.printImport(result)
}

func (r *Runner) user(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] != "create" {
		return fmt.Errorf("%w: stockroom user create -username NAME -password SECRET", ErrUsage)
	}
	fs := r.flags("user create")
	username := fs.String("username", "", "operator username")
	password := fs.String("password", "", "operator password (at least 8 characters)")
	if err := parse(fs, args[1:]); err != nil {
		return err
	}
	resp, err := r.deps.Auth.CreateUser(ctx, authdomain.CreateUserRequest{
		Username: *username,
		Password: *password,
	})
	if err != nil {
		return err
	}
	r.log.Info("operator account created", zap.String("username", resp.Username))
	fmt.Fprintf(r.out, "created user %s (%s)\n", resp.Username, resp.ExternalID)
	return nil
}

func (r *Runner) login(ctx context.Context, args []string) error {
	fs := r.flags("login")
	username := fs.String("username", "", "operator username (default $STOCKROOM_USERNAME)")
	password := fs.String("password", "", "operator password (default $STOCKROOM_PASSWORD)")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *username == "" {
		*username = r.creds.Username
	}
	if *password == "" {
		*password = r.creds.Password
	}
	resp, err := r.deps.Auth.Login(ctx, authdomain.LoginRequest{
		Username: *username,
		Password: *password,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "logged in as %s\n", resp.Username)
	return nil
}
