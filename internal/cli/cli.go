// Package cli is the operator-facing command surface of stockroom. Every
// command is a thin adapter over the product, inventory, forecast, report,
// importer and auth services.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	authdomain "github.com/smallbiznis/stockroom/internal/auth/domain"
	"github.com/smallbiznis/stockroom/internal/clock"
	"github.com/smallbiznis/stockroom/internal/config"
	forecastdomain "github.com/smallbiznis/stockroom/internal/forecast/domain"
	"github.com/smallbiznis/stockroom/internal/importer"
	inventorydomain "github.com/smallbiznis/stockroom/internal/inventory/domain"
	"github.com/smallbiznis/stockroom/internal/lock"
	productdomain "github.com/smallbiznis/stockroom/internal/product/domain"
	reportdomain "github.com/smallbiznis/stockroom/internal/report/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrUnknownCommand = errors.New("unknown_command")
	ErrUsage          = errors.New("usage")
)

// Deps is everything a command may touch.
type Deps struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Config      config.Config
	Clock       clock.Clock
	Locker      lock.Locker
	ProductRepo productdomain.Repository
	Products    productdomain.Service
	Ledger      inventorydomain.Ledger
	Reconciler  inventorydomain.Reconciler
	Forecasts   forecastdomain.Service
	Reports     reportdomain.Service
	Importer    *importer.Service
	Auth        authdomain.Service
}

// Credentials identify the operator when auth.required is set.
type Credentials struct {
	Username string
	Password string
}

// CredentialsFromEnv reads STOCKROOM_USERNAME and STOCKROOM_PASSWORD.
func CredentialsFromEnv() Credentials {
	return Credentials{
		Username: os.Getenv("STOCKROOM_USERNAME"),
		Password: os.Getenv("STOCKROOM_PASSWORD"),
	}
}

type command struct {
	summary string
	// public commands run without operator credentials.
	public bool
	run    func(r *Runner, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"add":               {summary: "add a product with its opening stock", run: (*Runner).add},
	"update":            {summary: "change a sale or the initial quantity, then reconcile", run: (*Runner).update},
	"delete":            {summary: "delete a product and everything recorded for it", run: (*Runner).remove},
	"get":               {summary: "show one product", run: (*Runner).get},
	"list":              {summary: "list products", run: (*Runner).list},
	"sell":              {summary: "record a sale", run: (*Runner).sell},
	"adjust":            {summary: "set a product's initial quantity", run: (*Runner).adjust},
	"quantity":          {summary: "print the current remaining quantity", run: (*Runner).quantity},
	"history":           {summary: "list every inventory snapshot revision", run: (*Runner).history},
	"reconcile":         {summary: "recompute derived quantities and revenue", run: (*Runner).reconcile},
	"forecast":          {summary: "project remaining stock for the next 10 days", run: (*Runner).forecast},
	"report":            {summary: "print or export the flattened report", run: (*Runner).report},
	"monthly-inventory": {summary: "total remaining stock for a month", run: (*Runner).monthlyInventory},
	"monthly-revenue":   {summary: "revenue per month", run: (*Runner).monthlyRevenue},
	"import":            {summary: "load sales lines from a CSV or XLSX file", run: (*Runner).importFile},
	"user":              {summary: "manage operator accounts (user create)", run: (*Runner).user},
	"login":             {summary: "check operator credentials", public: true, run: (*Runner).login},
}

// Runner dispatches one command line.
type Runner struct {
	deps  Deps
	log   *zap.Logger
	out   io.Writer
	creds Credentials
}

func New(deps Deps, out io.Writer, creds Credentials) *Runner {
	if out == nil {
		out = os.Stdout
	}
	return &Runner{
		deps:  deps,
		log:   deps.Log.Named("cli"),
		out:   out,
		creds: creds,
	}
}

// Run executes args[0] with the remaining arguments.
func (r *Runner) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		Usage(r.out)
		return ErrUsage
	}
	name := strings.TrimSpace(args[0])
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}

	if r.deps.Config.AuthRequired && !cmd.public {
		if _, err := r.deps.Auth.Login(ctx, authdomain.LoginRequest{
			Username: r.creds.Username,
			Password: r.creds.Password,
		}); err != nil {
			return err
		}
	}

	r.log.Debug("running command", zap.String("command", name))
	return cmd.run(r, ctx, args[1:])
}

// IsHelp reports whether args only ask for usage, which needs no database.
func IsHelp(args []string) bool {
	if len(args) == 0 {
		return true
	}
	switch args[0] {
	case "help", "-h", "--help", "-help":
		return true
	}
	return false
}

// Usage prints the command list.
func Usage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "usage: stockroom <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, name := range names {
		fmt.Fprintf(w, "  %-18s %s\n", name, commands[name].summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "dates are MM/DD/YYYY; run 'stockroom <command> -h' for flags")
}
