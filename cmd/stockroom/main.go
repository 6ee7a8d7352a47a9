package main

import (
	"context"
	"fmt"
	"os"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/stockroom/internal/auth"
	"github.com/smallbiznis/stockroom/internal/cache"
	"github.com/smallbiznis/stockroom/internal/cli"
	"github.com/smallbiznis/stockroom/internal/clock"
	"github.com/smallbiznis/stockroom/internal/config"
	"github.com/smallbiznis/stockroom/internal/forecast"
	"github.com/smallbiznis/stockroom/internal/importer"
	"github.com/smallbiznis/stockroom/internal/inventory"
	"github.com/smallbiznis/stockroom/internal/lock"
	"github.com/smallbiznis/stockroom/internal/logger"
	"github.com/smallbiznis/stockroom/internal/migration"
	"github.com/smallbiznis/stockroom/internal/observability"
	"github.com/smallbiznis/stockroom/internal/product"
	"github.com/smallbiznis/stockroom/internal/reconcile"
	"github.com/smallbiznis/stockroom/internal/report"
	"github.com/smallbiznis/stockroom/pkg/db"
	"go.uber.org/fx"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if cli.IsHelp(args) {
		cli.Usage(os.Stdout)
		return cli.ExitOK
	}

	var runner *cli.Runner
	app := fx.New(
		fx.NopLogger,

		// Core Infrastructure
		config.Module,
		logger.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		clock.Module,
		db.Module,
		cache.Module,
		lock.Module,

		// Functional Domains
		product.Module,
		inventory.Module,
		reconcile.Module,
		forecast.Module,
		report.Module,
		importer.Module,
		auth.Module,
		migration.Module,

		fx.Invoke(func(deps cli.Deps) {
			runner = cli.New(deps, os.Stdout, cli.CredentialsFromEnv())
		}),
	)

	startCtx, cancel := context.WithTimeout(context.Background(), app.StartTimeout())
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		fmt.Fprintln(os.Stderr, "stockroom:", err)
		return cli.ExitFailure
	}

	runErr := runner.Run(context.Background(), args)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		fmt.Fprintln(os.Stderr, "stockroom: shutdown:", err)
	}

	msg, code := cli.Describe(runErr)
	if msg != "" {
		fmt.Fprintln(os.Stderr, "stockroom:", msg)
	}
	return code
}

// RegisterSnowflake builds the id generator for snapshots, sales and users.
func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}
