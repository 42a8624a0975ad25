package main

import (
	"context"
	"fmt"

	"github.com/alecthomas/kong"
	"github.com/pressly/goose/v3"

	"github.com/aregalado/plata/internal/app"
	"github.com/aregalado/plata/migrations"
)

var cli struct {
	Config  string           `help:"Path to env file." default:".env"`
	Version kong.VersionFlag `help:"Show version information"`

	Serve   ServeCmd   `cmd:"" help:"Run the HTTP API server." default:"1"`
	Migrate MigrateCmd `cmd:"" help:"Apply database migrations."`
	Process ProcessCmd `cmd:"" help:"Run one pass of recurring transaction and budget rollover processing."`
}

type ServeCmd struct{}

func (c *ServeCmd) Run() error {
	ctx := context.Background()
	a, err := app.NewApp(ctx, cli.Config)
	if err != nil {
		return fmt.Errorf("failed to init app: %w", err)
	}
	return a.Run(ctx)
}

type MigrateCmd struct {
	Command string `arg:"" enum:"up,down,status" default:"up" help:"Migration command: up, down or status."`
}

func (c *MigrateCmd) Run() error {
	ctx := context.Background()
	a, err := app.NewApp(ctx, cli.Config)
	if err != nil {
		return fmt.Errorf("failed to init app: %w", err)
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	db := a.ServiceProvider().SQLDB(ctx)
	switch c.Command {
	case "down":
		return goose.DownContext(ctx, db, ".")
	case "status":
		return goose.StatusContext(ctx, db, ".")
	default:
		return goose.UpContext(ctx, db, ".")
	}
}

type ProcessCmd struct{}

func (c *ProcessCmd) Run() error {
	ctx := context.Background()
	a, err := app.NewApp(ctx, cli.Config)
	if err != nil {
		return fmt.Errorf("failed to init app: %w", err)
	}
	return a.RunOnce(ctx)
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("plata"),
		kong.Description("Personal finance backend: accounts, budgets, goals, credit cards and recurring transactions."),
		kong.UsageOnError(),
		kong.Vars{"version": "dev"},
	)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
