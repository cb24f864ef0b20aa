package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"

	"github.com/recruitstack/recruitstack/config"
	"github.com/recruitstack/recruitstack/internal/database"
	"github.com/recruitstack/recruitstack/internal/repository"
	"github.com/recruitstack/recruitstack/server"
)

func main() {
	app := &cli.App{
		Name:  "recruitstack",
		Usage: "ingest résumés from a mailbox and rank candidates",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Run database migrations",
				Action: migrate,
			},
			{
				Name:   "server",
				Usage:  "Start the REST API and scheduled processing",
				Action: serve,
			},
			{
				Name:   "process",
				Usage:  "Process unseen emails once and print the run summary",
				Action: processOnce,
			},
			{
				Name:   "test-connection",
				Usage:  "Test the active mailbox configuration",
				Action: testConnection,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setup() (*config.Config, *gorm.DB, error) {
	cfg, err := config.InitConfig()
	if err != nil {
		return nil, nil, errors.Wrap(err, "config initialization failed")
	}

	db, err := database.InitDatabase(cfg.DatabaseConfig)
	if err != nil {
		return nil, nil, errors.Wrap(err, "database initialization failed")
	}
	return cfg, db, nil
}

func migrate(c *cli.Context) error {
	cfg, db, err := setup()
	if err != nil {
		return err
	}
	if err = repository.MigrateDB(cfg.DatabaseConfig, db); err != nil {
		return errors.Wrap(err, "database migration failed")
	}
	log.Println("Database migration completed successfully")
	return nil
}

func serve(c *cli.Context) error {
	cfg, db, err := setup()
	if err != nil {
		return err
	}

	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("recruitstack starting up...")

	srv, err := server.NewServer(c.Context, cfg, db)
	if err != nil {
		return errors.Wrap(err, "server setup failed")
	}
	if err = srv.Run(); err != nil {
		return errors.Wrap(err, "server stopped with error")
	}

	log.Println("Shutdown complete")
	return nil
}

func processOnce(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := newServer(ctx)
	if err != nil {
		return err
	}
	defer srv.Close()

	result, err := srv.ProcessOnce(ctx)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func testConnection(c *cli.Context) error {
	srv, err := newServer(c.Context)
	if err != nil {
		return err
	}
	defer srv.Close()

	result, err := srv.TestConnection(c.Context)
	if err != nil {
		return err
	}
	if err = printJSON(result); err != nil {
		return err
	}
	if !result.Success {
		return cli.Exit(fmt.Sprintf("connection test failed: %s", result.Details.Error), 1)
	}
	return nil
}

func newServer(ctx context.Context) (*server.Server, error) {
	cfg, db, err := setup()
	if err != nil {
		return nil, err
	}
	srv, err := server.NewServer(ctx, cfg, db)
	if err != nil {
		return nil, errors.Wrap(err, "server setup failed")
	}
	return srv, nil
}

func printJSON(value any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
