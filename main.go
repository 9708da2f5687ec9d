package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"gorm.io/gorm"

	"github.com/customeros/mailsorter/config"
	"github.com/customeros/mailsorter/internal/database"
	"github.com/customeros/mailsorter/internal/repository"
	"github.com/customeros/mailsorter/internal/utils"
	"github.com/customeros/mailsorter/server"
)

const triggerCLI = "cli"

func main() {
	app := &cli.App{
		Name:  "mailsorter",
		Usage: "Fetch, classify and store recent unread email",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Run database migrations",
				Action: migrate,
			},
			{
				Name:   "server",
				Usage:  "Start the API server and the pipeline scheduler",
				Action: serve,
			},
			{
				Name:   "run",
				Usage:  "Run the pipeline once and exit",
				Action: runOnce,
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
		return nil, nil, cli.Exit("Config initialization failed: "+err.Error(), 1)
	}

	db, err := database.InitMailsorterDatabase(cfg.DatabaseConfig)
	if err != nil {
		return nil, nil, cli.Exit("Mailsorter database initialization failed: "+err.Error(), 1)
	}

	return cfg, db, nil
}

func migrate(_ *cli.Context) error {
	_, db, err := setup()
	if err != nil {
		return err
	}

	if err := repository.MigrateDB(db); err != nil {
		return cli.Exit("Database migration failed: "+err.Error(), 1)
	}
	log.Println("Database migration completed successfully")
	return nil
}

func serve(_ *cli.Context) error {
	cfg, db, err := setup()
	if err != nil {
		return err
	}

	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("Mailsorter starting up...")

	srv, err := server.NewServer(cfg, db)
	if err != nil {
		return cli.Exit("Server setup failed: "+err.Error(), 1)
	}

	if err := srv.Run(); err != nil {
		return cli.Exit("Server startup failed: "+err.Error(), 1)
	}

	log.Println("Shutdown complete")
	return nil
}

func runOnce(c *cli.Context) error {
	cfg, db, err := setup()
	if err != nil {
		return err
	}

	srv, err := server.NewServer(cfg, db)
	if err != nil {
		return cli.Exit("Server setup failed: "+err.Error(), 1)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	persisted, err := srv.RunOnce(utils.WithTrigger(ctx, triggerCLI))
	if err != nil {
		return cli.Exit("Pipeline run failed: "+err.Error(), 1)
	}

	log.Printf("Pipeline run persisted %d new emails", persisted)
	return nil
}

