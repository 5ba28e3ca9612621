package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/locallibrary/library/pkg/config"
	"github.com/locallibrary/library/pkg/database"
	"github.com/locallibrary/library/pkg/migrations"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

func main() {
	log := logger.New()

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}

	migrator := migrate.NewMigrator(db, migrations.Migrations)

	app := &cli.App{
		Name:        "migrations",
		UsageText:   "go run ./cmd/migrations <command> (uses DATABASE_DRIVER, DATABASE_FILE_PATH or DATABASE_URL)",
		Usage:       "CLI to interact with the catalog schema migrations",
		Description: "Applies, rolls back and creates the migrations that build the authors, genres, books, book_genres and book_instances tables on SQLite or PostgreSQL.",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create the bun_migrations bookkeeping tables in the catalog database",
				Action: func(c *cli.Context) error {
					return errors.Wrap(migrator.Init(c.Context), "failed to init migrations")
				},
			},
			{
				Name:  "migrate",
				Usage: "apply every pending catalog migration as one group",
				Action: func(c *cli.Context) error {

					group, err := migrator.Migrate(c.Context)
					if err != nil {
						return errors.Wrap(err, "failed to migrate catalog schema")
					}

					if group.ID == 0 {
						fmt.Printf("Catalog schema is up to date\n")
						return nil
					}

					fmt.Printf("Migrated catalog schema to %s\n", group)
					return nil
				},
			},
			{
				Name:  "rollback",
				Usage: "roll back the most recently applied catalog migration group",
				Action: func(c *cli.Context) error {

					group, err := migrator.Rollback(c.Context)
					if err != nil {
						return errors.Wrap(err, "failed to roll back catalog schema")
					}

					if group.ID == 0 {
						fmt.Printf("No catalog migration groups to roll back\n")
						return nil
					}

					fmt.Printf("Rolled back %s\n", group)
					return nil
				},
			},
			{
				Name:  "create",
				Usage: "scaffold a Go migration in pkg/migrations, e.g. `create add_book_language`",
				Action: func(c *cli.Context) error {

					name := strings.Join(c.Args().Slice(), "_")
					mf, err := migrator.CreateGoMigration(
						c.Context,
						name,
						migrate.WithGoTemplate(migrationTemplate),
					)
					if err != nil {
						return errors.Wrap(err, "failed to create migration")
					}
					fmt.Printf("Created migration %s (%s)\n", mf.Name, mf.Path)

					return nil
				},
			},
			{
				Name:  "reset",
				Usage: "roll back every catalog migration group, dropping all catalog tables",
				Action: func(c *cli.Context) error {
					for {
						group, err := migrator.Rollback(c.Context)
						if err != nil {
							return errors.Wrap(err, "failed to reset catalog schema")
						}
						if group.ID == 0 {
							fmt.Printf("All migration groups rolled back\n")
							return nil
						}
						fmt.Printf("Rolled back %s\n", group)
					}
				},
			},
			{
				Name:  "status",
				Usage: "list applied and pending catalog migrations",
				Action: func(c *cli.Context) error {

					ms, err := migrator.MigrationsWithStatus(c.Context)
					if err != nil {
						return errors.Wrap(err, "failed to read migration status")
					}
					fmt.Printf("Migrations: %s\n", ms)
					fmt.Printf("Unapplied migrations: %s\n", ms.Unapplied())
					fmt.Printf("Last migration group: %s\n", ms.LastGroup())

					return nil
				},
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Err(err).Fatal("app run error")
	}
}

const migrationTemplate = `package %s

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec("")
		return errors.WithStack(err)
	}

	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec("")
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
`
