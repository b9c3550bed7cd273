package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/riskibarqy/skill-league/internal/app"
	"github.com/riskibarqy/skill-league/internal/config"
	"github.com/riskibarqy/skill-league/internal/platform/logging"
)

func main() {
	cliApp := &cli.App{
		Name:  "migration",
		Usage: "apply skill-league schema migrations to DB_URL",
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply every pending migration",
				Action: func(c *cli.Context) error {
					return withMigrator(func(m *app.Migrator) error { return m.Up() })
				},
			},
			{
				Name:  "down",
				Usage: "roll back --steps migrations",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "steps", Value: 1, Usage: "number of migrations to roll back"},
				},
				Action: func(c *cli.Context) error {
					return withMigrator(func(m *app.Migrator) error { return m.Down(c.Int("steps")) })
				},
			},
			{
				Name:      "goto",
				Usage:     "migrate up or down to a target version",
				ArgsUsage: "<version>",
				Action: func(c *cli.Context) error {
					target, err := strconv.ParseUint(c.Args().First(), 10, 64)
					if err != nil {
						return fmt.Errorf("invalid target version %q: %w", c.Args().First(), err)
					}
					return withMigrator(func(m *app.Migrator) error { return m.Goto(uint(target)) })
				},
			},
			{
				Name:      "force",
				Usage:     "set the version without running SQL (clears a dirty state)",
				ArgsUsage: "<version>",
				Action: func(c *cli.Context) error {
					version, err := strconv.Atoi(c.Args().First())
					if err != nil {
						return fmt.Errorf("invalid version %q: %w", c.Args().First(), err)
					}
					return withMigrator(func(m *app.Migrator) error { return m.Force(version) })
				},
			},
			{
				Name:  "version",
				Usage: "print the applied schema version",
				Action: func(c *cli.Context) error {
					return withMigrator(func(m *app.Migrator) error {
						v, err := m.Version()
						if err != nil {
							return err
						}
						if !v.Applied {
							_, err = fmt.Fprintln(c.App.Writer, "version: none")
							return err
						}
						_, err = fmt.Fprintf(c.App.Writer, "version: %d\ndirty: %t\n", v.Version, v.Dirty)
						return err
					})
				},
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func withMigrator(fn func(*app.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.NewJSONWriter(cfg.LogLevel, os.Stderr).Named("migration")

	m, err := app.NewMigrator(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			logger.Error("close migrator", "error", err)
		}
	}()
	return fn(m)
}
