package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/urfave/cli/v2"

	"github.com/riskibarqy/skill-league/internal/app"
	"github.com/riskibarqy/skill-league/internal/config"
	"github.com/riskibarqy/skill-league/internal/domain/jobscheduler"
	"github.com/riskibarqy/skill-league/internal/domain/snapshot"
	"github.com/riskibarqy/skill-league/internal/platform/logging"
)

func main() {
	cliApp := &cli.App{
		Name:  "snapshotctl",
		Usage: "inspect and maintain daily leaderboard snapshots",
		Commands: []*cli.Command{
			runCommand(),
			statusCommand(),
			statsCommand(),
			runsCommand(),
			purgeCommand(),
			showCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// withServices loads config, wires the usecases against the configured
// storage and closes everything once fn returns.
func withServices(c *cli.Context, fn func(*app.Services) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.NewJSONWriter(cfg.LogLevel, os.Stderr).Named("snapshotctl")
	if cfg.StorageBackend == config.StorageMemory {
		logger.Warn("STORAGE_BACKEND=memory, results only live as long as this command")
	}

	services, err := app.NewServices(c.Context, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := services.Close(); err != nil {
			logger.Error("close services", "error", err)
		}
	}()

	return fn(services)
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "aggregate and store today's snapshots once",
		Action: func(c *cli.Context) error {
			return withServices(c, func(s *app.Services) error {
				run, err := s.Aggregator.Run(c.Context, jobscheduler.TriggerCLI)
				if printErr := printJSON(c.App.Writer, run); printErr != nil {
					return printErr
				}
				return err
			})
		},
	}
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "print the latest snapshot run",
		Action: func(c *cli.Context) error {
			return withServices(c, func(s *app.Services) error {
				status, err := s.Aggregator.Status(c.Context)
				if err != nil {
					return err
				}
				return printJSON(c.App.Writer, status)
			})
		},
	}
}

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "print stored snapshot counts per scope",
		Action: func(c *cli.Context) error {
			return withServices(c, func(s *app.Services) error {
				summary, err := s.Aggregator.Stats(c.Context)
				if err != nil {
					return err
				}
				return printJSON(c.App.Writer, summary)
			})
		},
	}
}

func runsCommand() *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "list recent snapshot runs, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Value: 20, Usage: "number of runs (1..100)"},
		},
		Action: func(c *cli.Context) error {
			return withServices(c, func(s *app.Services) error {
				runs, err := s.Aggregator.RecentRuns(c.Context, c.Int("limit"))
				if err != nil {
					return err
				}
				return printJSON(c.App.Writer, runs)
			})
		},
	}
}

func purgeCommand() *cli.Command {
	return &cli.Command{
		Name:  "purge",
		Usage: "delete snapshots older than --days",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "days",
				Value: snapshot.DefaultRetentionDays,
				Usage: fmt.Sprintf("retention window in days (%d..%d)", snapshot.MinRetentionDays, snapshot.MaxRetentionDays),
			},
		},
		Action: func(c *cli.Context) error {
			return withServices(c, func(s *app.Services) error {
				deleted, err := s.Aggregator.Purge(c.Context, c.Int("days"))
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(c.App.Writer, "deleted %d snapshot(s) older than %d days\n", deleted, c.Int("days"))
				return err
			})
		},
	}
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "print one stored snapshot",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "scope", Value: string(snapshot.ScopeGlobal), Usage: "global or a subject"},
			&cli.StringFlag{Name: "date", Usage: "UTC day as YYYY-MM-DD, latest when empty"},
		},
		Action: func(c *cli.Context) error {
			return withServices(c, func(s *app.Services) error {
				rawDate := strings.TrimSpace(c.String("date"))
				if rawDate == "" {
					item, err := s.Leaderboard.LatestSnapshot(c.Context, c.String("scope"))
					if err != nil {
						return err
					}
					return printJSON(c.App.Writer, item)
				}

				date, err := time.Parse(time.DateOnly, rawDate)
				if err != nil {
					return fmt.Errorf("invalid --date %q: %w", rawDate, err)
				}
				item, err := s.Leaderboard.SnapshotOn(c.Context, c.String("scope"), date)
				if err != nil {
					return err
				}
				return printJSON(c.App.Writer, item)
			})
		},
	}
}

func printJSON(w io.Writer, v any) error {
	out, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
