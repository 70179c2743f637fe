// Command ingest runs the match-data pipeline from a terminal.
//
// Usage:
//
//	greydb-ingest scan --league 47 --limit 10
//	greydb-ingest scan --dry-run
//	greydb-ingest match 4506393
//	greydb-ingest check 4506393 4506394
//	greydb-ingest backfill --limit 200 --workers 2
//	greydb-ingest parse ./testdata/match.json
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/joho/godotenv"
	"github.com/smuti/greydb-api/external/fotmob"
	"github.com/smuti/greydb-api/internal/app"
	"github.com/smuti/greydb-api/internal/config"
	"github.com/smuti/greydb-api/internal/platform/logging"
	"github.com/smuti/greydb-api/internal/usecase"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load("../.env")
	_ = godotenv.Load(".env")

	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var logLevel string
	root := &cobra.Command{
		Use:           "greydb-ingest",
		Short:         "FotMob match-data ingestion CLI",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logging.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logging.SetDefault(logging.New(logging.Options{
				Level:   level,
				Format:  logging.FormatConsole,
				Service: "greydb-ingest",
				Output:  os.Stderr,
			}))
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	root.AddCommand(scanCmd())
	root.AddCommand(matchCmd())
	root.AddCommand(checkCmd())
	root.AddCommand(backfillCmd())
	root.AddCommand(parseCmd())
	return root
}

func scanCmd() *cobra.Command {
	var input usecase.ScanInput
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Walk due fixtures and ingest the ones FotMob reports finished",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(func(ctx context.Context, a *app.App) error {
				result, err := a.Reconciler.Scan(ctx, input)
				if err != nil {
					return err
				}
				return printJSON(result)
			})
		},
	}
	cmd.Flags().Int64Var(&input.LeagueProviderID, "league", 0, "Restrict the scan to one FotMob league id")
	cmd.Flags().IntVar(&input.LimitPerLeague, "limit", 0, "Fixtures to check per league (0 uses SCAN_LIMIT_PER_LEAGUE)")
	cmd.Flags().IntVar(&input.MaxFixtures, "max", 0, "Fixtures to check in total (0 uses SCAN_MAX_FIXTURES)")
	cmd.Flags().BoolVar(&input.DryRun, "dry-run", false, "Report finished fixtures without writing")
	return cmd
}

func matchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "match <fotmob-match-id>",
		Short: "Fetch and ingest one match by its FotMob id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			matchID, err := parseMatchID(args[0])
			if err != nil {
				return err
			}
			return runWithApp(func(ctx context.Context, a *app.App) error {
				result, err := a.Ingestion.IngestByProviderID(ctx, matchID)
				if err != nil {
					return err
				}
				return printJSON(result)
			})
		},
	}
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <fotmob-match-id>...",
		Short: "Ask FotMob whether matches are finished without writing anything",
		Args:  cobra.RangeArgs(1, 50),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, raw := range args {
				id, err := parseMatchID(raw)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			return runWithApp(func(ctx context.Context, a *app.App) error {
				checked, err := a.Reconciler.CheckFinished(ctx, ids)
				if err != nil {
					return err
				}
				return printJSON(checked)
			})
		},
	}
}

func backfillCmd() *cobra.Command {
	var input usecase.BackfillInput
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Re-run dependent writers from stored raw payloads",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(func(ctx context.Context, a *app.App) error {
				result, err := a.Backfiller.Run(ctx, input)
				if err != nil {
					return err
				}
				return printJSON(result)
			})
		},
	}
	cmd.Flags().IntVar(&input.Limit, "limit", 0, "Matches to backfill (0 uses BACKFILL_BATCH_SIZE)")
	cmd.Flags().IntVar(&input.MaxWorkers, "workers", 0, "Concurrent matches (0 uses BACKFILL_MAX_WORKERS)")
	cmd.Flags().Int64SliceVar(&input.MatchIDs, "match", nil, "Internal match ids to backfill; repeatable")
	return cmd
}

type parseSummary struct {
	ProviderMatchID int64    `json:"match_id"`
	League          string   `json:"league"`
	Season          string   `json:"season"`
	HomeTeam        string   `json:"home_team"`
	AwayTeam        string   `json:"away_team"`
	Finished        bool     `json:"finished"`
	HomeScore       *int     `json:"home_score"`
	AwayScore       *int     `json:"away_score"`
	Sections        []string `json:"sections"`
	Lineups         int      `json:"lineups"`
	Events          int      `json:"events"`
	PlayerStats     int      `json:"player_stats"`
}

func parseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a saved matchDetails document offline and summarize it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read payload: %w", err)
			}
			parsed, err := fotmob.NewParser().Parse(raw)
			if err != nil {
				return err
			}
			return printJSON(summarizeParsed(parsed))
		},
	}
}

func summarizeParsed(parsed usecase.ParsedMatch) parseSummary {
	out := parseSummary{
		ProviderMatchID: parsed.ProviderMatchID,
		League:          parsed.League.Name,
		Season:          parsed.League.Season,
		HomeTeam:        parsed.HomeTeam.Name,
		AwayTeam:        parsed.AwayTeam.Name,
		Finished:        parsed.Finished,
		HomeScore:       parsed.HomeScore,
		AwayScore:       parsed.AwayScore,
		Lineups:         len(parsed.Lineups),
		Events:          len(parsed.Events),
		PlayerStats:     len(parsed.PlayerStats),
		Sections:        []string{},
	}
	add := func(name string, present bool) {
		if present {
			out.Sections = append(out.Sections, name)
		}
	}
	add("stats", parsed.Stats != nil)
	add("advanced_stats", parsed.AdvancedStats != nil)
	add("context", parsed.Context != nil)
	add("formations", parsed.Formations != nil)
	add("lineups", len(parsed.Lineups) > 0)
	add("events", len(parsed.Events) > 0)
	add("availability", len(parsed.Availability) > 0)
	add("player_stats", len(parsed.PlayerStats) > 0)
	add("h2h", parsed.H2H != nil)
	return out
}

// runWithApp loads config, builds the app and cancels on SIGINT or SIGTERM.
func runWithApp(fn func(ctx context.Context, a *app.App) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.Default()
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("close app", "error", err)
		}
	}()

	started := time.Now()
	if err := fn(ctx, a); err != nil {
		return err
	}
	logger.Info("command finished", "duration", time.Since(started).Round(time.Millisecond))
	return nil
}

func parseMatchID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid match id %q", raw)
	}
	return id, nil
}

func printJSON(v any) error {
	out, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(os.Stdout, string(out))
	return err
}
