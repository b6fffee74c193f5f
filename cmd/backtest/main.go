package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/rxtech-lab/athena-backtest/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/athena-backtest/internal/strategy"
	"github.com/rxtech-lab/athena-backtest/internal/version"
	"github.com/urfave/cli/v3"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "backtest",
		Usage:   "Replay intraday strategies over historical 1-minute candles",
		Version: version.GetVersion(),
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run every strategy configuration against the candle data",
				Flags:  runFlags(),
				Action: runAction,
			},
			{
				Name:  "schema",
				Usage: "Print the JSON schema of the strategy or engine configuration",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "kind",
						Usage: "Schema to print (strategy, engine)",
						Value: schemaKindStrategy,
					},
				},
				Action: schemaAction,
			},
			{
				Name:  "policies",
				Usage: "List the available entry policies",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					for _, name := range strategy.PolicyNames() {
						fmt.Fprintln(cmd.Root().Writer, name)
					}

					return nil
				},
			},
		},
	}
}

func runFlags() []cli.Flag {
	sources := make([]string, len(datasource.AllSources))
	for i, source := range datasource.AllSources {
		sources[i] = string(source)
	}

	return []cli.Flag{
		&cli.StringFlag{
			Name:     "config",
			Aliases:  []string{"c"},
			Usage:    "Glob of strategy configuration files (YAML or JSON)",
			Required: true,
		},
		&cli.StringSliceFlag{
			Name:    "policy",
			Aliases: []string{"p"},
			Usage:   fmt.Sprintf("Entry policy to replay, repeatable (%s)", strings.Join(strategy.PolicyNames(), ", ")),
			Value:   []string{strategy.PriceExtremePolicyName},
		},
		&cli.StringFlag{
			Name:    "source",
			Aliases: []string{"s"},
			Usage:   fmt.Sprintf("Candle source (%s)", strings.Join(sources, ", ")),
			Value:   string(datasource.SourceCSV),
		},
		&cli.StringFlag{
			Name:    "data",
			Aliases: []string{"d"},
			Usage:   "Path to the candle file for the csv and duckdb sources",
		},
		&cli.StringFlag{
			Name:  "symbol",
			Usage: "Instrument to select from database sources and to show in summaries",
		},
		&cli.StringFlag{
			Name:  "table",
			Usage: "Candle table for the clickhouse and postgres sources",
			Value: datasource.DefaultTable,
		},
		&cli.TimestampFlag{
			Name:  "start",
			Usage: "First day to replay in `YYYY-MM-DD` format",
			Config: cli.TimestampConfig{
				Layouts: []string{"2006-01-02"},
			},
		},
		&cli.TimestampFlag{
			Name:  "end",
			Usage: "Last day to replay in `YYYY-MM-DD` format, inclusive",
			Config: cli.TimestampConfig{
				Layouts: []string{"2006-01-02"},
			},
		},
		&cli.StringFlag{
			Name:    "results",
			Aliases: []string{"r"},
			Usage:   "Folder stats.yaml and trades.csv are written to. Nothing is written when empty",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level (debug, info, warn, error)",
			Value: "warn",
		},
		&cli.StringSliceFlag{
			Name:    "clickhouse-addr",
			Usage:   "ClickHouse native protocol address, repeatable",
			Value:   []string{"localhost:9000"},
			Sources: cli.EnvVars("CLICKHOUSE_ADDR"),
		},
		&cli.StringFlag{
			Name:    "clickhouse-database",
			Value:   "default",
			Sources: cli.EnvVars("CLICKHOUSE_DATABASE"),
		},
		&cli.StringFlag{
			Name:    "clickhouse-user",
			Value:   "default",
			Sources: cli.EnvVars("CLICKHOUSE_USER"),
		},
		&cli.StringFlag{
			Name:    "clickhouse-password",
			Sources: cli.EnvVars("CLICKHOUSE_PASSWORD"),
		},
		&cli.StringFlag{
			Name:    "database-url",
			Usage:   "Postgres connection string",
			Sources: cli.EnvVars("DATABASE_URL"),
		},
	}
}

// endOfDay turns an inclusive end date into the last instant of that day.
func endOfDay(day time.Time) time.Time {
	return day.AddDate(0, 0, 1).Add(-time.Nanosecond)
}
