package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rxtech-lab/athena-backtest/internal/backtest/engine"
	engine_v1 "github.com/rxtech-lab/athena-backtest/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/athena-backtest/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/athena-backtest/internal/candle"
	"github.com/rxtech-lab/athena-backtest/internal/config"
	"github.com/rxtech-lab/athena-backtest/internal/logger"
	"github.com/rxtech-lab/athena-backtest/internal/report"
	"github.com/rxtech-lab/athena-backtest/internal/strategy"
	"github.com/rxtech-lab/athena-backtest/internal/types"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	schemaKindStrategy = "strategy"
	schemaKindEngine   = "engine"
)

func runAction(ctx context.Context, cmd *cli.Command) error {
	level, err := logger.ParseLevel(cmd.String("log-level"))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	log, err := logger.NewLoggerWithLevel(level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	engineConfig, err := engineConfigYAML(cmd)
	if err != nil {
		return err
	}

	backtest := engine_v1.NewBacktestEngineV1WithLogger(log)
	if err := backtest.Initialize(engineConfig); err != nil {
		return fmt.Errorf("failed to initialize backtest engine: %w", err)
	}

	source, err := newDataSource(ctx, cmd, log)
	if err != nil {
		return err
	}
	defer source.Close()

	if err := backtest.SetDataSource(source); err != nil {
		return err
	}

	if err := backtest.SetConfigProvider(config.NewFileProvider(cmd.String("config"), log)); err != nil {
		return err
	}

	if err := backtest.SetReportSink(report.NewConsoleSink(cmd.Root().Writer)); err != nil {
		return err
	}

	if folder := cmd.String("results"); folder != "" {
		if err := backtest.SetResultsFolder(folder); err != nil {
			return err
		}
	}

	for _, name := range cmd.StringSlice("policy") {
		policy, err := strategy.NewPolicy(name)
		if err != nil {
			return err
		}

		if err := backtest.LoadPolicy(policy); err != nil {
			return err
		}
	}

	progress := newProgress(log)

	return backtest.Run(ctx, progress.callbacks())
}

// engineConfigYAML builds the engine configuration from the command line flags.
func engineConfigYAML(cmd *cli.Command) (string, error) {
	values := map[string]any{}

	if symbol := cmd.String("symbol"); symbol != "" {
		values["symbol"] = symbol
	}

	if cmd.IsSet("start") {
		values["start_time"] = cmd.Timestamp("start").UTC()
	}

	if cmd.IsSet("end") {
		values["end_time"] = endOfDay(cmd.Timestamp("end")).UTC()
	}

	if len(values) == 0 {
		return "", nil
	}

	content, err := yaml.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("failed to build engine config: %w", err)
	}

	return string(content), nil
}

func newDataSource(ctx context.Context, cmd *cli.Command, log *logger.Logger) (datasource.CandleProvider, error) {
	source := datasource.Source(cmd.String("source"))
	path := cmd.String("data")

	switch source {
	case datasource.SourceCSV:
		if path == "" {
			return nil, fmt.Errorf("--data is required for the %s source", source)
		}

		return datasource.NewCSVProvider(path, candle.DefaultParseOptions(), log), nil
	case datasource.SourceDuckDB:
		if path == "" {
			return nil, fmt.Errorf("--data is required for the %s source", source)
		}

		return datasource.NewDuckDBProvider(path, cmd.String("symbol"), log)
	case datasource.SourceClickHouse:
		return datasource.NewClickHouseProvider(ctx, datasource.ClickHouseOptions{
			Addr:     cmd.StringSlice("clickhouse-addr"),
			Database: cmd.String("clickhouse-database"),
			Username: cmd.String("clickhouse-user"),
			Password: cmd.String("clickhouse-password"),
			Table:    cmd.String("table"),
			Symbol:   cmd.String("symbol"),
		}, log)
	case datasource.SourcePostgres:
		return datasource.NewPostgresProvider(ctx, datasource.PostgresOptions{
			DatabaseURL: cmd.String("database-url"),
			Table:       cmd.String("table"),
			Symbol:      cmd.String("symbol"),
		}, log)
	default:
		return nil, fmt.Errorf("unsupported source %q", source)
	}
}

func schemaAction(ctx context.Context, cmd *cli.Command) error {
	var (
		schema string
		err    error
	)

	switch kind := cmd.String("kind"); kind {
	case schemaKindStrategy:
		schema, err = config.GenerateSchemaJSON()
	case schemaKindEngine:
		engineConfig := engine_v1.EmptyConfig()
		schema, err = engineConfig.GenerateSchemaJSON()
	default:
		return fmt.Errorf("unknown schema kind %q", kind)
	}

	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	_, err = fmt.Fprintln(cmd.Root().Writer, schema)

	return err
}

// progress renders one progress bar per configuration run on stderr.
type progress struct {
	log     *logger.Logger
	started time.Time
	policy  string
	bar     *progressbar.ProgressBar
}

func newProgress(log *logger.Logger) *progress {
	return &progress{log: log}
}

func (p *progress) callbacks() engine.LifecycleCallbacks {
	onBacktestStart := engine.OnBacktestStartCallback(func(totalPolicies int, totalConfigs int) error {
		p.started = time.Now()
		p.log.Info("Backtest started",
			zap.Int("policies", totalPolicies),
			zap.Int("configs", totalConfigs),
		)

		return nil
	})

	onStrategyStart := engine.OnStrategyStartCallback(func(policyIndex int, policyName string, totalPolicies int) error {
		p.policy = policyName

		return nil
	})

	onRunStart := engine.OnRunStartCallback(func(runID string, configIndex int, configName string, totalCandles int) error {
		p.bar = progressbar.NewOptions(totalCandles,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription(fmt.Sprintf("%s / %s", p.policy, configName)),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)

		return nil
	})

	onProcessData := engine.OnProcessDataCallback(func(current int, total int) error {
		if p.bar == nil {
			return nil
		}

		return p.bar.Set(current)
	})

	onRunEnd := engine.OnRunEndCallback(func(configIndex int, configName string, summary types.Summary, resultFolderPath string) {
		if p.bar != nil {
			_ = p.bar.Finish()
		}

		if resultFolderPath != "" {
			p.log.Info("Results written",
				zap.String("config", configName),
				zap.String("folder", resultFolderPath),
			)
		}
	})

	onBacktestEnd := engine.OnBacktestEndCallback(func(err error) {
		if err != nil {
			p.log.Error("Backtest failed", zap.Error(err))

			return
		}

		p.log.Info("Backtest finished", zap.Duration("elapsed", time.Since(p.started)))
	})

	return engine.LifecycleCallbacks{
		OnBacktestStart: &onBacktestStart,
		OnStrategyStart: &onStrategyStart,
		OnRunStart:      &onRunStart,
		OnProcessData:   &onProcessData,
		OnRunEnd:        &onRunEnd,
		OnBacktestEnd:   &onBacktestEnd,
	}
}
