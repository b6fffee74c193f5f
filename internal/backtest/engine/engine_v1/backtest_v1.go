package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/athena-backtest/internal/backtest/engine"
	"github.com/rxtech-lab/athena-backtest/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/athena-backtest/internal/config"
	"github.com/rxtech-lab/athena-backtest/internal/logger"
	"github.com/rxtech-lab/athena-backtest/internal/report"
	"github.com/rxtech-lab/athena-backtest/internal/strategy"
	"github.com/rxtech-lab/athena-backtest/internal/types"
	"github.com/rxtech-lab/athena-backtest/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var reportedEvents = []types.EventType{
	types.EventTradeCreated,
	types.EventTradeClosed,
	types.EventProfitTargetHit,
	types.EventStopLossHit,
}

type BacktestEngineV1 struct {
	config         BacktestEngineV1Config
	policies       []strategy.Policy
	configProvider config.Provider
	datasource     datasource.CandleProvider
	resultsFolder  string
	sink           report.Sink
	formatter      *report.Formatter
	log            *logger.Logger
	summaries      []types.Summary

	// keepLogger is set when the logger was injected and Initialize must not replace it.
	keepLogger bool
}

func NewBacktestEngineV1() engine.Engine {
	return &BacktestEngineV1{
		config:    EmptyConfig(),
		formatter: report.NewFormatter(),
		log:       logger.NewNopLogger(),
	}
}

// NewBacktestEngineV1WithLogger creates an engine that logs through log instead of
// the production logger Initialize would create.
func NewBacktestEngineV1WithLogger(log *logger.Logger) engine.Engine {
	b := NewBacktestEngineV1().(*BacktestEngineV1)
	if log != nil {
		b.log = log
		b.keepLogger = true
	}

	return b
}

// Initialize implements engine.Engine.
func (b *BacktestEngineV1) Initialize(config string) error {
	b.config = EmptyConfig()

	if err := yaml.Unmarshal([]byte(config), &b.config); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to parse engine config", err)
	}

	if !b.keepLogger {
		log, err := logger.NewLogger()
		if err != nil {
			return errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to create logger", err)
		}

		b.log = log
	}

	if b.resultsFolder == "" {
		b.resultsFolder = b.config.ResultsFolder
	}

	b.log.Debug("Backtest engine initialized",
		zap.String("config", config),
	)

	return nil
}

// SetConfigProvider implements engine.Engine.
func (b *BacktestEngineV1) SetConfigProvider(provider config.Provider) error {
	b.configProvider = provider

	return nil
}

// SetDataSource implements engine.Engine.
func (b *BacktestEngineV1) SetDataSource(dataSource datasource.CandleProvider) error {
	b.datasource = dataSource
	b.log.Debug("Data source set",
		zap.String("name", dataSource.Name()),
	)

	return nil
}

// SetResultsFolder implements engine.Engine.
func (b *BacktestEngineV1) SetResultsFolder(folder string) error {
	b.resultsFolder = folder
	b.log.Debug("Results folder set",
		zap.String("folder", folder),
	)

	return nil
}

// SetReportSink implements engine.Engine.
func (b *BacktestEngineV1) SetReportSink(sink report.Sink) error {
	b.sink = sink

	return nil
}

// LoadPolicy implements engine.Engine.
func (b *BacktestEngineV1) LoadPolicy(policy strategy.Policy) error {
	if policy == nil {
		return errors.New(errors.ErrCodeBacktestNoStrategy, "policy is nil")
	}

	b.policies = append(b.policies, policy)
	b.log.Debug("Policy loaded",
		zap.String("policy", policy.Name()),
		zap.Int("total_policies", len(b.policies)),
	)

	return nil
}

func (b *BacktestEngineV1) Summaries() []types.Summary {
	out := make([]types.Summary, len(b.summaries))
	copy(out, b.summaries)

	return out
}

func (b *BacktestEngineV1) GetConfigSchema() (string, error) {
	config := b.config

	schema, err := config.GenerateSchemaJSON()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to generate schema", err)
	}

	return schema, nil
}

// Run implements engine.Engine.
func (b *BacktestEngineV1) Run(ctx context.Context, callbacks engine.LifecycleCallbacks) (runErr error) {
	defer func() {
		if callbacks.OnBacktestEnd != nil {
			(*callbacks.OnBacktestEnd)(runErr)
		}
	}()

	if err := b.preRunCheck(); err != nil {
		return err
	}

	configs, err := b.configProvider.Load(ctx)
	if err != nil {
		return errors.Wrap(errors.ErrCodeBacktestNoConfigs, "failed to load strategy configs", err)
	}

	if len(configs) == 0 {
		return errors.New(errors.ErrCodeBacktestNoConfigs, "no strategy configs loaded")
	}

	// every configuration is validated before anything is replayed
	configs, err = config.ValidateAll(configs)
	if err != nil {
		return err
	}

	candles, err := b.datasource.Load(ctx, b.config.StartTime, b.config.EndTime)
	if err != nil {
		return errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to load candles", err)
	}

	b.log.Info("Candles loaded",
		zap.String("data", b.datasource.Name()),
		zap.Int("count", len(candles)),
	)

	b.summaries = nil

	if callbacks.OnBacktestStart != nil {
		if err := (*callbacks.OnBacktestStart)(len(b.policies), len(configs)); err != nil {
			return errors.Wrap(errors.ErrCodeCallbackFailed, "OnBacktestStart callback failed", err)
		}
	}

	for policyIndex, policy := range b.policies {
		if callbacks.OnStrategyStart != nil {
			if err := (*callbacks.OnStrategyStart)(policyIndex, policy.Name(), len(b.policies)); err != nil {
				return errors.Wrap(errors.ErrCodeCallbackFailed, "OnStrategyStart callback failed", err)
			}
		}

		strat := strategy.NewStrategy(policy, b.log)

		for configIndex, cfg := range configs {
			summary, resultFolderPath, err := b.runConfig(ctx, strat, configIndex, cfg, candles, callbacks)
			if err != nil {
				return err
			}

			b.summaries = append(b.summaries, summary)

			if callbacks.OnRunEnd != nil {
				(*callbacks.OnRunEnd)(configIndex, cfg.Name, summary, resultFolderPath)
			}
		}

		if callbacks.OnStrategyEnd != nil {
			(*callbacks.OnStrategyEnd)(policyIndex, policy.Name())
		}
	}

	return nil
}

// runConfig replays one configuration over all sessions and writes its results.
func (b *BacktestEngineV1) runConfig(
	ctx context.Context,
	strat *strategy.Strategy,
	configIndex int,
	cfg types.StrategyConfig,
	candles []types.Candle,
	callbacks engine.LifecycleCallbacks,
) (types.Summary, string, error) {
	runID := uuid.New().String()
	policyName := strat.Policy().Name()

	if err := strat.LoadConfiguration(cfg); err != nil {
		return types.Summary{}, "", err
	}

	if err := strat.LoadCandles(candles); err != nil {
		return types.Summary{}, "", err
	}

	if err := strat.LoadIndicators(ctx); err != nil {
		return types.Summary{}, "", err
	}

	sessions := strat.Sessions().All()

	total := 0
	for _, session := range sessions {
		total += len(session.Candles)
	}

	b.log.Debug("Running configuration",
		zap.String("run_id", runID),
		zap.String("policy", policyName),
		zap.String("config", cfg.Name),
		zap.Int("sessions", len(sessions)),
		zap.Int("candles", total),
	)

	if callbacks.OnRunStart != nil {
		if err := (*callbacks.OnRunStart)(runID, configIndex, cfg.Name, total); err != nil {
			return types.Summary{}, "", errors.Wrap(errors.ErrCodeCallbackFailed, "OnRunStart callback failed", err)
		}
	}

	reporter := report.NewReporter(b.sink, b.formatter)
	if err := reporter.Begin(policyName, cfg.Name); err != nil {
		return types.Summary{}, "", err
	}

	subscription := strat.Subscribe(reporter.Observe, reportedEvents...)
	defer strat.Unsubscribe(subscription)

	processed := 0

	for _, session := range sessions {
		strat.ResetSession()

		for _, c := range session.Candles {
			if err := ctx.Err(); err != nil {
				return types.Summary{}, "", err
			}

			if err := b.processCandle(strat, c); err != nil {
				return types.Summary{}, "", err
			}

			processed++

			if callbacks.OnProcessData != nil {
				if err := (*callbacks.OnProcessData)(processed, total); err != nil {
					return types.Summary{}, "", errors.Wrap(errors.ErrCodeCallbackFailed, "OnProcessData callback failed", err)
				}
			}
		}

		if _, open := strat.ActiveTrade(); open && len(session.Candles) > 0 {
			if err := strat.FlattenOpenPosition(session.Candles[len(session.Candles)-1]); err != nil {
				return types.Summary{}, "", err
			}
		}
	}

	summary := b.buildSummary(runID, strat)

	if err := reporter.Summary(summary); err != nil {
		return types.Summary{}, "", err
	}

	if b.resultsFolder == "" {
		return summary, "", nil
	}

	resultFolderPath := getResultFolder(b, policyName, cfg.Name, b.datasource.Name())

	summary, err := writeResults(resultFolderPath, summary, strat.Trades())
	if err != nil {
		return types.Summary{}, "", errors.Wrap(errors.ErrCodeBacktestResultsFailure, "failed to write results", err)
	}

	b.log.Debug("Results written",
		zap.String("run_id", runID),
		zap.String("folder", resultFolderPath),
	)

	return summary, resultFolderPath, nil
}

// processCandle manages the open position, then looks for a new entry on the same candle.
func (b *BacktestEngineV1) processCandle(strat *strategy.Strategy, c types.Candle) error {
	if strat.Status() == types.StrategyStatusInMarket {
		if err := strat.CheckOpenPosition(c); err != nil {
			return err
		}
	}

	if !strat.CanEnter(c) {
		return nil
	}

	var direction types.Direction

	switch {
	case strat.LongEntry(c):
		direction = types.DirectionLong
	case strat.ShortEntry(c):
		direction = types.DirectionShort
	default:
		return nil
	}

	_, err := strat.OpenTrade(direction, c)

	return err
}

func (b *BacktestEngineV1) buildSummary(runID string, strat *strategy.Strategy) types.Summary {
	cfg := strat.Config()
	ledger := strat.Ledger()
	stats := strat.Statistics()
	total := stats.TotalTrades()

	return types.Summary{
		ID:              runID,
		Timestamp:       time.Now(),
		Policy:          strat.Policy().Name(),
		ConfigName:      cfg.Name,
		Symbol:          b.config.Symbol,
		Sessions:        strat.Sessions().Len(),
		StartingBalance: ledger.Initial().InexactFloat64(),
		EndingBalance:   ledger.Balance().InexactFloat64(),
		Gain:            ledger.Gain().InexactFloat64(),
		GainPercent:     ledger.GainPercent().Round(2).InexactFloat64(),
		TotalProfit:     stats.TotalProfit.InexactFloat64(),
		TotalLosses:     stats.TotalLosses.InexactFloat64(),
		TradeResult: types.TradeResult{
			NumberOfTrades:           total,
			NumberOfWinningTrades:    stats.WinningTrades,
			NumberOfLosingTrades:     stats.LosingTrades,
			NumberOfBreakevenTrades:  stats.BreakevenTrades,
			NumberOfStoppedOutTrades: stats.StoppedOutTrades,
			WinRate:                  types.WinRate(stats.WinningTrades, total),
		},
		Risk: types.RiskParameters{
			Timeframe:           cfg.Timeframe,
			Contracts:           cfg.Contracts,
			PointValue:          cfg.PointValue().InexactFloat64(),
			InitialStopLoss:     cfg.InitialStopLoss,
			TrailToBreakeven:    cfg.TrailStopToBreakeven,
			TrailToHalfStop:     cfg.TrailStopToHalfStop,
			ProfitTargets:       cfg.ProfitTargets,
			MaxTradesPerSession: cfg.MaxTradesPerSession,
			StopAfterWinning:    cfg.StopTradingAfterWinning,
			TradingWindow:       cfg.TradingWindow().String(),
			EntryWindow:         cfg.EntryWindow().String(),
		},
	}
}

func (b *BacktestEngineV1) preRunCheck() error {
	if len(b.policies) == 0 {
		b.log.Error("No policies loaded")

		return errors.New(errors.ErrCodeBacktestNoStrategy, "no policies loaded")
	}

	if b.configProvider == nil {
		b.log.Error("No strategy config provider set")

		return errors.New(errors.ErrCodeBacktestNoConfigs, "no strategy config provider set")
	}

	if b.datasource == nil {
		b.log.Error("No data source set")

		return errors.New(errors.ErrCodeBacktestNoDatasource, "no data source set")
	}

	if b.sink == nil {
		b.log.Error("No report sink set")

		return errors.New(errors.ErrCodeBacktestNoSink, "no report sink set")
	}

	return nil
}
