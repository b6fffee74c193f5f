package engine

import (
	"context"

	"github.com/rxtech-lab/athena-backtest/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/athena-backtest/internal/config"
	"github.com/rxtech-lab/athena-backtest/internal/report"
	"github.com/rxtech-lab/athena-backtest/internal/strategy"
	"github.com/rxtech-lab/athena-backtest/internal/types"
)

// Lifecycle callback types for backtest phases
// All callbacks with error return can abort execution if they return an error

// OnBacktestStartCallback is called when the entire backtest begins.
type OnBacktestStartCallback func(totalPolicies int, totalConfigs int) error

// OnBacktestEndCallback is called when the entire backtest completes (always called via defer).
type OnBacktestEndCallback func(err error)

// OnStrategyStartCallback is called when a policy iteration begins.
type OnStrategyStartCallback func(policyIndex int, policyName string, totalPolicies int) error

// OnStrategyEndCallback is called when a policy iteration ends.
type OnStrategyEndCallback func(policyIndex int, policyName string)

// OnRunStartCallback is called when the replay of one configuration begins.
// runID is a unique identifier for this run, generated before processing starts.
type OnRunStartCallback func(runID string, configIndex int, configName string, totalCandles int) error

// OnRunEndCallback is called when the replay of one configuration ends.
// resultFolderPath is empty when no results folder is set.
type OnRunEndCallback func(configIndex int, configName string, summary types.Summary, resultFolderPath string)

// OnProcessDataCallback is called for each candle processed.
type OnProcessDataCallback func(current int, total int) error

// LifecycleCallbacks holds all lifecycle callback functions for the backtest engine.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnBacktestStart *OnBacktestStartCallback
	OnBacktestEnd   *OnBacktestEndCallback
	OnStrategyStart *OnStrategyStartCallback
	OnStrategyEnd   *OnStrategyEndCallback
	OnRunStart      *OnRunStartCallback
	OnRunEnd        *OnRunEndCallback
	OnProcessData   *OnProcessDataCallback
}

//nolint:interfacebloat // Engine is a core interface that naturally requires multiple methods
type Engine interface {
	// Initialize the engine with the given YAML engine configuration.
	Initialize(config string) error
	// SetConfigProvider sets where the strategy configurations come from.
	// Every configuration is validated before the first replay starts.
	SetConfigProvider(provider config.Provider) error
	// SetDataSource sets the provider of 1-minute candles.
	SetDataSource(dataSource datasource.CandleProvider) error
	// SetResultsFolder sets the output directory for saving backtest results.
	// The results folder will be structured as: <policy>/<config_name>[/<start>_<end>]/<data_name>
	SetResultsFolder(folder string) error
	// SetReportSink sets where the trade table and summaries are written.
	SetReportSink(sink report.Sink) error
	// LoadPolicy adds an entry policy. Could be called multiple times to replay several policies.
	LoadPolicy(policy strategy.Policy) error
	// Run replays every configuration for every loaded policy.
	// The context can be used to cancel the backtest operation between candles.
	// Use LifecycleCallbacks to receive notifications at different phases of the backtest.
	Run(ctx context.Context, callbacks LifecycleCallbacks) error
	// Summaries returns the summary of every finished run, in run order.
	Summaries() []types.Summary
	// GetConfigSchema returns the schema of the engine configuration
	GetConfigSchema() (string, error)
}
