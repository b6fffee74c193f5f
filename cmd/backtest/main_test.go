package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rxtech-lab/athena-backtest/mocks"
	"github.com/stretchr/testify/suite"
)

type BacktestCmdTestSuite struct {
	suite.Suite
	dir    string
	output *bytes.Buffer
}

func TestBacktestCmdSuite(t *testing.T) {
	suite.Run(t, new(BacktestCmdTestSuite))
}

const cmdTestConfig = `
name: es_3m
timeframe: 3
trading_window_start: "09:30"
trading_window_end: "16:00"
entry_window_start: "09:30"
entry_window_end: "15:30"
contracts: 2
starting_balance: 10000
price_per_tick: 12.5
initial_stop_loss: 5
trail_stop_to_breakeven: true
profit_targets:
  - offset: 2
    contracts: 1
    trailing_trigger: 1
  - offset: 4
    contracts: 1
max_trades_per_session: 3
`

func (suite *BacktestCmdTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()
	suite.output = &bytes.Buffer{}

	candles := mocks.NewDataGenerator(7).Sessions(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), 3, 5000)

	var data strings.Builder

	data.WriteString("timestamp,open,high,low,close,volume\n")

	for _, c := range candles {
		fmt.Fprintf(&data, "%s,%.2f,%.2f,%.2f,%.2f,%.0f\n",
			c.Time.Format(time.DateTime), c.Open, c.High, c.Low, c.Close, c.Volume)
	}

	suite.Require().NoError(os.WriteFile(filepath.Join(suite.dir, "es.csv"), []byte(data.String()), 0644))
	suite.Require().NoError(os.WriteFile(filepath.Join(suite.dir, "es_3m.yaml"), []byte(cmdTestConfig), 0644))
}

func (suite *BacktestCmdTestSuite) run(args ...string) error {
	app := newApp()
	app.Writer = suite.output
	app.ErrWriter = &bytes.Buffer{}

	return app.Run(context.Background(), append([]string{"backtest"}, args...))
}

func (suite *BacktestCmdTestSuite) TestRun() {
	results := filepath.Join(suite.dir, "results")

	err := suite.run("run",
		"--config", filepath.Join(suite.dir, "*.yaml"),
		"--data", filepath.Join(suite.dir, "es.csv"),
		"--policy", "price-extreme",
		"--policy", "ema-close",
		"--results", results,
		"--symbol", "ES",
		"--log-level", "error",
	)
	suite.Require().NoError(err)

	output := suite.output.String()
	suite.Contains(output, "TRADES price-extreme / es_3m")
	suite.Contains(output, "TRADES ema-close / es_3m")
	suite.Contains(output, "Gain on Account:")

	for _, policy := range []string{"price-extreme", "ema-close"} {
		folder := filepath.Join(results, policy, "es_3m", "es")
		suite.FileExists(filepath.Join(folder, "stats.yaml"))
		suite.FileExists(filepath.Join(folder, "trades.csv"))
	}
}

func (suite *BacktestCmdTestSuite) TestRunWithDateRange() {
	results := filepath.Join(suite.dir, "results")

	err := suite.run("run",
		"--config", filepath.Join(suite.dir, "es_3m.yaml"),
		"--data", filepath.Join(suite.dir, "es.csv"),
		"--start", "2024-03-05",
		"--end", "2024-03-05",
		"--results", results,
		"--log-level", "error",
	)
	suite.Require().NoError(err)
	suite.DirExists(filepath.Join(results, "price-extreme", "es_3m", "20240305_20240305", "es"))
}

func (suite *BacktestCmdTestSuite) TestRunErrors() {
	tests := []struct {
		name string
		args []string
	}{
		{
			name: "csv without data",
			args: []string{"run", "--config", filepath.Join(suite.dir, "*.yaml")},
		},
		{
			name: "unsupported source",
			args: []string{"run", "--config", filepath.Join(suite.dir, "*.yaml"), "--source", "excel"},
		},
		{
			name: "unknown policy",
			args: []string{"run", "--config", filepath.Join(suite.dir, "*.yaml"), "--data", filepath.Join(suite.dir, "es.csv"), "--policy", "moon"},
		},
		{
			name: "no matching config",
			args: []string{"run", "--config", filepath.Join(suite.dir, "*.json"), "--data", filepath.Join(suite.dir, "es.csv"), "--log-level", "error"},
		},
		{
			name: "invalid log level",
			args: []string{"run", "--config", filepath.Join(suite.dir, "*.yaml"), "--log-level", "loud"},
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Error(suite.run(tc.args...))
		})
	}
}

func (suite *BacktestCmdTestSuite) TestSchema() {
	suite.Require().NoError(suite.run("schema"))
	suite.Contains(suite.output.String(), "strategy-config")

	suite.output.Reset()
	suite.Require().NoError(suite.run("schema", "--kind", "engine"))
	suite.Contains(suite.output.String(), "backtest-engine-v1-config")

	suite.Error(suite.run("schema", "--kind", "broker"))
}

func (suite *BacktestCmdTestSuite) TestPolicies() {
	suite.Require().NoError(suite.run("policies"))
	suite.Equal("ema-close\nprice-extreme\n", suite.output.String())
}

func (suite *BacktestCmdTestSuite) TestEndOfDay() {
	end := endOfDay(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))

	suite.Equal(time.Date(2024, 3, 5, 23, 59, 59, 999999999, time.UTC), end)
}
