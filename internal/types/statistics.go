package types

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Statistics accumulates realized results of one configuration run.
type Statistics struct {
	// TotalProfit is the sum of all positive fills.
	TotalProfit decimal.Decimal `yaml:"total_profit"`
	// TotalLosses is the sum of all negative fills. It is zero or negative.
	TotalLosses      decimal.Decimal `yaml:"total_losses"`
	WinningTrades    int             `yaml:"winning_trades"`
	LosingTrades     int             `yaml:"losing_trades"`
	BreakevenTrades  int             `yaml:"breakeven_trades"`
	StoppedOutTrades int             `yaml:"stopped_out_trades"`
}

// TotalTrades is the number of trades with a final outcome.
func (s Statistics) TotalTrades() int {
	return s.WinningTrades + s.LosingTrades + s.BreakevenTrades + s.StoppedOutTrades
}

// Record counts a finalized trade outcome.
func (s *Statistics) Record(outcome TradeOutcome) {
	switch outcome {
	case TradeOutcomeWin:
		s.WinningTrades++
	case TradeOutcomeLoss:
		s.LosingTrades++
	case TradeOutcomeBreakeven:
		s.BreakevenTrades++
	case TradeOutcomeStoppedOut:
		s.StoppedOutTrades++
	case TradeOutcomePending:
	}
}

// WinRate returns wins/total*100, or 0 when there are no trades.
func WinRate(wins, total int) float64 {
	if total == 0 {
		return 0
	}

	return float64(wins) / float64(total) * 100
}

type TradeResult struct {
	NumberOfTrades           int     `yaml:"number_of_trades"`
	NumberOfWinningTrades    int     `yaml:"number_of_winning_trades"`
	NumberOfLosingTrades     int     `yaml:"number_of_losing_trades"`
	NumberOfBreakevenTrades  int     `yaml:"number_of_breakeven_trades"`
	NumberOfStoppedOutTrades int     `yaml:"number_of_stopped_out_trades"`
	WinRate                  float64 `yaml:"win_rate"`
}

// RiskParameters echoes the configuration values that shape each trade.
type RiskParameters struct {
	Timeframe           int                  `yaml:"timeframe"`
	Contracts           int                  `yaml:"contracts"`
	PointValue          float64              `yaml:"point_value"`
	InitialStopLoss     float64              `yaml:"initial_stop_loss"`
	TrailToBreakeven    bool                 `yaml:"trail_stop_to_breakeven"`
	TrailToHalfStop     bool                 `yaml:"trail_stop_to_half_stop"`
	ProfitTargets       []ProfitTargetConfig `yaml:"profit_targets"`
	MaxTradesPerSession int                  `yaml:"max_trades_per_session"`
	StopAfterWinning    bool                 `yaml:"stop_trading_after_winning"`
	TradingWindow       string               `yaml:"trading_window"`
	EntryWindow         string               `yaml:"entry_window"`
}

// Summary is the result of replaying one configuration.
type Summary struct {
	ID              string         `yaml:"id"`
	Timestamp       time.Time      `yaml:"timestamp"`
	Policy          string         `yaml:"policy"`
	ConfigName      string         `yaml:"config_name"`
	Symbol          string         `yaml:"symbol"`
	Sessions        int            `yaml:"sessions"`
	StartingBalance float64        `yaml:"starting_balance"`
	EndingBalance   float64        `yaml:"ending_balance"`
	Gain            float64        `yaml:"gain"`
	GainPercent     float64        `yaml:"gain_percent"`
	TotalProfit     float64        `yaml:"total_profit"`
	TotalLosses     float64        `yaml:"total_losses"`
	TradeResult     TradeResult    `yaml:"trade_result"`
	Risk            RiskParameters `yaml:"risk"`
	TradesFilePath  string         `yaml:"trades_file_path,omitempty"`
}

func WriteSummaries(path string, summaries []Summary) error {
	data, err := yaml.Marshal(summaries)
	if err != nil {
		return fmt.Errorf("failed to marshal summaries to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write summaries to file: %w", err)
	}

	return nil
}
