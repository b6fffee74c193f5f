package strategy

import (
	"context"

	"github.com/rxtech-lab/athena-backtest/internal/candle"
	"github.com/rxtech-lab/athena-backtest/internal/logger"
	"github.com/rxtech-lab/athena-backtest/internal/types"
	"github.com/rxtech-lab/athena-backtest/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Strategy holds one configuration and the running state of its replay.
// It is not safe for concurrent use.
type Strategy struct {
	policy Policy
	log    *logger.Logger

	config     types.StrategyConfig
	configured bool
	pointValue decimal.Decimal

	status types.StrategyStatus
	ledger *Ledger
	trades []*types.Trade
	active *types.Trade

	// candles are the timeframe bars before the trading window filter.
	candles  []types.Candle
	sessions *candle.Sessions

	sessionTrades int
	sessionWon    bool

	observers observers
}

func NewStrategy(policy Policy, log *logger.Logger) *Strategy {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Strategy{
		policy:   policy,
		log:      log,
		status:   types.StrategyStatusOutOfMarket,
		ledger:   NewLedger(decimal.Zero),
		sessions: candle.NewSessions(),
	}
}

// LoadConfiguration replaces the configuration and discards all runtime state of the previous run.
// Observers stay registered.
func (s *Strategy) LoadConfiguration(config types.StrategyConfig) error {
	if s.policy == nil {
		return errors.New(errors.ErrCodeStrategyNotLoaded, "strategy has no policy")
	}

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeStrategyConfigError, "failed to load strategy configuration", err)
	}

	s.config = config
	s.configured = true
	s.pointValue = config.PointValue()
	s.status = types.StrategyStatusOutOfMarket
	s.ledger = NewLedger(decimal.NewFromFloat(config.StartingBalance))
	s.trades = nil
	s.active = nil
	s.candles = nil
	s.sessions = candle.NewSessions()
	s.sessionTrades = 0
	s.sessionWon = false

	s.log.Debug("Strategy configuration loaded",
		zap.String("policy", s.policy.Name()),
		zap.String("config", config.Name),
		zap.Int("timeframe", config.Timeframe),
	)

	return nil
}

// LoadCandles builds the sessions the strategy trades from 1-minute candles.
// Each day is aggregated on its own, then bars outside the trading window are dropped.
func (s *Strategy) LoadCandles(candles []types.Candle) error {
	if !s.configured {
		return errors.New(errors.ErrCodeStrategyNotLoaded, "load a configuration before loading candles")
	}

	if len(candles) == 0 {
		return errors.New(errors.ErrCodeNoCandles, "no candles to load")
	}

	aggregated, err := candle.AggregateSessions(candle.SplitSessions(candles), s.config.Timeframe)
	if err != nil {
		return err
	}

	window := s.config.TradingWindow()

	s.candles = aggregated.Flatten()
	s.sessions = aggregated.Filter(func(c types.Candle) bool {
		return window.Contains(c.Time)
	})

	s.log.Debug("Candles loaded",
		zap.Int("minute_candles", len(candles)),
		zap.Int("bars", len(s.candles)),
		zap.Int("sessions", s.sessions.Len()),
		zap.String("trading_window", window.String()),
	)

	return nil
}

// LoadIndicators lets the policy compute its indicators over the unfiltered bars.
func (s *Strategy) LoadIndicators(ctx context.Context) error {
	if err := s.policy.LoadIndicators(ctx, s.candles); err != nil {
		return errors.Wrap(errors.ErrCodeIndicatorCalculation, "failed to load policy indicators", err)
	}

	return nil
}

// ResetSession starts a new session: the trade cap and the won flag are cleared.
func (s *Strategy) ResetSession() {
	s.sessionTrades = 0
	s.sessionWon = false
	s.policy.ResetSession()
}

// Subscribe registers an observer for the given event types, or for all of them when none are given.
func (s *Strategy) Subscribe(observer Observer, events ...types.EventType) SubscriptionID {
	return s.observers.subscribe(observer, events)
}

func (s *Strategy) Unsubscribe(id SubscriptionID) bool {
	return s.observers.unsubscribe(id)
}

// CanEnter reports whether a new trade may be opened on the candle.
func (s *Strategy) CanEnter(c types.Candle) bool {
	if s.status != types.StrategyStatusOutOfMarket {
		return false
	}

	if s.config.StopTradingAfterWinning && s.sessionWon {
		return false
	}

	if s.sessionTrades >= s.config.MaxTradesPerSession {
		return false
	}

	return s.config.EntryWindow().Contains(c.Time)
}

// LongEntry asks the policy. It is false while a trade is open.
func (s *Strategy) LongEntry(c types.Candle) bool {
	return s.status == types.StrategyStatusOutOfMarket && s.policy.LongEntry(c)
}

// ShortEntry asks the policy. It is false while a trade is open.
func (s *Strategy) ShortEntry(c types.Candle) bool {
	return s.status == types.StrategyStatusOutOfMarket && s.policy.ShortEntry(c)
}

func (s *Strategy) Policy() Policy {
	return s.policy
}

func (s *Strategy) Config() types.StrategyConfig {
	return s.config
}

func (s *Strategy) Status() types.StrategyStatus {
	return s.status
}

func (s *Strategy) Balance() decimal.Decimal {
	return s.ledger.Balance()
}

func (s *Strategy) Ledger() *Ledger {
	return s.ledger
}

func (s *Strategy) Statistics() types.Statistics {
	return s.ledger.Statistics()
}

// Trades returns every trade of the run in the order they were opened.
func (s *Strategy) Trades() []*types.Trade {
	out := make([]*types.Trade, len(s.trades))
	copy(out, s.trades)

	return out
}

// ActiveTrade is the pending trade, if any.
func (s *Strategy) ActiveTrade() (*types.Trade, bool) {
	return s.active, s.active != nil
}

func (s *Strategy) Sessions() *candle.Sessions {
	return s.sessions
}

// Candles returns the timeframe bars before the trading window filter.
func (s *Strategy) Candles() []types.Candle {
	return s.candles
}

func (s *Strategy) SessionTradeCount() int {
	return s.sessionTrades
}

func (s *Strategy) SessionWon() bool {
	return s.sessionWon
}
