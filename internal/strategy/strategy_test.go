package strategy

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/athena-backtest/internal/logger"
	"github.com/rxtech-lab/athena-backtest/internal/types"
	"github.com/rxtech-lab/athena-backtest/mocks"
	"github.com/rxtech-lab/athena-backtest/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type StrategyTestSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	policy   *mocks.MockPolicy
	strategy *Strategy
	day      time.Time
	events   []types.Event
}

func TestStrategySuite(t *testing.T) {
	suite.Run(t, new(StrategyTestSuite))
}

// testConfig trades 2 contracts with a point value of 50.
func testConfig() types.StrategyConfig {
	return types.StrategyConfig{
		Name:                "test",
		Timeframe:           1,
		TradingWindowStart:  types.NewTimeOfDay(9, 30),
		TradingWindowEnd:    types.NewTimeOfDay(16, 0),
		EntryWindowStart:    types.NewTimeOfDay(9, 30),
		EntryWindowEnd:      types.NewTimeOfDay(15, 30),
		Contracts:           2,
		StartingBalance:     10000,
		PricePerTick:        12.5,
		InitialStopLoss:     20,
		ProfitTargets:       []types.ProfitTargetConfig{{Offset: 20, Contracts: 2}},
		MaxTradesPerSession: 3,
	}
}

func (suite *StrategyTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.policy = mocks.NewMockPolicy(suite.ctrl)
	suite.policy.EXPECT().Name().Return("mock").AnyTimes()
	suite.policy.EXPECT().ResetSession().AnyTimes()

	suite.day = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	suite.events = nil
	suite.strategy = NewStrategy(suite.policy, logger.NewNopLogger())
	suite.strategy.Subscribe(func(event types.Event) error {
		suite.events = append(suite.events, event)

		return nil
	})
}

func (suite *StrategyTestSuite) load(config types.StrategyConfig) {
	suite.Require().NoError(suite.strategy.LoadConfiguration(config))
}

func (suite *StrategyTestSuite) bar(minute int, open, high, low, closePrice float64) types.Candle {
	return types.Candle{
		Time:   suite.day.Add(9*time.Hour + time.Duration(30+minute)*time.Minute),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closePrice,
		Volume: 10,
	}
}

func (suite *StrategyTestSuite) eventTypes() []types.EventType {
	out := make([]types.EventType, len(suite.events))
	for i, e := range suite.events {
		out[i] = e.Type
	}

	return out
}

func (suite *StrategyTestSuite) assertLedgerBalanced() {
	stats := suite.strategy.Statistics()
	expected := suite.strategy.Ledger().Initial().Add(stats.TotalProfit).Add(stats.TotalLosses)
	suite.True(expected.Equal(suite.strategy.Balance()), "balance %s, expected %s", suite.strategy.Balance(), expected)
}

func (suite *StrategyTestSuite) TestLongTargetFillsAllContracts() {
	suite.load(testConfig())

	trade, err := suite.strategy.OpenTrade(types.DirectionLong, suite.bar(0, 99, 101, 98, 100))
	suite.Require().NoError(err)
	suite.Equal(80.0, trade.StopLoss.Price)
	suite.Equal(120.0, trade.ProfitTargets[0].Price)
	suite.Equal(types.StrategyStatusInMarket, suite.strategy.Status())

	suite.Require().NoError(suite.strategy.CheckOpenPosition(suite.bar(1, 100, 125, 99, 110)))

	// (120 - 100) * 50 * 2
	suite.True(decimal.NewFromInt(2000).Equal(trade.Profit))
	suite.Equal(types.TradeOutcomeWin, trade.Outcome)
	suite.Equal(0, trade.RemainingContracts)
	suite.Equal(types.StrategyStatusOutOfMarket, suite.strategy.Status())
	suite.True(decimal.NewFromInt(12000).Equal(suite.strategy.Balance()))
	suite.Equal(1, suite.strategy.Statistics().WinningTrades)
	suite.True(suite.strategy.SessionWon())
	suite.Equal([]types.EventType{types.EventTradeCreated, types.EventProfitTargetHit, types.EventTradeClosed}, suite.eventTypes())
	suite.assertLedgerBalanced()
}

func (suite *StrategyTestSuite) TestLongStopLoss() {
	suite.load(testConfig())

	trade, err := suite.strategy.OpenTrade(types.DirectionLong, suite.bar(0, 99, 101, 98, 100))
	suite.Require().NoError(err)

	suite.Require().NoError(suite.strategy.CheckOpenPosition(suite.bar(1, 95, 96, 79, 85)))

	suite.True(decimal.NewFromInt(-2000).Equal(trade.Profit))
	suite.Equal(types.TradeOutcomeLoss, trade.Outcome)
	suite.Equal(2, trade.RemainingContracts)
	suite.False(trade.StopLoss.IsOpen())
	suite.Equal(80.0, trade.ExitPrice)
	suite.Equal(1, suite.strategy.Statistics().LosingTrades)
	suite.True(decimal.NewFromInt(-2000).Equal(suite.strategy.Statistics().TotalLosses))
	suite.Equal([]types.EventType{types.EventTradeCreated, types.EventStopLossHit, types.EventTradeClosed}, suite.eventTypes())
	suite.assertLedgerBalanced()
}

func (suite *StrategyTestSuite) TestStopTriggeredByCloseOnly() {
	suite.load(testConfig())

	trade, err := suite.strategy.OpenTrade(types.DirectionLong, suite.bar(0, 99, 101, 98, 100))
	suite.Require().NoError(err)

	// Low above the stop, close exactly on it.
	suite.Require().NoError(suite.strategy.CheckOpenPosition(types.Candle{
		Time: suite.bar(1, 0, 0, 0, 0).Time, Open: 81, High: 82, Low: 80.25, Close: 80,
	}))
	suite.Equal(types.TradeOutcomeLoss, trade.Outcome)
}

func (suite *StrategyTestSuite) TestStopCheckedBeforeTargets() {
	suite.load(testConfig())

	trade, err := suite.strategy.OpenTrade(types.DirectionLong, suite.bar(0, 99, 101, 98, 100))
	suite.Require().NoError(err)

	// Both the stop and the target are inside the bar.
	suite.Require().NoError(suite.strategy.CheckOpenPosition(suite.bar(1, 100, 125, 75, 100)))

	suite.Equal(types.TradeOutcomeLoss, trade.Outcome)
	suite.True(trade.ProfitTargets[0].IsOpen())
	suite.Equal(2, trade.RemainingContracts)
}

func (suite *StrategyTestSuite) TestShortMirrored() {
	config := testConfig()
	config.ProfitTargets = []types.ProfitTargetConfig{{Offset: 10, Contracts: 1}, {Offset: 20, Contracts: 1}}
	suite.load(config)

	trade, err := suite.strategy.OpenTrade(types.DirectionShort, suite.bar(0, 101, 102, 99, 100))
	suite.Require().NoError(err)
	suite.Equal(120.0, trade.StopLoss.Price)
	suite.Equal(90.0, trade.ProfitTargets[0].Price)
	suite.Equal(80.0, trade.ProfitTargets[1].Price)

	suite.Require().NoError(suite.strategy.CheckOpenPosition(suite.bar(1, 100, 101, 90, 95)))
	suite.Equal(1, trade.RemainingContracts)
	suite.True(trade.IsPending())

	suite.Require().NoError(suite.strategy.CheckOpenPosition(suite.bar(2, 92, 93, 85, 80)))

	// 10*50*1 + 20*50*1
	suite.True(decimal.NewFromInt(1500).Equal(trade.Profit))
	suite.Equal(types.TradeOutcomeWin, trade.Outcome)
	suite.Equal(0, trade.RemainingContracts)
	suite.assertLedgerBalanced()
}

func (suite *StrategyTestSuite) TestShortStopLoss() {
	suite.load(testConfig())

	trade, err := suite.strategy.OpenTrade(types.DirectionShort, suite.bar(0, 101, 102, 99, 100))
	suite.Require().NoError(err)

	suite.Require().NoError(suite.strategy.CheckOpenPosition(suite.bar(1, 105, 121, 104, 110)))
	suite.Equal(types.TradeOutcomeLoss, trade.Outcome)
	suite.True(decimal.NewFromInt(-2000).Equal(trade.Profit))
}

func (suite *StrategyTestSuite) TestTrailToBreakevenThenBreakevenStop() {
	config := testConfig()
	config.TrailStopToBreakeven = true
	config.ProfitTargets = []types.ProfitTargetConfig{{Offset: 10, Contracts: 1}, {Offset: 30, Contracts: 1}}
	suite.load(config)

	trade, err := suite.strategy.OpenTrade(types.DirectionLong, suite.bar(0, 99, 101, 98, 100))
	suite.Require().NoError(err)

	suite.Require().NoError(suite.strategy.CheckOpenPosition(suite.bar(1, 100, 111, 100, 108)))
	suite.Equal(100.0, trade.StopLoss.Price)
	suite.Equal(1, trade.RemainingContracts)

	suite.Require().NoError(suite.strategy.CheckOpenPosition(suite.bar(2, 105, 106, 99, 101)))

	suite.Equal(types.TradeOutcomeBreakeven, trade.Outcome)
	// Only the first target's 10*50*1 was realized.
	suite.True(decimal.NewFromInt(500).Equal(trade.Profit))
	suite.Equal(1, trade.RemainingContracts)
	suite.Equal(1, suite.strategy.Statistics().BreakevenTrades)
	suite.Equal(0, suite.strategy.Statistics().LosingTrades)

	stopEvent := suite.events[len(suite.events)-2]
	suite.Equal(types.EventStopLossHit, stopEvent.Type)
	suite.True(stopEvent.Amount.IsZero())
	suite.assertLedgerBalanced()
}

func (suite *StrategyTestSuite) TestTrailingTriggerTakesPrecedence() {
	config := testConfig()
	config.TrailStopToBreakeven = true
	config.TrailStopToHalfStop = true
	config.ProfitTargets = []types.ProfitTargetConfig{
		{Offset: 10, Contracts: 1, TrailingTrigger: optional.Some(5.0)},
		{Offset: 30, Contracts: 1},
	}
	suite.load(config)

	trade, err := suite.strategy.OpenTrade(types.DirectionLong, suite.bar(0, 99, 101, 98, 100))
	suite.Require().NoError(err)

	suite.Require().NoError(suite.strategy.CheckOpenPosition(suite.bar(1, 100, 111, 100, 108)))
	suite.Equal(85.0, trade.StopLoss.Price)
}

func (suite *StrategyTestSuite) TestTrailToHalfStop() {
	config := testConfig()
	config.TrailStopToHalfStop = true
	config.ProfitTargets = []types.ProfitTargetConfig{{Offset: 10, Contracts: 1}, {Offset: 30, Contracts: 1}}
	suite.load(config)

	long, err := suite.strategy.OpenTrade(types.DirectionLong, suite.bar(0, 99, 101, 98, 100))
	suite.Require().NoError(err)
	suite.Require().NoError(suite.strategy.CheckOpenPosition(suite.bar(1, 100, 111, 100, 108)))
	suite.Equal(90.0, long.StopLoss.Price)

	suite.Require().NoError(suite.strategy.FlattenOpenPosition(suite.bar(2, 108, 109, 107, 108)))

	short, err := suite.strategy.OpenTrade(types.DirectionShort, suite.bar(3, 101, 102, 99, 100))
	suite.Require().NoError(err)
	suite.Require().NoError(suite.strategy.CheckOpenPosition(suite.bar(4, 95, 96, 89, 92)))
	suite.Equal(110.0, short.StopLoss.Price)
}

func (suite *StrategyTestSuite) TestNoTrailingRule() {
	config := testConfig()
	config.ProfitTargets = []types.ProfitTargetConfig{{Offset: 10, Contracts: 1}, {Offset: 30, Contracts: 1}}
	suite.load(config)

	trade, err := suite.strategy.OpenTrade(types.DirectionLong, suite.bar(0, 99, 101, 98, 100))
	suite.Require().NoError(err)
	suite.Require().NoError(suite.strategy.CheckOpenPosition(suite.bar(1, 100, 111, 100, 108)))
	suite.Equal(80.0, trade.StopLoss.Price)
}

func (suite *StrategyTestSuite) TestStopTrailedPastEntryIsLoss() {
	config := testConfig()
	config.InitialStopLoss = 4
	config.ProfitTargets = []types.ProfitTargetConfig{
		{Offset: 10, Contracts: 1, TrailingTrigger: optional.Some(8.0)},
		{Offset: 30, Contracts: 1},
	}
	suite.load(config)

	trade, err := suite.strategy.OpenTrade(types.DirectionLong, suite.bar(0, 99, 101, 98, 100))
	suite.Require().NoError(err)
	suite.Require().NoError(suite.strategy.CheckOpenPosition(suite.bar(1, 100, 111, 100, 108)))
	suite.Equal(104.0, trade.StopLoss.Price)

	suite.Require().NoError(suite.strategy.CheckOpenPosition(suite.bar(2, 106, 107, 103, 105)))

	suite.Equal(types.TradeOutcomeLoss, trade.Outcome)
	// 10*50*1 from the target minus |104-100|*50*1 from the stop
	suite.True(decimal.NewFromInt(300).Equal(trade.Profit), "profit %s", trade.Profit)
	suite.Equal(1, trade.RemainingContracts)
	suite.Equal(1, suite.strategy.Statistics().LosingTrades)
	suite.True(decimal.NewFromInt(-200).Equal(suite.events[2].Amount))
	suite.assertLedgerBalanced()
}

func (suite *StrategyTestSuite) TestStopTrailedToEntryInSeveralStepsIsBreakeven() {
	config := testConfig()
	config.Contracts = 3
	config.InitialStopLoss = 1.3
	config.TrailStopToHalfStop = true
	config.ProfitTargets = []types.ProfitTargetConfig{
		{Offset: 1, Contracts: 1},
		{Offset: 2, Contracts: 1},
		{Offset: 5, Contracts: 1},
	}
	suite.load(config)

	trade, err := suite.strategy.OpenTrade(types.DirectionLong, suite.bar(0, 4500, 4500.5, 4499.8, 4500.3))
	suite.Require().NoError(err)
	suite.Equal(4499.0, trade.StopLoss.Price)
	suite.Equal(4501.3, trade.ProfitTargets[0].Price)

	suite.Require().NoError(suite.strategy.CheckOpenPosition(suite.bar(1, 4500.3, 4502.5, 4500.3, 4502)))
	suite.Equal(trade.EntryPrice, trade.StopLoss.Price)

	suite.Require().NoError(suite.strategy.CheckOpenPosition(suite.bar(2, 4502, 4502.25, 4500, 4500.25)))

	suite.Equal(types.TradeOutcomeBreakeven, trade.Outcome)
	// (1+2)*50 from the two targets, nothing from the stop
	suite.True(decimal.NewFromInt(150).Equal(trade.Profit), "profit %s", trade.Profit)
	suite.Equal(1, suite.strategy.Statistics().BreakevenTrades)
	suite.Equal(0, suite.strategy.Statistics().LosingTrades)
	suite.assertLedgerBalanced()
}

func (suite *StrategyTestSuite) TestShortTrailedStopLossIsExact() {
	config := testConfig()
	config.InitialStopLoss = 0.7
	config.ProfitTargets = []types.ProfitTargetConfig{
		{Offset: 0.3, Contracts: 1, TrailingTrigger: optional.Some(0.3)},
		{Offset: 3, Contracts: 1, TrailingTrigger: optional.Some(0.4)},
	}
	suite.load(config)

	trade, err := suite.strategy.OpenTrade(types.DirectionShort, suite.bar(0, 100.2, 100.3, 100, 100.1))
	suite.Require().NoError(err)
	suite.Equal(100.8, trade.StopLoss.Price)

	suite.Require().NoError(suite.strategy.CheckOpenPosition(suite.bar(1, 100.1, 100.1, 99.8, 99.9)))
	suite.Equal(100.5, trade.StopLoss.Price)

	suite.Require().NoError(suite.strategy.CheckOpenPosition(suite.bar(2, 99.9, 100.6, 99.9, 100.2)))

	suite.Equal(types.TradeOutcomeLoss, trade.Outcome)
	// 0.3*50 from the target minus 0.4*50 from the stop
	suite.True(decimal.NewFromInt(-5).Equal(trade.Profit), "profit %s", trade.Profit)
}

func (suite *StrategyTestSuite) TestSeveralTargetsOnOneCandle() {
	config := testConfig()
	config.Contracts = 3
	config.ProfitTargets = []types.ProfitTargetConfig{
		{Offset: 5, Contracts: 1},
		{Offset: 10, Contracts: 1},
		{Offset: 15, Contracts: 1},
	}
	suite.load(config)

	trade, err := suite.strategy.OpenTrade(types.DirectionLong, suite.bar(0, 99, 101, 98, 100))
	suite.Require().NoError(err)
	suite.Require().NoError(suite.strategy.CheckOpenPosition(suite.bar(1, 100, 116, 100, 112)))

	suite.Equal(types.TradeOutcomeWin, trade.Outcome)
	suite.Equal(115.0, trade.ExitPrice)
	// (5+10+15)*50
	suite.True(decimal.NewFromInt(1500).Equal(trade.Profit))
	suite.Equal([]types.EventType{
		types.EventTradeCreated,
		types.EventProfitTargetHit,
		types.EventProfitTargetHit,
		types.EventProfitTargetHit,
		types.EventTradeClosed,
	}, suite.eventTypes())
}

func (suite *StrategyTestSuite) TestFlattenOpenPosition() {
	suite.load(testConfig())

	trade, err := suite.strategy.OpenTrade(types.DirectionLong, suite.bar(0, 99, 101, 98, 100))
	suite.Require().NoError(err)

	suite.Require().NoError(suite.strategy.FlattenOpenPosition(suite.bar(1, 104, 106, 103, 105)))

	suite.Equal(types.TradeOutcomeStoppedOut, trade.Outcome)
	suite.True(decimal.NewFromInt(500).Equal(trade.Profit))
	suite.Equal(105.0, trade.ExitPrice)
	suite.False(trade.StopLoss.IsOpen())
	suite.Equal(trade.ClosedAt, trade.StopLoss.ClosedAt)
	suite.Empty(trade.OpenTargets())
	suite.Equal(2, trade.RemainingContracts)
	suite.Equal(types.StrategyStatusOutOfMarket, suite.strategy.Status())
	suite.Equal(1, suite.strategy.Statistics().StoppedOutTrades)
	suite.assertLedgerBalanced()
}

func (suite *StrategyTestSuite) TestGuards() {
	suite.load(testConfig())

	err := suite.strategy.CheckOpenPosition(suite.bar(0, 1, 1, 1, 1))
	suite.True(errors.HasCode(err, errors.ErrCodePositionNotFound))

	err = suite.strategy.FlattenOpenPosition(suite.bar(0, 1, 1, 1, 1))
	suite.True(errors.HasCode(err, errors.ErrCodePositionNotFound))

	_, err = suite.strategy.OpenTrade(types.DirectionLong, suite.bar(0, 99, 101, 98, 100))
	suite.Require().NoError(err)

	_, err = suite.strategy.OpenTrade(types.DirectionShort, suite.bar(1, 99, 101, 98, 100))
	suite.True(errors.HasCode(err, errors.ErrCodePositionOpen))
	suite.Len(suite.strategy.Trades(), 1)
}

func (suite *StrategyTestSuite) TestOpenWithoutConfiguration() {
	_, err := suite.strategy.OpenTrade(types.DirectionLong, suite.bar(0, 99, 101, 98, 100))
	suite.True(errors.HasCode(err, errors.ErrCodeStrategyNotLoaded))
}

func (suite *StrategyTestSuite) TestLoadConfigurationRejectsInvalid() {
	config := testConfig()
	config.Contracts = 5

	err := suite.strategy.LoadConfiguration(config)
	suite.True(errors.HasCode(err, errors.ErrCodeStrategyConfigError))
}

func (suite *StrategyTestSuite) TestLoadConfigurationDefaultsTicksPerPoint() {
	suite.load(testConfig())
	suite.Equal(types.DefaultTicksPerPoint, suite.strategy.Config().TicksPerPoint)
}

func (suite *StrategyTestSuite) TestLoadConfigurationResetsState() {
	suite.load(testConfig())

	_, err := suite.strategy.OpenTrade(types.DirectionLong, suite.bar(0, 99, 101, 98, 100))
	suite.Require().NoError(err)
	suite.Require().NoError(suite.strategy.CheckOpenPosition(suite.bar(1, 95, 96, 79, 85)))

	config := testConfig()
	config.StartingBalance = 5000
	suite.load(config)

	suite.Empty(suite.strategy.Trades())
	suite.True(decimal.NewFromInt(5000).Equal(suite.strategy.Balance()))
	suite.Equal(0, suite.strategy.Statistics().TotalTrades())
	suite.Equal(types.StrategyStatusOutOfMarket, suite.strategy.Status())
	_, ok := suite.strategy.ActiveTrade()
	suite.False(ok)
}

func (suite *StrategyTestSuite) TestCanEnter() {
	config := testConfig()
	config.MaxTradesPerSession = 1
	config.StopTradingAfterWinning = true
	suite.load(config)
	suite.strategy.ResetSession()

	early := types.Candle{Time: suite.day.Add(9*time.Hour + 15*time.Minute)}
	late := types.Candle{Time: suite.day.Add(15*time.Hour + 30*time.Minute)}
	suite.False(suite.strategy.CanEnter(early))
	suite.False(suite.strategy.CanEnter(late))
	suite.True(suite.strategy.CanEnter(suite.bar(0, 0, 0, 0, 0)))

	_, err := suite.strategy.OpenTrade(types.DirectionLong, suite.bar(0, 99, 101, 98, 100))
	suite.Require().NoError(err)
	suite.False(suite.strategy.CanEnter(suite.bar(1, 0, 0, 0, 0)))

	suite.Require().NoError(suite.strategy.CheckOpenPosition(suite.bar(1, 100, 125, 99, 110)))
	suite.Equal(1, suite.strategy.SessionTradeCount())
	suite.False(suite.strategy.CanEnter(suite.bar(2, 0, 0, 0, 0)))

	suite.strategy.ResetSession()
	suite.Equal(0, suite.strategy.SessionTradeCount())
	suite.False(suite.strategy.SessionWon())
	suite.True(suite.strategy.CanEnter(suite.bar(2, 0, 0, 0, 0)))
}

func (suite *StrategyTestSuite) TestStopTradingAfterWinning() {
	config := testConfig()
	config.StopTradingAfterWinning = true
	suite.load(config)
	suite.strategy.ResetSession()

	// a loss leaves the session open for another entry
	_, err := suite.strategy.OpenTrade(types.DirectionLong, suite.bar(0, 99, 101, 98, 100))
	suite.Require().NoError(err)
	suite.Require().NoError(suite.strategy.CheckOpenPosition(suite.bar(1, 95, 96, 79, 85)))
	suite.False(suite.strategy.SessionWon())
	suite.True(suite.strategy.CanEnter(suite.bar(2, 0, 0, 0, 0)))

	// a win blocks the session while the cap of 3 still has room
	_, err = suite.strategy.OpenTrade(types.DirectionLong, suite.bar(2, 99, 101, 98, 100))
	suite.Require().NoError(err)
	suite.Require().NoError(suite.strategy.CheckOpenPosition(suite.bar(3, 100, 125, 99, 110)))
	suite.Equal(2, suite.strategy.SessionTradeCount())
	suite.True(suite.strategy.SessionWon())
	suite.False(suite.strategy.CanEnter(suite.bar(4, 0, 0, 0, 0)))

	suite.strategy.ResetSession()
	suite.True(suite.strategy.CanEnter(suite.bar(4, 0, 0, 0, 0)))
}

func (suite *StrategyTestSuite) TestWinDoesNotBlockWithoutStopTradingAfterWinning() {
	suite.load(testConfig())
	suite.strategy.ResetSession()

	_, err := suite.strategy.OpenTrade(types.DirectionLong, suite.bar(0, 99, 101, 98, 100))
	suite.Require().NoError(err)
	suite.Require().NoError(suite.strategy.CheckOpenPosition(suite.bar(1, 100, 125, 99, 110)))
	suite.True(suite.strategy.SessionWon())
	suite.True(suite.strategy.CanEnter(suite.bar(2, 0, 0, 0, 0)))
}

func (suite *StrategyTestSuite) TestEntryPredicatesOnlyOutOfMarket() {
	suite.load(testConfig())
	suite.policy.EXPECT().LongEntry(gomock.Any()).Return(true).Times(1)
	suite.policy.EXPECT().ShortEntry(gomock.Any()).Return(true).Times(1)

	suite.True(suite.strategy.LongEntry(suite.bar(0, 0, 0, 0, 0)))
	suite.True(suite.strategy.ShortEntry(suite.bar(0, 0, 0, 0, 0)))

	_, err := suite.strategy.OpenTrade(types.DirectionLong, suite.bar(0, 99, 101, 98, 100))
	suite.Require().NoError(err)

	// The policy is not asked again while in the market.
	suite.False(suite.strategy.LongEntry(suite.bar(1, 0, 0, 0, 0)))
	suite.False(suite.strategy.ShortEntry(suite.bar(1, 0, 0, 0, 0)))
}

func (suite *StrategyTestSuite) TestLoadCandles() {
	config := testConfig()
	config.Timeframe = 3
	suite.load(config)

	var candles []types.Candle
	for i := 0; i < 12; i++ {
		// 09:24 .. 09:35 on two days
		candles = append(candles, types.Candle{Time: suite.day.Add(9*time.Hour + time.Duration(24+i)*time.Minute), Close: float64(i)})
	}

	for i := 0; i < 6; i++ {
		candles = append(candles, types.Candle{Time: suite.day.AddDate(0, 0, 1).Add(9*time.Hour + time.Duration(30+i)*time.Minute), Close: float64(i)})
	}

	suite.Require().NoError(suite.strategy.LoadCandles(candles))

	suite.Len(suite.strategy.Candles(), 6)
	suite.Equal([]string{"2024-03-04", "2024-03-05"}, suite.strategy.Sessions().Keys())

	first, _ := suite.strategy.Sessions().Get("2024-03-04")
	// 09:24 and 09:27 bars fall before the window start.
	suite.Len(first.Candles, 2)
	suite.Equal(9, first.Candles[0].Time.Hour())
	suite.Equal(30, first.Candles[0].Time.Minute())

	suite.policy.EXPECT().LoadIndicators(gomock.Any(), gomock.Len(6)).Return(nil)
	suite.Require().NoError(suite.strategy.LoadIndicators(context.Background()))
}

func (suite *StrategyTestSuite) TestLoadCandlesErrors() {
	suite.True(errors.HasCode(suite.strategy.LoadCandles([]types.Candle{{}}), errors.ErrCodeStrategyNotLoaded))

	suite.load(testConfig())
	suite.True(errors.HasCode(suite.strategy.LoadCandles(nil), errors.ErrCodeNoCandles))
}

func (suite *StrategyTestSuite) TestLoadIndicatorsError() {
	suite.load(testConfig())
	suite.policy.EXPECT().LoadIndicators(gomock.Any(), gomock.Any()).Return(stderrors.New("boom"))

	err := suite.strategy.LoadIndicators(context.Background())
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorCalculation))
}

func (suite *StrategyTestSuite) TestObserverFilterAndUnsubscribe() {
	suite.load(testConfig())

	var closed []types.Event
	id := suite.strategy.Subscribe(func(event types.Event) error {
		closed = append(closed, event)

		return nil
	}, types.EventTradeClosed)

	_, err := suite.strategy.OpenTrade(types.DirectionLong, suite.bar(0, 99, 101, 98, 100))
	suite.Require().NoError(err)
	suite.Require().NoError(suite.strategy.CheckOpenPosition(suite.bar(1, 95, 96, 79, 85)))
	suite.Len(closed, 1)

	suite.True(suite.strategy.Unsubscribe(id))
	suite.False(suite.strategy.Unsubscribe(id))

	_, err = suite.strategy.OpenTrade(types.DirectionLong, suite.bar(2, 99, 101, 98, 100))
	suite.Require().NoError(err)
	suite.Require().NoError(suite.strategy.CheckOpenPosition(suite.bar(3, 95, 96, 79, 85)))
	suite.Len(closed, 1)
}

func (suite *StrategyTestSuite) TestObserverErrorKeepsStateConsistent() {
	suite.load(testConfig())
	suite.strategy.Subscribe(func(types.Event) error { return stderrors.New("sink closed") }, types.EventTradeClosed)

	trade, err := suite.strategy.OpenTrade(types.DirectionLong, suite.bar(0, 99, 101, 98, 100))
	suite.Require().NoError(err)

	err = suite.strategy.CheckOpenPosition(suite.bar(1, 95, 96, 79, 85))
	suite.True(errors.HasCode(err, errors.ErrCodeCallbackFailed))
	suite.Equal(types.TradeOutcomeLoss, trade.Outcome)
	suite.Equal(types.StrategyStatusOutOfMarket, suite.strategy.Status())
	suite.assertLedgerBalanced()
}

func (suite *StrategyTestSuite) TestClosingTradeResetsPolicyFlags() {
	ctrl := gomock.NewController(suite.T())
	policy := mocks.NewMockPolicy(ctrl)
	policy.EXPECT().Name().Return("mock").AnyTimes()
	policy.EXPECT().ResetSession().Times(1)

	strategy := NewStrategy(policy, nil)
	suite.Require().NoError(strategy.LoadConfiguration(testConfig()))

	_, err := strategy.OpenTrade(types.DirectionLong, suite.bar(0, 99, 101, 98, 100))
	suite.Require().NoError(err)
	suite.Require().NoError(strategy.CheckOpenPosition(suite.bar(1, 95, 96, 79, 85)))
}
