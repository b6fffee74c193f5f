package strategy

import (
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/athena-backtest/internal/types"
	"github.com/rxtech-lab/athena-backtest/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OpenTrade enters at the candle close with the configured stop and profit targets.
func (s *Strategy) OpenTrade(direction types.Direction, c types.Candle) (*types.Trade, error) {
	if !s.configured {
		return nil, errors.New(errors.ErrCodeStrategyNotLoaded, "no configuration loaded")
	}

	if s.active != nil {
		return nil, errors.Newf(errors.ErrCodePositionOpen, "trade %s is still pending", s.active.ID)
	}

	sign := direction.Sign()
	entry := c.Close

	trade := &types.Trade{
		ID:                 uuid.New().String(),
		Direction:          direction,
		EntryPrice:         entry,
		InitialContracts:   s.config.Contracts,
		RemainingContracts: s.config.Contracts,
		OpenedAt:           c.Time,
		ClosedAt:           optional.None[time.Time](),
		Outcome:            types.TradeOutcomePending,
		Profit:             decimal.Zero,
		Session:            c.SessionKey(),
		StopLoss: &types.Order{
			ID:              uuid.New().String(),
			Kind:            types.OrderKindStopLoss,
			Direction:       direction,
			Price:           movePrice(entry, -sign, decimal.NewFromFloat(s.config.InitialStopLoss)),
			Contracts:       s.config.Contracts,
			OpenedAt:        c.Time,
			ClosedAt:        optional.None[time.Time](),
			TrailingTrigger: optional.None[float64](),
		},
	}

	for _, target := range s.config.ProfitTargets {
		trade.ProfitTargets = append(trade.ProfitTargets, &types.Order{
			ID:              uuid.New().String(),
			Kind:            types.OrderKindProfitTarget,
			Direction:       direction,
			Price:           movePrice(entry, sign, decimal.NewFromFloat(target.Offset)),
			Contracts:       target.Contracts,
			OpenedAt:        c.Time,
			ClosedAt:        optional.None[time.Time](),
			TrailingTrigger: target.TrailingTrigger,
		})
	}

	if err := trade.Validate(); err != nil {
		return nil, err
	}

	s.trades = append(s.trades, trade)
	s.active = trade
	s.status = types.StrategyStatusInMarket
	s.sessionTrades++

	s.log.Debug("Trade opened",
		zap.String("trade_id", trade.ID),
		zap.String("direction", string(direction)),
		zap.Float64("entry", entry),
		zap.Float64("stop", trade.StopLoss.Price),
		zap.Time("time", c.Time),
	)

	return trade, s.observers.publish(types.Event{
		Type:    types.EventTradeCreated,
		Time:    c.Time,
		Trade:   trade,
		Amount:  decimal.Zero,
		Balance: s.ledger.Balance(),
	})
}

// CheckOpenPosition runs the stop check and then the profit target checks for the candle.
func (s *Strategy) CheckOpenPosition(c types.Candle) error {
	trade := s.active
	if trade == nil {
		return errors.New(errors.ErrCodePositionNotFound, "no open position to check")
	}

	if !trade.IsPending() {
		return errors.Newf(errors.ErrCodeTradeNotPending, "trade %s is already %s", trade.ID, trade.Outcome)
	}

	if trade.StopLoss.FilledBy(c) {
		return s.stopOut(trade, c)
	}

	return s.fillTargets(trade, c)
}

func (s *Strategy) stopOut(trade *types.Trade, c types.Candle) error {
	stop := trade.StopLoss

	// Any stop fill away from the entry is booked as a loss of the distance, on either side.
	distance := decimal.NewFromFloat(stop.Price).Sub(decimal.NewFromFloat(trade.EntryPrice)).Abs()

	outcome := types.TradeOutcomeBreakeven
	amount := decimal.Zero

	if !distance.IsZero() {
		outcome = types.TradeOutcomeLoss
		amount = s.pointsToMoney(distance, trade.RemainingContracts).Neg()
	}

	if err := stop.Close(c.Time); err != nil {
		return err
	}

	if err := trade.AddProfit(amount); err != nil {
		return err
	}

	balance := s.ledger.Apply(amount)

	if err := trade.Finalize(outcome, c.Time, stop.Price); err != nil {
		return err
	}

	s.log.Debug("Stop loss hit",
		zap.String("trade_id", trade.ID),
		zap.Float64("stop", stop.Price),
		zap.String("amount", amount.String()),
		zap.String("outcome", string(outcome)),
	)

	stopErr := s.observers.publish(types.Event{
		Type:    types.EventStopLossHit,
		Time:    c.Time,
		Trade:   trade,
		Order:   stop,
		Amount:  amount,
		Balance: balance,
	})

	return errors.Join(stopErr, s.closeTrade(trade, c))
}

func (s *Strategy) fillTargets(trade *types.Trade, c types.Candle) error {
	var (
		errs      []error
		lastPrice float64
	)

	for _, target := range trade.OpenTargets() {
		if !target.FilledBy(c) {
			continue
		}

		profit := s.pointsToMoney(
			decimal.NewFromFloat(target.Price).Sub(decimal.NewFromFloat(trade.EntryPrice)).Abs(),
			target.Contracts,
		)

		if err := trade.TakeContracts(target.Contracts); err != nil {
			return err
		}

		if err := trade.AddProfit(profit); err != nil {
			return err
		}

		balance := s.ledger.Apply(profit)

		if err := target.Close(c.Time); err != nil {
			return err
		}

		s.trailStop(trade, target)
		lastPrice = target.Price

		s.log.Debug("Profit target hit",
			zap.String("trade_id", trade.ID),
			zap.Float64("target", target.Price),
			zap.Int("remaining", trade.RemainingContracts),
			zap.String("profit", profit.String()),
		)

		errs = append(errs, s.observers.publish(types.Event{
			Type:    types.EventProfitTargetHit,
			Time:    c.Time,
			Trade:   trade,
			Order:   target,
			Amount:  profit,
			Balance: balance,
		}))
	}

	if trade.RemainingContracts <= 0 {
		if err := trade.Finalize(types.TradeOutcomeWin, c.Time, lastPrice); err != nil {
			return err
		}

		errs = append(errs, s.closeTrade(trade, c))
	}

	return errors.Join(errs...)
}

// trailStop moves the stop after a target fill. The first matching rule wins:
// the target's own trigger, then trail to breakeven, then trail by half the initial stop.
func (s *Strategy) trailStop(trade *types.Trade, target *types.Order) {
	stop := trade.StopLoss
	sign := trade.Direction.Sign()
	before := stop.Price

	switch {
	case target.TrailingTrigger.IsSome():
		stop.Price = movePrice(stop.Price, sign, decimal.NewFromFloat(target.TrailingTrigger.Unwrap()))
	case s.config.TrailStopToBreakeven:
		stop.Price = trade.EntryPrice
	case s.config.TrailStopToHalfStop:
		stop.Price = movePrice(stop.Price, sign, decimal.NewFromFloat(s.config.InitialStopLoss).Div(decimal.NewFromInt(2)))
	default:
		return
	}

	s.log.Debug("Stop trailed",
		zap.String("trade_id", trade.ID),
		zap.Float64("from", before),
		zap.Float64("to", stop.Price),
	)
}

// FlattenOpenPosition exits the pending trade at the candle close.
// It is used when a session ends with a trade still open.
func (s *Strategy) FlattenOpenPosition(c types.Candle) error {
	trade := s.active
	if trade == nil {
		return errors.New(errors.ErrCodePositionNotFound, "no open position to flatten")
	}

	move := decimal.NewFromFloat(c.Close).Sub(decimal.NewFromFloat(trade.EntryPrice)).
		Mul(decimal.NewFromFloat(trade.Direction.Sign()))
	amount := s.pointsToMoney(move, trade.RemainingContracts)

	if err := trade.AddProfit(amount); err != nil {
		return err
	}

	s.ledger.Apply(amount)

	// the stop and unfilled targets are cancelled with the flatten
	for _, order := range append([]*types.Order{trade.StopLoss}, trade.OpenTargets()...) {
		if !order.IsOpen() {
			continue
		}

		if err := order.Close(c.Time); err != nil {
			return err
		}
	}

	if err := trade.Finalize(types.TradeOutcomeStoppedOut, c.Time, c.Close); err != nil {
		return err
	}

	s.log.Debug("Trade flattened at session end",
		zap.String("trade_id", trade.ID),
		zap.Float64("price", c.Close),
		zap.String("amount", amount.String()),
	)

	return s.closeTrade(trade, c)
}

// closeTrade moves the strategy out of the market once the trade has its final outcome.
func (s *Strategy) closeTrade(trade *types.Trade, c types.Candle) error {
	s.ledger.Record(trade.Outcome)
	s.active = nil
	s.status = types.StrategyStatusOutOfMarket

	if trade.Outcome == types.TradeOutcomeWin {
		s.sessionWon = true
	}

	s.policy.ResetSession()

	return s.observers.publish(types.Event{
		Type:    types.EventTradeClosed,
		Time:    c.Time,
		Trade:   trade,
		Amount:  trade.Profit,
		Balance: s.ledger.Balance(),
	})
}

// movePrice shifts price by points in the given direction. The sum is taken in decimal
// so a stop trailed in several steps lands exactly on the entry price.
func movePrice(price float64, sign float64, points decimal.Decimal) float64 {
	return decimal.NewFromFloat(price).Add(points.Mul(decimal.NewFromFloat(sign))).InexactFloat64()
}

func (s *Strategy) pointsToMoney(points decimal.Decimal, contracts int) decimal.Decimal {
	return points.Mul(s.pointValue).Mul(decimal.NewFromInt(int64(contracts)))
}
