package types

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/athena-backtest/pkg/errors"
	"github.com/shopspring/decimal"
)

type TradeOutcome string

const (
	TradeOutcomePending    TradeOutcome = "PENDING"
	TradeOutcomeWin        TradeOutcome = "WIN"
	TradeOutcomeLoss       TradeOutcome = "LOSS"
	TradeOutcomeBreakeven  TradeOutcome = "BREAKEVEN"
	TradeOutcomeStoppedOut TradeOutcome = "STOPPED_OUT"
)

// Trade is one position from entry until its outcome is decided.
type Trade struct {
	ID               string    `yaml:"id" json:"id" csv:"id"`
	Direction        Direction `yaml:"direction" json:"direction" csv:"direction"`
	EntryPrice       float64   `yaml:"entry_price" json:"entry_price" csv:"entry_price"`
	InitialContracts int       `yaml:"initial_contracts" json:"initial_contracts" csv:"initial_contracts"`
	// RemainingContracts counts contracts not yet taken off by a profit target.
	RemainingContracts int                        `yaml:"remaining_contracts" json:"remaining_contracts" csv:"remaining_contracts"`
	OpenedAt           time.Time                  `yaml:"opened_at" json:"opened_at" csv:"opened_at"`
	ClosedAt           optional.Option[time.Time] `yaml:"closed_at" json:"closed_at" csv:"closed_at"`
	// ExitPrice is the price of the fill that finalized the trade.
	ExitPrice float64         `yaml:"exit_price" json:"exit_price" csv:"exit_price"`
	Outcome   TradeOutcome    `yaml:"outcome" json:"outcome" csv:"outcome"`
	Profit    decimal.Decimal `yaml:"profit" json:"profit" csv:"profit"`
	StopLoss  *Order          `yaml:"stop_loss" json:"stop_loss" csv:"-"`
	// ProfitTargets are checked in this order on every candle.
	ProfitTargets []*Order `yaml:"profit_targets" json:"profit_targets" csv:"-"`
	// Session is the date key of the session the trade was opened in.
	Session string `yaml:"session" json:"session" csv:"session"`
}

func (t *Trade) IsPending() bool {
	return t.Outcome == TradeOutcomePending
}

// TargetContracts is the sum of contracts across all profit targets.
func (t *Trade) TargetContracts() int {
	total := 0
	for _, target := range t.ProfitTargets {
		total += target.Contracts
	}

	return total
}

// OpenTargets returns the targets that have not filled yet, in check order.
func (t *Trade) OpenTargets() []*Order {
	open := make([]*Order, 0, len(t.ProfitTargets))

	for _, target := range t.ProfitTargets {
		if target.IsOpen() {
			open = append(open, target)
		}
	}

	return open
}

// AddProfit accumulates realized profit (or loss, when negative) on the trade.
func (t *Trade) AddProfit(amount decimal.Decimal) error {
	if !t.IsPending() {
		return errors.Newf(errors.ErrCodeTradeNotPending, "trade %s is already %s", t.ID, t.Outcome)
	}

	t.Profit = t.Profit.Add(amount)

	return nil
}

// TakeContracts removes filled target contracts from the open size.
func (t *Trade) TakeContracts(contracts int) error {
	if !t.IsPending() {
		return errors.Newf(errors.ErrCodeTradeNotPending, "trade %s is already %s", t.ID, t.Outcome)
	}

	if contracts < 0 {
		return errors.Newf(errors.ErrCodeInvalidTradeSetup, "cannot take %d contracts", contracts)
	}

	t.RemainingContracts -= contracts

	return nil
}

// Finalize sets the terminal outcome. It fails when the trade is not pending.
func (t *Trade) Finalize(outcome TradeOutcome, at time.Time, exitPrice float64) error {
	if !t.IsPending() {
		return errors.Newf(errors.ErrCodeTradeNotPending, "trade %s is already %s", t.ID, t.Outcome)
	}

	if outcome == TradeOutcomePending {
		return errors.New(errors.ErrCodeInvalidTradeSetup, "a trade cannot be finalized as pending")
	}

	t.Outcome = outcome
	t.ClosedAt = optional.Some(at)
	t.ExitPrice = exitPrice

	return nil
}

// Validate checks the trade was created with targets that cover its full size.
func (t *Trade) Validate() error {
	if t.StopLoss == nil {
		return errors.Newf(errors.ErrCodeInvalidTradeSetup, "trade %s has no stop loss", t.ID)
	}

	if len(t.ProfitTargets) == 0 {
		return errors.Newf(errors.ErrCodeInvalidTradeSetup, "trade %s has no profit targets", t.ID)
	}

	if t.TargetContracts() != t.InitialContracts {
		return errors.Newf(errors.ErrCodeInvalidTradeSetup,
			"profit targets of trade %s cover %d contracts, expected %d", t.ID, t.TargetContracts(), t.InitialContracts)
	}

	return nil
}
