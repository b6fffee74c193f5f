package strategy

import (
	"github.com/rxtech-lab/athena-backtest/internal/types"
	"github.com/shopspring/decimal"
)

// Ledger owns the account balance and the realized statistics.
// Every change goes through Apply so that balance == initial + total profit + total losses.
type Ledger struct {
	initial decimal.Decimal
	balance decimal.Decimal
	stats   types.Statistics
}

func NewLedger(initial decimal.Decimal) *Ledger {
	return &Ledger{
		initial: initial,
		balance: initial,
		stats: types.Statistics{
			TotalProfit: decimal.Zero,
			TotalLosses: decimal.Zero,
		},
	}
}

// Apply books a realized amount and returns the new balance.
func (l *Ledger) Apply(amount decimal.Decimal) decimal.Decimal {
	l.balance = l.balance.Add(amount)

	switch amount.Sign() {
	case 1:
		l.stats.TotalProfit = l.stats.TotalProfit.Add(amount)
	case -1:
		l.stats.TotalLosses = l.stats.TotalLosses.Add(amount)
	}

	return l.balance
}

// Record counts the outcome of a finalized trade.
func (l *Ledger) Record(outcome types.TradeOutcome) {
	l.stats.Record(outcome)
}

func (l *Ledger) Balance() decimal.Decimal {
	return l.balance
}

func (l *Ledger) Initial() decimal.Decimal {
	return l.initial
}

func (l *Ledger) Statistics() types.Statistics {
	return l.stats
}

// Gain is the balance change since the start of the run.
func (l *Ledger) Gain() decimal.Decimal {
	return l.balance.Sub(l.initial)
}

// GainPercent is Gain relative to the starting balance, 0 when the start is 0.
func (l *Ledger) GainPercent() decimal.Decimal {
	if l.initial.IsZero() {
		return decimal.Zero
	}

	return l.Gain().Div(l.initial).Mul(decimal.NewFromInt(100))
}
