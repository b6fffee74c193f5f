package strategy

import (
	"context"

	"github.com/rxtech-lab/athena-backtest/internal/indicator"
	"github.com/rxtech-lab/athena-backtest/internal/types"
)

const (
	EmaClosePolicyName = "ema-close"

	DefaultFastEmaPeriod = 10
	// DefaultEmaCloseDistance is how many points the close must clear the fast EMA by.
	DefaultEmaCloseDistance = 5.0
)

// EmaCloseAfterExtremePolicy waits for a price extreme against the slow EMA, then
// enters once the close has moved back beyond the fast EMA by CloseDistance points.
// An armed side is cleared when it fires, when a trade closes and at every session start.
type EmaCloseAfterExtremePolicy struct {
	SlowPeriod    int
	FastPeriod    int
	Threshold     float64
	CloseDistance float64

	slow *indicator.Series
	fast *indicator.Series

	longArmed  bool
	shortArmed bool
}

func NewEmaCloseAfterExtremePolicy() *EmaCloseAfterExtremePolicy {
	return &EmaCloseAfterExtremePolicy{
		SlowPeriod:    DefaultExtremeEmaPeriod,
		FastPeriod:    DefaultFastEmaPeriod,
		Threshold:     DefaultExtremeThreshold,
		CloseDistance: DefaultEmaCloseDistance,
	}
}

func (p *EmaCloseAfterExtremePolicy) Name() string {
	return EmaClosePolicyName
}

func (p *EmaCloseAfterExtremePolicy) LoadIndicators(ctx context.Context, candles []types.Candle) error {
	series, err := indicator.CalculateMany(ctx, candles, p.FastPeriod, p.SlowPeriod)
	if err != nil {
		return err
	}

	p.fast = series[p.FastPeriod]
	p.slow = series[p.SlowPeriod]

	return nil
}

func (p *EmaCloseAfterExtremePolicy) ResetSession() {
	p.longArmed = false
	p.shortArmed = false
}

func (p *EmaCloseAfterExtremePolicy) LongEntry(candle types.Candle) bool {
	change, ok := emaDeviation(p.slow, candle)
	if !ok {
		return false
	}

	if change <= -p.Threshold {
		p.longArmed = true
	}

	fast, ok := p.fast.At(candle.Time)
	if !ok || !p.longArmed {
		return false
	}

	if candle.Close-fast >= p.CloseDistance {
		p.longArmed = false

		return true
	}

	return false
}

func (p *EmaCloseAfterExtremePolicy) ShortEntry(candle types.Candle) bool {
	change, ok := emaDeviation(p.slow, candle)
	if !ok {
		return false
	}

	if change >= p.Threshold {
		p.shortArmed = true
	}

	fast, ok := p.fast.At(candle.Time)
	if !ok || !p.shortArmed {
		return false
	}

	if fast-candle.Close >= p.CloseDistance {
		p.shortArmed = false

		return true
	}

	return false
}

// Armed reports which sides are waiting for the close condition.
func (p *EmaCloseAfterExtremePolicy) Armed() (long, short bool) {
	return p.longArmed, p.shortArmed
}
