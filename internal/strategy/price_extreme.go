package strategy

import (
	"context"

	"github.com/rxtech-lab/athena-backtest/internal/indicator"
	"github.com/rxtech-lab/athena-backtest/internal/types"
	"github.com/shopspring/decimal"
)

const (
	PriceExtremePolicyName = "price-extreme"

	DefaultExtremeEmaPeriod = 20
	// DefaultExtremeThreshold is the deviation from the EMA, in percent, that counts as an extreme.
	DefaultExtremeThreshold = 0.25
)

var hundred = decimal.NewFromInt(100)

// PriceExtremePolicy trades against a bar whose extreme stretches far from the EMA.
// A long is taken when the low sits at least Threshold percent below the EMA,
// a short when the high sits at least Threshold percent above it.
type PriceExtremePolicy struct {
	EmaPeriod int
	Threshold float64

	ema *indicator.Series
}

func NewPriceExtremePolicy() *PriceExtremePolicy {
	return &PriceExtremePolicy{
		EmaPeriod: DefaultExtremeEmaPeriod,
		Threshold: DefaultExtremeThreshold,
	}
}

func (p *PriceExtremePolicy) Name() string {
	return PriceExtremePolicyName
}

func (p *PriceExtremePolicy) LoadIndicators(ctx context.Context, candles []types.Candle) error {
	series, err := indicator.CalculateMany(ctx, candles, p.EmaPeriod)
	if err != nil {
		return err
	}

	p.ema = series[p.EmaPeriod]

	return nil
}

func (p *PriceExtremePolicy) ResetSession() {}

func (p *PriceExtremePolicy) LongEntry(candle types.Candle) bool {
	change, ok := emaDeviation(p.ema, candle)

	return ok && change <= -p.Threshold
}

func (p *PriceExtremePolicy) ShortEntry(candle types.Candle) bool {
	change, ok := emaDeviation(p.ema, candle)

	return ok && change >= p.Threshold
}

// emaDeviation is the distance of the bar's extreme from the EMA in percent, rounded to 2 places.
// The high is used when the bar closes above the EMA, the low otherwise.
func emaDeviation(series *indicator.Series, candle types.Candle) (float64, bool) {
	value, ok := series.At(candle.Time)
	if !ok || value == 0 {
		return 0, false
	}

	ema := decimal.NewFromFloat(value)

	extreme := candle.Low
	if candle.Close > value {
		extreme = candle.High
	}

	change := decimal.NewFromFloat(extreme).Sub(ema).Div(ema).Mul(hundred).RoundBank(2)

	return change.InexactFloat64(), true
}
