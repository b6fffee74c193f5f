package candle

import (
	"github.com/rxtech-lab/athena-backtest/internal/types"
	"github.com/rxtech-lab/athena-backtest/pkg/errors"
	"github.com/samber/lo"
)

// Aggregate rolls consecutive runs of timeframe candles into one bar.
// The last group may hold fewer candles and is still emitted.
func Aggregate(candles []types.Candle, timeframe int) ([]types.Candle, error) {
	if timeframe < 1 {
		return nil, errors.Newf(errors.ErrCodeInvalidTimeframe, "timeframe must be at least 1 minute, got %d", timeframe)
	}

	if len(candles) == 0 {
		return []types.Candle{}, nil
	}

	if timeframe == 1 {
		out := make([]types.Candle, len(candles))
		copy(out, candles)

		return out, nil
	}

	return lo.Map(lo.Chunk(candles, timeframe), func(group []types.Candle, _ int) types.Candle {
		return merge(group)
	}), nil
}

func merge(group []types.Candle) types.Candle {
	bar := types.Candle{
		Time:   group[0].Time,
		Open:   group[0].Open,
		High:   group[0].High,
		Low:    group[0].Low,
		Close:  group[len(group)-1].Close,
		Volume: lo.SumBy(group, func(c types.Candle) float64 { return c.Volume }),
	}

	for _, c := range group[1:] {
		bar.High = max(bar.High, c.High)
		bar.Low = min(bar.Low, c.Low)
	}

	return bar
}

// AggregateSessions aggregates each session on its own so that no bar spans two days.
func AggregateSessions(sessions *Sessions, timeframe int) (*Sessions, error) {
	out := NewSessions()

	for _, session := range sessions.All() {
		bars, err := Aggregate(session.Candles, timeframe)
		if err != nil {
			return nil, err
		}

		for _, bar := range bars {
			out.Add(bar)
		}
	}

	return out, nil
}
