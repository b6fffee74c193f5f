package indicator

import (
	"context"
	"sync"
	"time"

	"github.com/rxtech-lab/athena-backtest/internal/types"
	"github.com/rxtech-lab/athena-backtest/pkg/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// EmaPoint is the EMA value at the time of one input candle.
type EmaPoint struct {
	Time  time.Time `yaml:"time" json:"time" csv:"time"`
	Value float64   `yaml:"value" json:"value" csv:"value"`
}

var two = decimal.NewFromInt(2)

// CalculateEMA returns one point per candle, in input order.
//
// multiplier = 2 / (period + 1). The first value is the first close. Each next value is
// multiplier*close + (1-multiplier)*previous. The recursion keeps full precision and
// every later value is rounded half to even to 2 decimal places when emitted.
func CalculateEMA(candles []types.Candle, period int) ([]EmaPoint, error) {
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	points := make([]EmaPoint, len(candles))
	multiplier := two.Div(decimal.NewFromInt(int64(period) + 1))
	keep := decimal.NewFromInt(1).Sub(multiplier)

	var result decimal.Decimal

	for i, candle := range candles {
		price := decimal.NewFromFloat(candle.Close)
		if i == 0 {
			result = price
			points[i] = EmaPoint{Time: candle.Time, Value: candle.Close}

			continue
		}

		result = multiplier.Mul(price).Add(keep.Mul(result))

		points[i] = EmaPoint{
			Time:  candle.Time,
			Value: result.RoundBank(2).InexactFloat64(),
		}
	}

	return points, nil
}

// CalculateMany computes several EMA periods over the same candles concurrently.
func CalculateMany(ctx context.Context, candles []types.Candle, periods ...int) (map[int]*Series, error) {
	group, _ := errgroup.WithContext(ctx)

	var mu sync.Mutex

	out := make(map[int]*Series, len(periods))

	for _, period := range periods {
		group.Go(func() error {
			points, err := CalculateEMA(candles, period)
			if err != nil {
				return errors.Wrapf(errors.ErrCodeIndicatorCalculation, err, "failed to calculate EMA(%d)", period)
			}

			series := NewSeries(points)

			mu.Lock()
			out[period] = series
			mu.Unlock()

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

// Series indexes EMA points by candle time.
type Series struct {
	points []EmaPoint
	byTime map[int64]int
}

func NewSeries(points []EmaPoint) *Series {
	byTime := make(map[int64]int, len(points))
	for i, point := range points {
		byTime[point.Time.Unix()] = i
	}

	return &Series{points: points, byTime: byTime}
}

// At returns the value computed for the candle at t.
func (s *Series) At(t time.Time) (float64, bool) {
	if s == nil {
		return 0, false
	}

	i, ok := s.byTime[t.Unix()]
	if !ok {
		return 0, false
	}

	return s.points[i].Value, true
}

func (s *Series) Points() []EmaPoint {
	if s == nil {
		return nil
	}

	return s.points
}

func (s *Series) Len() int {
	if s == nil {
		return 0
	}

	return len(s.points)
}
