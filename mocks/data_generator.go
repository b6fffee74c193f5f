package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/athena-backtest/internal/types"
)

// DataGenerator produces deterministic 1-minute candles for tests and benchmarks.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a generator. The same seed always yields the same candles.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

type GeneratorConfig struct {
	StartTime    time.Time
	Interval     time.Duration
	Count        int
	InitialPrice float64
	// Volatility is the typical move per bar as a fraction of price.
	Volatility float64
	// Trend is the total drift over the whole series.
	Trend          float64
	VolumeBase     float64
	VolumeVariance float64
	// TickSize rounds every price to a multiple of it. Zero disables rounding.
	TickSize float64
}

func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		StartTime:      time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC),
		Interval:       time.Minute,
		Count:          390,
		InitialPrice:   5000,
		Volatility:     0.0005,
		Trend:          0,
		VolumeBase:     1000,
		VolumeVariance: 0.3,
		TickSize:       0.25,
	}
}

// Generate follows a geometric Brownian motion so bars look like index futures.
func (g *DataGenerator) Generate(config GeneratorConfig) []types.Candle {
	candles := make([]types.Candle, config.Count)
	price := config.InitialPrice
	at := config.StartTime

	for i := 0; i < config.Count; i++ {
		open := price

		// Box-Muller
		u1 := 1 - g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		drift := config.Trend / float64(config.Count)

		closePrice := open * (1 + config.Volatility*z + drift)
		if closePrice <= 0 {
			closePrice = open * 0.99
		}

		high := math.Max(open, closePrice) + math.Abs(g.rng.Float64()*config.Volatility*open*0.5)
		low := math.Min(open, closePrice) - math.Abs(g.rng.Float64()*config.Volatility*open*0.5)

		if low <= 0 {
			low = math.Min(open, closePrice) * 0.99
		}

		volume := config.VolumeBase * (1.0 + (g.rng.Float64()*2-1)*config.VolumeVariance)
		if volume < 0 {
			volume = config.VolumeBase * 0.1
		}

		candles[i] = types.Candle{
			Time:   at,
			Open:   roundToTick(open, config.TickSize),
			High:   roundToTick(high, config.TickSize),
			Low:    roundToTick(low, config.TickSize),
			Close:  roundToTick(closePrice, config.TickSize),
			Volume: math.Round(volume),
		}

		price = closePrice
		at = at.Add(config.Interval)
	}

	return candles
}

// Candles is a shortcut for count 1-minute candles starting at start.
func (g *DataGenerator) Candles(start time.Time, count int, initialPrice float64) []types.Candle {
	config := DefaultConfig()
	config.StartTime = start
	config.Count = count
	config.InitialPrice = initialPrice

	return g.Generate(config)
}

// Sessions generates one regular 09:30-16:00 session per weekday starting at day.
func (g *DataGenerator) Sessions(day time.Time, days int, initialPrice float64) []types.Candle {
	var candles []types.Candle

	price := initialPrice
	for d := day; days > 0; d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}

		open := time.Date(d.Year(), d.Month(), d.Day(), 9, 30, 0, 0, d.Location())
		session := g.Candles(open, 390, price)
		candles = append(candles, session...)
		price = session[len(session)-1].Close
		days--
	}

	return candles
}

func roundToTick(val, tick float64) float64 {
	if tick <= 0 {
		return val
	}

	return math.Round(val/tick) * tick
}
