package mocks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataGenerator_Generate(t *testing.T) {
	gen := NewDataGenerator(42)
	config := DefaultConfig()
	config.Count = 100

	candles := gen.Generate(config)
	require.Len(t, candles, 100)

	for i, c := range candles {
		assert.Positive(t, c.Low, "index %d", i)
		assert.GreaterOrEqual(t, c.High, c.Low, "index %d", i)
		assert.GreaterOrEqual(t, c.High, c.Open, "index %d", i)
		assert.GreaterOrEqual(t, c.High, c.Close, "index %d", i)
		assert.LessOrEqual(t, c.Low, c.Open, "index %d", i)
		assert.LessOrEqual(t, c.Low, c.Close, "index %d", i)

		if i > 0 {
			assert.Equal(t, config.Interval, c.Time.Sub(candles[i-1].Time))
		}
	}
}

func TestDataGenerator_Reproducibility(t *testing.T) {
	first := NewDataGenerator(7).Candles(time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC), 50, 100)
	second := NewDataGenerator(7).Candles(time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC), 50, 100)

	assert.Equal(t, first, second)
}

func TestDataGenerator_Sessions(t *testing.T) {
	// Friday, then the weekend is skipped.
	friday := time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)
	candles := NewDataGenerator(1).Sessions(friday, 2, 5000)

	require.Len(t, candles, 780)
	assert.Equal(t, time.Friday, candles[0].Time.Weekday())
	assert.Equal(t, time.Monday, candles[390].Time.Weekday())
	assert.Equal(t, 9, candles[390].Time.Hour())
	assert.Equal(t, 30, candles[390].Time.Minute())
}
