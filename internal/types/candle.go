package types

import "time"

// Candle is one OHLCV bar. Candles are produced once when data is loaded and never mutated.
type Candle struct {
	Time   time.Time `yaml:"time" json:"time" csv:"time"`
	Open   float64   `yaml:"open" json:"open" csv:"open"`
	High   float64   `yaml:"high" json:"high" csv:"high"`
	Low    float64   `yaml:"low" json:"low" csv:"low"`
	Close  float64   `yaml:"close" json:"close" csv:"close"`
	Volume float64   `yaml:"volume" json:"volume" csv:"volume"`
}

// SessionKey is the calendar date (YYYY-MM-DD) of the candle, in the candle's own location.
func (c Candle) SessionKey() string {
	return c.Time.Format(time.DateOnly)
}
