package types

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/athena-backtest/pkg/errors"
)

type Direction string

type OrderKind string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
)

const (
	OrderKindStopLoss     OrderKind = "STOP_LOSS"
	OrderKindProfitTarget OrderKind = "PROFIT_TARGET"
)

// Sign is +1 for long and -1 for short. A favorable price move of d points is Sign()*d.
func (d Direction) Sign() float64 {
	if d == DirectionShort {
		return -1
	}

	return 1
}

// Order is either the stop-loss or one profit target of a trade.
type Order struct {
	ID        string    `yaml:"id" json:"id" csv:"id"`
	Kind      OrderKind `yaml:"kind" json:"kind" csv:"kind"`
	Direction Direction `yaml:"direction" json:"direction" csv:"direction"`
	// Price only changes through the trailing stop rules.
	Price     float64   `yaml:"price" json:"price" csv:"price"`
	Contracts int       `yaml:"contracts" json:"contracts" csv:"contracts"`
	OpenedAt  time.Time `yaml:"opened_at" json:"opened_at" csv:"opened_at"`
	// ClosedAt is None while the order is working.
	ClosedAt optional.Option[time.Time] `yaml:"closed_at" json:"closed_at" csv:"closed_at"`
	// TrailingTrigger is the number of points the stop moves in favor when this target fills.
	TrailingTrigger optional.Option[float64] `yaml:"trailing_trigger" json:"trailing_trigger" csv:"trailing_trigger"`
}

func (o *Order) IsOpen() bool {
	return o.ClosedAt.IsNone()
}

// Close marks the order filled at the given time. An order can only be closed once.
func (o *Order) Close(at time.Time) error {
	if !o.IsOpen() {
		return errors.Newf(errors.ErrCodeInvalidTradeSetup, "order %s is already closed", o.ID)
	}

	o.ClosedAt = optional.Some(at)

	return nil
}

// FilledBy reports whether the candle reaches the order price.
// A stop fills against the position on the adverse extreme or the close.
// A profit target fills in favor of the position on the favorable extreme or the close.
func (o *Order) FilledBy(candle Candle) bool {
	switch {
	case o.Kind == OrderKindStopLoss && o.Direction == DirectionLong:
		return candle.Low <= o.Price || candle.Close <= o.Price
	case o.Kind == OrderKindStopLoss && o.Direction == DirectionShort:
		return candle.High >= o.Price || candle.Close >= o.Price
	case o.Direction == DirectionLong:
		return candle.High >= o.Price || candle.Close >= o.Price
	default:
		return candle.Low <= o.Price || candle.Close <= o.Price
	}
}
