package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventTradeCreated    EventType = "TRADE_CREATED"
	EventTradeClosed     EventType = "TRADE_CLOSED"
	EventProfitTargetHit EventType = "PROFIT_TARGET_HIT"
	EventStopLossHit     EventType = "STOP_LOSS_HIT"
)

// Event is a lifecycle notification raised by the strategy while it manages a trade.
// Observers receive it synchronously, before the next candle is processed.
type Event struct {
	Type EventType
	Time time.Time
	// Trade is the live trade. Observers must not mutate it.
	Trade *Trade
	// Order is the order that filled. Nil for TradeCreated and end of session exits.
	Order *Order
	// Amount is the realized amount of this fill. For TradeClosed it is the trade's total profit.
	Amount  decimal.Decimal
	Balance decimal.Decimal
}

type StrategyStatus string

const (
	StrategyStatusOutOfMarket StrategyStatus = "OUT_OF_MARKET"
	StrategyStatusInMarket    StrategyStatus = "IN_MARKET"
)
