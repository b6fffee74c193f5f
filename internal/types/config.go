package types

import (
	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/athena-backtest/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// DefaultTicksPerPoint is the number of ticks in one point for index futures.
const DefaultTicksPerPoint = 4

// ProfitTargetConfig defines one exit placed Offset points in favor of the entry.
type ProfitTargetConfig struct {
	Offset    float64 `yaml:"offset" json:"offset" jsonschema:"title=Offset,description=Distance in points from the entry price" validate:"gt=0"`
	Contracts int     `yaml:"contracts" json:"contracts" jsonschema:"title=Contracts,description=Contracts closed when the target fills" validate:"gte=1"`
	// TrailingTrigger moves the stop this many points in favor when the target fills.
	TrailingTrigger optional.Option[float64] `yaml:"trailing_trigger" json:"trailing_trigger" jsonschema:"title=Trailing Trigger,description=Points to move the stop in favor once this target fills"`
}

func (p *ProfitTargetConfig) UnmarshalYAML(value *yaml.Node) error {
	type target struct {
		Offset          float64  `yaml:"offset"`
		Contracts       int      `yaml:"contracts"`
		TrailingTrigger *float64 `yaml:"trailing_trigger"`
	}

	var raw target
	if err := value.Decode(&raw); err != nil {
		return err
	}

	p.Offset = raw.Offset
	p.Contracts = raw.Contracts
	p.TrailingTrigger = optional.None[float64]()

	if raw.TrailingTrigger != nil {
		p.TrailingTrigger = optional.Some(*raw.TrailingTrigger)
	}

	return nil
}

func (p ProfitTargetConfig) MarshalYAML() (any, error) {
	out := map[string]any{
		"offset":    p.Offset,
		"contracts": p.Contracts,
	}

	if p.TrailingTrigger.IsSome() {
		out["trailing_trigger"] = p.TrailingTrigger.Unwrap()
	}

	return out, nil
}

// StrategyConfig is one parameter set the backtest engine replays a strategy with.
type StrategyConfig struct {
	ID          string `yaml:"id" json:"id" jsonschema:"title=ID,description=Optional identifier of the configuration"`
	Name        string `yaml:"name" json:"name" jsonschema:"title=Name,description=Name used in reports and result folders" validate:"required"`
	Description string `yaml:"description" json:"description" jsonschema:"title=Description"`
	// Timeframe is the bar size in minutes.
	Timeframe          int       `yaml:"timeframe" json:"timeframe" jsonschema:"title=Timeframe,description=Bar size in minutes,minimum=1" validate:"gte=1"`
	TradingWindowStart TimeOfDay `yaml:"trading_window_start" json:"trading_window_start" jsonschema:"title=Trading Window Start"`
	TradingWindowEnd   TimeOfDay `yaml:"trading_window_end" json:"trading_window_end" jsonschema:"title=Trading Window End"`
	EntryWindowStart   TimeOfDay `yaml:"entry_window_start" json:"entry_window_start" jsonschema:"title=Entry Window Start,description=First time a new trade may be opened"`
	EntryWindowEnd     TimeOfDay `yaml:"entry_window_end" json:"entry_window_end" jsonschema:"title=Entry Window End,description=No new trades are opened from this time on"`
	// TimezoneOffsetHours is added to every window time to express it in the data's timezone.
	TimezoneOffsetHours int     `yaml:"timezone_offset_hours" json:"timezone_offset_hours" jsonschema:"title=Timezone Offset Hours,minimum=-23,maximum=23" validate:"gte=-23,lte=23"`
	Contracts           int     `yaml:"contracts" json:"contracts" jsonschema:"title=Contracts,minimum=1" validate:"gte=1"`
	StartingBalance     float64 `yaml:"starting_balance" json:"starting_balance" jsonschema:"title=Starting Balance" validate:"gt=0"`
	PricePerTick        float64 `yaml:"price_per_tick" json:"price_per_tick" jsonschema:"title=Price Per Tick,description=Money value of one tick per contract" validate:"gt=0"`
	TicksPerPoint       int     `yaml:"ticks_per_point" json:"ticks_per_point" jsonschema:"title=Ticks Per Point,default=4" validate:"gte=0"`
	// InitialStopLoss is the stop distance from the entry in points.
	InitialStopLoss         float64              `yaml:"initial_stop_loss" json:"initial_stop_loss" jsonschema:"title=Initial Stop Loss,description=Stop distance in points" validate:"gt=0"`
	TrailStopToBreakeven    bool                 `yaml:"trail_stop_to_breakeven" json:"trail_stop_to_breakeven" jsonschema:"title=Trail Stop To Breakeven"`
	TrailStopToHalfStop     bool                 `yaml:"trail_stop_to_half_stop" json:"trail_stop_to_half_stop" jsonschema:"title=Trail Stop To Half Stop"`
	ProfitTargets           []ProfitTargetConfig `yaml:"profit_targets" json:"profit_targets" jsonschema:"title=Profit Targets" validate:"required,min=1,dive"`
	MaxTradesPerSession     int                  `yaml:"max_trades_per_session" json:"max_trades_per_session" jsonschema:"title=Max Trades Per Session,minimum=1" validate:"gte=1"`
	StopTradingAfterWinning bool                 `yaml:"stop_trading_after_winning" json:"stop_trading_after_winning" jsonschema:"title=Stop Trading After Winning"`
}

// ApplyDefaults fills fields that are optional in the configuration file.
func (c *StrategyConfig) ApplyDefaults() {
	if c.TicksPerPoint == 0 {
		c.TicksPerPoint = DefaultTicksPerPoint
	}
}

// TradingWindow returns the window candles are kept in, shifted into the data's timezone.
func (c StrategyConfig) TradingWindow() TimeWindow {
	return TimeWindow{
		Start: c.TradingWindowStart.Shift(c.TimezoneOffsetHours),
		End:   c.TradingWindowEnd.Shift(c.TimezoneOffsetHours),
	}
}

// EntryWindow returns the window new trades may be opened in, shifted into the data's timezone.
func (c StrategyConfig) EntryWindow() TimeWindow {
	return TimeWindow{
		Start: c.EntryWindowStart.Shift(c.TimezoneOffsetHours),
		End:   c.EntryWindowEnd.Shift(c.TimezoneOffsetHours),
	}
}

// PointValue is the money value of a one point move for one contract.
func (c StrategyConfig) PointValue() decimal.Decimal {
	ticks := c.TicksPerPoint
	if ticks == 0 {
		ticks = DefaultTicksPerPoint
	}

	return decimal.NewFromFloat(c.PricePerTick).Mul(decimal.NewFromInt(int64(ticks)))
}

// Validate checks the field constraints and the rules that span several fields.
func (c *StrategyConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid strategy config %q", c.Name)
	}

	targetContracts := 0
	for _, target := range c.ProfitTargets {
		targetContracts += target.Contracts
	}

	if targetContracts != c.Contracts {
		return errors.Newf(errors.ErrCodeInvalidConfiguration,
			"strategy config %q: profit targets cover %d contracts, expected %d", c.Name, targetContracts, c.Contracts)
	}

	if c.TradingWindowStart == c.TradingWindowEnd {
		return errors.Newf(errors.ErrCodeInvalidTimeOfDay, "strategy config %q: trading window is empty", c.Name)
	}

	if c.EntryWindowStart == c.EntryWindowEnd {
		return errors.Newf(errors.ErrCodeInvalidTimeOfDay, "strategy config %q: entry window is empty", c.Name)
	}

	trading := TimeWindow{Start: c.TradingWindowStart, End: c.TradingWindowEnd}
	entry := TimeWindow{Start: c.EntryWindowStart, End: c.EntryWindowEnd}

	if !trading.Covers(entry) {
		return errors.Newf(errors.ErrCodeInvalidTimeOfDay,
			"strategy config %q: entry window %s is outside trading window %s", c.Name, entry, trading)
	}

	return nil
}
