package strategy

import (
	"context"
	"sort"

	"github.com/rxtech-lab/athena-backtest/internal/types"
	"github.com/rxtech-lab/athena-backtest/pkg/errors"
)

// Policy decides when a new trade is opened.
//
// The entry predicates are only consulted while the strategy is out of the market.
// They must not touch position state but may keep per-session flags, which are
// cleared by ResetSession before the first candle of every session and whenever a trade closes.
type Policy interface {
	// Name identifies the policy in reports and result folders.
	Name() string
	// LoadIndicators receives every timeframe bar of the run, before the trading window filter.
	LoadIndicators(ctx context.Context, candles []types.Candle) error
	ResetSession()
	LongEntry(candle types.Candle) bool
	ShortEntry(candle types.Candle) bool
}

// PolicyFactory builds a fresh policy value.
type PolicyFactory func() Policy

var policies = map[string]PolicyFactory{
	PriceExtremePolicyName: func() Policy { return NewPriceExtremePolicy() },
	EmaClosePolicyName:     func() Policy { return NewEmaCloseAfterExtremePolicy() },
}

// NewPolicy returns the registered policy with the given name.
func NewPolicy(name string) (Policy, error) {
	factory, ok := policies[name]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeStrategyNotLoaded, "unknown policy %q, available: %v", name, PolicyNames())
	}

	return factory(), nil
}

// PolicyNames lists the registered policies in alphabetical order.
func PolicyNames() []string {
	names := make([]string, 0, len(policies))
	for name := range policies {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
