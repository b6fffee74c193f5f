package strategy

import (
	"slices"

	"github.com/rxtech-lab/athena-backtest/internal/types"
	"github.com/rxtech-lab/athena-backtest/pkg/errors"
)

// Observer receives lifecycle events in-line with the candle that caused them.
type Observer func(event types.Event) error

// SubscriptionID identifies one registered observer.
type SubscriptionID int

type subscription struct {
	id       SubscriptionID
	events   []types.EventType
	observer Observer
}

// observers is an ordered list of callbacks. Delivery follows registration order.
type observers struct {
	next    SubscriptionID
	entries []subscription
}

func (o *observers) subscribe(observer Observer, events []types.EventType) SubscriptionID {
	o.next++
	o.entries = append(o.entries, subscription{id: o.next, events: events, observer: observer})

	return o.next
}

func (o *observers) unsubscribe(id SubscriptionID) bool {
	for i, entry := range o.entries {
		if entry.id == id {
			o.entries = slices.Delete(o.entries, i, i+1)

			return true
		}
	}

	return false
}

// publish calls every matching observer, even after one fails.
func (o *observers) publish(event types.Event) error {
	var errs []error

	for _, entry := range o.entries {
		if len(entry.events) > 0 && !slices.Contains(entry.events, event.Type) {
			continue
		}

		if err := entry.observer(event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Wrapf(errors.ErrCodeCallbackFailed, errors.Join(errs...), "observer failed on %s", event.Type)
	}

	return nil
}

func (o *observers) len() int {
	return len(o.entries)
}
