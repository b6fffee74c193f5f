package report

import (
	"fmt"

	"github.com/rxtech-lab/athena-backtest/internal/types"
)

// Reporter turns strategy events and run summaries into lines on a sink.
type Reporter struct {
	sink      Sink
	formatter *Formatter
}

func NewReporter(sink Sink, formatter *Formatter) *Reporter {
	if formatter == nil {
		formatter = NewFormatter()
	}

	return &Reporter{sink: sink, formatter: formatter}
}

func (r *Reporter) write(lines ...string) error {
	for _, line := range lines {
		if err := r.sink.WriteLine(line); err != nil {
			return fmt.Errorf("failed to write report line: %w", err)
		}
	}

	return nil
}

// Begin writes the title and trade table header of a configuration run.
func (r *Reporter) Begin(policy, config string) error {
	lines := []string{fmt.Sprintf("%sTRADES %s / %s", TitlePrefix, policy, config)}

	return r.write(append(lines, r.formatter.TradeHeader()...)...)
}

// Observe is a strategy observer. It writes a row when a trade opens and when it closes,
// and an indented line for every fill in between.
func (r *Reporter) Observe(event types.Event) error {
	switch event.Type {
	case types.EventTradeCreated, types.EventTradeClosed:
		return r.write(r.formatter.TradeLine(event.Trade))
	case types.EventProfitTargetHit:
		return r.write(fmt.Sprintf("%10s   target %s filled %s", "", r.formatter.Price(event.Order.Price), r.formatter.Money(event.Amount)))
	case types.EventStopLossHit:
		return r.write(fmt.Sprintf("%10s   stop %s filled %s", "", r.formatter.Price(event.Order.Price), r.formatter.Money(event.Amount)))
	}

	return nil
}

// Summary writes the statistics block of a finished configuration run.
func (r *Reporter) Summary(summary types.Summary) error {
	return r.write(append([]string{""}, r.formatter.SummaryLines(summary)...)...)
}
