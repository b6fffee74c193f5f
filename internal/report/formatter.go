package report

import (
	"fmt"
	"strings"

	"github.com/rxtech-lab/athena-backtest/internal/types"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// TitlePrefix starts every section header line.
	TitlePrefix = "== "

	// RulePrefix starts every table rule line.
	RulePrefix = "--"
)

const (
	idPrefixLength  = 7
	tradeTimeLayout = "2006-01-02 15:04"
)

var tradeColumns = []string{"Trade", "Date", "Direction", "Entry", "Exit", "P/L", "Outcome"}

// Formatter renders trades and summaries as fixed width text lines.
// Money is grouped by thousands in the printer's locale.
type Formatter struct {
	printer *message.Printer
}

func NewFormatter() *Formatter {
	return NewFormatterWithLanguage(language.English)
}

func NewFormatterWithLanguage(tag language.Tag) *Formatter {
	return &Formatter{printer: message.NewPrinter(tag)}
}

// Money formats an amount with two decimals and thousands separators.
func (f *Formatter) Money(amount decimal.Decimal) string {
	return f.printer.Sprintf("%.2f", amount.Round(2).InexactFloat64())
}

// Price formats an instrument price.
func (f *Formatter) Price(price float64) string {
	return f.printer.Sprintf("%.2f", price)
}

func row(fields ...string) string {
	return fmt.Sprintf("%10s | %16s | %9s | %10s | %10s | %12s | %11s", toAny(fields)...)
}

func toAny(fields []string) []any {
	out := make([]any, len(fields))
	for i, field := range fields {
		out[i] = field
	}

	return out
}

// TradeHeader returns the column titles and the rule under them.
func (f *Formatter) TradeHeader() []string {
	header := row(tradeColumns...)

	return []string{header, RulePrefix + strings.Repeat("-", len(header)-len(RulePrefix))}
}

// TradeLine renders one trade. Prices that are not known yet are shown as "-".
func (f *Formatter) TradeLine(trade *types.Trade) string {
	id := trade.ID
	if len(id) > idPrefixLength {
		id = id[:idPrefixLength]
	}

	exit, profit := "-", "-"
	if !trade.IsPending() {
		exit = f.Price(trade.ExitPrice)
		profit = f.Money(trade.Profit)
	}

	return row(
		id,
		trade.OpenedAt.Format(tradeTimeLayout),
		string(trade.Direction),
		f.Price(trade.EntryPrice),
		exit,
		profit,
		string(trade.Outcome),
	)
}

// SummaryLines renders the end of run statistics of one configuration.
func (f *Formatter) SummaryLines(summary types.Summary) []string {
	result := summary.TradeResult
	risk := summary.Risk

	lines := []string{
		fmt.Sprintf("%sSUMMARY %s / %s", TitlePrefix, summary.Policy, summary.ConfigName),
		fmt.Sprintf("Gain on Account: %s (%s%%) - Total Trades: %d",
			f.Money(decimal.NewFromFloat(summary.Gain)),
			f.printer.Sprintf("%.2f", summary.GainPercent),
			result.NumberOfTrades,
		),
		fmt.Sprintf("Balance: %s -> %s over %d sessions",
			f.Money(decimal.NewFromFloat(summary.StartingBalance)),
			f.Money(decimal.NewFromFloat(summary.EndingBalance)),
			summary.Sessions,
		),
		fmt.Sprintf("Total Profit: %s | Total Losses: %s",
			f.Money(decimal.NewFromFloat(summary.TotalProfit)),
			f.Money(decimal.NewFromFloat(summary.TotalLosses)),
		),
		fmt.Sprintf("%10s | %10s | %10s | %10s | %10s", "Wins", "Losses", "Breakeven", "Stopped", "Win-Rate"),
		fmt.Sprintf("%10d | %10d | %10d | %10d | %9.2f%%",
			result.NumberOfWinningTrades,
			result.NumberOfLosingTrades,
			result.NumberOfBreakevenTrades,
			result.NumberOfStoppedOutTrades,
			result.WinRate,
		),
		fmt.Sprintf("%sRISK", TitlePrefix),
		fmt.Sprintf("Timeframe: %dm | Contracts: %d | Point Value: %s | Initial Stop: %s",
			risk.Timeframe, risk.Contracts, f.Price(risk.PointValue), f.Price(risk.InitialStopLoss)),
		fmt.Sprintf("Trail To Breakeven: %t | Trail To Half Stop: %t", risk.TrailToBreakeven, risk.TrailToHalfStop),
		fmt.Sprintf("Max Trades Per Session: %d | Stop After Winning: %t", risk.MaxTradesPerSession, risk.StopAfterWinning),
		fmt.Sprintf("Trading Window: %s | Entry Window: %s", risk.TradingWindow, risk.EntryWindow),
	}

	for i, target := range risk.ProfitTargets {
		line := fmt.Sprintf("Target %d: +%s points x %d", i+1, f.Price(target.Offset), target.Contracts)
		if target.TrailingTrigger.IsSome() {
			line += fmt.Sprintf(" (trail stop %s)", f.Price(target.TrailingTrigger.Unwrap()))
		}

		lines = append(lines, line)
	}

	return lines
}
