package engine

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rxtech-lab/athena-backtest/internal/types"
)

const (
	statsFileName  = "stats.yaml"
	tradesFileName = "trades.csv"
)

var tradeHeader = []string{
	"id", "session", "direction", "opened_at", "closed_at",
	"entry_price", "exit_price", "stop_price", "initial_contracts",
	"remaining_contracts", "outcome", "profit",
}

// writeResults writes the summary and the trade history of one run into folder.
func writeResults(folder string, summary types.Summary, trades []*types.Trade) (types.Summary, error) {
	if err := os.MkdirAll(folder, 0755); err != nil {
		return summary, fmt.Errorf("failed to create result folder: %w", err)
	}

	tradesPath := filepath.Join(folder, tradesFileName)
	if err := writeTrades(tradesPath, trades); err != nil {
		return summary, err
	}

	summary.TradesFilePath = tradesPath

	if err := types.WriteSummaries(filepath.Join(folder, statsFileName), []types.Summary{summary}); err != nil {
		return summary, fmt.Errorf("failed to write stats: %w", err)
	}

	return summary, nil
}

func writeTrades(path string, trades []*types.Trade) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create trades file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(tradeHeader); err != nil {
		return fmt.Errorf("failed to write trades header: %w", err)
	}

	for _, trade := range trades {
		closedAt := ""
		if trade.ClosedAt.IsSome() {
			closedAt = trade.ClosedAt.Unwrap().Format(time.RFC3339)
		}

		stopPrice := ""
		if trade.StopLoss != nil {
			stopPrice = formatFloat(trade.StopLoss.Price)
		}

		record := []string{
			trade.ID,
			trade.Session,
			string(trade.Direction),
			trade.OpenedAt.Format(time.RFC3339),
			closedAt,
			formatFloat(trade.EntryPrice),
			formatFloat(trade.ExitPrice),
			stopPrice,
			strconv.Itoa(trade.InitialContracts),
			strconv.Itoa(trade.RemainingContracts),
			string(trade.Outcome),
			trade.Profit.StringFixed(2),
		}

		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write trade %s: %w", trade.ID, err)
		}
	}

	writer.Flush()

	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush trades: %w", err)
	}

	return nil
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
