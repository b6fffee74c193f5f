package datasource

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/athena-backtest/internal/types"
)

// Source names a candle backend.
type Source string

const (
	SourceCSV        Source = "csv"
	SourceDuckDB     Source = "duckdb"
	SourceClickHouse Source = "clickhouse"
	SourcePostgres   Source = "postgres"
)

// AllSources lists every supported backend.
var AllSources = []Source{SourceCSV, SourceDuckDB, SourceClickHouse, SourcePostgres}

// CandleProvider supplies 1-minute candles in chronological order.
// Gaps in the data are returned as they are.
type CandleProvider interface {
	// Name identifies the data in result folders, e.g. the file name without extension.
	Name() string
	// Load returns candles with start <= time <= end. A None bound is open.
	Load(ctx context.Context, start optional.Option[time.Time], end optional.Option[time.Time]) ([]types.Candle, error)
	// Close releases connections held by the provider.
	Close() error
}

func inRange(t time.Time, start optional.Option[time.Time], end optional.Option[time.Time]) bool {
	if start.IsSome() && t.Before(start.Unwrap()) {
		return false
	}

	if end.IsSome() && t.After(end.Unwrap()) {
		return false
	}

	return true
}
