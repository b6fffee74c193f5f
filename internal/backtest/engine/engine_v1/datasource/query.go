package datasource

import (
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/athena-backtest/internal/types"
	"github.com/rxtech-lab/athena-backtest/pkg/errors"
)

// DefaultTable is the table or view candles are read from.
const DefaultTable = "market_data"

var candleColumns = []string{"time", "open", "high", "low", "close", "volume"}

// candleQuery selects the candle columns of table, ordered by time.
// An empty symbol reads every row.
func candleQuery(
	sq squirrel.StatementBuilderType,
	table string,
	symbol string,
	start optional.Option[time.Time],
	end optional.Option[time.Time],
) (string, []any, error) {
	builder := sq.Select(candleColumns...).From(table)

	if symbol != "" {
		builder = builder.Where(squirrel.Eq{"symbol": symbol})
	}

	if start.IsSome() {
		builder = builder.Where(squirrel.GtOrEq{"time": start.Unwrap()})
	}

	if end.IsSome() {
		builder = builder.Where(squirrel.LtOrEq{"time": end.Unwrap()})
	}

	query, args, err := builder.OrderBy("time ASC").ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build query: %w", err)
	}

	return query, args, nil
}

// rows is the iteration surface shared by database/sql, pgx and clickhouse-go.
type rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanCandles(r rows) ([]types.Candle, error) {
	var candles []types.Candle

	for r.Next() {
		var c types.Candle
		if err := r.Scan(&c.Time, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, errors.Wrap(errors.ErrCodeMarketDataReadFailed, "failed to scan candle row", err)
		}

		candles = append(candles, c)
	}

	if err := r.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMarketDataReadFailed, "failed to read candle rows", err)
	}

	return candles, nil
}
