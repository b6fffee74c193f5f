package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/athena-backtest/internal/logger"
	"github.com/rxtech-lab/athena-backtest/internal/types"
	"github.com/rxtech-lab/athena-backtest/pkg/errors"
	"go.uber.org/zap"
)

// DuckDBProvider queries a parquet or CSV file through an in-memory DuckDB view.
// The file needs time, open, high, low, close and volume columns, plus symbol when Symbol is set.
type DuckDBProvider struct {
	db     *sql.DB
	path   string
	symbol string
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDuckDBProvider opens an in-memory DuckDB database and creates the market_data view over path.
// Files ending in .csv are read with read_csv_auto, everything else with read_parquet.
func NewDuckDBProvider(path string, symbol string, log *logger.Logger) (*DuckDBProvider, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMarketDataReadFailed, "failed to open duckdb", err)
	}

	provider := &DuckDBProvider{
		db:     db,
		path:   path,
		symbol: symbol,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}

	if err := provider.createView(); err != nil {
		db.Close()

		return nil, err
	}

	return provider, nil
}

func (d *DuckDBProvider) createView() error {
	d.logger.Debug("Initializing DuckDB data source", zap.String("path", d.path))

	reader := "read_parquet"
	if strings.EqualFold(filepath.Ext(d.path), ".csv") {
		reader = "read_csv_auto"
	}

	// Squirrel has no CREATE VIEW, and table functions take no placeholders.
	query := fmt.Sprintf(`
		CREATE OR REPLACE VIEW %s AS
		SELECT * FROM %s('%s');
	`, DefaultTable, reader, strings.ReplaceAll(d.path, "'", "''"))

	if _, err := d.db.Exec(query); err != nil {
		return errors.Wrapf(errors.ErrCodeMarketDataReadFailed, err, "failed to create view over %s", d.path)
	}

	return nil
}

func (d *DuckDBProvider) Name() string {
	return strings.TrimSuffix(filepath.Base(d.path), filepath.Ext(d.path))
}

// Load implements CandleProvider.
func (d *DuckDBProvider) Load(ctx context.Context, start optional.Option[time.Time], end optional.Option[time.Time]) ([]types.Candle, error) {
	query, args, err := candleQuery(d.sq, DefaultTable, d.symbol, start, end)
	if err != nil {
		return nil, err
	}

	result, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMarketDataReadFailed, "failed to query duckdb", err)
	}
	defer result.Close()

	candles, err := scanCandles(result)
	if err != nil {
		return nil, err
	}

	d.logger.Debug("Candles loaded from DuckDB",
		zap.String("path", d.path),
		zap.Int("rows", len(candles)),
	)

	return candles, nil
}

// Count returns the number of rows in range without loading them.
func (d *DuckDBProvider) Count(ctx context.Context, start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	builder := d.sq.Select("COUNT(*)").From(DefaultTable)

	if d.symbol != "" {
		builder = builder.Where(squirrel.Eq{"symbol": d.symbol})
	}

	if start.IsSome() {
		builder = builder.Where(squirrel.GtOrEq{"time": start.Unwrap()})
	}

	if end.IsSome() {
		builder = builder.Where(squirrel.LtOrEq{"time": end.Unwrap()})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}

	var count int
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeMarketDataReadFailed, "failed to count rows", err)
	}

	return count, nil
}

func (d *DuckDBProvider) Close() error {
	return d.db.Close()
}
