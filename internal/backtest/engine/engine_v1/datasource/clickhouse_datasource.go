package datasource

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/Masterminds/squirrel"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/athena-backtest/internal/logger"
	"github.com/rxtech-lab/athena-backtest/internal/types"
	"github.com/rxtech-lab/athena-backtest/pkg/errors"
	"go.uber.org/zap"
)

type ClickHouseOptions struct {
	Addr     []string
	Database string
	Username string
	Password string
	// Table defaults to market_data. Its price columns must be Float64 and time a DateTime.
	Table  string
	Symbol string
}

// openClickHouse is swapped in tests.
var openClickHouse = clickhouse.Open

// ClickHouseProvider reads candles from a ClickHouse table over the native protocol.
type ClickHouseProvider struct {
	conn    driver.Conn
	options ClickHouseOptions
	logger  *logger.Logger
	sq      squirrel.StatementBuilderType
}

func NewClickHouseProvider(ctx context.Context, options ClickHouseOptions, log *logger.Logger) (*ClickHouseProvider, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	if options.Table == "" {
		options.Table = DefaultTable
	}

	conn, err := openClickHouse(&clickhouse.Options{
		Addr: options.Addr,
		Auth: clickhouse.Auth{
			Database: options.Database,
			Username: options.Username,
			Password: options.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": uint64(0),
		},
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMarketDataReadFailed, "failed to open clickhouse", err)
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()

		return nil, errors.Wrap(errors.ErrCodeMarketDataReadFailed, "clickhouse ping failed", err)
	}

	return &ClickHouseProvider{
		conn:    conn,
		options: options,
		logger:  log,
		sq:      squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}, nil
}

func (c *ClickHouseProvider) Name() string {
	if c.options.Symbol != "" {
		return c.options.Symbol
	}

	return fmt.Sprintf("%s_%s", c.options.Database, c.options.Table)
}

// Load implements CandleProvider.
func (c *ClickHouseProvider) Load(ctx context.Context, start optional.Option[time.Time], end optional.Option[time.Time]) ([]types.Candle, error) {
	query, args, err := candleQuery(c.sq, c.options.Table, c.options.Symbol, start, end)
	if err != nil {
		return nil, err
	}

	result, err := c.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMarketDataReadFailed, "failed to query clickhouse", err)
	}
	defer result.Close()

	candles, err := scanCandles(result)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Candles loaded from ClickHouse",
		zap.String("table", c.options.Table),
		zap.String("symbol", c.options.Symbol),
		zap.Int("rows", len(candles)),
	)

	return candles, nil
}

func (c *ClickHouseProvider) Close() error {
	return c.conn.Close()
}
