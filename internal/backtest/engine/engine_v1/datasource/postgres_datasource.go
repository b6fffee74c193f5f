package datasource

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/athena-backtest/internal/logger"
	"github.com/rxtech-lab/athena-backtest/internal/types"
	"github.com/rxtech-lab/athena-backtest/pkg/errors"
	"go.uber.org/zap"
)

type PostgresOptions struct {
	DatabaseURL string
	// Table defaults to market_data. Price columns must be double precision and time a timestamp.
	Table    string
	Symbol   string
	MaxConns int32
}

// PostgresProvider reads candles from a Postgres table through a pgx pool.
type PostgresProvider struct {
	pool    *pgxpool.Pool
	options PostgresOptions
	logger  *logger.Logger
	sq      squirrel.StatementBuilderType
}

func NewPostgresProvider(ctx context.Context, options PostgresOptions, log *logger.Logger) (*PostgresProvider, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	if options.Table == "" {
		options.Table = DefaultTable
	}

	poolConfig, err := pgxpool.ParseConfig(options.DatabaseURL)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMarketDataReadFailed, "invalid postgres url", err)
	}

	if options.MaxConns > 0 {
		poolConfig.MaxConns = options.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMarketDataReadFailed, "failed to connect to postgres", err)
	}

	return &PostgresProvider{
		pool:    pool,
		options: options,
		logger:  log,
		sq:      squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

func (p *PostgresProvider) Name() string {
	if p.options.Symbol != "" {
		return p.options.Symbol
	}

	return p.options.Table
}

// Load implements CandleProvider.
func (p *PostgresProvider) Load(ctx context.Context, start optional.Option[time.Time], end optional.Option[time.Time]) ([]types.Candle, error) {
	query, args, err := candleQuery(p.sq, p.options.Table, p.options.Symbol, start, end)
	if err != nil {
		return nil, err
	}

	result, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMarketDataReadFailed, "failed to query postgres", err)
	}
	defer result.Close()

	candles, err := scanCandles(result)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("Candles loaded from Postgres",
		zap.String("table", p.options.Table),
		zap.String("symbol", p.options.Symbol),
		zap.Int("rows", len(candles)),
	)

	return candles, nil
}

func (p *PostgresProvider) Close() error {
	p.pool.Close()

	return nil
}
