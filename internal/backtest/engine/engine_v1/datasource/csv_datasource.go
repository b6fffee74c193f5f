package datasource

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/athena-backtest/internal/candle"
	"github.com/rxtech-lab/athena-backtest/internal/logger"
	"github.com/rxtech-lab/athena-backtest/internal/types"
	"github.com/rxtech-lab/athena-backtest/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// CSVProvider reads raw timestamp,open,high,low,close,volume rows from a file.
// UTF-8 and UTF-16 files with a byte order mark are decoded transparently.
type CSVProvider struct {
	path    string
	options candle.ParseOptions
	log     *logger.Logger
}

func NewCSVProvider(path string, options candle.ParseOptions, log *logger.Logger) *CSVProvider {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &CSVProvider{path: path, options: options, log: log}
}

func (p *CSVProvider) Name() string {
	return strings.TrimSuffix(filepath.Base(p.path), filepath.Ext(p.path))
}

// Load implements CandleProvider.
func (p *CSVProvider) Load(ctx context.Context, start optional.Option[time.Time], end optional.Option[time.Time]) ([]types.Candle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(p.path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataReadFailed, err, "failed to open %s", p.path)
	}
	defer file.Close()

	reader := transform.NewReader(file, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	candles, err := candle.ParseRows(reader, p.options, p.log)
	if err != nil {
		return nil, err
	}

	filtered := candles[:0]

	for _, c := range candles {
		if inRange(c.Time, start, end) {
			filtered = append(filtered, c)
		}
	}

	p.log.Debug("Candles loaded from CSV",
		zap.String("path", p.path),
		zap.Int("rows", len(candles)),
		zap.Int("in_range", len(filtered)),
	)

	return filtered, nil
}

func (p *CSVProvider) Close() error {
	return nil
}
