package candle

import (
	"encoding/csv"
	stderrors "errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rxtech-lab/athena-backtest/internal/logger"
	"github.com/rxtech-lab/athena-backtest/internal/types"
	"github.com/rxtech-lab/athena-backtest/pkg/errors"
	"go.uber.org/zap"
)

const rowFields = 6

// DefaultLayouts are the timestamp layouts tried, in order, for the first column.
var DefaultLayouts = []string{
	time.RFC3339,
	time.DateTime,
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"1/2/2006 3:04:05 PM",
}

type ParseOptions struct {
	// NonTradingDay rows are dropped without error.
	NonTradingDay time.Weekday
	// Layouts overrides DefaultLayouts when set.
	Layouts []string
	// Location is used for timestamps without a zone. Defaults to UTC.
	Location *time.Location
}

func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		NonTradingDay: time.Sunday,
		Layouts:       DefaultLayouts,
		Location:      time.UTC,
	}
}

// ParseRows reads timestamp,open,high,low,close,volume rows.
//
// Blank lines and a leading header row are skipped. Rows with too few columns
// or broken quoting are logged and skipped. An unparseable timestamp or number
// aborts the whole load and no candles are returned.
func ParseRows(r io.Reader, opts ParseOptions, log *logger.Logger) ([]types.Candle, error) {
	if len(opts.Layouts) == 0 {
		opts.Layouts = DefaultLayouts
	}

	if opts.Location == nil {
		opts.Location = time.UTC
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	candles := make([]types.Candle, 0, 1024)
	first := true

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			var csvErr *csv.ParseError
			if stderrors.As(err, &csvErr) {
				log.Warn("Skipping malformed candle row",
					zap.Int("line", csvErr.Line),
					zap.Error(err),
				)

				continue
			}

			return nil, errors.Wrap(errors.ErrCodeMarketDataReadFailed, "failed to read candle rows", err)
		}

		line, _ := reader.FieldPos(0)

		if isBlank(record) {
			continue
		}

		if first {
			first = false

			if strings.EqualFold(strings.TrimSpace(record[0]), "timestamp") || strings.EqualFold(strings.TrimSpace(record[0]), "time") {
				continue
			}
		}

		if len(record) < rowFields {
			log.Warn("Skipping candle row with missing columns",
				zap.Int("line", line),
				zap.Int("columns", len(record)),
			)

			continue
		}

		candle, err := parseRecord(record, line, opts)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeMarketDataParseFailed, "failed to parse candle data", err)
		}

		if candle.Time.Weekday() == opts.NonTradingDay {
			continue
		}

		candles = append(candles, candle)
	}

	log.Debug("Parsed candle rows", zap.Int("candles", len(candles)))

	return candles, nil
}

func parseRecord(record []string, line int, opts ParseOptions) (types.Candle, error) {
	timestamp, err := parseTimestamp(strings.TrimSpace(record[0]), opts)
	if err != nil {
		return types.Candle{}, &errors.ParseError{Line: line, Column: "timestamp", Value: record[0], Cause: err}
	}

	columns := []string{"open", "high", "low", "close", "volume"}
	values := make([]float64, len(columns))

	for i, column := range columns {
		raw := strings.TrimSpace(record[i+1])

		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return types.Candle{}, &errors.ParseError{Line: line, Column: column, Value: raw, Cause: err}
		}

		values[i] = value
	}

	return types.Candle{
		Time:   timestamp,
		Open:   values[0],
		High:   values[1],
		Low:    values[2],
		Close:  values[3],
		Volume: values[4],
	}, nil
}

func parseTimestamp(value string, opts ParseOptions) (time.Time, error) {
	var lastErr error

	for _, layout := range opts.Layouts {
		parsed, err := time.ParseInLocation(layout, value, opts.Location)
		if err == nil {
			return parsed, nil
		}

		lastErr = err
	}

	return time.Time{}, lastErr
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}

	return true
}
