package errors

// ErrorCode identifies a class of failure raised by the backtester.
type ErrorCode int

const (
	ErrCodeUnknown ErrorCode = 1

	// Validation (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidTimeframe     ErrorCode = 102
	ErrCodeInvalidPeriod        ErrorCode = 103
	ErrCodeInvalidTimeOfDay     ErrorCode = 104
	ErrCodeMissingParameter     ErrorCode = 105

	// Data sources (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202

	// Indicators (300-399)
	ErrCodeIndicatorCalculation ErrorCode = 300

	// Strategy (400-499)
	ErrCodeStrategyNotLoaded   ErrorCode = 400
	ErrCodeStrategyConfigError ErrorCode = 401
	ErrCodeNoCandles           ErrorCode = 402

	// Trading (500-599)
	ErrCodeTradeNotPending   ErrorCode = 500
	ErrCodePositionOpen      ErrorCode = 501
	ErrCodePositionNotFound  ErrorCode = 502
	ErrCodeInvalidTradeSetup ErrorCode = 503

	// Backtest (600-699)
	ErrCodeBacktestInitFailed     ErrorCode = 600
	ErrCodeBacktestNoStrategy     ErrorCode = 601
	ErrCodeBacktestNoConfigs      ErrorCode = 602
	ErrCodeBacktestNoDatasource   ErrorCode = 603
	ErrCodeBacktestNoSink         ErrorCode = 604
	ErrCodeBacktestResultsFailure ErrorCode = 605

	// Market data (700-799)
	ErrCodeMarketDataParseFailed ErrorCode = 700
	ErrCodeMarketDataReadFailed  ErrorCode = 701

	// Callbacks (800-899)
	ErrCodeCallbackFailed ErrorCode = 800
)
