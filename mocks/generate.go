package mocks

//go:generate mockgen -destination=./mock_policy.go -package=mocks github.com/rxtech-lab/athena-backtest/internal/strategy Policy
//go:generate mockgen -destination=./mock_datasource.go -package=mocks github.com/rxtech-lab/athena-backtest/internal/backtest/engine/engine_v1/datasource CandleProvider
//go:generate mockgen -destination=./mock_config_provider.go -package=mocks github.com/rxtech-lab/athena-backtest/internal/config Provider
//go:generate mockgen -destination=./mock_sink.go -package=mocks github.com/rxtech-lab/athena-backtest/internal/report Sink
