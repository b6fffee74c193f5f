package version

// Version is the current version of the backtester.
// It is set at build time using ldflags:
// -ldflags "-X github.com/rxtech-lab/athena-backtest/internal/version.Version=1.2.3"
var Version = "v0.1.0"

// GetVersion returns the current version of the backtester.
func GetVersion() string {
	return Version
}
