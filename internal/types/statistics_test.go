package types

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type StatisticsTestSuite struct {
	suite.Suite
	tempDir string
}

func TestStatisticsSuite(t *testing.T) {
	suite.Run(t, new(StatisticsTestSuite))
}

func (suite *StatisticsTestSuite) SetupTest() {
	suite.tempDir = suite.T().TempDir()
}

func (suite *StatisticsTestSuite) TestWinRate() {
	suite.Equal(0.0, WinRate(0, 0))
	suite.Equal(0.0, WinRate(3, 0))
	suite.Equal(50.0, WinRate(2, 4))
	suite.Equal(100.0, WinRate(1, 1))
}

func (suite *StatisticsTestSuite) TestRecord() {
	var stats Statistics

	stats.Record(TradeOutcomeWin)
	stats.Record(TradeOutcomeWin)
	stats.Record(TradeOutcomeLoss)
	stats.Record(TradeOutcomeBreakeven)
	stats.Record(TradeOutcomeStoppedOut)
	stats.Record(TradeOutcomePending)

	suite.Equal(2, stats.WinningTrades)
	suite.Equal(1, stats.LosingTrades)
	suite.Equal(1, stats.BreakevenTrades)
	suite.Equal(1, stats.StoppedOutTrades)
	suite.Equal(5, stats.TotalTrades())
}

func (suite *StatisticsTestSuite) TestWriteSummaries() {
	path := filepath.Join(suite.tempDir, "stats.yaml")
	summaries := []Summary{
		{
			ID:              "run-1",
			Timestamp:       time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
			Policy:          "price-extreme",
			ConfigName:      "es-3min",
			StartingBalance: 10000,
			EndingBalance:   10250,
			Gain:            250,
			GainPercent:     2.5,
			TradeResult: TradeResult{
				NumberOfTrades:        4,
				NumberOfWinningTrades: 2,
				NumberOfLosingTrades:  2,
				WinRate:               50,
			},
		},
	}

	suite.Require().NoError(WriteSummaries(path, summaries))

	data, err := os.ReadFile(path)
	suite.Require().NoError(err)

	var decoded []Summary
	suite.Require().NoError(yaml.Unmarshal(data, &decoded))
	suite.Require().Len(decoded, 1)
	suite.Equal("es-3min", decoded[0].ConfigName)
	suite.Equal(50.0, decoded[0].TradeResult.WinRate)
	suite.Equal(250.0, decoded[0].Gain)
}

func (suite *StatisticsTestSuite) TestWriteSummariesBadPath() {
	err := WriteSummaries(filepath.Join(suite.tempDir, "missing", "stats.yaml"), nil)
	suite.Error(err)
}
