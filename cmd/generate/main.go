package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/moznion/go-optional"
	engine "github.com/rxtech-lab/athena-backtest/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/athena-backtest/internal/config"
	"github.com/rxtech-lab/athena-backtest/internal/types"
	"gopkg.in/yaml.v3"
)

// artifact is one configuration kind with its schema and sample file.
type artifact struct {
	schemaName string
	sampleName string
	schema     func() (string, error)
	sample     any
}

func artifacts() []artifact {
	engineConfig := engine.EmptyConfig()

	return []artifact{
		{
			schemaName: "backtest-engine-v1-config.json",
			sampleName: "backtest-engine-v1-config.yaml",
			schema:     engineConfig.GenerateSchemaJSON,
			sample: map[string]any{
				"symbol":         "ES",
				"results_folder": "results",
			},
		},
		{
			schemaName: "strategy-config.json",
			sampleName: "strategy-config.yaml",
			schema:     config.GenerateSchemaJSON,
			sample:     sampleStrategyConfig(),
		},
	}
}

// sampleStrategyConfig trades two ES contracts on 3 minute bars during the regular session.
func sampleStrategyConfig() types.StrategyConfig {
	return types.StrategyConfig{
		Name:                 "es_3m",
		Timeframe:            3,
		TradingWindowStart:   types.NewTimeOfDay(9, 30),
		TradingWindowEnd:     types.NewTimeOfDay(16, 0),
		EntryWindowStart:     types.NewTimeOfDay(9, 30),
		EntryWindowEnd:       types.NewTimeOfDay(15, 30),
		Contracts:            2,
		StartingBalance:      10000,
		PricePerTick:         12.5,
		TicksPerPoint:        types.DefaultTicksPerPoint,
		InitialStopLoss:      8,
		TrailStopToBreakeven: true,
		ProfitTargets: []types.ProfitTargetConfig{
			{Offset: 4, Contracts: 1, TrailingTrigger: optional.Some(2.0)},
			{Offset: 10, Contracts: 1, TrailingTrigger: optional.None[float64]()},
		},
		MaxTradesPerSession: 3,
	}
}

func generate(dir string) error {
	for _, a := range artifacts() {
		if err := validateSchemaName(a.schemaName); err != nil {
			return err
		}

		if err := generateSchemaFile(a.schema, filepath.Join(dir, a.schemaName)); err != nil {
			return err
		}

		if err := generateSampleConfig(a.sample, filepath.Join(dir, a.sampleName), a.schemaName); err != nil {
			return err
		}
	}

	return nil
}

func generateSchemaFile(schema func() (string, error), schemaPath string) error {
	schemaJSON, err := schema()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(schemaPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(schemaPath, []byte(schemaJSON), 0644); err != nil {
		return fmt.Errorf("failed to write schema to file: %w", err)
	}

	log.Printf("Schema successfully generated at %s", schemaPath)

	return nil
}

// generateSampleConfig writes sample as YAML unless the file already exists.
func generateSampleConfig(sample any, samplePath string, schemaName string) error {
	if _, err := os.Stat(samplePath); err == nil {
		return nil
	}

	yamlBytes, err := yaml.Marshal(sample)
	if err != nil {
		return fmt.Errorf("failed to marshal sample config to yaml: %w", err)
	}

	content := append([]byte(getSchemaReference(schemaName)), yamlBytes...)

	if err := os.WriteFile(samplePath, content, 0644); err != nil {
		return fmt.Errorf("failed to write sample config to file: %w", err)
	}

	log.Printf("Sample config successfully generated at %s", samplePath)

	return nil
}

func validateSchemaName(name string) error {
	if name == "" {
		return fmt.Errorf("schema name cannot be empty")
	}

	if !strings.HasSuffix(name, ".json") {
		return fmt.Errorf("schema name %q must have .json extension", name)
	}

	return nil
}

func getSchemaReference(schemaName string) string {
	return "# yaml-language-server: $schema=" + schemaName + "\n"
}

func main() {
	if err := generate("./config"); err != nil {
		log.Fatal(err)
	}
}
