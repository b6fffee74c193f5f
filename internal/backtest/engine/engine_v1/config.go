package engine

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"gopkg.in/yaml.v3"
)

type BacktestEngineV1Config struct {
	StartTime optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Optional start time for the backtest period"`
	EndTime   optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Optional end time for the backtest period (inclusive)"`
	Symbol    string                     `yaml:"symbol" json:"symbol" jsonschema:"title=Symbol,description=Instrument name shown in summaries"`
	// ResultsFolder is used when SetResultsFolder is not called.
	ResultsFolder string `yaml:"results_folder" json:"results_folder" jsonschema:"title=Results Folder,description=Directory stats.yaml and trades.csv are written to"`
}

// UnmarshalYAML implements custom unmarshaling for BacktestEngineV1Config
func (c *BacktestEngineV1Config) UnmarshalYAML(value *yaml.Node) error {
	type Config struct {
		StartTime     *time.Time `yaml:"start_time"`
		EndTime       *time.Time `yaml:"end_time"`
		Symbol        string     `yaml:"symbol"`
		ResultsFolder string     `yaml:"results_folder"`
	}

	var config Config
	if err := value.Decode(&config); err != nil {
		return err
	}

	c.Symbol = config.Symbol
	c.ResultsFolder = config.ResultsFolder
	c.StartTime = optional.None[time.Time]()
	c.EndTime = optional.None[time.Time]()

	if config.StartTime != nil {
		c.StartTime = optional.Some(*config.StartTime)
	}

	if config.EndTime != nil {
		c.EndTime = optional.Some(*config.EndTime)
	}

	return nil
}

// GenerateSchema generates a JSON schema for the BacktestEngineV1Config
func (c *BacktestEngineV1Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t.String() == "optional.Option[time.Time]" {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "backtest-engine-v1-config"
	schema.Description = "Configuration schema for BacktestEngineV1"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the BacktestEngineV1Config
func (c *BacktestEngineV1Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

// EmptyConfig returns a BacktestEngineV1Config without bounds.
func EmptyConfig() BacktestEngineV1Config {
	return BacktestEngineV1Config{
		StartTime: optional.None[time.Time](),
		EndTime:   optional.None[time.Time](),
	}
}
