package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rxtech-lab/athena-backtest/internal/logger"
	"github.com/rxtech-lab/athena-backtest/internal/types"
	"github.com/rxtech-lab/athena-backtest/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Provider supplies the strategy configurations of a backtest run.
type Provider interface {
	Load(ctx context.Context) ([]types.StrategyConfig, error)
}

// FileProvider reads configurations from every file matching a glob pattern.
// A file holds either a single configuration or a list of them.
type FileProvider struct {
	pattern string
	log     *logger.Logger
}

func NewFileProvider(pattern string, log *logger.Logger) *FileProvider {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &FileProvider{pattern: pattern, log: log}
}

// Load implements Provider.
func (p *FileProvider) Load(ctx context.Context) ([]types.StrategyConfig, error) {
	files, err := filepath.Glob(p.pattern)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid config pattern %q", p.pattern)
	}

	if len(files) == 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "no config files match %q", p.pattern)
	}

	var configs []types.StrategyConfig

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		content, err := os.ReadFile(file)
		if err != nil {
			p.log.Error("Failed to read config",
				zap.String("config", file),
				zap.Error(err),
			)

			return nil, fmt.Errorf("failed to read config %s: %w", file, err)
		}

		parsed, err := ParseConfigs(content)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", file, err)
		}

		// A single unnamed configuration takes the file name.
		if len(parsed) == 1 && parsed[0].Name == "" {
			parsed[0].Name = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		}

		p.log.Debug("Config file loaded",
			zap.String("config", file),
			zap.Int("count", len(parsed)),
		)

		configs = append(configs, parsed...)
	}

	return ValidateAll(configs)
}

// StaticProvider serves configurations built in code.
type StaticProvider struct {
	configs []types.StrategyConfig
}

func NewStaticProvider(configs ...types.StrategyConfig) *StaticProvider {
	return &StaticProvider{configs: configs}
}

// Load implements Provider.
func (p *StaticProvider) Load(_ context.Context) ([]types.StrategyConfig, error) {
	configs := make([]types.StrategyConfig, len(p.configs))
	copy(configs, p.configs)

	return ValidateAll(configs)
}

// ParseConfigs decodes YAML (or JSON) holding one configuration or a sequence of them.
func ParseConfigs(content []byte) ([]types.StrategyConfig, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(content, &root); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to decode strategy config", err)
	}

	if len(root.Content) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "strategy config is empty")
	}

	document := root.Content[0]

	switch document.Kind {
	case yaml.SequenceNode:
		var configs []types.StrategyConfig
		if err := document.Decode(&configs); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to decode strategy configs", err)
		}

		return configs, nil
	case yaml.MappingNode:
		var config types.StrategyConfig
		if err := document.Decode(&config); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to decode strategy config", err)
		}

		return []types.StrategyConfig{config}, nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration,
			"strategy config must be a mapping or a list (line %d)", document.Line)
	}
}

// ValidateAll applies defaults and validates every configuration before any replay starts.
// Unnamed configurations are called config_<index>. All failures are reported together.
func ValidateAll(configs []types.StrategyConfig) ([]types.StrategyConfig, error) {
	if len(configs) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "no strategy configs")
	}

	var errs []error

	for i := range configs {
		if configs[i].Name == "" {
			configs[i].Name = fmt.Sprintf("config_%d", i)
		}

		configs[i].ApplyDefaults()

		if err := configs[i].Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, errors.Join(errs...),
			"%d of %d strategy configs are invalid", len(errs), len(configs))
	}

	return configs, nil
}
