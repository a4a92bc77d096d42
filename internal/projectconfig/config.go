// Package projectconfig provides the Config struct and loader for the
// clausegrade.yaml configuration file.
package projectconfig

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/clausegrade/clausegrade/internal/dataset"
	"github.com/clausegrade/clausegrade/internal/models"
)

// Default values for project configuration. New() references them and no
// other code should duplicate them.
const (
	DefaultConfigFile = "clausegrade.yaml"

	DefaultModel      = "llama3:8b"
	DefaultTimeoutSec = 120

	DefaultDatabasePath = "evaluations.db"

	DefaultHost = "127.0.0.1"
	DefaultPort = 8000

	DefaultRequestDir  = dataset.DefaultRequestDir
	DefaultResponseDir = dataset.DefaultResponseDir

	DefaultWorkers = 4
)

// ModelConfig holds grader backend settings.
type ModelConfig struct {
	Name       string `yaml:"name,omitempty"`
	TimeoutSec int    `yaml:"timeout,omitempty"`
	BaseURL    string `yaml:"base_url,omitempty"`
}

// EvaluationConfig holds scoring weights.
type EvaluationConfig struct {
	Weights models.Weights `yaml:"weights,omitempty"`
}

// DatabaseConfig holds the evaluation store location.
type DatabaseConfig struct {
	Path string `yaml:"path,omitempty"`
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Host string `yaml:"host,omitempty"`
	Port int    `yaml:"port,omitempty"`
}

// DataConfig holds the suggestion pair directories.
type DataConfig struct {
	Requests  string `yaml:"requests,omitempty"`
	Responses string `yaml:"responses,omitempty"`
}

// BatchConfig holds batch execution settings.
type BatchConfig struct {
	Workers int `yaml:"workers,omitempty"`
}

// Config is the top-level configuration loaded from clausegrade.yaml.
type Config struct {
	Model      ModelConfig      `yaml:"model,omitempty"`
	Evaluation EvaluationConfig `yaml:"evaluation,omitempty"`
	Database   DatabaseConfig   `yaml:"database,omitempty"`
	Server     ServerConfig     `yaml:"server,omitempty"`
	Data       DataConfig       `yaml:"data,omitempty"`
	Batch      BatchConfig      `yaml:"batch,omitempty"`
}

// New returns a Config with all hard-coded defaults populated.
func New() *Config {
	return &Config{
		Model: ModelConfig{
			Name:       DefaultModel,
			TimeoutSec: DefaultTimeoutSec,
		},
		Evaluation: EvaluationConfig{
			Weights: models.DefaultWeights(),
		},
		Database: DatabaseConfig{
			Path: DefaultDatabasePath,
		},
		Server: ServerConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		Data: DataConfig{
			Requests:  DefaultRequestDir,
			Responses: DefaultResponseDir,
		},
		Batch: BatchConfig{
			Workers: DefaultWorkers,
		},
	}
}

// Load reads the config file at path (DefaultConfigFile when empty),
// unmarshals it, and fills in missing fields with defaults. A missing
// default file returns defaults with a nil error; an explicitly named
// file must exist. Suspicious weight configurations are warned about,
// not rejected.
func Load(path string) (*Config, error) {
	cfg := New()
	explicit := path != ""
	if path == "" {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	mergeConfig(cfg, &fileCfg)
	warnOnWeights(cfg.Evaluation.Weights)
	return cfg, nil
}

// mergeConfig overlays non-zero values from src onto dst. Weights are
// taken as a complete triple when any of them is set.
func mergeConfig(dst, src *Config) {
	if src.Model.Name != "" {
		dst.Model.Name = src.Model.Name
	}
	if src.Model.TimeoutSec > 0 {
		dst.Model.TimeoutSec = src.Model.TimeoutSec
	}
	if src.Model.BaseURL != "" {
		dst.Model.BaseURL = src.Model.BaseURL
	}
	if src.Evaluation.Weights.Sum() != 0 {
		dst.Evaluation.Weights = src.Evaluation.Weights
	}
	if src.Database.Path != "" {
		dst.Database.Path = src.Database.Path
	}
	if src.Server.Host != "" {
		dst.Server.Host = src.Server.Host
	}
	if src.Server.Port > 0 {
		dst.Server.Port = src.Server.Port
	}
	if src.Data.Requests != "" {
		dst.Data.Requests = src.Data.Requests
	}
	if src.Data.Responses != "" {
		dst.Data.Responses = src.Data.Responses
	}
	if src.Batch.Workers > 0 {
		dst.Batch.Workers = src.Batch.Workers
	}
}

// warnOnWeights flags weight triples that can push the overall score out
// of the [0,10] range of its components. Deliberately a warning only:
// the evaluator trusts configured weights as-is.
func warnOnWeights(w models.Weights) {
	if math.Abs(w.Sum()-1.0) > 1e-9 {
		slog.Warn("evaluation weights do not sum to 1; overall scores may leave the 0-10 range",
			"compliance", w.Compliance,
			"minimal_edits", w.MinimalEdits,
			"example_usage", w.ExampleUsage,
			"sum", w.Sum())
	}
}
