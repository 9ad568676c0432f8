// Package config loads generator configuration.
//
// Values start from NewDefaultConfig, are overlaid by an optional YAML file
// (the --config flag or PDFGEN_CONFIG), then by explicit CLI flags, and are
// finally checked with Validate.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"go-pdf-fixtures/internal/logger"
	"go-pdf-fixtures/internal/model"
)

// EnvConfigPath names the environment variable holding a config file path
const EnvConfigPath = "PDFGEN_CONFIG"

// Config is the generator configuration
type Config struct {
	// Mode is the run-wide rendering path: vector or raster.
	Mode model.RenderMode `yaml:"mode" validate:"oneof=vector raster"`

	// Workers bounds how many rows are processed at once; 1 runs rows
	// strictly in order.
	Workers int `yaml:"workers" validate:"min=1,max=32"`

	// Tolerance is the fractional deviation from the target size allowed
	// before a verification warning is logged.
	Tolerance float64 `yaml:"tolerance" validate:"gt=0,lt=1"`

	// SizeColumn and FilenameColumn are the reserved directive columns.
	SizeColumn     string `yaml:"size_column" validate:"required"`
	FilenameColumn string `yaml:"filename_column" validate:"required,nefield=SizeColumn"`

	// ValidateArtifacts runs a structural PDF check on every encoded
	// artifact before inflation. A failed check skips the row.
	ValidateArtifacts bool `yaml:"validate_artifacts"`

	Raster    RasterConfig    `yaml:"raster"`
	Fabricate FabricateConfig `yaml:"fabricate"`
}

// RasterConfig configures the scanned-document path
type RasterConfig struct {
	// FontPath is an optional preferred TrueType/OpenType font. When it is
	// empty or unreadable the embedded fonts are used.
	FontPath string `yaml:"font_path"`
}

// FabricateConfig configures upstream database generation
type FabricateConfig struct {
	Command   string `yaml:"command" validate:"required"`
	Workspace string `yaml:"workspace" validate:"required"`
}

// NewDefaultConfig returns the built-in defaults
func NewDefaultConfig() *Config {
	return &Config{
		Mode:           model.Vector,
		Workers:        1,
		Tolerance:      0.1,
		SizeColumn:     "file_size",
		FilenameColumn: "file_name",
		Fabricate: FabricateConfig{
			Command:   "fabricate",
			Workspace: "Default",
		},
	}
}

// Load reads path over the defaults. An empty path falls back to
// PDFGEN_CONFIG; when both are empty the defaults are returned unchanged.
func Load(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	logger.Debug("config loaded", "path", path)
	return cfg, nil
}

// Validate checks the struct tags and returns a readable error
func (cfg *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid config: %s failed %q check", verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Job builds the generation job for one table run
func (cfg *Config) Job(dbPath, table, outputDir, title string) model.GenerationJob {
	return model.GenerationJob{
		DBPath:            dbPath,
		Table:             table,
		OutputDir:         outputDir,
		Title:             title,
		Mode:              cfg.Mode,
		Workers:           cfg.Workers,
		Tolerance:         cfg.Tolerance,
		SizeColumn:        cfg.SizeColumn,
		FilenameColumn:    cfg.FilenameColumn,
		ValidateArtifacts: cfg.ValidateArtifacts,
		FontPath:          cfg.Raster.FontPath,
	}
}
