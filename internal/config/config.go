// Package config provides unified configuration loading for dopasim.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dervalinor/Projecto-de-electroquimica/internal/backup"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/constants"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/current"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/simerr"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/simulation"
)

const component = "config"

// DirName is the per-user data directory under the home directory.
const DirName = ".dopasim"

// FileName is the config file inside the data directory.
const FileName = "config.yaml"

// Config contains all dopasim configuration settings.
type Config struct {
	// Seed seeds every run started from this configuration.
	Seed uint64 `json:"seed" yaml:"seed"`

	// FSCV is the default fast-scan voltammetry scenario.
	FSCV simulation.FSCVScenario `json:"fscv" yaml:"fscv"`

	// Oxidation is the default stochastic oxidation scenario.
	Oxidation simulation.OxidationScenario `json:"oxidation" yaml:"oxidation"`

	// Sweep is the default Butler-Volmer overpotential sweep.
	Sweep current.SweepParams `json:"sweep" yaml:"sweep"`

	// Cottrell is the default time-domain Butler-Volmer plus Cottrell scan.
	Cottrell simulation.CottrellScenario `json:"cottrell" yaml:"cottrell"`

	Logging LoggingConfig `json:"logging" yaml:"logging"`
	Store   StoreConfig   `json:"store" yaml:"store"`
	Export  ExportConfig  `json:"export" yaml:"export"`
	Backup  BackupConfig  `json:"backup" yaml:"backup"`
}

// LoggingConfig configures dopasim's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables the run trace at ~/.dopasim/trace.jsonl.
	// "trace" additionally logs every applied stress pulse.
	Level string `json:"level" yaml:"level"`
}

// StoreConfig configures the run database.
type StoreConfig struct {
	// Dir overrides the directory holding dopasim.db. Supports ${VAR} syntax.
	// Empty means the data directory.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`
}

// ExportConfig configures series export.
type ExportConfig struct {
	// Format is the default export format: "arrow" or "csv".
	Format string `json:"format" yaml:"format"`
}

// BackupConfig configures run database archives.
type BackupConfig struct {
	Retention RetentionConfig `json:"retention" yaml:"retention"`
}

// RetentionConfig decides which archives survive a new backup. An archive
// is kept if any configured limit keeps it.
type RetentionConfig struct {
	// MaxCount keeps the newest archives. 0 disables the limit.
	MaxCount int `json:"max_count" yaml:"max_count"`

	// MaxAge keeps archives younger than this, e.g. "30d" or "2w".
	MaxAge string `json:"max_age,omitempty" yaml:"max_age,omitempty"`

	// MaxTotalSize keeps the newest archives that fit, e.g. "500MB".
	MaxTotalSize string `json:"max_total_size,omitempty" yaml:"max_total_size,omitempty"`
}

// Default returns a Config reproducing the reference dopamine experiments.
func Default() *Config {
	return &Config{
		Seed:      constants.DefaultSeed,
		FSCV:      simulation.DefaultFSCVScenario(),
		Oxidation: simulation.DefaultOxidationScenario(),
		Sweep:     current.DefaultSweepParams(),
		Cottrell:  simulation.DefaultCottrellScenario(),
		Logging: LoggingConfig{
			Level: "info",
		},
		Export: ExportConfig{
			Format: "arrow",
		},
		Backup: BackupConfig{
			Retention: RetentionConfig{MaxCount: 10},
		},
	}
}

// FSCVScenario returns the configured FSCV scenario seeded with Seed.
func (c *Config) FSCVScenario() simulation.FSCVScenario {
	s := c.FSCV
	s.Seed = c.Seed
	return s
}

// OxidationScenario returns the configured oxidation scenario seeded with Seed.
func (c *Config) OxidationScenario() simulation.OxidationScenario {
	s := c.Oxidation
	s.Seed = c.Seed
	return s
}

// Dir returns the dopasim data directory: $DOPASIM_HOME if set, otherwise
// ~/.dopasim.
func Dir() (string, error) {
	if v := os.Getenv("DOPASIM_HOME"); v != "" {
		return v, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, DirName), nil
}

// Path returns the default config file location.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// StoreDir returns the directory for the run database.
func (c *Config) StoreDir() (string, error) {
	if c.Store.Dir != "" {
		return c.Store.Dir, nil
	}
	return Dir()
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.dopasim/config.yaml -> environment variables
func Load() (*Config, error) {
	config := Default()

	// Try to load from default config file
	if configPath, err := Path(); err == nil {
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	// Apply environment variable overrides
	applyEnvOverrides(config)

	return config, nil
}

// LoadPath loads from path when it is non-empty and from the default
// locations otherwise. Environment overrides apply in both cases.
func LoadPath(path string) (*Config, error) {
	if path == "" {
		return Load()
	}
	config, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	applyEnvOverrides(config)
	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file. Keys missing
// from the file keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	config.Store.Dir = expandEnvVars(config.Store.Dir)

	return config, nil
}

// Save writes the configuration as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks that the configuration is valid. Every numeric problem is
// reported as simerr.ErrInvalidParameter.
func (c *Config) Validate() error {
	if err := c.FSCV.Validate(); err != nil {
		return fmt.Errorf("fscv: %w", err)
	}
	if err := c.Oxidation.Validate(); err != nil {
		return fmt.Errorf("oxidation: %w", err)
	}
	if err := c.Sweep.Validate(); err != nil {
		return fmt.Errorf("sweep: %w", err)
	}
	if err := c.Cottrell.Validate(); err != nil {
		return fmt.Errorf("cottrell: %w", err)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return simerr.Invalid(component, "logging.level", 0,
			fmt.Sprintf("invalid log level %q (valid: info, debug, trace, or empty for default)", c.Logging.Level))
	}

	validFormats := map[string]bool{"": true, "arrow": true, "csv": true}
	if !validFormats[c.Export.Format] {
		return simerr.Invalid(component, "export.format", 0,
			fmt.Sprintf("invalid export format %q (valid: arrow, csv)", c.Export.Format))
	}

	r := c.Backup.Retention
	if r.MaxCount < 0 {
		return simerr.Invalid(component, "backup.retention.max_count", float64(r.MaxCount), "must not be negative")
	}
	if r.MaxAge != "" {
		if _, err := backup.ParseDuration(r.MaxAge); err != nil {
			return simerr.Invalid(component, "backup.retention.max_age", 0, err.Error())
		}
	}
	if r.MaxTotalSize != "" {
		if _, err := backup.ParseSize(r.MaxTotalSize); err != nil {
			return simerr.Invalid(component, "backup.retention.max_total_size", 0, err.Error())
		}
	}

	return nil
}

// RetentionPolicy builds the archive retention policy. With no limit
// configured every archive is kept.
func (c *Config) RetentionPolicy() backup.RetentionPolicy {
	r := c.Backup.Retention
	var policies []backup.RetentionPolicy
	if r.MaxCount > 0 {
		policies = append(policies, &backup.CountPolicy{MaxCount: r.MaxCount})
	}
	if d, err := backup.ParseDuration(r.MaxAge); err == nil {
		policies = append(policies, &backup.AgePolicy{MaxAge: d})
	}
	if n, err := backup.ParseSize(r.MaxTotalSize); err == nil {
		policies = append(policies, &backup.SizePolicy{MaxTotalBytes: n})
	}

	switch len(policies) {
	case 0:
		return keepAll{}
	case 1:
		return policies[0]
	default:
		return &backup.CompositePolicy{Policies: policies}
	}
}

type keepAll struct{}

func (keepAll) Apply(b []backup.Info) []backup.Info { return b }

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("DOPASIM_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			config.Seed = n
		}
	}

	if v := os.Getenv("DOPASIM_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	if v := os.Getenv("DOPASIM_EXPORT_FORMAT"); v != "" {
		config.Export.Format = v
	}
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
