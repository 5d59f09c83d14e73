/*
Package config manages TOML config for the logclust clustering engine.

InitConfig handles automatic config file creation and loading with fallback to defaults.
LoadConfig and SaveConfig provide direct fs for runtime changes.
*/
package config

import (
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/bastiangx/logclust/internal/utils"
)

// Config holds the entire config structure.
type Config struct {
	Mining  MiningConfig  `toml:"mining"`
	Join    JoinConfig    `toml:"join"`
	Input   InputConfig   `toml:"input"`
	Output  OutputConfig  `toml:"output"`
	Logging LoggingConfig `toml:"logging"`
}

// MiningConfig controls the frequent-word and candidate mining passes.
type MiningConfig struct {
	Support    int     `toml:"support"`
	RSupport   float64 `toml:"rsupport"`
	WSize      int     `toml:"wsize"`
	CSize      int     `toml:"csize"`
	AggrSup    bool    `toml:"aggrsup"`
	WTableSize int     `toml:"wtablesize"`
	InitSeed   uint64  `toml:"initseed"`
	WFilter    string  `toml:"wfilter"`
	WSearch    string  `toml:"wsearch"`
	WReplace   string  `toml:"wreplace"`
}

// JoinConfig controls word-weight cluster joining.
type JoinConfig struct {
	WWeight float64 `toml:"wweight"`
	WeightF int     `toml:"weightf"`
}

// InputConfig controls the external line pipeline (§6 collaborators).
type InputConfig struct {
	Paths      []string `toml:"paths"`
	ByteOffset int      `toml:"byteoffset"`
	LFilter    string   `toml:"lfilter"`
	Template   string   `toml:"template"`
	Separator  string   `toml:"separator"`
}

// OutputConfig controls emitted cluster rendering and the outlier file.
type OutputConfig struct {
	OutputMode  int    `toml:"outputmode"`
	DetailToken bool   `toml:"detailtoken"`
	Outliers    string `toml:"outliers"`
}

// LoggingConfig controls logger destination and verbosity.
type LoggingConfig struct {
	Debug  bool   `toml:"debug"`
	Syslog string `toml:"syslog"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Mining: MiningConfig{
			Support:    1,
			WTableSize: 100000,
			InitSeed:   1,
		},
		Join: JoinConfig{
			WeightF: 1,
		},
		Input: InputConfig{
			Separator: `[ ]+`,
		},
		Output: OutputConfig{
			OutputMode: 0,
		},
	}
}

// Validate rejects contradictory or out-of-range options before any pass
// runs (§7: configuration-invalid errors are reported and abort up front).
func (c *Config) Validate() error {
	if c.Mining.Support <= 0 && c.Mining.RSupport <= 0 {
		return fmt.Errorf("config: one of support or rsupport must be set")
	}
	if c.Mining.RSupport < 0 || c.Mining.RSupport > 100 {
		return fmt.Errorf("config: rsupport must be in [0,100], got %v", c.Mining.RSupport)
	}
	if c.Mining.AggrSup && c.Mining.CSize > 0 {
		return fmt.Errorf("config: aggrsup and csize are mutually exclusive")
	}
	triple := []string{c.Mining.WFilter, c.Mining.WSearch, c.Mining.WReplace}
	anySet, allSet := false, true
	for _, v := range triple {
		if v != "" {
			anySet = true
		} else {
			allSet = false
		}
	}
	if anySet && !allSet {
		return fmt.Errorf("config: wfilter, wsearch, and wreplace must be set together")
	}
	if c.Join.WWeight > 0 && (c.Join.WeightF != 1 && c.Join.WeightF != 2) {
		return fmt.Errorf("config: weightf must be 1 or 2, got %d", c.Join.WeightF)
	}
	if c.Join.WWeight < 0 || c.Join.WWeight > 1 {
		return fmt.Errorf("config: wweight must be in (0,1], got %v", c.Join.WWeight)
	}
	if c.Output.OutputMode != 0 && c.Output.OutputMode != 1 {
		return fmt.Errorf("config: outputmode must be 0 or 1, got %d", c.Output.OutputMode)
	}
	if c.Mining.WTableSize <= 0 {
		return fmt.Errorf("config: wtablesize must be positive, got %d", c.Mining.WTableSize)
	}
	return nil
}

// InitConfig loads config from file or creates default if missing.
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)
	if err := utils.EnsureDir(configDir); err != nil {
		return nil, err
	}
	if !utils.FileExists(configPath) {
		cfg := DefaultConfig()
		if err := SaveConfig(cfg, configPath); err != nil {
			return nil, err
		}
		log.Debugf("Created default config file at: ( %s )", utils.GetAbsolutePath(configPath))
		return cfg, nil
	}
	cfg, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config, using defaults: %v", err)
		return DefaultConfig(), nil
	}
	return cfg, nil
}

// LoadConfig loads from a TOML file.
func LoadConfig(configPath string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(configPath, &cfg); err != nil {
		log.Errorf("Failed to decode config file: %v", err)
		return nil, err
	}
	return &cfg, nil
}

// SaveConfig saves into a TOML file.
func SaveConfig(cfg *Config, configPath string) error {
	return utils.SaveTOMLFile(cfg, configPath)
}
