// Package config loads and validates planpilot's configuration file: the
// provider to instantiate, its target and auth strategy, plan file paths,
// and engine tuning knobs.
package config

import (
	"path/filepath"

	"github.com/spf13/viper"

	ppErrors "github.com/aryeko/planpilot/internal/errors"
)

// Config is planpilot's complete configuration, as described in the
// external interfaces contract (§6.1). All paths are resolved relative to
// the directory containing the config file.
type Config struct {
	// Provider identifies the provider adapter to instantiate (e.g. "github").
	Provider string `mapstructure:"provider"`
	// Target is an adapter-specific target string (e.g. "owner/repo").
	Target string `mapstructure:"target"`
	// Auth names the auth strategy: "gh-cli", "env", or "token".
	Auth string `mapstructure:"auth"`
	// Token is an inline token, only valid when Auth == "token".
	Token string `mapstructure:"token"`
	// BoardURL is the project board URL.
	BoardURL string `mapstructure:"board_url"`
	// PlanPaths resolves the plan files to load.
	PlanPaths PlanPathsConfig `mapstructure:"plan_paths"`
	// ValidationMode is "strict" (default) or "partial".
	ValidationMode string `mapstructure:"validation_mode"`
	// SyncPath is the path to the sync-map output file.
	SyncPath string `mapstructure:"sync_path"`
	// Label is applied to all items created by a sync run.
	Label string `mapstructure:"label"`
	// MaxConcurrent bounds per-phase concurrent provider calls.
	MaxConcurrent int `mapstructure:"max_concurrent"`
	// LogDir is the directory a run's sync.log is written under. Empty
	// means log to stderr instead of a file.
	LogDir string `mapstructure:"log_dir"`
	// LogLevel is one of DEBUG, INFO, WARN, ERROR.
	LogLevel string `mapstructure:"log_level"`
	// FieldConfig maps plan fields onto provider-specific board fields.
	FieldConfig FieldConfig `mapstructure:"field_config"`

	// configDir is the directory the config file was loaded from; all
	// relative paths in PlanPaths and SyncPath are resolved against it.
	configDir string
}

// PlanPathsConfig names the plan input files. Either Unified is set, or any
// subset of Epics/Stories/Tasks is set; the two forms are mutually
// exclusive (enforced by the validator).
type PlanPathsConfig struct {
	Unified string `mapstructure:"unified"`
	Epics   string `mapstructure:"epics"`
	Stories string `mapstructure:"stories"`
	Tasks   string `mapstructure:"tasks"`
}

// FieldConfig maps plan concepts onto provider-specific board field names.
type FieldConfig struct {
	Status             string            `mapstructure:"status"`
	Priority           string            `mapstructure:"priority"`
	Iteration          string            `mapstructure:"iteration"`
	SizeField          string            `mapstructure:"size_field"`
	SizeFromTshirt     map[string]string `mapstructure:"size_from_tshirt"`
	CreateTypeStrategy string            `mapstructure:"create_type_strategy"`
	CreateTypeMap      map[string]string `mapstructure:"create_type_map"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Auth:           "gh-cli",
		ValidationMode: "strict",
		SyncPath:       "sync-map.json",
		Label:          "planpilot",
		MaxConcurrent:  5,
		LogDir:         "logs",
		LogLevel:       "INFO",
		FieldConfig: FieldConfig{
			SizeFromTshirt: map[string]string{},
			CreateTypeMap:  map[string]string{},
		},
	}
}

// SetDefaults registers default values with viper so that unset keys in a
// partial config file fall back sensibly.
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("auth", defaults.Auth)
	viper.SetDefault("validation_mode", defaults.ValidationMode)
	viper.SetDefault("sync_path", defaults.SyncPath)
	viper.SetDefault("label", defaults.Label)
	viper.SetDefault("max_concurrent", defaults.MaxConcurrent)
	viper.SetDefault("log_dir", defaults.LogDir)
	viper.SetDefault("log_level", defaults.LogLevel)
	viper.SetDefault("field_config.size_from_tshirt", defaults.FieldConfig.SizeFromTshirt)
	viper.SetDefault("field_config.create_type_map", defaults.FieldConfig.CreateTypeMap)
}

// Load reads the configuration from the given file path into a Config,
// resolving plan and sync-map paths relative to the file's directory.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	SetDefaultsOn(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, ppErrors.NewConfigError("failed to read config file", err).WithKey(path)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, ppErrors.NewConfigError("failed to parse config file", err).WithKey(path)
	}
	cfg.configDir = filepath.Dir(path)
	cfg.resolvePaths()

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ppErrors.NewConfigError("config validation failed", errs)
	}

	return &cfg, nil
}

// SetDefaultsOn registers default values on a specific viper instance,
// mirroring SetDefaults but scoped to a per-load viper (used by Load so
// concurrent loads in tests do not share global viper state).
func SetDefaultsOn(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("auth", defaults.Auth)
	v.SetDefault("validation_mode", defaults.ValidationMode)
	v.SetDefault("sync_path", defaults.SyncPath)
	v.SetDefault("label", defaults.Label)
	v.SetDefault("max_concurrent", defaults.MaxConcurrent)
	v.SetDefault("log_dir", defaults.LogDir)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("field_config.size_from_tshirt", defaults.FieldConfig.SizeFromTshirt)
	v.SetDefault("field_config.create_type_map", defaults.FieldConfig.CreateTypeMap)
}

// resolvePaths rewrites relative plan and sync-map paths to be relative to
// the config file's directory, per §6.1's "all paths are resolved relative
// to the config file's directory" rule.
func (c *Config) resolvePaths() {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(c.configDir, p)
	}

	c.PlanPaths.Unified = resolve(c.PlanPaths.Unified)
	c.PlanPaths.Epics = resolve(c.PlanPaths.Epics)
	c.PlanPaths.Stories = resolve(c.PlanPaths.Stories)
	c.PlanPaths.Tasks = resolve(c.PlanPaths.Tasks)
	c.SyncPath = resolve(c.SyncPath)
	c.LogDir = resolve(c.LogDir)
}

// ConcurrencyLimit returns MaxConcurrent, or the default of 5 if unset or
// non-positive.
func (c *Config) ConcurrencyLimit() int {
	if c.MaxConcurrent <= 0 {
		return 5
	}
	return c.MaxConcurrent
}
