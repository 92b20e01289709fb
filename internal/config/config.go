// Package config provides configuration management for the application.
// It supports a single YAML configuration file with environment variable
// overrides, following the project convention of a closed, enumerated
// configuration type rather than a dynamic key/value bag.
package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/pairreview/pairreview/consts"
	"github.com/pairreview/pairreview/internal/provider"
	"github.com/pairreview/pairreview/pkg/logger"
	"github.com/pairreview/pairreview/pkg/telemetry"
)

// Default configuration values
const (
	defaultTheme             = "system"
	defaultMaxConcurrentRuns = 3
	defaultMaxVoiceFanout    = 0 // 0 = unbounded
	defaultOTLPEndpoint      = "localhost:4317"
	defaultPrometheusPort    = 9090
)

// knownTopLevelKeys lists every key config.go recognizes. Anything else in
// the file is logged at warn and otherwise ignored: keys are a closed,
// enumerated set, not a dynamic bag (see SPEC_FULL.md section 9).
var knownTopLevelKeys = map[string]bool{
	"port":         true,
	"theme":        true,
	"github_token": true,
	"yolo":         true,
	"providers":    true,
	"monorepos":    true,
	"logging":      true,
	"telemetry":    true,
	"orchestrator": true,
	"store":        true,
}

// Config represents the complete application configuration.
type Config struct {
	Port         int                         `yaml:"port"`
	Theme        string                      `yaml:"theme"`
	GitHubToken  string                      `yaml:"github_token"`
	Yolo         bool                        `yaml:"yolo"`
	Providers    map[string]ProviderOverride `yaml:"providers"`
	Monorepos    map[string]MonorepoConfig   `yaml:"monorepos"`
	Logging      LoggingConfig               `yaml:"logging"`
	Telemetry    TelemetryConfig             `yaml:"telemetry"`
	Orchestrator OrchestratorConfig          `yaml:"orchestrator"`
	Store        StoreConfig                 `yaml:"store"`
}

// ProviderOverride customizes a built-in provider definition. Fields left
// zero-valued mean "keep the built-in"; see provider.Merge for the exact
// merge semantics (wholesale replace for Command/Args/InstallInstructions,
// additive union for Env, id-keyed replace-or-append for Models).
type ProviderOverride struct {
	Command             string            `yaml:"command"`
	ExtraArgs           []string          `yaml:"extra_args"`
	Env                 map[string]string `yaml:"env"`
	InstallInstructions string            `yaml:"installInstructions"`
	Models              []ModelOverride   `yaml:"models"`
}

// ModelOverride mirrors provider.Model for config-file authoring.
type ModelOverride struct {
	ID          string `yaml:"id"`
	Tier        string `yaml:"tier"`
	Name        string `yaml:"name"`
	Badge       string `yaml:"badge"`
	Default     bool   `yaml:"default"`
	Tagline     string `yaml:"tagline"`
	Description string `yaml:"description"`
}

// MonorepoConfig names a monorepo checkout a review session can target by
// name instead of by raw path.
type MonorepoConfig struct {
	Path                 string `yaml:"path"`
	CheckoutScript       string `yaml:"checkout_script"`
	WorktreeDirectory    string `yaml:"worktree_directory"`
	WorktreeNameTemplate string `yaml:"worktree_name_template"`
}

// LoggingConfig is the flat, user-facing shape of logging config; ToLogger
// translates it to the logger package's own Config.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxAgeDays int    `yaml:"max_age_days"`
	MaxBackups int    `yaml:"max_backups"`
	Compress   bool   `yaml:"compress"`
	AccessLog  bool   `yaml:"access_log"`
}

// ToLogger converts the user-facing logging config into logger.Config.
func (l LoggingConfig) ToLogger() logger.Config {
	return logger.Config{
		Level:      l.Level,
		Format:     l.Format,
		File:       l.File,
		MaxSize:    l.MaxSizeMB,
		MaxAge:     l.MaxAgeDays,
		MaxBackups: l.MaxBackups,
		Compress:   l.Compress,
		AccessLog:  l.AccessLog,
	}
}

// TelemetryConfig is the flat, user-facing shape of telemetry config;
// ToTelemetry translates it to the telemetry package's own Config.
type TelemetryConfig struct {
	Enabled        bool   `yaml:"enabled"`
	OTLPEndpoint   string `yaml:"otlp_endpoint"`
	PrometheusPort int    `yaml:"prometheus_port"`
}

// ToTelemetry converts the user-facing telemetry config into telemetry.Config.
func (t TelemetryConfig) ToTelemetry() telemetry.Config {
	return telemetry.Config{
		Enabled:     t.Enabled,
		ServiceName: consts.ServiceName,
		OTLP: telemetry.OTLPConfig{
			Enabled:  t.Enabled && t.OTLPEndpoint != "",
			Endpoint: t.OTLPEndpoint,
			Insecure: true,
		},
		Prometheus: telemetry.PrometheusConfig{
			Enabled: t.Enabled && t.PrometheusPort != 0,
			Port:    t.PrometheusPort,
		},
	}
}

// OrchestratorConfig bounds the review orchestrator's concurrency.
type OrchestratorConfig struct {
	MaxConcurrentRuns int `yaml:"max_concurrent_runs"`
	// MaxVoiceFanout is read from the config file but not passed to the
	// orchestrator: every voice of a level runs at once, whatever its value.
	MaxVoiceFanout int `yaml:"max_voice_fanout"`
}

// StoreConfig overrides the default store location.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// Default returns a default configuration.
func Default() *Config {
	return &Config{
		Port:      consts.DefaultPort,
		Theme:     defaultTheme,
		Providers: map[string]ProviderOverride{},
		Monorepos: map[string]MonorepoConfig{},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  100,
			MaxAgeDays: 7,
			MaxBackups: 5,
		},
		Telemetry: TelemetryConfig{
			Enabled:        false,
			OTLPEndpoint:   defaultOTLPEndpoint,
			PrometheusPort: defaultPrometheusPort,
		},
		Orchestrator: OrchestratorConfig{
			MaxConcurrentRuns: defaultMaxConcurrentRuns,
			MaxVoiceFanout:    defaultMaxVoiceFanout,
		},
	}
}

// Load loads configuration from a YAML file with environment variable
// expansion. A missing file is not an error: Default() is returned as-is,
// since this tool is expected to run with no config present on first use.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	expanded := expandEnvVars(string(data))

	warnUnknownKeys(expanded)

	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// warnUnknownKeys logs, at warn, any top-level config key config.go does
// not recognize. It never fails the load: an unrecognized key is logged,
// not silently absorbed, but also not fatal.
func warnUnknownKeys(content string) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal([]byte(content), &raw); err != nil {
		return
	}
	for key := range raw {
		if !knownTopLevelKeys[key] {
			logger.Get().Warn("ignoring unknown config key", zap.String("key", key))
		}
	}
}

// expandEnvVars replaces ${VAR_NAME} and ${VAR_NAME:-default} patterns with
// environment variable values. Only matches ${VAR_NAME} form (not $VAR_NAME)
// to avoid misinterpreting tokens that happen to contain a dollar sign.
func expandEnvVars(content string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(content, func(match string) string {
		varName := match[2 : len(match)-1]

		parts := strings.SplitN(varName, ":-", 2)
		varName = parts[0]

		if value := os.Getenv(varName); value != "" {
			return value
		}

		if len(parts) > 1 {
			return parts[1]
		}

		return ""
	})
}

// Address returns the HTTP listen address for the configured port.
func (c *Config) Address() string {
	return "0.0.0.0:" + strconv.Itoa(c.Port)
}

// ProviderDefinition converts a config-file provider override into a
// provider.Definition suitable for provider.New/provider.Merge. Returns the
// zero value if id has no override configured.
func (c *Config) ProviderDefinition(id string) *provider.Definition {
	override, ok := c.Providers[id]
	if !ok {
		return nil
	}
	def := provider.Definition{
		Command:             override.Command,
		Args:                override.ExtraArgs,
		Env:                 override.Env,
		InstallInstructions: override.InstallInstructions,
	}
	for _, m := range override.Models {
		def.Models = append(def.Models, provider.Model{
			ID:          m.ID,
			Tier:        provider.Tier(m.Tier),
			Name:        m.Name,
			Badge:       m.Badge,
			Default:     m.Default,
			Tagline:     m.Tagline,
			Description: m.Description,
		})
	}
	return &def
}

// DefaultStorePath returns the per-user store location from SPEC_FULL.md
// section 6.3: $XDG_CONFIG_HOME/pairreview/store.db, falling back to
// ~/.config/pairreview/store.db.
func DefaultStorePath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "pairreview", "store.db"), nil
}

// StorePath returns the configured store path, falling back to
// DefaultStorePath when Store.Path is unset.
func (c *Config) StorePath() (string, error) {
	if c.Store.Path != "" {
		return c.Store.Path, nil
	}
	return DefaultStorePath()
}

// DefaultConfigPath returns the per-user config file location, alongside
// DefaultStorePath: $XDG_CONFIG_HOME/pairreview/config.yaml, falling back
// to ~/.config/pairreview/config.yaml.
func DefaultConfigPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "pairreview", "config.yaml"), nil
}
