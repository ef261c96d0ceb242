package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	uwuerrors "github.com/hpungsan/uwu/internal/errors"
	"github.com/hpungsan/uwu/internal/uwu"
)

// EnvPrefix prefixes environment overrides, e.g. UWU_STUTTER_CHANCE=2.
const EnvPrefix = "UWU"

// Config holds application configuration.
type Config struct {
	// Engine defaults. Requests may override each of these.
	Lowercase          bool `mapstructure:"lowercase" json:"lowercase"`
	Expressions        bool `mapstructure:"expressions" json:"expressions"`
	LetterSubstitution bool `mapstructure:"letter_substitution" json:"letter_substitution"`
	Stutter            bool `mapstructure:"stutter" json:"stutter"`
	StutterChance      int  `mapstructure:"stutter_chance" json:"stutter_chance"`
	Decoration         bool `mapstructure:"decoration" json:"decoration"`
	DecorationChance   int  `mapstructure:"decoration_chance" json:"decoration_chance"`

	// History records every transform in the local database when true.
	History bool `mapstructure:"history" json:"history"`

	// MaxInputChars rejects larger inputs in the web and MCP adapters.
	// 0 disables the limit.
	MaxInputChars int `mapstructure:"max_input_chars" json:"max_input_chars"`

	// BatchWorkers bounds parallelism of batch transforms. 0 means GOMAXPROCS.
	BatchWorkers int `mapstructure:"batch_workers" json:"batch_workers"`

	// WebBind and WebPort are the defaults for `uwu serve`.
	WebBind string `mapstructure:"web_bind" json:"web_bind"`
	WebPort int    `mapstructure:"web_port" json:"web_port"`

	// DBMaxOpenConns and DBMaxIdleConns tune the history connection pool.
	// 0 keeps the database/sql defaults.
	DBMaxOpenConns int `mapstructure:"db_max_open_conns" json:"db_max_open_conns"`
	DBMaxIdleConns int `mapstructure:"db_max_idle_conns" json:"db_max_idle_conns"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Lists from the global and repo configs are merged.
	DisabledTools []string `mapstructure:"disabled_tools" json:"disabled_tools,omitempty"`

	// DisabledTypes disables every MCP tool of a type ("uwuify", "history").
	// Lists from the global and repo configs are merged.
	DisabledTypes []string `mapstructure:"disabled_types" json:"disabled_types,omitempty"`
}

// DefaultConfig returns the default configuration. Engine fields match uwu.Default.
func DefaultConfig() *Config {
	d := uwu.Default()
	return &Config{
		Lowercase:          d.Lowercase,
		Expressions:        d.Expressions,
		LetterSubstitution: d.LetterSubstitution,
		Stutter:            d.Stutter,
		StutterChance:      int(d.StutterChance),
		Decoration:         d.Decoration,
		DecorationChance:   int(d.DecorationChance),
		MaxInputChars:      100000,
		WebBind:            "127.0.0.1",
		WebPort:            8077,
	}
}

// newViper returns a viper instance seeded with defaults and env overrides.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("json")

	d := DefaultConfig()
	v.SetDefault("lowercase", d.Lowercase)
	v.SetDefault("expressions", d.Expressions)
	v.SetDefault("letter_substitution", d.LetterSubstitution)
	v.SetDefault("stutter", d.Stutter)
	v.SetDefault("stutter_chance", d.StutterChance)
	v.SetDefault("decoration", d.Decoration)
	v.SetDefault("decoration_chance", d.DecorationChance)
	v.SetDefault("history", d.History)
	v.SetDefault("max_input_chars", d.MaxInputChars)
	v.SetDefault("batch_workers", d.BatchWorkers)
	v.SetDefault("web_bind", d.WebBind)
	v.SetDefault("web_port", d.WebPort)
	v.SetDefault("db_max_open_conns", d.DBMaxOpenConns)
	v.SetDefault("db_max_idle_conns", d.DBMaxIdleConns)
	v.SetDefault("disabled_tools", []string{})
	v.SetDefault("disabled_types", []string{})

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	return v
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.uwu.
func Load(baseDir string) (*Config, error) {
	return LoadWithRepo(baseDir, "")
}

// LoadWithRepo loads configuration from both global (~/.uwu) and repo (.uwu) directories.
// Repo config is found by walking upward from startDir to find the nearest .uwu/config.json.
// Precedence: defaults, then global, then repo, then UWU_* environment variables.
// Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	v := newViper()

	var tools, types []string
	for _, path := range []string{filepath.Join(globalDir, "config.json"), FindRepoConfig(startDir)} {
		layer, err := readLayer(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		if err := v.MergeConfigMap(layer.AllSettings()); err != nil {
			return nil, fmt.Errorf("merge %s: %w", path, err)
		}
		tools = mergeStringSlice(tools, layer.GetStringSlice("disabled_tools"))
		types = mergeStringSlice(types, layer.GetStringSlice("disabled_types"))
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.DisabledTools = mergeStringSlice(tools, cfg.DisabledTools)
	cfg.DisabledTypes = mergeStringSlice(types, cfg.DisabledTypes)

	return cfg, nil
}

// readLayer parses one JSON config file. Returns nil if the file doesn't exist.
func readLayer(path string) (*viper.Viper, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	layer := viper.New()
	layer.SetConfigType("json")
	if err := layer.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return layer, nil
}

// FindRepoConfig walks upward from startDir to find the nearest .uwu/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	if startDir == "" {
		return ""
	}
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".uwu", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root, not found
			return ""
		}
		dir = parent
	}
}

// Engine converts the engine fields into a validated uwu.Config.
func (c *Config) Engine() (uwu.Config, error) {
	stutterChance, err := Chance("stutter_chance", c.StutterChance)
	if err != nil {
		return uwu.Config{}, err
	}
	decorationChance, err := Chance("decoration_chance", c.DecorationChance)
	if err != nil {
		return uwu.Config{}, err
	}

	cfg := uwu.Config{
		Lowercase:          c.Lowercase,
		Expressions:        c.Expressions,
		LetterSubstitution: c.LetterSubstitution,
		Stutter:            c.Stutter,
		StutterChance:      stutterChance,
		Decoration:         c.Decoration,
		DecorationChance:   decorationChance,
	}
	if err := cfg.Validate(); err != nil {
		return uwu.Config{}, err
	}
	return cfg, nil
}

// Chance checks that v fits a byte-sized chance parameter.
func Chance(field string, v int) (uint8, error) {
	if v < 0 || v > 255 {
		return 0, uwuerrors.NewInvalidConfig(field, fmt.Sprintf("must be between 1 and 255, got %d", v))
	}
	return uint8(v), nil
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
