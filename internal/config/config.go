// Package config loads command configuration from defaults, a TOML file,
// FORMSTATE_* environment variables and flags, in increasing priority.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
)

const (
	DefaultConfigFile  = "formstate.toml"
	DefaultSchemaFile  = "form.yaml"
	DefaultOutput      = "json"
	DefaultMaxAttempts = 3
	DefaultHTTPAddr    = ":8080"
	DefaultMetricsPath = "/metrics"
)

// Config holds settings shared by the commands.
type Config struct {
	SchemaFile  string     `toml:"schema_file"`
	Output      string     `toml:"output"`
	MaxAttempts int        `toml:"max_attempts"`
	Watch       bool       `toml:"watch"`
	HTTP        HTTPConfig `toml:"http"`
	Log         LogConfig  `toml:"log"`

	// File is the config file that was read, if any.
	File string `toml:"-"`
}

// HTTPConfig configures formstate-http.
type HTTPConfig struct {
	Addr        string `toml:"addr"`
	MetricsPath string `toml:"metrics_path"`
	Title       string `toml:"title"`
}

// LogConfig configures the command logger.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "text" or "json"
	Caller bool   `toml:"caller"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		SchemaFile:  DefaultSchemaFile,
		Output:      DefaultOutput,
		MaxAttempts: DefaultMaxAttempts,
		HTTP: HTTPConfig{
			Addr:        DefaultHTTPAddr,
			MetricsPath: DefaultMetricsPath,
			Title:       "Form",
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load builds the configuration. Flags are registered on fs and parsed from
// args; only flags given explicitly override file and environment values.
// The config file is taken from -config, then FORMSTATE_CONFIG, then
// ./formstate.toml when it exists.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := Default()

	flags := Default()
	var configPath string
	fs.StringVar(&configPath, "config", "", "path to a TOML config file")
	fs.StringVar(&flags.SchemaFile, "schema", flags.SchemaFile, "path to the YAML form schema")
	fs.StringVar(&flags.Output, "output", flags.Output, "output format: json, form or pretty")
	fs.IntVar(&flags.MaxAttempts, "max-attempts", flags.MaxAttempts, "prompts per invalid field, 0 for unlimited")
	fs.BoolVar(&flags.Watch, "watch", flags.Watch, "reload the schema file when it changes")
	fs.StringVar(&flags.HTTP.Addr, "addr", flags.HTTP.Addr, "HTTP listen address")
	fs.StringVar(&flags.Log.Level, "log-level", flags.Log.Level, "log level")
	fs.StringVar(&flags.Log.Format, "log-format", flags.Log.Format, "log format: text or json")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	if configPath == "" {
		configPath = os.Getenv("FORMSTATE_CONFIG")
	}
	if configPath == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			configPath = DefaultConfigFile
		}
	}
	if configPath != "" {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", configPath, err)
		}
		cfg.File = configPath
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "schema":
			cfg.SchemaFile = flags.SchemaFile
		case "output":
			cfg.Output = flags.Output
		case "max-attempts":
			cfg.MaxAttempts = flags.MaxAttempts
		case "watch":
			cfg.Watch = flags.Watch
		case "addr":
			cfg.HTTP.Addr = flags.HTTP.Addr
		case "log-level":
			cfg.Log.Level = flags.Log.Level
		case "log-format":
			cfg.Log.Format = flags.Log.Format
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromEnv(cfg *Config) error {
	if v := os.Getenv("FORMSTATE_SCHEMA"); v != "" {
		cfg.SchemaFile = v
	}
	if v := os.Getenv("FORMSTATE_OUTPUT"); v != "" {
		cfg.Output = v
	}
	if v := os.Getenv("FORMSTATE_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FORMSTATE_MAX_ATTEMPTS: %w", err)
		}
		cfg.MaxAttempts = n
	}
	if v := os.Getenv("FORMSTATE_WATCH"); v != "" {
		cfg.Watch = boolFromString(v)
	}
	if v := os.Getenv("FORMSTATE_HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("FORMSTATE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("FORMSTATE_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	return nil
}

// Validate checks enumerated values.
func (c *Config) Validate() error {
	switch c.Output {
	case "json", "form", "pretty":
	default:
		return fmt.Errorf("config: unknown output format %q", c.Output)
	}
	if c.MaxAttempts < 0 {
		return errors.New("config: max_attempts must not be negative")
	}
	if strings.TrimSpace(c.SchemaFile) == "" {
		return errors.New("config: schema_file is required")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Logger builds the zerolog logger described by c, writing to w.
func (c LogConfig) Logger(w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("config: %w", err)
	}
	if c.Format == "text" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	ctx := zerolog.New(w).Level(level).With().Timestamp()
	if c.Caller {
		ctx = ctx.Caller()
	}
	return ctx.Logger(), nil
}

func boolFromString(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
