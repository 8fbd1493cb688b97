// Package config loads permaudit settings from flags, PERMAUDIT_* environment
// variables, the config file and built-in defaults, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Source backends.
const (
	SourceADB    = "adb"
	SourceExport = "export"
	SourceDB     = "db"
)

// Output formats.
const (
	OutputTable = "table"
	OutputJSON  = "json"
)

// Config is the resolved configuration.
type Config struct {
	Source        string        `mapstructure:"source"`
	ADB           ADBConfig     `mapstructure:"adb"`
	Export        ExportConfig  `mapstructure:"export"`
	DB            DBConfig      `mapstructure:"db"`
	Window        time.Duration `mapstructure:"window"`
	ProbeWindow   time.Duration `mapstructure:"probe_window"`
	IncludeSystem bool          `mapstructure:"include_system"`
	Icons         bool          `mapstructure:"icons"`
	OpenSettings  bool          `mapstructure:"open_settings"`
	Output        string        `mapstructure:"output"`
	Log           LogConfig     `mapstructure:"log"`
}

type ADBConfig struct {
	Path     string `mapstructure:"path"`
	Serial   string `mapstructure:"serial"`
	Timezone string `mapstructure:"timezone"`
}

type ExportConfig struct {
	Path string `mapstructure:"path"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// Dir returns the permaudit config directory, respecting XDG_CONFIG_HOME.
// Defaults to ~/.config/permaudit if XDG_CONFIG_HOME is not set.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "permaudit"), nil
}

// DefaultDBPath returns ~/.permaudit/permaudit.db.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".permaudit", "permaudit.db")
	}
	return filepath.Join(home, ".permaudit", "permaudit.db")
}

// NewViper returns a viper instance with defaults and environment binding
// set up. Flags are bound by the caller.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("source", SourceADB)
	v.SetDefault("adb.path", "adb")
	v.SetDefault("adb.serial", "")
	v.SetDefault("adb.timezone", "Local")
	v.SetDefault("export.path", "")
	v.SetDefault("db.path", DefaultDBPath())
	v.SetDefault("window", "24h")
	v.SetDefault("probe_window", "1h")
	v.SetDefault("include_system", false)
	v.SetDefault("icons", false)
	v.SetDefault("open_settings", false)
	v.SetDefault("output", OutputTable)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.json", false)

	v.SetEnvPrefix("PERMAUDIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the config file into v and decodes the result. An explicit
// configFile must exist; the default file in Dir() is optional.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if dir, err := Dir(); err == nil {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.DecodeHookFuncType(durationHook))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated values and windows.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceADB, SourceExport, SourceDB:
	default:
		return fmt.Errorf("invalid source %q: must be adb, export or db", c.Source)
	}

	switch c.Output {
	case OutputTable, OutputJSON:
	default:
		return fmt.Errorf("invalid output %q: must be table or json", c.Output)
	}

	if c.Window <= 0 {
		return fmt.Errorf("invalid window %s: must be positive", c.Window)
	}
	if c.ProbeWindow <= 0 {
		return fmt.Errorf("invalid probe_window %s: must be positive", c.ProbeWindow)
	}

	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves adb.timezone.
func (c *Config) Location() (*time.Location, error) {
	switch c.ADB.Timezone {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.ADB.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid adb.timezone %q: %w", c.ADB.Timezone, err)
	}
	return loc, nil
}

// ParseDuration extends time.ParseDuration with a whole-day suffix, so "7d"
// means 168h.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}

func durationHook(f reflect.Type, t reflect.Type, data any) (any, error) {
	if t != reflect.TypeOf(time.Duration(0)) || f.Kind() != reflect.String {
		return data, nil
	}
	return ParseDuration(reflect.ValueOf(data).String())
}
