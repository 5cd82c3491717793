// Package config resolves a run's settings from flags, BEARINGS_* environment
// variables and an optional yaml file.
package config

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/kass/go-bearings/pkg/output"
	"github.com/kass/go-bearings/pkg/units"
)

// Keys shared by flags, environment variables and the config file.
const (
	KeyConfig          = "config"
	KeyInfile          = "infile"
	KeyLon             = "lon"
	KeyLat             = "lat"
	KeyUnits           = "distance-units"
	KeyFileType        = "file-type"
	KeySheet           = "sheet"
	KeyFormat          = "format"
	KeyLogLevel        = "log-level"
	KeyLogFormat       = "log-format"
	KeyMetricsTextfile = "metrics-textfile"
	KeyPostGISDSN      = "postgis-dsn"
	KeyTraverseName    = "name"
)

const EnvPrefix = "BEARINGS"

// Config holds one run's settings.
type Config struct {
	Infile          string
	Lon             float64
	Lat             float64
	Units           units.Unit
	FileType        string
	Sheet           string
	Format          string
	LogLevel        string
	LogFormat       string
	MetricsTextfile string
	PostGISDSN      string
	TraverseName    string
}

// NewViper returns a viper instance with defaults and environment lookup
// configured. BEARINGS_DISTANCE_UNITS maps to distance-units.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault(KeyUnits, string(units.Feet))
	v.SetDefault(KeyFormat, output.FormatCSV)
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyInfile, "")
	v.SetDefault(KeyFileType, "")
	v.SetDefault(KeySheet, "")
	v.SetDefault(KeyMetricsTextfile, "")
	v.SetDefault(KeyPostGISDSN, "")
	v.SetDefault(KeyTraverseName, "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file named by the config key, if any, then resolves
// and validates every setting.
func Load(v *viper.Viper) (*Config, error) {
	if path := v.GetString(KeyConfig); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var errs []string
	coord := func(key string) float64 {
		if !v.IsSet(key) {
			errs = append(errs, fmt.Sprintf("%s is required", key))
			return math.NaN()
		}
		f, err := cast.ToFloat64E(v.Get(key))
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s must be a number, got %q", key, v.GetString(key)))
			return math.NaN()
		}
		return f
	}

	cfg := &Config{
		Infile:          v.GetString(KeyInfile),
		Lon:             coord(KeyLon),
		Lat:             coord(KeyLat),
		FileType:        v.GetString(KeyFileType),
		Sheet:           v.GetString(KeySheet),
		Format:          strings.ToLower(v.GetString(KeyFormat)),
		LogLevel:        strings.ToLower(v.GetString(KeyLogLevel)),
		LogFormat:       strings.ToLower(v.GetString(KeyLogFormat)),
		MetricsTextfile: v.GetString(KeyMetricsTextfile),
		PostGISDSN:      v.GetString(KeyPostGISDSN),
		TraverseName:    v.GetString(KeyTraverseName),
	}

	u, err := units.ParseUnit(v.GetString(KeyUnits))
	if err != nil {
		errs = append(errs, err.Error())
	}
	cfg.Units = u

	errs = append(errs, cfg.problems()...)
	if len(errs) > 0 {
		return nil, validationError(errs)
	}
	return cfg, nil
}

// Validate checks that required settings are present and sane.
func (c *Config) Validate() error {
	errs := c.problems()
	if math.IsNaN(c.Lon) {
		errs = append(errs, KeyLon+" is required")
	}
	if math.IsNaN(c.Lat) {
		errs = append(errs, KeyLat+" is required")
	}
	if _, err := units.ParseUnit(string(c.Units)); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return validationError(errs)
	}
	return nil
}

func (c *Config) problems() []string {
	var errs []string

	if c.Infile == "" {
		errs = append(errs, KeyInfile+" is required")
	}
	if !math.IsNaN(c.Lon) && (c.Lon < -180 || c.Lon > 180) {
		errs = append(errs, fmt.Sprintf("lon must be between -180 and 180, got %v", c.Lon))
	}
	if !math.IsNaN(c.Lat) && (c.Lat < -90 || c.Lat > 90) {
		errs = append(errs, fmt.Sprintf("lat must be between -90 and 90, got %v", c.Lat))
	}
	if c.Format != "" && !slices.Contains(output.Formats(), c.Format) {
		errs = append(errs, fmt.Sprintf("format must be one of %s, got %q", strings.Join(output.Formats(), ", "), c.Format))
	}
	if !slices.Contains([]string{"", "debug", "info", "warn", "error"}, c.LogLevel) {
		errs = append(errs, fmt.Sprintf("log-level must be one of debug, info, warn, error, got %q", c.LogLevel))
	}
	if !slices.Contains([]string{"", "text", "json"}, c.LogFormat) {
		errs = append(errs, fmt.Sprintf("log-format must be text or json, got %q", c.LogFormat))
	}
	return errs
}

func validationError(errs []string) error {
	return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
}
