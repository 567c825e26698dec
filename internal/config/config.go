package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/eraceo/apmlive/internal/errors"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultWindowSize     = 60   // seconds
	DefaultAPSWindow      = 10   // seconds
	DefaultPruneGrace     = 10   // seconds
	DefaultUpdateInterval = 100  // milliseconds
	DefaultStopTimeout    = 1000 // milliseconds
	DefaultExportInterval = 1000 // milliseconds
	DefaultLogLevel       = "warning"

	appName = "apmlive"
)

type Config struct {
	WindowSize     int    `mapstructure:"window_size"`
	APSWindow      int    `mapstructure:"aps_window"`
	PruneGrace     int    `mapstructure:"prune_grace"`
	UpdateInterval int    `mapstructure:"update_interval"`
	StopTimeout    int    `mapstructure:"stop_timeout"`
	Monitor        bool   `mapstructure:"monitor"`
	Debug          bool   `mapstructure:"debug"`
	Verbose        bool   `mapstructure:"verbose"`
	LogLevel       string `mapstructure:"log_level"`

	Telemetry   bool   `mapstructure:"telemetry"`
	TelemetryDB string `mapstructure:"telemetry_db"`

	Export         bool     `mapstructure:"export"`
	ExportDir      string   `mapstructure:"export_dir"`
	ExportInterval int      `mapstructure:"export_interval"`
	ExportFields   []string `mapstructure:"export_fields"`

	Demo    bool `mapstructure:"demo"`
	DemoAPM int  `mapstructure:"demo_apm"`
}

func Load() (*Config, error) {
	errFactory := errors.New()

	v := viper.New()
	setDefaults(v)

	fs := pflag.NewFlagSet(appName, pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Bool("debug", false, "Enable debugging mode")
	fs.Bool("verbose", false, "Enable verbose logging")
	fs.Bool("monitor", false, "Log every metrics snapshot")
	fs.Bool("demo", false, "Generate synthetic input events")
	fs.Bool("telemetry", false, "Record snapshots to the telemetry database")
	fs.Bool("export", false, "Write snapshot files to the export directory")
	fs.Int("window-size", DefaultWindowSize, "Sliding window size in seconds")
	fs.Int("update-interval", DefaultUpdateInterval, "Reporting interval in milliseconds")
	fs.String("log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")
	fs.String("telemetry-db", "", "Path to the telemetry database")
	fs.String("export-dir", "", "Directory for exported snapshot files")
	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	// Load configuration from file
	v.SetConfigName(appName)
	v.SetConfigType("toml")
	if path := os.Getenv("APMLIVE_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("/etc")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, appName))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	// Flags set on the command line override file values
	fs.Visit(func(f *pflag.Flag) {
		v.Set(strings.ReplaceAll(f.Name, "-", "_"), f.Value.String())
	})

	config := &Config{}
	// Flag values arrive as strings; decode them weakly into typed fields.
	weakly := func(dc *mapstructure.DecoderConfig) { dc.WeaklyTypedInput = true }
	if err := v.Unmarshal(config, weakly); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	applyDataDirDefaults(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("window_size", DefaultWindowSize)
	v.SetDefault("aps_window", DefaultAPSWindow)
	v.SetDefault("prune_grace", DefaultPruneGrace)
	v.SetDefault("update_interval", DefaultUpdateInterval)
	v.SetDefault("stop_timeout", DefaultStopTimeout)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("export_interval", DefaultExportInterval)
	v.SetDefault("export_fields", []string{"apm", "total_actions", "session_time"})
	v.SetDefault("demo_apm", 120)
}

// applyDataDirDefaults fills path settings that depend on the user
// environment and cannot be static viper defaults.
func applyDataDirDefaults(config *Config) {
	dataDir := dataDir()
	if config.TelemetryDB == "" {
		config.TelemetryDB = filepath.Join(dataDir, "apm.db")
	}
	if config.ExportDir == "" {
		config.ExportDir = dataDir
	}
}

func dataDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, appName)
	}
	return filepath.Join(os.TempDir(), appName)
}

func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.WindowSize <= 0 {
		return errFactory.WithData(errors.ErrInvalidWindow, c.WindowSize)
	}
	if c.APSWindow <= 0 {
		return errFactory.WithData(errors.ErrInvalidWindow, c.APSWindow)
	}
	if c.PruneGrace < 0 {
		return errFactory.WithData(errors.ErrInvalidWindow, c.PruneGrace)
	}
	if c.UpdateInterval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.UpdateInterval)
	}
	if c.StopTimeout <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.StopTimeout)
	}
	if c.ExportInterval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.ExportInterval)
	}
	if !isValidLogLevel(c.LogLevel) {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}
	if c.Telemetry && c.TelemetryDB == "" {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "telemetry enabled without database path")
	}
	if c.Demo && c.DemoAPM <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, c.DemoAPM)
	}

	return nil
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warning", "error":
		return true
	default:
		return false
	}
}
