package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// TelemetryConfig drives the sampling/recording/rotation core.
type TelemetryConfig struct {
	LogDir string `yaml:"log_dir" default:"logs" validate:"required"`

	// Per-category subdirectory names under LogDir.
	Dirs struct {
		Pnl      string `yaml:"pnl" default:"pnl"`
		Trade    string `yaml:"trade" default:"trades"`
		Position string `yaml:"position" default:"positions"`
		Balance  string `yaml:"balance" default:"balances"`
		Risk     string `yaml:"risk" default:"risk"`
		System   string `yaml:"system" default:"system"`
		Metric   string `yaml:"metric" default:"metrics"`
	} `yaml:"dirs"`

	// Sampling intervals in milliseconds.
	PnlIntervalMS      int `yaml:"pnl_interval_ms" default:"60000" validate:"gt=0"`
	PositionIntervalMS int `yaml:"position_interval_ms" default:"30000" validate:"gt=0"`
	BalanceIntervalMS  int `yaml:"balance_interval_ms" default:"300000" validate:"gt=0"`
	RotationCheckMS    int `yaml:"rotation_check_ms" default:"60000" validate:"gt=0"`

	// RetentionDays bounds how long rotated day files are kept.
	// 0 means never purge.
	RetentionDays int `yaml:"retention_days" default:"30" validate:"gte=0"`

	// MetricMode enables the dashboard-compatible metric channel. When
	// false, LogMetric/LogMetrics are complete no-ops.
	MetricMode bool `yaml:"metric_mode" default:"true"`

	// DateRotation enables daily file rotation. When false the rotation
	// date set at construction never changes.
	DateRotation bool `yaml:"date_rotation" default:"true"`
}

// ArchiveConfig configures the optional ClickHouse entry archive.
type ArchiveConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Host         string        `yaml:"host" default:"localhost"`
	Port         int           `yaml:"port" default:"9000"`
	Database     string        `yaml:"database" default:"tradepulse"`
	Table        string        `yaml:"table" default:"telemetry_entries"`
	User         string        `yaml:"user" default:"default"`
	Password     string        `yaml:"password"`
	BatchSize    int           `yaml:"batch_size" default:"500" validate:"gt=0"`
	BatchTimeout time.Duration `yaml:"batch_timeout" default:"5s"`
	DialTimeout  time.Duration `yaml:"dial_timeout" default:"5s"`
}

// EventsConfig configures optional external event forwarders.
type EventsConfig struct {
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic" default:"tradepulse.events"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"gzip"`
		Async        bool     `yaml:"async" default:"true"`
	} `yaml:"kafka"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr" default:"localhost:6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Channel  string `yaml:"channel" default:"tradepulse:events"`
	} `yaml:"redis"`
}

// Config is the immutable application configuration, merged from defaults,
// the YAML file and environment overrides at load time.
type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080" validate:"gt=0,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"json"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Archive   ArchiveConfig   `yaml:"archive"`
	Events    EventsConfig    `yaml:"events"`
}

// Default returns a Config populated with defaults only.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file, applies struct defaults
// to unset fields, and validates the result.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Defaults go in first so an explicit false/zero in the file is kept
	// as-is instead of being re-defaulted.
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("LOG_DIR"); v != "" {
		c.Telemetry.LogDir = v
	}
	if v := os.Getenv("RETENTION_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Telemetry.RetentionDays = n
		}
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Events.Kafka.Brokers = strings.Split(v, ",")
		c.Events.Kafka.Enabled = true
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Events.Kafka.Topic = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Events.Redis.Addr = v
		c.Events.Redis.Enabled = true
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.Archive.Host = v
	}

	return c, nil
}

// Validate checks the configuration invariants.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			return fmt.Errorf("field %s failed %q", e.Namespace(), e.Tag())
		}
		return err
	}
	if c.Events.Kafka.Enabled && len(c.Events.Kafka.Brokers) == 0 {
		return fmt.Errorf("events.kafka.brokers required when kafka forwarding enabled")
	}
	if c.Archive.Enabled && c.Archive.Host == "" {
		return fmt.Errorf("archive.host required when archive enabled")
	}
	return nil
}
