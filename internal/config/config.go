package config

import (
	"fmt"
	"maps"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/joelkehle/ideascope/internal/events"
	"github.com/joelkehle/ideascope/internal/feasibility"
	"github.com/joelkehle/ideascope/internal/logging"
	"github.com/joelkehle/ideascope/internal/narrative"
	"github.com/joelkehle/ideascope/internal/scheduler"
	"github.com/joelkehle/ideascope/internal/store"
	"github.com/joelkehle/ideascope/internal/telemetry"
)

type Server struct {
	Addr            string        `yaml:"addr" default:":8080" validate:"required"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"20s"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" default:"1048576" validate:"gte=1024"`
}

// Config holds all application configuration.
type Config struct {
	Server    Server                       `yaml:"server"`
	Log       logging.Config               `yaml:"log"`
	Store     store.Config                 `yaml:"store"`
	Narrative narrative.Config             `yaml:"narrative"`
	Events    events.Config                `yaml:"events"`
	Telemetry telemetry.Config             `yaml:"telemetry"`
	Scheduler scheduler.Config             `yaml:"scheduler"`
	Extractor feasibility.ExtractorConfig  `yaml:"extractor"`
	Modes     feasibility.CoefficientTable `yaml:"modes"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and validates the result. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	cfg.applyEnv()
	cfg.fillModes()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("IDEASCOPE_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("IDEASCOPE_STORE_DRIVER"); v != "" {
		c.Store.Driver = v
	}
	if v := os.Getenv("IDEASCOPE_SQLITE_PATH"); v != "" {
		c.Store.SQLitePath = v
	}
	if v := os.Getenv("IDEASCOPE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("IDEASCOPE_NARRATIVE_PROVIDER"); v != "" {
		c.Narrative.Provider = v
	}
	if v := os.Getenv("IDEASCOPE_KAFKA_BROKERS"); v != "" {
		var brokers []string
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
		c.Events.Brokers = brokers
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		c.Telemetry.OTLPEndpoint = v
	}
}

// fillModes copies the built-in row for any mode the file left out.
func (c *Config) fillModes() {
	if c.Modes == nil {
		c.Modes = maps.Clone(feasibility.DefaultCoefficients)
		return
	}
	for _, m := range feasibility.AllModes() {
		if _, ok := c.Modes[m]; !ok {
			c.Modes[m] = feasibility.DefaultCoefficients[m]
		}
	}
}

// Validate checks struct constraints and the mode ordering.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	for m := range c.Modes {
		if !m.Valid() {
			return fmt.Errorf("invalid config: unknown mode %q", m)
		}
	}
	if err := c.Modes.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
