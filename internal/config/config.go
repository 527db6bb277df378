package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Rule-set sources.
const (
	SourceDir      = "dir"
	SourceEmbedded = "embedded"
	SourcePostgres = "postgres"
)

// Server holds all configuration for the authoritative server.
type Server struct {
	// Network
	BindAddress string `yaml:"bind_address" env:"SKIRMISH_BIND_ADDRESS"`
	Port        int    `yaml:"port" env:"SKIRMISH_PORT"`

	// Simulation
	TickRate           int     `yaml:"tick_rate" env:"SKIRMISH_TICK_RATE"`                     // ticks per second
	CascadeCap         int     `yaml:"cascade_cap" env:"SKIRMISH_CASCADE_CAP"`                 // trampoline iterations per pass
	InvulnerabilitySec float32 `yaml:"invulnerability_sec" env:"SKIRMISH_INVULNERABILITY_SEC"` // window after a hit
	RequestQueueSize   int     `yaml:"request_queue_size" env:"SKIRMISH_REQUEST_QUEUE_SIZE"`

	// Rule sets
	RuleSetSource string `yaml:"rule_set_source" env:"SKIRMISH_RULE_SET_SOURCE"` // dir | embedded | postgres
	RuleSetDir    string `yaml:"rule_set_dir" env:"SKIRMISH_RULE_SET_DIR"`
	DefaultClass  string `yaml:"default_class" env:"SKIRMISH_DEFAULT_CLASS"`
	SeedRuleSets  bool   `yaml:"seed_rule_sets" env:"SKIRMISH_SEED_RULE_SETS"` // import embedded sets into postgres

	// Websocket session timeouts
	WriteTimeout time.Duration `yaml:"write_timeout" env:"SKIRMISH_WRITE_TIMEOUT"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"SKIRMISH_READ_TIMEOUT"`

	// Database
	Database DatabaseConfig `yaml:"database" envPrefix:"SKIRMISH_DB_"`

	// Logging
	LogLevel string `yaml:"log_level" env:"SKIRMISH_LOG_LEVEL"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	User     string `yaml:"user" env:"USER"`
	Password string `yaml:"password" env:"PASSWORD"`
	DBName   string `yaml:"dbname" env:"NAME"`
	SSLMode  string `yaml:"sslmode" env:"SSLMODE"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultServer returns Server config with sensible defaults.
func DefaultServer() Server {
	return Server{
		BindAddress:        "0.0.0.0",
		Port:               7780,
		TickRate:           30,
		CascadeCap:         10,
		InvulnerabilitySec: 0.1,
		RequestQueueSize:   256,
		RuleSetSource:      SourceEmbedded,
		RuleSetDir:         "rulesets",
		DefaultClass:       "gunner",
		WriteTimeout:       5 * time.Second,
		ReadTimeout:        60 * time.Second,
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "skirmish",
			Password: "skirmish",
			DBName:   "skirmish",
			SSLMode:  "disable",
		},
		LogLevel: "info",
	}
}

// TickInterval returns the duration of one simulation step.
func (s Server) TickInterval() time.Duration {
	return time.Second / time.Duration(s.TickRate)
}

// Addr returns the listen address.
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.BindAddress, s.Port)
}

// Validate checks values the server cannot run with.
func (s Server) Validate() error {
	var errs []error
	if s.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("tick_rate must be positive, got %d", s.TickRate))
	}
	if s.CascadeCap <= 0 {
		errs = append(errs, fmt.Errorf("cascade_cap must be positive, got %d", s.CascadeCap))
	}
	if s.InvulnerabilitySec < 0 {
		errs = append(errs, fmt.Errorf("invulnerability_sec must not be negative, got %v", s.InvulnerabilitySec))
	}
	switch s.RuleSetSource {
	case SourceDir, SourceEmbedded, SourcePostgres:
	default:
		errs = append(errs, fmt.Errorf("unknown rule_set_source %q", s.RuleSetSource))
	}
	if s.DefaultClass == "" {
		errs = append(errs, errors.New("default_class is empty"))
	}
	return errors.Join(errs...)
}

// LoadServer loads server config from a YAML file, then applies
// SKIRMISH_* environment overrides.
// If the file doesn't exist, defaults are used.
func LoadServer(path string) (Server, error) {
	cfg := DefaultServer()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := ParseEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// ParseEnv overlays environment variables onto target.
// Unset variables leave the current values alone.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
