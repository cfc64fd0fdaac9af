package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/ohkbilal/certa/internal/archive"
	"github.com/ohkbilal/certa/internal/audit"
	"github.com/ohkbilal/certa/internal/runctx"
)

// ErrInvalid marks a configuration that cannot be used.
var ErrInvalid = errors.New("invalid config")

// #region types

// Config is the top-level configuration for the certa binary.
type Config struct {
	PolicyVersion string          `yaml:"policy_version"`
	Database      DatabaseConfig  `yaml:"database"`
	GRPC          GRPCConfig      `yaml:"grpc"`
	Archive       archive.Config  `yaml:"archive"`
	Logging       LoggingConfig   `yaml:"logging"`
	Golden        GoldenConfig    `yaml:"golden"`
	Promotion     PromotionConfig `yaml:"promotion"`
}

// DatabaseConfig selects the audit store.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite | pgx
	DSN    string `yaml:"dsn"`
}

// GRPCConfig configures the transport listener.
type GRPCConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// GoldenConfig locates the deployment-gate fixtures.
type GoldenConfig struct {
	Fixtures []string `yaml:"fixtures"`
	Workers  int      `yaml:"workers"`
}

// PromotionConfig holds the promotion gate thresholds.
type PromotionConfig struct {
	RequiredPassRate float64 `yaml:"required_pass_rate"`
	MinMaterialCases int     `yaml:"min_material_cases"`
	ValidForDays     int     `yaml:"valid_for_days"`
}

// #endregion types

// #region defaults

// Default returns a configuration that runs locally with no external services.
func Default() *Config {
	return &Config{
		PolicyVersion: runctx.DefaultPolicyVersion,
		Database:      DatabaseConfig{Driver: audit.DriverSQLite, DSN: "certa.db"},
		GRPC:          GRPCConfig{Addr: "localhost:50061"},
		Logging:       LoggingConfig{Level: "info"},
		Golden: GoldenConfig{
			Fixtures: []string{
				"internal/golden/testdata/golden.json",
				"internal/golden/testdata/materials.json",
			},
			Workers: 4,
		},
		Promotion: PromotionConfig{RequiredPassRate: 1.0, MinMaterialCases: 3, ValidForDays: 30},
	}
}

// #endregion defaults

// #region load

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty or missing path yields defaults plus
// environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w: %w", path, ErrInvalid, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	c.Database.Driver = envOr("CERTA_DB_DRIVER", c.Database.Driver)
	c.Database.DSN = envOr("CERTA_DB_DSN", c.Database.DSN)
	c.GRPC.Addr = envOr("CERTA_GRPC_ADDR", c.GRPC.Addr)
	c.PolicyVersion = envOr("CERTA_POLICY_VERSION", c.PolicyVersion)
	c.Logging.Level = envOr("CERTA_LOG_LEVEL", c.Logging.Level)
	c.Archive.Endpoint = envOr("CERTA_ARCHIVE_ENDPOINT", c.Archive.Endpoint)
	c.Archive.Bucket = envOr("CERTA_ARCHIVE_BUCKET", c.Archive.Bucket)
	c.Archive.AccessKey = envOr("CERTA_ARCHIVE_ACCESS_KEY", c.Archive.AccessKey)
	c.Archive.SecretKey = envOr("CERTA_ARCHIVE_SECRET_KEY", c.Archive.SecretKey)
	c.Archive.Region = envOr("CERTA_ARCHIVE_REGION", c.Archive.Region)
	if v := os.Getenv("CERTA_ARCHIVE_USE_SSL"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CERTA_ARCHIVE_USE_SSL=%q: %w", v, ErrInvalid)
		}
		c.Archive.UseSSL = b
	}
	return nil
}

// #endregion load

// #region validate

// Validate checks the configuration. Every error wraps ErrInvalid.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.PolicyVersion) == "" {
		return fmt.Errorf("policy_version is required: %w", ErrInvalid)
	}
	switch c.Database.Driver {
	case audit.DriverSQLite, audit.DriverPostgres, "postgres", "postgresql":
	default:
		return fmt.Errorf("database.driver %q (valid: sqlite, pgx): %w", c.Database.Driver, ErrInvalid)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required: %w", ErrInvalid)
	}
	if c.GRPC.Addr == "" {
		return fmt.Errorf("grpc.addr is required: %w", ErrInvalid)
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level %q: %w", c.Logging.Level, ErrInvalid)
	}
	if err := c.Archive.Validate(); err != nil {
		return fmt.Errorf("archive: %w: %w", ErrInvalid, err)
	}
	if c.Golden.Workers < 1 {
		return fmt.Errorf("golden.workers must be at least 1: %w", ErrInvalid)
	}
	if r := c.Promotion.RequiredPassRate; r <= 0 || r > 1 {
		return fmt.Errorf("promotion.required_pass_rate %v outside (0, 1]: %w", r, ErrInvalid)
	}
	if c.Promotion.MinMaterialCases < 0 || c.Promotion.ValidForDays < 0 {
		return fmt.Errorf("promotion thresholds must not be negative: %w", ErrInvalid)
	}
	return nil
}

// #endregion validate

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
