package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/ekaya-inc/songplay-etl/pkg/apperrors"
	"github.com/ekaya-inc/songplay-etl/pkg/catalog"
	sqlguard "github.com/ekaya-inc/songplay-etl/pkg/sql"
)

// DefaultConfigPath is read when no --config flag is given.
const DefaultConfigPath = "config.yaml"

// Config holds all configuration for songplay-etl.
// Configuration can come from a YAML file or environment variables, and a
// .env file in the working directory is loaded into the environment first.
// Environment variables always override YAML values.
// Secrets (the cluster password) must only come from environment variables.
type Config struct {
	Version string `yaml:"-"` // Set at load time, not from config

	// Warehouse cluster connection (dwh.cfg [CLUSTER])
	Cluster ClusterConfig `yaml:"cluster"`

	// Role the warehouse assumes to read S3 (dwh.cfg [IAM_ROLE])
	IAMRole IAMRoleConfig `yaml:"iam_role"`

	// Source locations (dwh.cfg [S3])
	S3 S3Config `yaml:"s3"`

	// Run behavior
	ETL ETLConfig `yaml:"etl"`
}

// ClusterConfig holds warehouse connection settings.
type ClusterConfig struct {
	Type     string `yaml:"type" env:"DWH_TYPE" env-default:"redshift" validate:"required,oneof=redshift postgres"`
	Host     string `yaml:"host" env:"DWH_HOST" validate:"required"`
	Database string `yaml:"db_name" env:"DWH_DB_NAME" validate:"required"`
	User     string `yaml:"db_user" env:"DWH_DB_USER" validate:"required"`
	Password string `yaml:"-" env:"DWH_DB_PASSWORD"` // Secret - not in YAML
	// Port 0 means the adapter default (5439 for Redshift).
	Port    int    `yaml:"db_port" env:"DWH_DB_PORT" validate:"gte=0,lte=65535"`
	SSLMode string `yaml:"ssl_mode" env:"DWH_SSL_MODE" env-default:"require" validate:"oneof=disable allow prefer require verify-ca verify-full"`
}

// IAMRoleConfig holds the role used by COPY.
type IAMRoleConfig struct {
	ARN string `yaml:"arn" env:"DWH_IAM_ROLE_ARN" validate:"required"`
}

// S3Config holds the object-storage source locations.
type S3Config struct {
	LogData     string `yaml:"log_data" env:"S3_LOG_DATA" validate:"required"`
	LogJSONPath string `yaml:"log_jsonpath" env:"S3_LOG_JSONPATH" validate:"required"`
	SongData    string `yaml:"song_data" env:"S3_SONG_DATA" validate:"required"`
	Region      string `yaml:"region" env:"S3_REGION" env-default:"us-west-2" validate:"required"`
}

// ETLConfig holds settings for the run itself.
type ETLConfig struct {
	// Dialect overrides the SQL dialect; empty follows the cluster type.
	Dialect string `yaml:"dialect" env:"ETL_DIALECT" validate:"omitempty,oneof=redshift postgres"`

	// StatementTimeout bounds each statement. 0 blocks until the warehouse answers.
	StatementTimeout time.Duration `yaml:"statement_timeout" env:"ETL_STATEMENT_TIMEOUT" env-default:"0s" validate:"gte=0"`

	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info" validate:"oneof=debug info warn error"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT" env-default:"json" validate:"oneof=json console"`
}

// Load reads configuration from path with environment variable overrides.
// A missing file is not an error: every setting can come from the
// environment. The version parameter is injected at build time.
func Load(path, version string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if errors.Is(err, fs.ErrNotExist) {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// normalize strips the single quotes dwh.cfg-style files put around
// locations and ARNs; the catalog adds its own.
func (c *Config) normalize() {
	c.IAMRole.ARN = unquote(c.IAMRole.ARN)
	c.S3.LogData = unquote(c.S3.LogData)
	c.S3.LogJSONPath = unquote(c.S3.LogJSONPath)
	c.S3.SongData = unquote(c.S3.SongData)
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return s[1 : len(s)-1]
	}
	return s
}

// Validate checks struct constraints and screens every value spliced into
// COPY statements.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	failures := sqlguard.CheckLiteralValues(c.copyLiterals())
	if len(failures) > 0 {
		return fmt.Errorf("%w: %s %s", apperrors.ErrUnsafeConfigValue, failures[0].Name, failures[0].Reason)
	}

	return nil
}

func (c *Config) copyLiterals() map[string]string {
	return map[string]string{
		"iam_role.arn":    c.IAMRole.ARN,
		"s3.log_data":     c.S3.LogData,
		"s3.log_jsonpath": c.S3.LogJSONPath,
		"s3.song_data":    c.S3.SongData,
		"s3.region":       c.S3.Region,
	}
}

// Dialect returns the SQL dialect for the catalog.
func (c *Config) Dialect() catalog.Dialect {
	if c.ETL.Dialect != "" {
		return catalog.Dialect(c.ETL.Dialect)
	}
	return catalog.Dialect(c.Cluster.Type)
}

// CatalogConfig returns the values the statement catalog is built from.
func (c *Config) CatalogConfig() catalog.Config {
	return catalog.Config{
		Dialect:      c.Dialect(),
		Region:       c.S3.Region,
		IAMRoleARN:   c.IAMRole.ARN,
		LogDataPath:  c.S3.LogData,
		LogJSONPath:  c.S3.LogJSONPath,
		SongDataPath: c.S3.SongData,
	}
}
