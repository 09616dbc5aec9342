package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "github.com/pratik-mahalle/ec2pull/internal/pkg/errors"
	"github.com/pratik-mahalle/ec2pull/internal/pkg/validator"
)

// EnvPrefix namespaces every environment override, e.g. EC2PULL_AWS_REGION
const EnvPrefix = "EC2PULL"

// InstanceScopeEnv narrows list mode to a single instance
const InstanceScopeEnv = "INSTANCEID"

// DefaultProfile is the shared-config profile used when none is selected
const DefaultProfile = "default"

// Config holds all application configuration
type Config struct {
	Debug     bool            `mapstructure:"debug"`
	Verbose   bool            `mapstructure:"verbose"`
	AWS       AWSConfig       `mapstructure:"aws"`
	Inventory InventoryConfig `mapstructure:"inventory"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// AWSConfig contains EC2 API and instance metadata configuration
type AWSConfig struct {
	Region           string        `mapstructure:"region" validate:"required"`
	Profile          string        `mapstructure:"profile" validate:"required"`
	AccessKeyID      string        `mapstructure:"access_key_id" validate:"required_with=SecretAccessKey"`
	SecretAccessKey  string        `mapstructure:"secret_access_key" validate:"required_with=AccessKeyID"`
	SessionToken     string        `mapstructure:"session_token"`
	MetadataEndpoint string        `mapstructure:"metadata_endpoint" validate:"omitempty,url"`
	MetadataTimeout  time.Duration `mapstructure:"metadata_timeout" validate:"gt=0"`
}

// InventoryConfig contains inventory shaping options
type InventoryConfig struct {
	InstanceID string `mapstructure:"instance_id" validate:"omitempty,instanceid"`
	// LegacyEBSOptimized reproduces the historical ec2_ebs_optimized value,
	// which carried the private DNS name instead of the optimized flag
	LegacyEBSOptimized bool `mapstructure:"legacy_ebs_optimized"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console auto"`
}

// MetricsConfig contains run metrics export configuration
type MetricsConfig struct {
	TextfilePath string `mapstructure:"textfile_path"`
}

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("verbose", false)
	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("aws.profile", DefaultProfile)
	v.SetDefault("aws.metadata_timeout", 5*time.Second)
	v.SetDefault("inventory.legacy_ebs_optimized", true)
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "auto")
}

// Load reads configuration from an optional .env file, the environment, an
// optional config file and whatever flags have been bound to v
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	// Load .env file if it exists (ignore errors as it's optional)
	_ = godotenv.Load()

	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("inventory.instance_id", InstanceScopeEnv); err != nil {
		return nil, apperrors.Internal("failed to bind "+InstanceScopeEnv, err)
	}

	if err := readConfigFile(v, cfgFile); err != nil {
		return nil, err
	}

	cfg := &Config{
		Debug:   v.GetBool("debug"),
		Verbose: v.GetBool("verbose"),
		AWS: AWSConfig{
			Region:           v.GetString("aws.region"),
			Profile:          v.GetString("aws.profile"),
			AccessKeyID:      v.GetString("aws.access_key_id"),
			SecretAccessKey:  v.GetString("aws.secret_access_key"),
			SessionToken:     v.GetString("aws.session_token"),
			MetadataEndpoint: v.GetString("aws.metadata_endpoint"),
			MetadataTimeout:  v.GetDuration("aws.metadata_timeout"),
		},
		Inventory: InventoryConfig{
			InstanceID:         strings.TrimSpace(v.GetString("inventory.instance_id")),
			LegacyEBSOptimized: v.GetBool("inventory.legacy_ebs_optimized"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		Metrics: MetricsConfig{
			TextfilePath: v.GetString("metrics.textfile_path"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func readConfigFile(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeValidation,
				fmt.Sprintf("failed to read config file %s", cfgFile), apperrors.ExitUsage)
		}
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	v.AddConfigPath(filepath.Join(home, ".ec2pull"))
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return apperrors.Wrap(err, apperrors.ErrCodeValidation,
			"failed to read config file", apperrors.ExitUsage)
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if errs := validator.New().Validate(c); len(errs) > 0 {
		return apperrors.ValidationError(
			"invalid configuration: "+validator.Summary(errs), errs)
	}
	return nil
}

// LogLevel resolves the effective log level. --debug wins over --verbose,
// which wins over the configured level
func (c *Config) LogLevel() string {
	switch {
	case c.Debug:
		return "debug"
	case c.Verbose:
		return "info"
	default:
		return c.Logging.Level
	}
}

// HasInstanceScope reports whether list mode is limited to one instance
func (c *Config) HasInstanceScope() bool {
	return c.Inventory.InstanceID != ""
}
