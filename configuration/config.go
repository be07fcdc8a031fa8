package configuration

import (
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"ec2cloner/awsd/models"
	"ec2cloner/errors"
)

const (
	packageName = "configuration"

	usageText = "usage: ec2cloner <region> <source-instance-id> [ImageId=... InstanceType=... KeyName=... SubnetId=...]"
)

// Override keys accepted on the command line
const (
	OverrideImageID      = "ImageId"
	OverrideInstanceType = "InstanceType"
	OverrideKeyName      = "KeyName"
	OverrideSubnetID     = "SubnetId"
)

// Config holds the application configuration
type Config struct {
	Region          string
	SourceInstance  string
	Overrides       *models.Overrides
	PollInterval    int
	MaxPollAttempts int
	ProfilePath     string
	LogLevel        string
	LogEncoding     string
	AcessKeyID      string
	AccessSecret    string
	LocalstackURL   string
}

// Initialize sets up the configuration system from environment knobs plus the
// positional command-line arguments: <region> <source-instance-id> followed by
// optional key=value override pairs.
func Initialize(args []string) (*Config, error) {
	logger := zap.L().With(
		zap.String("package", packageName),
		zap.String("function", "Initialize"),
	)

	// Set default values
	viper.SetDefault("POLL_INTERVAL_SECONDS", 10)
	viper.SetDefault("MAX_POLL_ATTEMPTS", 120)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_ENCODING", "console")

	// Configure Viper to read from environment
	viper.AutomaticEnv()

	// Read from .env file
	viper.SetConfigFile(".env")
	if err := viper.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound && !os.IsNotExist(err) {
			return nil, errors.New(errors.ErrConfigParse, "error reading config file",
				map[string]interface{}{
					"config_file": ".env",
				}, err)
		}
		logger.Info("No .env file found, using environment variables and defaults",
			zap.String("operation", "config_loading"),
		)
	}

	region, sourceInstance, overrides, err := ParseArgs(args)
	if err != nil {
		return nil, err
	}

	// Validate poll interval
	pollInterval := viper.GetInt("POLL_INTERVAL_SECONDS")
	if pollInterval <= 0 {
		return nil, errors.New(errors.ErrConfigInvalid, "invalid POLL_INTERVAL_SECONDS",
			map[string]interface{}{
				"config_key": "POLL_INTERVAL_SECONDS",
				"value":      pollInterval,
			}, nil)
	}

	// Validate poll attempts
	maxPollAttempts := viper.GetInt("MAX_POLL_ATTEMPTS")
	if maxPollAttempts <= 0 {
		return nil, errors.New(errors.ErrConfigInvalid, "invalid MAX_POLL_ATTEMPTS",
			map[string]interface{}{
				"config_key": "MAX_POLL_ATTEMPTS",
				"value":      maxPollAttempts,
			}, nil)
	}

	config := &Config{
		Region:          region,
		SourceInstance:  sourceInstance,
		Overrides:       overrides,
		PollInterval:    pollInterval,
		MaxPollAttempts: maxPollAttempts,
		ProfilePath:     viper.GetString("PROFILE_PATH"),
		LogLevel:        viper.GetString("LOG_LEVEL"),
		LogEncoding:     viper.GetString("LOG_ENCODING"),
		AccessSecret:    viper.GetString("AWS_SECRET_ACCESS_KEY"),
		AcessKeyID:      viper.GetString("AWS_ACCESS_KEY_ID"),
		LocalstackURL:   viper.GetString("LOCALSTACK_URL"),
	}

	logger.Info("Configuration loaded successfully",
		zap.String("operation", "config_complete"),
		zap.String("region", config.Region),
		zap.String("source_instance", config.SourceInstance),
		zap.Int("poll_interval_seconds", config.PollInterval),
		zap.Int("max_poll_attempts", config.MaxPollAttempts),
	)
	return config, nil
}

// ParseArgs validates the positional command-line arguments. Fewer than two
// positionals is a usage error raised before any AWS call; trailing arguments
// must be key=value pairs against the fixed override schema, and unrecognized
// keys are rejected rather than silently merged.
func ParseArgs(args []string) (string, string, *models.Overrides, error) {
	if len(args) < 2 {
		return "", "", nil, errors.New(errors.ErrUsage, usageText,
			map[string]interface{}{
				"arguments_given": len(args),
			}, nil)
	}

	region := args[0]
	sourceInstance := args[1]
	overrides := &models.Overrides{}

	for _, arg := range args[2:] {
		key, value, found := strings.Cut(arg, "=")
		if !found || key == "" || value == "" {
			return "", "", nil, errors.New(errors.ErrOverrideKey, "malformed override, expected key=value",
				map[string]interface{}{
					"argument": arg,
				}, nil)
		}

		// Duplicate keys: last one wins
		switch key {
		case OverrideImageID:
			overrides.ImageID = value
		case OverrideInstanceType:
			overrides.InstanceType = value
		case OverrideKeyName:
			overrides.KeyName = value
		case OverrideSubnetID:
			overrides.SubnetID = value
		default:
			return "", "", nil, errors.New(errors.ErrOverrideKey, "unrecognized override key",
				map[string]interface{}{
					"key": key,
				}, nil)
		}
	}

	return region, sourceInstance, overrides, nil
}
