// Package config loads deployer settings from the environment and an optional
// bc-deploy.yaml file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. BC_RPC_URL
const EnvPrefix = "BC"

// Config holds everything the deployment reads from its environment
type Config struct {
	RPCURL        string        `mapstructure:"rpc_url"`
	PrivateKey    string        `mapstructure:"private_key"`
	ArtifactsDir  string        `mapstructure:"artifacts_dir"`
	OutputDir     string        `mapstructure:"output_dir"`
	JournalPath   string        `mapstructure:"journal_path"`
	LogLevel      string        `mapstructure:"log_level"`
	ColoredLogs   bool          `mapstructure:"colored_logs"`
	DialTimeout   time.Duration `mapstructure:"dial_timeout"`
	DeployTimeout time.Duration `mapstructure:"deploy_timeout"`
}

// Load reads bc-deploy.yaml (or the file named by BC_CONFIG) when present, then applies
// BC_* environment overrides on top of the defaults.
func Load() (*Config, error) {
	v := viper.New()

	if path := os.Getenv(EnvPrefix + "_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("bc-deploy")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("rpc_url", "http://127.0.0.1:8545")
	v.SetDefault("private_key", "")
	v.SetDefault("artifacts_dir", "./artifacts")
	v.SetDefault("output_dir", ".")
	v.SetDefault("journal_path", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("colored_logs", true)
	v.SetDefault("dial_timeout", "30s")
	v.SetDefault("deploy_timeout", "0s")
}

// Validate checks the settings a run cannot do without
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RPCURL) == "" {
		return fmt.Errorf("rpc_url is required")
	}
	if strings.TrimSpace(c.ArtifactsDir) == "" {
		return fmt.Errorf("artifacts_dir is required")
	}
	if c.DialTimeout < 0 || c.DeployTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	return nil
}

// NewLogger builds the run logger writing to stdout
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	logger.SetFormatter(&logrus.TextFormatter{
		ForceColors:   c.ColoredLogs,
		DisableColors: !c.ColoredLogs,
		FullTimestamp: true,
	})
	return logger
}
