package app

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/tablesync"
	"github.com/agentstation/tablesync/pkg/constants"
	"github.com/agentstation/tablesync/pkg/errors"
)

// EnvPrefix prefixes every environment override, e.g. TABLESYNC_STORE_BACKEND.
const EnvPrefix = "TABLESYNC"

// Config holds the application configuration loaded from config files,
// environment variables and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Logging configuration
	LogLevel    string
	LogFormat   string
	LogOutput   string
	envLogLevel string

	// Library is the client configuration decoded from the config file.
	Library tablesync.Config
}

// LoadConfig loads configuration from all sources in order of precedence:
//  1. Command-line flags (handled by cobra)
//  2. Environment variables (TABLESYNC_*)
//  3. .env files
//  4. Config file (tablesync.yaml in ., ~/.tablesync or $HOME)
//  5. Defaults
//
// An explicit configFile must exist; a searched one may be absent.
func LoadConfig(configFile string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(constants.DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".tablesync"))
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, errors.NewConfigError("config", "cannot read config file", err)
		}
	}

	lib := tablesync.DefaultConfig()
	if err := v.Unmarshal(&lib); err != nil {
		return nil, errors.NewConfigError("config", "cannot decode config file", err)
	}

	return &Config{
		ConfigFile:  v.ConfigFileUsed(),
		LogFormat:   getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput:   getEnvOrDefault("LOG_OUTPUT", "stderr"),
		envLogLevel: os.Getenv("LOG_LEVEL"),
		Library:     lib,
	}, nil
}

// setDefaults registers every scalar key so environment variables can
// override values absent from the file.
func setDefaults(v *viper.Viper) {
	def := tablesync.DefaultConfig()
	v.SetDefault("data_dir", def.DataDir)
	v.SetDefault("ledger", def.Ledger)
	v.SetDefault("store.backend", def.Store.Backend)
	v.SetDefault("store.path", def.Store.Path)
	v.SetDefault("output_dir", def.OutputDir)
	v.SetDefault("separator", def.Separator)
	v.SetDefault("interval", def.Interval)
	v.SetDefault("template.path", def.Template.Path)
}

// UpdateFromFlags updates config values from parsed command flags so flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local does not override values already set by .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
