package config

import (
	"io/fs"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	DatabaseDriverSQLite   = "sqlite"
	DatabaseDriverPostgres = "postgres"
)

type Config struct {
	DatabaseBusyTimeout       time.Duration `koanf:"database_busy_timeout" default:"5s"`
	DatabaseConnectRetryCount int           `koanf:"database_connect_retry_count" default:"5"`
	DatabaseConnectRetryDelay time.Duration `koanf:"database_connect_retry_delay" default:"2s"`
	DatabaseDebug             bool          `koanf:"database_debug"`
	DatabaseDriver            string        `koanf:"database_driver" default:"sqlite"`
	DatabaseFilePath          string        `koanf:"database_file_path"`
	DatabaseURL               string        `koanf:"database_url"`
	Environment               string        `koanf:"environment"`
	Hostname                  string        `koanf:"-"`
	ServerHost                string        `koanf:"server_host" default:"0.0.0.0"`
	ServerPort                int           `koanf:"server_port" default:"3000"`
}

const (
	configFileENV      = "CONFIG_FILE"
	defaultConfigFile  = "/config/library.yaml"
	dotEnvFile         = ".env"
	missingConfigError = "missing required config"
)

// New loads the configuration. Values are resolved in order of increasing
// precedence: struct defaults, the YAML config file, and environment variables.
func New() (*Config, error) {
	if err := godotenv.Load(dotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(err, "failed to load .env file")
	}

	hostname, err := os.Hostname()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, errors.WithStack(err)
	}
	cfg.Hostname = hostname

	k := koanf.New(".")

	configFile := os.Getenv(configFileENV)
	if configFile == "" {
		configFile = defaultConfigFile
	}
	if _, err := os.Stat(configFile); err == nil {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load config file: %s", configFile)
		}
	}

	// Empty env vars are treated as unset so they never clobber file values.
	err = k.Load(env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		if value == "" {
			return "", nil
		}
		return strings.ToLower(key), value
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load environment variables")
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	switch cfg.Environment {
	case "development":
		loadDevelopmentConfig(cfg)
	case "test":
		loadTestConfig(cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NewForTest returns a config pointing at an in-memory database.
func NewForTest() *Config {
	cfg := &Config{}
	_ = defaults.Set(cfg)
	cfg.Environment = "test"
	loadTestConfig(cfg)
	return cfg
}

func (cfg *Config) validate() error {
	switch cfg.DatabaseDriver {
	case DatabaseDriverSQLite:
		if cfg.DatabaseFilePath == "" {
			return missingConfig("DatabaseFilePath")
		}
	case DatabaseDriverPostgres:
		if cfg.DatabaseURL == "" {
			return missingConfig("DatabaseURL")
		}
	default:
		return errors.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
	return nil
}

func missingConfig(field string) error {
	key := toSnakeCase(field)
	return errors.Errorf("%s: %s (env) or %s (config file)", missingConfigError, strings.ToUpper(key), key)
}

// toSnakeCase converts a Go field name into its config key.
func toSnakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && unicode.IsLower(runes[i-1])
			nextLower := i > 0 && i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1])
			if prevLower || nextLower {
				b.WriteRune('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
