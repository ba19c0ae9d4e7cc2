// Package config loads the settings of the checkout command from the environment,
// an optional .env file and command line flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/casualjim/interactors/interactor"
	"github.com/casualjim/interactors/interactor/rollback"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix for all the environment variables, log.level is read from INTERACTORS_LOG_LEVEL
const EnvPrefix = "INTERACTORS"

// Keys
const (
	KeyLogLevel       = "log.level"
	KeyLogFormat      = "log.format"
	KeyRollbackPolicy = "rollback.policy"
)

// Config holds the settings for wiring interactors in a process
type Config struct {
	LogLevel       logrus.Level
	LogFormat      string
	RollbackPolicy string
	Rollback       interactor.Decider
}

// New creates a viper instance with the defaults and environment bindings
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyRollbackPolicy, "always")
	return v
}

// LoadEnv loads .env files into the process environment, missing files are skipped
func LoadEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("error loading %s: %w", f, err)
		}
	}
	return nil
}

// Load reads and validates the configuration from the viper instance
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = New()
	}

	lvl, err := logrus.ParseLevel(v.GetString(KeyLogLevel))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", KeyLogLevel, err)
	}

	format := strings.ToLower(v.GetString(KeyLogFormat))
	if format != "text" && format != "json" {
		return nil, fmt.Errorf("invalid %s %q, expected text or json", KeyLogFormat, format)
	}

	policy := strings.ToLower(v.GetString(KeyRollbackPolicy))
	dec, ok := rollback.Named(policy)
	if !ok {
		return nil, fmt.Errorf("invalid %s %q, expected always, never, on-failure or on-error", KeyRollbackPolicy, policy)
	}

	return &Config{
		LogLevel:       lvl,
		LogFormat:      format,
		RollbackPolicy: policy,
		Rollback:       dec,
	}, nil
}

// Logger builds the logrus logger described by the configuration
func (c *Config) Logger(w io.Writer) *logrus.Logger {
	if w == nil {
		w = os.Stderr
	}
	l := logrus.New()
	l.Out = w
	l.Level = c.LogLevel
	if c.LogFormat == "json" {
		l.Formatter = &logrus.JSONFormatter{}
	} else {
		l.Formatter = &logrus.TextFormatter{DisableColors: true, FullTimestamp: true}
	}
	return l
}
