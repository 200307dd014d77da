// Package config loads PhraseWeaver settings from defaults, an optional
// config.yaml, PHRASEWEAVER_* environment variables and command-line flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Keys understood by Load.
const (
	KeyDB          = "db"
	KeyLogLevel    = "log.level"
	KeyBatchSize   = "session.batch_size"
	KeyLapseRetry  = "session.lapse_retry"
	KeyDefaultLang = "deck.default_lang"
)

// EnvPrefix prefixes every environment variable, e.g. PHRASEWEAVER_LOG_LEVEL.
const EnvPrefix = "PHRASEWEAVER"

// Config holds resolved settings. It is passed explicitly to the packages
// that need it.
type Config struct {
	DBPath      string
	LogLevel    string
	BatchSize   int
	LapseRetry  time.Duration
	DefaultLang string
}

// Loader resolves a Config.
type Loader struct {
	v *viper.Viper
}

// NewLoader returns a loader with defaults applied and environment
// variables bound. dataDir is searched for config.yaml; empty skips the file.
func NewLoader(dataDir string) *Loader {
	v := viper.New()
	v.SetDefault(KeyDB, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyBatchSize, 20)
	v.SetDefault(KeyLapseRetry, time.Duration(0))
	v.SetDefault(KeyDefaultLang, "en")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if dataDir != "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dataDir)
	}
	return &Loader{v: v}
}

// BindFlag makes a command-line flag override key when it was set.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("bind %s: flag not defined", key)
	}
	return l.v.BindPFlag(key, flag)
}

// SetConfigFile reads settings from path instead of the data directory.
func (l *Loader) SetConfigFile(path string) {
	l.v.SetConfigFile(path)
}

// Load reads the config file if present and returns the merged settings.
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		DBPath:      l.v.GetString(KeyDB),
		LogLevel:    l.v.GetString(KeyLogLevel),
		BatchSize:   l.v.GetInt(KeyBatchSize),
		LapseRetry:  l.v.GetDuration(KeyLapseRetry),
		DefaultLang: l.v.GetString(KeyDefaultLang),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ConfigFileUsed returns the path of the file Load read, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// Validate rejects settings no command can run with.
func (c *Config) Validate() error {
	var errs []error
	if c.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %d", KeyBatchSize, c.BatchSize))
	}
	if c.LapseRetry < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative, got %s", KeyLapseRetry, c.LapseRetry))
	}
	if strings.TrimSpace(c.DefaultLang) == "" {
		errs = append(errs, fmt.Errorf("%s is required", KeyDefaultLang))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// DefaultFile returns the config file path inside dataDir.
func DefaultFile(dataDir string) string {
	return filepath.Join(dataDir, "config.yaml")
}
