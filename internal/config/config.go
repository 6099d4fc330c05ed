// Package config loads process configuration from struct defaults, an
// optional .env file and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/robfig/cron/v3"
)

// Config keys are the lower-cased environment variable names.
type Config struct {
	Port        string `koanf:"port"`
	DatabaseURL string `koanf:"database_url"`
	AppEnv      string `koanf:"app_env"`

	TMDBAPIKey   string `koanf:"tmdb_api_key"`
	TMDBBaseURL  string `koanf:"tmdb_base_url"`
	JikanBaseURL string `koanf:"jikan_base_url"`

	JWTSecret     string        `koanf:"jwt_secret"`
	TokenTTL      time.Duration `koanf:"token_ttl"`
	AdminUsername string        `koanf:"admin_username"`
	AdminPassword string        `koanf:"admin_password"`

	AutoMigrate    bool `koanf:"auto_migrate"`
	SeedSampleData bool `koanf:"seed_sample_data"`

	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`

	WorkerSchedule string        `koanf:"worker_schedule"`
	WorkerPause    time.Duration `koanf:"worker_pause"`
}

func defaultConfig() *Config {
	return &Config{
		Port:               "5000",
		DatabaseURL:        "memory://",
		AppEnv:             "development",
		TokenTTL:           24 * time.Hour,
		AutoMigrate:        true,
		SeedSampleData:     false,
		CORSAllowedOrigins: []string{"https://*", "http://*"},
		LogLevel:           "info",
		LogFormat:          "json",
		WorkerSchedule:     "0 0 */12 * * *",
		WorkerPause:        time.Second,
	}
}

var sliceKeys = []string{"cors_allowed_origins"}

// scheduleParser accepts the same specs as cron.New(cron.WithSeconds()).
var scheduleParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Load reads the given .env files (".env" when none are named; a missing
// file is not an error), then layers environment variables over the defaults.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	if err := splitSliceKeys(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// envTransformFunc keeps only the variables Config knows about.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)
	if _, ok := knownKeys[key]; !ok {
		return ""
	}
	return key
}

var knownKeys = func() map[string]struct{} {
	keys := make(map[string]struct{})
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		if tag := t.Field(i).Tag.Get("koanf"); tag != "" {
			keys[tag] = struct{}{}
		}
	}
	return keys
}()

func splitSliceKeys(k *koanf.Koanf) error {
	for _, key := range sliceKeys {
		raw, ok := k.Get(key).(string)
		if !ok {
			continue
		}
		parts := strings.Split(raw, ",")
		values := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				values = append(values, p)
			}
		}
		if err := k.Set(key, values); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Port) == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.LogFormat))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL))
	}
	if c.WorkerPause < 0 {
		errs = append(errs, fmt.Errorf("WORKER_PAUSE must not be negative, got %s", c.WorkerPause))
	}
	if _, err := scheduleParser.Parse(c.WorkerSchedule); err != nil {
		errs = append(errs, fmt.Errorf("WORKER_SCHEDULE %q: %w", c.WorkerSchedule, err))
	}
	if (c.AdminUsername == "") != (c.AdminPassword == "") {
		errs = append(errs, errors.New("ADMIN_USERNAME and ADMIN_PASSWORD must be set together"))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether APP_ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// DatabaseConfigured reports whether a persistent backend was requested.
func (c *Config) DatabaseConfigured() bool {
	url := strings.TrimSpace(c.DatabaseURL)
	return url != "" && !strings.HasPrefix(url, "memory://")
}
