package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

// unsetEnv clears key for the duration of the test and restores it afterwards.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoad_Defaults(t *testing.T) {
	for key := range knownKeys {
		unsetEnv(t, strings.ToUpper(key))
	}

	cfg, err := Load(missingEnvFile(t))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != "5000" {
		t.Errorf("Port = %q, want 5000", cfg.Port)
	}
	if cfg.DatabaseURL != "memory://" || cfg.DatabaseConfigured() {
		t.Errorf("DatabaseURL = %q, configured = %v", cfg.DatabaseURL, cfg.DatabaseConfigured())
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("TokenTTL = %s, want 24h", cfg.TokenTTL)
	}
	if !cfg.AutoMigrate || cfg.SeedSampleData {
		t.Errorf("AutoMigrate = %v, SeedSampleData = %v", cfg.AutoMigrate, cfg.SeedSampleData)
	}
	if cfg.WorkerSchedule != "0 0 */12 * * *" || cfg.WorkerPause != time.Second {
		t.Errorf("worker = %q / %s", cfg.WorkerSchedule, cfg.WorkerPause)
	}
	if cfg.TMDBAPIKey != "" {
		t.Error("TMDBAPIKey should be empty by default")
	}
	if cfg.IsProduction() {
		t.Error("default AppEnv should not be production")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DATABASE_URL", "sqlite:///tmp/cinecove.db")
	t.Setenv("TOKEN_TTL", "90m")
	t.Setenv("AUTO_MIGRATE", "false")
	t.Setenv("SEED_SAMPLE_DATA", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("WORKER_PAUSE", "250ms")
	t.Setenv("APP_ENV", "Production")
	t.Setenv("LOG_FORMAT", "console")

	cfg, err := Load(missingEnvFile(t))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != "8080" || !cfg.DatabaseConfigured() {
		t.Errorf("Port = %q, DatabaseURL = %q", cfg.Port, cfg.DatabaseURL)
	}
	if cfg.TokenTTL != 90*time.Minute {
		t.Errorf("TokenTTL = %s, want 1h30m", cfg.TokenTTL)
	}
	if cfg.AutoMigrate || !cfg.SeedSampleData {
		t.Errorf("AutoMigrate = %v, SeedSampleData = %v", cfg.AutoMigrate, cfg.SeedSampleData)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.CORSAllowedOrigins, want) {
		t.Errorf("CORSAllowedOrigins = %v, want %v", cfg.CORSAllowedOrigins, want)
	}
	if cfg.WorkerPause != 250*time.Millisecond {
		t.Errorf("WorkerPause = %s", cfg.WorkerPause)
	}
	if !cfg.IsProduction() {
		t.Error("IsProduction() = false, want true")
	}
}

func TestLoad_EnvFile(t *testing.T) {
	unsetEnv(t, "TMDB_API_KEY")
	t.Setenv("PORT", "7000")

	path := filepath.Join(t.TempDir(), ".env")
	content := "TMDB_API_KEY=from-file\nPORT=9999\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TMDBAPIKey != "from-file" {
		t.Errorf("TMDBAPIKey = %q, want from-file", cfg.TMDBAPIKey)
	}
	if cfg.Port != "7000" {
		t.Errorf("Port = %q, the process environment should win over the file", cfg.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "empty port", mutate: func(c *Config) { c.Port = " " }, wantErr: "PORT"},
		{name: "bad log format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantErr: "LOG_FORMAT"},
		{name: "zero ttl", mutate: func(c *Config) { c.TokenTTL = 0 }, wantErr: "TOKEN_TTL"},
		{name: "five field schedule", mutate: func(c *Config) { c.WorkerSchedule = "0 */12 * * *" }, wantErr: "WORKER_SCHEDULE"},
		{name: "descriptor schedule", mutate: func(c *Config) { c.WorkerSchedule = "@every 1h" }},
		{name: "admin without password", mutate: func(c *Config) { c.AdminUsername = "admin" }, wantErr: "ADMIN_USERNAME"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}
