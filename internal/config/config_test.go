package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Port:            "8080",
		DatabasePath:    "projects.db",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		FuzzyThreshold:  0.60,
		LogLevel:        "INFO",
		MaxUploadSize:   32 << 20,
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantError bool
	}{
		{"Valid defaults", func(c *Config) {}, false},
		{"Empty port", func(c *Config) { c.Port = "" }, true},
		{"Empty database path", func(c *Config) { c.DatabasePath = "" }, true},
		{"Zero threshold", func(c *Config) { c.FuzzyThreshold = 0 }, true},
		{"Threshold above one", func(c *Config) { c.FuzzyThreshold = 1.5 }, true},
		{"Threshold exactly one", func(c *Config) { c.FuzzyThreshold = 1 }, false},
		{"Translate without key", func(c *Config) { c.TranslateEnabled = true }, true},
		{"Translate with key", func(c *Config) {
			c.TranslateEnabled = true
			c.TranslateAPIKey = "sk-test"
		}, false},
		{"Negative upload size", func(c *Config) { c.MaxUploadSize = -1 }, true},
		{"Lowercase log level", func(c *Config) { c.LogLevel = "debug" }, false},
		{"Empty log level", func(c *Config) { c.LogLevel = "" }, false},
		{"Unknown log level", func(c *Config) { c.LogLevel = "VERBOSE" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Port == "" {
		t.Error("Port должен иметь значение по умолчанию")
	}
	if cfg.FuzzyThreshold != 0.60 {
		t.Errorf("порог по умолчанию 0.60, получено %v", cfg.FuzzyThreshold)
	}
	if cfg.RatesTTL != time.Hour {
		t.Errorf("TTL курсов по умолчанию 1h, получено %v", cfg.RatesTTL)
	}
	if cfg.TranslateEnabled {
		t.Error("перевод по умолчанию выключен")
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("FUZZY_THRESHOLD", "0.75")
	t.Setenv("DB_CONN_MAX_LIFETIME", "10m")
	t.Setenv("MAX_UPLOAD_SIZE", "1048576")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("Port = %q, ожидалось 9000", cfg.Port)
	}
	if cfg.FuzzyThreshold != 0.75 {
		t.Errorf("FuzzyThreshold = %v, ожидалось 0.75", cfg.FuzzyThreshold)
	}
	if cfg.ConnMaxLifetime != 10*time.Minute {
		t.Errorf("ConnMaxLifetime = %v, ожидалось 10m", cfg.ConnMaxLifetime)
	}
	if cfg.MaxUploadSize != 1<<20 {
		t.Errorf("MaxUploadSize = %d, ожидалось 1048576", cfg.MaxUploadSize)
	}
}

func TestLoadConfigInvalidEnvFallsBack(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "не-число")
	t.Setenv("RATES_TTL", "мусор")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.MaxOpenConns != 25 {
		t.Errorf("нечисловое значение должно давать дефолт 25, получено %d", cfg.MaxOpenConns)
	}
	if cfg.RatesTTL != time.Hour {
		t.Errorf("нечитаемый TTL должен давать дефолт 1h, получено %v", cfg.RatesTTL)
	}
}
