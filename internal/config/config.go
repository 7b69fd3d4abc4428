package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config конфигурация сервиса сравнения предложений
type Config struct {
	// Сервер
	Port string

	// База данных
	DatabasePath    string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// Перевод описаний (OpenAI-совместимый API)
	TranslateEnabled bool
	TranslateBaseURL string
	TranslateAPIKey  string
	TranslateModel   string
	TranslateRPS     float64
	TranslateTimeout time.Duration

	// Курсы валют
	RatesURL string
	RatesTTL time.Duration

	// Матчинг
	FuzzyThreshold float64

	// Логирование
	LogLevel string

	// Ограничение размера загружаемых файлов, байт
	MaxUploadSize int64
}

// LoadConfig загружает конфигурацию из переменных окружения
func LoadConfig() (*Config, error) {
	config := &Config{
		Port: getEnv("SERVER_PORT", "8080"),

		DatabasePath:    getEnv("DATABASE_PATH", "projects.db"),
		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),

		TranslateEnabled: getEnv("TRANSLATE_ENABLED", "false") == "true",
		TranslateBaseURL: getEnv("TRANSLATE_BASE_URL", "https://api.openai.com/v1"),
		TranslateAPIKey:  os.Getenv("TRANSLATE_API_KEY"),
		TranslateModel:   getEnv("TRANSLATE_MODEL", "gpt-4o-mini"),
		TranslateRPS:     getEnvFloat("TRANSLATE_RPS", 5),
		TranslateTimeout: getEnvDuration("TRANSLATE_TIMEOUT", 30*time.Second),

		RatesURL: os.Getenv("RATES_URL"),
		RatesTTL: getEnvDuration("RATES_TTL", time.Hour),

		FuzzyThreshold: getEnvFloat("FUZZY_THRESHOLD", 0.60),

		LogLevel: getEnv("LOG_LEVEL", "INFO"),

		MaxUploadSize: int64(getEnvInt("MAX_UPLOAD_SIZE", 32<<20)),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

// Validate проверяет согласованность конфигурации
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database path is required")
	}
	if c.FuzzyThreshold <= 0 || c.FuzzyThreshold > 1 {
		return fmt.Errorf("fuzzy threshold must be in (0, 1], got %v", c.FuzzyThreshold)
	}
	if c.TranslateEnabled && c.TranslateAPIKey == "" {
		return fmt.Errorf("translation enabled but TRANSLATE_API_KEY is empty")
	}
	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("max upload size must be positive")
	}

	switch strings.ToUpper(c.LogLevel) {
	case "", "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}

// getEnv получает переменную окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает переменную окружения как int или возвращает значение по умолчанию
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat получает переменную окружения как float64 или возвращает значение по умолчанию
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvDuration получает переменную окружения как Duration или возвращает значение по умолчанию
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
