// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/javajoker/atelier-backend/internal/workflow"
)

type Config struct {
	Environment   string
	Server        ServerConfig
	Database      DatabaseConfig
	Schedule      ScheduleConfig
	Recalculation RecalculationConfig
	AWS           AWSConfig
	RateLimit     RateLimitConfig
	CORS          CORSConfig
	I18n          I18nConfig
	Metrics       MetricsConfig
	TV            TVConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

type ScheduleConfig struct {
	DayCounting   string
	Timezone      string
	StageSeedFile string
}

// Location resolves Timezone, falling back to UTC.
func (s ScheduleConfig) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type RecalculationConfig struct {
	RemoteURL        string
	RequestTimeout   time.Duration
	BulkTimeout      time.Duration
	TriggerOnConfig  bool
	BreakerFailures  uint32
	BreakerOpenDelay time.Duration
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
	PresignTTL      time.Duration
}

type RateLimitConfig struct {
	MutationsPerSecond float64
	MutationBurst      int
	GeneralPerSecond   float64
	GeneralBurst       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type I18nConfig struct {
	DefaultLocale string
}

type MetricsConfig struct {
	Enabled bool
}

type TVConfig struct {
	APIBaseURL      string
	RotateInterval  time.Duration
	RefreshInterval time.Duration
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 60),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "atelier"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "warn"),
		},
		Schedule: ScheduleConfig{
			DayCounting:   getEnv("STAGE_DAY_COUNTING", string(workflow.CalendarDays)),
			Timezone:      getEnv("STAGE_TIMEZONE", "America/Sao_Paulo"),
			StageSeedFile: getEnv("STAGE_SEED_FILE", ""),
		},
		Recalculation: RecalculationConfig{
			RemoteURL:        getEnv("RECALC_REMOTE_URL", ""),
			RequestTimeout:   getEnvAsDuration("RECALC_REQUEST_TIMEOUT", 30*time.Second),
			BulkTimeout:      getEnvAsDuration("RECALC_BULK_TIMEOUT", 2*time.Minute),
			TriggerOnConfig:  getEnvAsBool("RECALC_ON_CONFIG_CHANGE", true),
			BreakerFailures:  uint32(getEnvAsInt("RECALC_BREAKER_FAILURES", 3)),
			BreakerOpenDelay: getEnvAsDuration("RECALC_BREAKER_OPEN_DELAY", 30*time.Second),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "sa-east-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:        getEnv("AWS_S3_BUCKET", "atelier-product-files"),
			PresignTTL:      getEnvAsDuration("AWS_PRESIGN_TTL", 15*time.Minute),
		},
		RateLimit: RateLimitConfig{
			MutationsPerSecond: getEnvAsFloat("RATE_LIMIT_MUTATIONS_PER_SECOND", 5),
			MutationBurst:      getEnvAsInt("RATE_LIMIT_MUTATION_BURST", 10),
			GeneralPerSecond:   getEnvAsFloat("RATE_LIMIT_PER_SECOND", 20),
			GeneralBurst:       getEnvAsInt("RATE_LIMIT_BURST", 40),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		},
		I18n: I18nConfig{
			DefaultLocale: getEnv("DEFAULT_LOCALE", "pt_BR"),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvAsBool("METRICS_ENABLED", true),
		},
		TV: TVConfig{
			APIBaseURL:      getEnv("TV_API_BASE_URL", "http://localhost:8080"),
			RotateInterval:  getEnvAsDuration("TV_ROTATE_INTERVAL", 15*time.Second),
			RefreshInterval: getEnvAsDuration("TV_REFRESH_INTERVAL", time.Minute),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if _, err := workflow.ParseDayCounting(c.Schedule.DayCounting); err != nil {
		return err
	}

	if c.Schedule.Timezone != "" {
		if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
			return fmt.Errorf("invalid STAGE_TIMEZONE %q: %w", c.Schedule.Timezone, err)
		}
	}

	if c.Recalculation.BulkTimeout <= 0 {
		return fmt.Errorf("RECALC_BULK_TIMEOUT must be positive")
	}

	if c.Database.Password == "" && c.Environment == "production" {
		return fmt.Errorf("database password is required in production")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
