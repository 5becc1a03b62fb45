package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Bandit   BanditConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
	// IANA name used for daily rollup keys
	Timezone string
}

type ServerConfig struct {
	Port           string
	RequestTimeout time.Duration
}

const (
	DriverPostgres = "postgres"
	DriverSqlite   = "sqlite"
	DriverMemory   = "memory"
)

type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SSLMode    string
	SqlitePath string
}

type JWTConfig struct {
	SecretKey string
}

type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisUsername string
	RedisPassword string
	RedisDB       int
	PoolSize      int
	DailyStatTTL  time.Duration
}

// Enabled reports whether daily rollups should go to Redis.
func (r RedisConfig) Enabled() bool {
	return r.RedisHost != ""
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

type BanditConfig struct {
	TuningFile string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, errors.New("invalid redis database")
	}

	redisPool, err := strconv.Atoi(getEnv("REDIS_POOL_SIZE", "20"))
	if err != nil || redisPool <= 0 {
		return nil, errors.New("invalid redis pool size")
	}

	requestTimeout, err := time.ParseDuration(getEnv("REQUEST_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
	}

	dailyTTL, err := time.ParseDuration(getEnv("REDIS_DAILY_STAT_TTL", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DAILY_STAT_TTL: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Smart Pricing API"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
			Timezone:    getEnv("APP_TIMEZONE", "Local"),
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			RequestTimeout: requestTimeout,
		},
		Database: DatabaseConfig{
			Driver:     strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", ""),
			Name:       getEnv("DB_NAME", "smart_pricing"),
			SSLMode:    getEnv("DB_SSL_MODE", "disable"),
			SqlitePath: getEnv("SQLITE_PATH", "smart_pricing.db"),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", ""),
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", ""),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisUsername: getEnv("REDIS_USERNAME", ""),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
			PoolSize:      redisPool,
			DailyStatTTL:  dailyTTL,
		},
		Kafka: KafkaConfig{
			Brokers: splitList(getEnv("KAFKA_BROKERS", "")),
			Topic:   getEnv("KAFKA_TOPIC", "pricing.decisions"),
		},
		Bandit: BanditConfig{
			TuningFile: getEnv("BANDIT_TUNING_FILE", ""),
		},
	}

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("missing jwt secret")
	}

	switch cfg.Database.Driver {
	case DriverPostgres:
		if cfg.Database.Password == "" {
			return nil, errors.New("missing database password")
		}
	case DriverSqlite, DriverMemory:
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.Database.Driver)
	}

	if _, err := cfg.App.Location(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Location resolves the configured timezone.
func (a AppConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", a.Timezone, err)
	}
	return loc, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
