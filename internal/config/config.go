package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port        string
	MetricsPort int
	LogLevel    string
	CORSOrigins []string
	RateLimit   float64
	RateBurst   int

	DB      DBConfig
	Auth    AuthConfig
	Booking BookingConfig
	Redis   RedisConfig
	Kafka   KafkaConfig

	RestaurantsPath string
}

type DBConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnectRetries  int
	// Location is the zone DATETIME/TIMESTAMP columns are read in; same as TIMEZONE.
	Location *time.Location
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type BookingConfig struct {
	Location     *time.Location
	WindowDays   int
	MaxPartySize int
	Opens        string // HH:MM
	Closes       string // HH:MM
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	loc, err := time.LoadLocation(getEnvOrDefault("TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	cfg := &Config{
		Port:        getEnvOrDefault("PORT", "5001"),
		MetricsPort: getEnvAsIntOrDefault("METRICS_PORT", 0),
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "info"),
		CORSOrigins: splitList(getEnvOrDefault("CORS_ORIGINS", "*")),
		RateLimit:   getEnvAsFloatOrDefault("RATE_LIMIT", 20),
		RateBurst:   getEnvAsIntOrDefault("RATE_BURST", 40),
		DB: DBConfig{
			Host:            getEnvOrDefault("DATABASE_HOST", "127.0.0.1"),
			Port:            getEnvAsIntOrDefault("DATABASE_PORT", 3306),
			User:            getEnvOrDefault("DATABASE_USER", "root"),
			Password:        os.Getenv("DATABASE_PASSWORD"),
			Name:            getEnvOrDefault("DATABASE_NAME", "restaurant_reservations"),
			MaxOpenConns:    getEnvAsIntOrDefault("DB_MAX_OPEN_CONNS", 5),
			MaxIdleConns:    getEnvAsIntOrDefault("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDurationOrDefault("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnectRetries:  getEnvAsIntOrDefault("DB_CONNECT_RETRIES", 10),
			Location:        loc,
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
			TokenTTL:  getEnvAsDurationOrDefault("TOKEN_TTL", 2*time.Hour),
		},
		Booking: BookingConfig{
			Location:     loc,
			WindowDays:   getEnvAsIntOrDefault("BOOKING_WINDOW_DAYS", 7),
			MaxPartySize: getEnvAsIntOrDefault("MAX_PARTY_SIZE", 10),
			Opens:        getEnvOrDefault("SERVICE_OPENS", "14:00"),
			Closes:       getEnvOrDefault("SERVICE_CLOSES", "22:00"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvAsIntOrDefault("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers: getKafkaBrokerURLs(),
			Topic:   getEnvOrDefault("KAFKA_TOPIC", "reservation-topic"),
		},
		RestaurantsPath: getEnvOrDefault("RESTAURANTS_PATH", "configs/restaurants.yaml"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.Booking.WindowDays < 1 {
		return errors.New("BOOKING_WINDOW_DAYS must be at least 1")
	}
	if c.Booking.MaxPartySize < 1 {
		return errors.New("MAX_PARTY_SIZE must be at least 1")
	}
	return nil
}

// DSN returns the go-sql-driver/mysql connection string.
func (c DBConfig) DSN() string {
	loc := "Local"
	if c.Location != nil {
		loc = url.QueryEscape(c.Location.String())
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=true&loc=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, loc)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	log.Debug().Msgf("Environment variable %s is not set, using default value", key)
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Warn().Msgf("Environment variable %s=%q is not an integer, using default value", key, value)
	}
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Warn().Msgf("Environment variable %s=%q is not a number, using default value", key, value)
	}
	return defaultValue
}

func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Warn().Msgf("Environment variable %s=%q is not a duration, using default value", key, value)
	}
	return defaultValue
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
