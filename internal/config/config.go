package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type DatabaseConfig struct {
	Driver   string // "sqlite", "mysql" or "postgres"
	DSN      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type MailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type Config struct {
	Port         string
	GinMode      string
	LogLevel     string
	DB           DatabaseConfig
	JWTSecret    string
	JWTTTL       time.Duration
	FrontendURL  string
	Mail         MailConfig
	OpenAIAPIKey string
}

// Load reads the configuration from the environment. It is called once at
// startup and the result is treated as read-only afterwards.
func Load() (*Config, error) {
	ttl, err := time.ParseDuration(getEnv("JWT_TTL", "720h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}

	mailPort, err := strconv.Atoi(getEnv("EMAIL_PORT", "2525"))
	if err != nil {
		return nil, fmt.Errorf("invalid EMAIL_PORT: %w", err)
	}

	cfg := &Config{
		Port:     getEnv("PORT", "4000"),
		GinMode:  getEnv("GIN_MODE", "debug"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		DB: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "sqlite"),
			DSN:      os.Getenv("DB_DSN"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     os.Getenv("DB_PORT"),
			User:     getEnv("DB_USER", "taskuser"),
			Password: getEnv("DB_PASSWORD", "taskpassword"),
			Name:     getEnv("DB_NAME", "taskmanager"),
		},
		JWTSecret:   getEnv("JWT_SECRET", "default-secret-key-change-me"),
		JWTTTL:      ttl,
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		Mail: MailConfig{
			Host:     getEnv("EMAIL_HOST", "localhost"),
			Port:     mailPort,
			User:     os.Getenv("EMAIL_USER"),
			Password: os.Getenv("EMAIL_PASS"),
			From:     getEnv("EMAIL_FROM", `"TaskManager" <support@taskmanager.com>`),
		},
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
	}

	switch cfg.DB.Driver {
	case "sqlite", "mysql", "postgres":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DB.Driver)
	}

	return cfg, nil
}

// DataSource returns DSN when set, otherwise a connection string built from
// the individual fields for the configured driver.
func (db DatabaseConfig) DataSource() string {
	if db.DSN != "" {
		return db.DSN
	}

	switch db.Driver {
	case "mysql":
		port := db.Port
		if port == "" {
			port = "3306"
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			db.User, db.Password, db.Host, port, db.Name)
	case "postgres":
		port := db.Port
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			db.Host, port, db.User, db.Password, db.Name)
	default:
		return db.Name + ".db"
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
