package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database        DatabaseConfig
	JWT             JWTConfig
	App             AppConfig
	Storage         StorageConfig
	FaceRecognition FaceRecognitionConfig
	Redis           RedisConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret            string
	RefreshExpiration string
	AccessExpiration  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	Timezone       string // attendance dates are taken in this zone
	AllowedOrigins []string

	// First super admin, created at startup when the email is not registered yet.
	SuperAdminEmail    string
	SuperAdminPassword string
}

// StorageConfig selects where uploaded photos live.
type StorageConfig struct {
	Type     string // local | s3
	BasePath string
	BaseURL  string

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
}

// FaceRecognitionConfig points at the external face-match service.
type FaceRecognitionConfig struct {
	BaseURL string
	Timeout time.Duration
}

// RedisConfig is optional; an empty Addr falls back to an in-process check-in lock.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, reading configuration from environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "presensi"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Timezone:       getEnv("APP_TIMEZONE", "UTC"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),

		SuperAdminEmail:    getEnv("SUPER_ADMIN_EMAIL", ""),
		SuperAdminPassword: getEnv("SUPER_ADMIN_PASSWORD", ""),
	}
	if len(config.App.AllowedOrigins) == 0 {
		config.App.AllowedOrigins = []string{"http://localhost:3000"}
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:            getEnv("JWT_SECRET_KEY", ""),
		RefreshExpiration: getEnv("JWT_REFRESH_EXPIRATION_TIME", "168h"),
		AccessExpiration:  getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Storage configuration
	config.Storage = StorageConfig{
		Type:        getEnv("STORAGE_TYPE", "local"),
		BasePath:    getEnv("STORAGE_BASE_PATH", "./storage"),
		BaseURL:     getEnv("STORAGE_BASE_URL", "http://localhost:8080/storage"),
		S3Bucket:    getEnv("S3_BUCKET", ""),
		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_KEY", ""),
	}

	// Face recognition service
	faceTimeout, err := time.ParseDuration(getEnv("FACE_SERVICE_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid FACE_SERVICE_TIMEOUT: %w", err)
	}
	config.FaceRecognition = FaceRecognitionConfig{
		BaseURL: strings.TrimRight(getEnv("FACE_SERVICE_URL", "http://localhost:8000"), "/"),
		Timeout: faceTimeout,
	}

	// Redis configuration
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	config.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       redisDB,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if _, err := time.ParseDuration(c.JWT.RefreshExpiration); err != nil {
		return fmt.Errorf("invalid JWT_REFRESH_EXPIRATION_TIME: %w", err)
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	if c.App.SuperAdminEmail != "" && len(c.App.SuperAdminPassword) < 8 {
		return fmt.Errorf("SUPER_ADMIN_PASSWORD must be at least 8 characters")
	}
	if c.FaceRecognition.BaseURL == "" {
		return fmt.Errorf("FACE_SERVICE_URL is required")
	}

	switch c.Storage.Type {
	case "local":
		if c.Storage.BasePath == "" {
			return fmt.Errorf("STORAGE_BASE_PATH is required for local storage")
		}
	case "s3":
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for s3 storage")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_TYPE: %s", c.Storage.Type)
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
