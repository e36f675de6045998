package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	LLM      LLMConfig
	Storage  StorageConfig
	Auth     AuthConfig
	Stripe   StripeConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type LLMConfig struct {
	APIKey      string
	Model       string
	Timeout     time.Duration
	Temperature float32
	MaxTokens   int32
}

type StorageConfig struct {
	UploadPath    string
	MaxFileSize   int64
	MinTextLength int
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "resume_matcher"),
		},
		LLM: LLMConfig{
			APIKey:      getEnv("GEMINI_API_KEY", ""),
			Model:       getEnv("LLM_MODEL", "gemini-2.5-flash"),
			Timeout:     getEnvAsDuration("LLM_TIMEOUT", "30s"),
			Temperature: getEnvAsFloat32("LLM_TEMPERATURE", 0.3),
			MaxTokens:   int32(getEnvAsInt("LLM_MAX_TOKENS", 4096)),
		},
		Storage: StorageConfig{
			UploadPath:    getEnv("UPLOAD_PATH", "./uploads"),
			MaxFileSize:   getEnvAsInt64("MAX_FILE_SIZE", 5*1024*1024),
			MinTextLength: getEnvAsInt("MIN_TEXT_LENGTH", 50),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-me"),
			TokenTTL:  getEnvAsDuration("TOKEN_TTL", "720h"),
		},
		Stripe: StripeConfig{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 32); err == nil {
		return float32(value)
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
