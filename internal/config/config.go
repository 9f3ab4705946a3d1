package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	DBHost string
	DBPort string
	DBUser string
	DBPass string
	DBName string

	RedisURL string

	JWTSecret string
	JWTTTL    time.Duration

	AvatarDir       string
	AvatarURLPrefix string
	MaxUploadBytes  int64

	PostCooldown time.Duration
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		DBHost: getEnv("DB_HOST", "localhost"),
		DBPort: getEnv("DB_PORT", "5432"),
		DBUser: getEnv("DB_USER", "postgres"),
		DBPass: os.Getenv("DB_PASS"),
		DBName: getEnv("DB_NAME", "huxiang_culture"),

		RedisURL: os.Getenv("REDIS_URL"),

		JWTSecret: getEnv("JWT_SECRET", "huxiang-jwt-secret-dev"),

		AvatarDir:       getEnv("AVATAR_UPLOAD_PATH", "public/static/avatars"),
		AvatarURLPrefix: getEnv("AVATAR_URL_PREFIX", "/static/avatars"),
		MaxUploadBytes:  16 << 20,
	}

	ttl := time.Hour
	if ttlStr := os.Getenv("JWT_TTL_MINUTES"); ttlStr != "" {
		minutes, err := strconv.Atoi(ttlStr)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_TTL_MINUTES: %w", err)
		}
		ttl = time.Duration(minutes) * time.Minute
	}
	cfg.JWTTTL = ttl

	cooldown, err := time.ParseDuration(getEnv("POST_COOLDOWN", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid POST_COOLDOWN: %w", err)
	}
	cfg.PostCooldown = cooldown

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
