package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"mailchimp-auth/internal/avatar"
)

type Config struct {
	AppPort string

	MailChimpClientID     string
	MailChimpClientSecret string
	MailChimpRedirectURL  string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	AvatarMaxBytes int64

	RedisAddr     string
	RedisPassword string

	DatabaseDSN string
}

func Load() Config {

	// .env is a development convenience; absence is fine
	_ = godotenv.Load()

	cfg := Config{

		AppPort: os.Getenv("APP_PORT"),

		MailChimpClientID:     os.Getenv("MAILCHIMP_CLIENT_ID"),
		MailChimpClientSecret: os.Getenv("MAILCHIMP_CLIENT_SECRET"),
		MailChimpRedirectURL:  os.Getenv("MAILCHIMP_REDIRECT_URL"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),

		AvatarMaxBytes: envInt64("AVATAR_MAX_BYTES", avatar.DefaultMaxBytes),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		DatabaseDSN: os.Getenv("DATABASE_DSN"),
	}

	return cfg
}

func envInt64(key string, fallback int64) int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
