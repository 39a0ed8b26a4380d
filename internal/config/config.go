package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting the server reads from the environment.
type Config struct {
	Env      string
	Port     string
	LogLevel string

	JWTSecret string
	TokenTTL  time.Duration

	// Audit mirror: "none", "postgres" or "sqlite".
	DatabaseDriver string
	DatabaseURL    string

	// "memory" or "redis".
	SessionStore  string
	RedisAddr     string
	RedisPassword string

	// "memory", "supabase" or "s3".
	StorageDriver      string
	SupabaseURL        string
	SupabaseServiceKey string
	SupabaseBucket     string
	S3Bucket           string
	S3Region           string
	S3Endpoint         string
	S3AccessKeyID      string
	S3SecretAccessKey  string

	ResendAPIKey  string
	EmailFrom     string
	EmailTestMode bool

	AdminEmail      string
	AdminPassword   string
	SSOAccountEmail string
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Env:      getenv("APP_ENV", "dev"),
		Port:     getenv("PORT", "3000"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		JWTSecret: getenv("JWT_SECRET", "dev-secret-change-me"),
		TokenTTL:  getDuration("TOKEN_TTL", 7*24*time.Hour),

		DatabaseDriver: strings.ToLower(getenv("DATABASE_DRIVER", "none")),
		DatabaseURL:    os.Getenv("DATABASE_URL"),

		SessionStore:  strings.ToLower(getenv("SESSION_STORE", "memory")),
		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		StorageDriver:      strings.ToLower(getenv("STORAGE_DRIVER", "memory")),
		SupabaseURL:        os.Getenv("SUPABASE_URL"),
		SupabaseServiceKey: os.Getenv("SUPABASE_SERVICE_KEY"),
		SupabaseBucket:     os.Getenv("SUPABASE_BUCKET"),
		S3Bucket:           os.Getenv("S3_BUCKET"),
		S3Region:           getenv("S3_REGION", "auto"),
		S3Endpoint:         os.Getenv("S3_ENDPOINT"),
		S3AccessKeyID:      os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretAccessKey:  os.Getenv("S3_SECRET_ACCESS_KEY"),

		ResendAPIKey:  os.Getenv("RESEND_API_KEY"),
		EmailFrom:     getenv("EMAIL_FROM", "Ace Legal Partners <no-reply@acelegalpartnerssl.com>"),
		EmailTestMode: getBool("EMAIL_TEST_MODE", true),

		AdminEmail:      getenv("ADMIN_EMAIL", "admin@acelegalpartnerssl.com"),
		AdminPassword:   getenv("ADMIN_PASSWORD", "Cloud@Acelegalpartners_2025"),
		SSOAccountEmail: getenv("SSO_ACCOUNT_EMAIL", "admin@acelegalpartnerssl.com"),
	}
}

// IsDev reports whether the server runs in development mode.
func (c *Config) IsDev() bool { return c.Env == "dev" }

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
