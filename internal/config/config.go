package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	JWKSURL     string // Constructed from AuthURL + /auth/v1/.well-known/jwks.json
	CORSOrigins string
	TablePrefix string
	// Object storage (S3-compatible: Cloudflare R2, MinIO, AWS S3)
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string // Account endpoint for R2/MinIO; empty means plain AWS S3
	S3PublicURL string // Optional CDN/custom domain for serving uploaded blobs
	// Inline payload policy
	InlineTTL     time.Duration // Max age of inline base64 payloads before the sweep drops them
	MaxRequestMB  int           // Platform request-size ceiling
	MaxDocumentMB int           // Persistence-layer document-size ceiling
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	tablePrefix := getTablePrefix(env)
	authURL := getEnv("AUTH_URL", "")

	// Construct JWKS URL from auth provider URL
	jwksURL := authURL + "/auth/v1/.well-known/jwks.json"

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		JWKSURL:     jwksURL,
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix: tablePrefix,
		// Object storage
		S3Region:    getEnv("S3_REGION", "auto"),
		S3Bucket:    getEnv("S3_BUCKET", ""),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_KEY", ""),
		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		S3PublicURL: getEnv("S3_PUBLIC_URL", ""),
		// Inline payload policy
		InlineTTL:     getDuration("INLINE_TTL", DefaultInlineTTL),
		MaxRequestMB:  getInt("MAX_REQUEST_MB", DefaultMaxRequestMB),
		MaxDocumentMB: getInt("MAX_DOCUMENT_MB", DefaultMaxDocumentMB),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// MaxRequestBytes returns the platform request-size ceiling in bytes.
func (c *Config) MaxRequestBytes() int64 {
	return int64(c.MaxRequestMB) << 20
}

// MaxDocumentBytes returns the persistence-layer document-size ceiling in bytes.
func (c *Config) MaxDocumentBytes() int64 {
	return int64(c.MaxDocumentMB) << 20
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
