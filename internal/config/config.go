package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hongminglow/campuslearn-be/internal/blob"
)

// Storage backends selectable through DB_TYPE.
const (
	DBMongo    = "mongo"
	DBPostgres = "postgres"
	DBMemory   = "memory"
)

// Blob backends selectable through BLOB_BACKEND.
const (
	BlobLocal = "local"
	BlobS3    = "s3"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port        string
	DBType      string
	MongoURI    string
	MongoDB     string
	DatabaseURL string
	JWTSecret   string
	JWTIssuer   string
	JWTTTL      time.Duration
	CORSOrigins []string

	BlobBackend    string
	UploadDir      string
	PublicBaseURL  string
	MaxUploadBytes int64
	S3             blob.S3Config

	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:        fallback(os.Getenv("PORT"), "8080"),
		DBType:      strings.ToLower(fallback(os.Getenv("DB_TYPE"), DBMongo)),
		MongoURI:    strings.TrimSpace(os.Getenv("MONGO_URI")),
		MongoDB:     fallback(os.Getenv("MONGO_DATABASE"), "campuslearn"),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:   strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:   fallback(os.Getenv("JWT_ISSUER"), "campuslearn-backend"),
		JWTTTL:      positiveMinutes(os.Getenv("JWT_TTL_MINUTES"), 60),
		CORSOrigins: parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),

		BlobBackend:    strings.ToLower(fallback(os.Getenv("BLOB_BACKEND"), BlobLocal)),
		UploadDir:      fallback(os.Getenv("UPLOAD_DIR"), "uploads"),
		PublicBaseURL:  fallback(os.Getenv("PUBLIC_BASE_URL"), "/uploads"),
		MaxUploadBytes: int64(positiveInt(os.Getenv("UPLOAD_MAX_MB"), 20)) << 20,
		S3: blob.S3Config{
			Bucket:          strings.TrimSpace(os.Getenv("S3_BUCKET")),
			Region:          fallback(os.Getenv("S3_REGION"), "us-east-1"),
			Endpoint:        strings.TrimSpace(os.Getenv("S3_ENDPOINT")),
			AccessKeyID:     strings.TrimSpace(os.Getenv("S3_ACCESS_KEY_ID")),
			SecretAccessKey: strings.TrimSpace(os.Getenv("S3_SECRET_ACCESS_KEY")),
			PublicURL:       strings.TrimSpace(os.Getenv("S3_PUBLIC_URL")),
		},

		LogLevel:  fallback(os.Getenv("LOG_LEVEL"), "info"),
		LogFormat: fallback(os.Getenv("LOG_FORMAT"), "json"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.DBType {
	case DBMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI is required when DB_TYPE=mongo")
		}
	case DBPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when DB_TYPE=postgres")
		}
	case DBMemory:
	default:
		return fmt.Errorf("unsupported DB_TYPE %q", c.DBType)
	}

	switch c.BlobBackend {
	case BlobLocal:
	case BlobS3:
		if c.S3.Bucket == "" {
			return errors.New("S3_BUCKET is required when BLOB_BACKEND=s3")
		}
	default:
		return fmt.Errorf("unsupported BLOB_BACKEND %q", c.BlobBackend)
	}

	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	return nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func positiveInt(value string, def int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && n > 0 {
		return n
	}
	return def
}

func positiveMinutes(value string, def int) time.Duration {
	return time.Duration(positiveInt(value, def)) * time.Minute
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
