package config

import (
	"os"
	"strconv"
	"strings"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// UploadConfig bounds accepted logo uploads.
type UploadConfig struct {
	MaxSizeBytes int64
	AllowedTypes []string
}

// SchemaConfig declares the field rules that drifted across revisions of
// the listing schema. Keeping them configuration rather than constants lets
// a deployment pick its variant without a code change.
type SchemaConfig struct {
	RatingMin        float64
	RatingMax        float64
	CategoryRequired bool
}

// FeaturedConfig selects the featured subset: the top Limit listings by
// rating, restricted to ratings of at least MinRating.
type FeaturedConfig struct {
	MinRating float64
	Limit     int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost string
	Port    string
	// AdminHeader names the request header an upstream auth proxy stamps
	// with the authenticated admin subject. Admin auth itself lives outside
	// this service.
	AdminHeader string
	Database    DatabaseConfig
	MinIO       MinIOConfig
	Upload      UploadConfig
	Schema      SchemaConfig
	Featured    FeaturedConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:     getEnv("APP_HOST", "localhost:8080"),
		Port:        getEnv("PORT", "8080"), // default only for non-sensitive value
		AdminHeader: getEnv("ADMIN_SUBJECT_HEADER", "X-Admin-Subject"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Upload: UploadConfig{
			MaxSizeBytes: getEnvInt64("UPLOAD_MAX_BYTES", 5<<20),
			AllowedTypes: getEnvList("UPLOAD_ALLOWED_TYPES", "image/jpeg,image/png,image/webp,image/gif"),
		},
		Schema: SchemaConfig{
			RatingMin:        getEnvFloat("SCHEMA_RATING_MIN", 0),
			RatingMax:        getEnvFloat("SCHEMA_RATING_MAX", 5),
			CategoryRequired: getEnvBool("SCHEMA_CATEGORY_REQUIRED", false),
		},
		Featured: FeaturedConfig{
			MinRating: getEnvFloat("FEATURED_MIN_RATING", 4),
			Limit:     getEnvInt("FEATURED_LIMIT", 6),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func getEnvList(key, def string) []string {
	raw := getEnv(key, def)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
