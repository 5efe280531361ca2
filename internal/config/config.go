package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ServerPort string
	// DBDriver is "postgres" or "memory".
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	// RedisURL is a redis:// URL or host:port; "memory" runs an embedded
	// server for development.
	RedisURL  string
	JWTSecret string
	TokenTTL  time.Duration

	// StorageDriver is "minio" or "memory".
	StorageDriver string
	S3Endpoint    string
	S3AccessKey   string
	S3SecretKey   string
	S3UseSSL      bool
	// StorageBuckets are the public buckets clients may write to.
	StorageBuckets []string
	// PublicBaseURL prefixes the public URLs of stored objects.
	PublicBaseURL string

	LogLevel  string
	LogFormat string
}

func Load() *Config {
	port := getEnv("SERVER_PORT", "8080")

	return &Config{
		ServerPort: port,
		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "huddle"),
		DBPassword: getEnv("DB_PASSWORD", "huddle_dev_password"),
		DBName:     getEnv("DB_NAME", "huddle"),
		RedisURL:   getEnv("REDIS_URL", "localhost:6379"),
		JWTSecret:  getEnv("JWT_SECRET", "dev-secret-change-me"),
		TokenTTL:   getDuration("TOKEN_TTL", 7*24*time.Hour),

		StorageDriver:  getEnv("STORAGE_DRIVER", "minio"),
		S3Endpoint:     getEnv("S3_ENDPOINT", "localhost:9000"),
		S3AccessKey:    getEnv("S3_ACCESS_KEY", "minioadmin"),
		S3SecretKey:    getEnv("S3_SECRET_KEY", "minioadmin"),
		S3UseSSL:       getBool("S3_USE_SSL", false),
		StorageBuckets: getList("STORAGE_BUCKETS", []string{"avatars"}),
		PublicBaseURL:  strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:"+port), "/"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

func getEnv(key, fallback string) string {
	val, exists := os.LookupEnv(key)

	if exists {
		return val
	}

	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return b
}

func getList(key string, fallback []string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, ""), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
