package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	Port          string
	Env           string
	ServerTimeout time.Duration

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBTimeZone string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// JWT
	JWTSecret              string
	JWTAccessTokenDuration time.Duration

	// Admin
	AdminPassword string

	// Cloudflare R2
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2Endpoint        string
	R2PrivateBucket   string
	R2PublicBucket    string
	R2PublicURL       string

	// Google Drive (migration source)
	DriveCredentialsFile string
	DriveCredentialsJSON string
	DriveRootFolderID    string

	// Audio
	FFmpegPath     string
	PreviewBitrate string

	// Migration
	MigrationDefaultPrice float64
	MigrationProgressTTL  time.Duration

	// Messaging
	AMQPURL      string
	AMQPExchange string

	// Logging
	LogLevel      string
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool

	// Security
	RateLimitRequests   int
	RateLimitDuration   time.Duration
	LoginAttemptsPerMin int
	UploadsPerDay       int

	// Housekeeping
	ReservationSweepInterval time.Duration

	// CORS
	AllowedOrigins []string
}

func New() *Config {
	return &Config{
		// Server
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		ServerTimeout: getEnvAsDuration("SERVER_TIMEOUT", "10m"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "beats"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "beats_db"),
		DBSSLMode:  getEnv("DB_SSL_MODE", "disable"),
		DBTimeZone: getEnv("DB_TIMEZONE", "Europe/Rome"),

		// Redis
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// JWT
		JWTSecret:              getEnv("JWT_SECRET", "your-secret-key"),
		JWTAccessTokenDuration: getEnvAsDuration("JWT_ACCESS_TOKEN_DURATION", "12h"),

		// Admin
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		// Cloudflare R2
		R2AccountID:       getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2Endpoint:        getEnv("R2_ENDPOINT", ""),
		R2PrivateBucket:   getEnv("R2_PRIVATE_BUCKET", "beats-private"),
		R2PublicBucket:    getEnv("R2_PUBLIC_BUCKET", "beats-public"),
		R2PublicURL:       getEnv("R2_PUBLIC_URL", ""),

		// Google Drive
		DriveCredentialsFile: getEnv("GDRIVE_CREDENTIALS_FILE", ""),
		DriveCredentialsJSON: getEnv("GDRIVE_CREDENTIALS_JSON", ""),
		DriveRootFolderID:    getEnv("GDRIVE_ROOT_FOLDER_ID", ""),

		// Audio
		FFmpegPath:     getEnv("FFMPEG_PATH", "ffmpeg"),
		PreviewBitrate: getEnv("PREVIEW_BITRATE", "192k"),

		// Migration
		MigrationDefaultPrice: getEnvAsFloat("MIGRATION_DEFAULT_PRICE", 19.99),
		MigrationProgressTTL:  getEnvAsDuration("MIGRATION_PROGRESS_TTL", "24h"),

		// Messaging (empty URL disables catalog events)
		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "beatstore.catalog"),

		// Logging
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFile:       getEnv("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvAsInt("LOG_MAX_SIZE_MB", 100),
		LogMaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: getEnvAsInt("LOG_MAX_AGE_DAYS", 30),
		LogCompress:   getEnvAsBool("LOG_COMPRESS", true),

		// Security
		RateLimitRequests:   getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitDuration:   getEnvAsDuration("RATE_LIMIT_DURATION", "1m"),
		LoginAttemptsPerMin: getEnvAsInt("LOGIN_ATTEMPTS_PER_MINUTE", 5),
		UploadsPerDay:       getEnvAsInt("UPLOADS_PER_DAY", 30),

		// Housekeeping
		ReservationSweepInterval: getEnvAsDuration("RESERVATION_SWEEP_INTERVAL", "5m"),

		// CORS
		AllowedOrigins: getEnvAsSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}
}

// R2EndpointURL returns the S3-compatible endpoint of the configured account.
func (c *Config) R2EndpointURL() string {
	if c.R2Endpoint != "" {
		return c.R2Endpoint
	}
	if c.R2AccountID == "" {
		return ""
	}
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.R2AccountID)
}

func (c *Config) IsProduction() bool { return c.Env == "production" }

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

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	if duration, err := time.ParseDuration(defaultValue); err == nil {
		return duration
	}
	return time.Hour
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
