// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultCourierBaseURL = "https://portal.packzy.com/api/v1"

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
	GetDBMaxConns() int32
	GetDBMinConns() int32
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// AuthServiceConfig provides settings needed by the auth service.
type AuthServiceConfig interface {
	JWTConfig
	GetAccessTokenTTL() time.Duration
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// CourierConfig provides the Steadfast defaults used when the settings row
// carries no credentials of its own.
type CourierConfig interface {
	GetCourierBaseURL() string
	GetCourierAPIKey() string
	GetCourierSecretKey() string
	GetCourierTimeout() time.Duration
	GetCourierWebhookToken() string
}

// CourierSyncConfig provides settings for the periodic status sync.
type CourierSyncConfig interface {
	GetCourierSyncInterval() time.Duration
	GetCourierSyncConcurrency() int
}

// SchedulerConfig provides settings for the asynq scheduler and redis.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinioBucketBranding() string
	IsMinIOEnabled() bool
}

// LogFileConfig provides settings for the rotating log file sink.
type LogFileConfig interface {
	GetLogFile() string
	GetLogMaxSizeMB() int
	GetLogMaxBackups() int
	GetLogMaxAgeDays() int
	GetLogCompress() bool
}

// BootstrapConfig provides the credentials of the first admin account.
type BootstrapConfig interface {
	GetAdminEmail() string
	GetAdminPassword() string
	GetAdminName() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                    string
	HTTPAddr               string
	DatabaseURL            string
	DBMaxConns             int32
	DBMinConns             int32
	MigrationsDir          string
	JWTAccessSecret        string
	AccessTokenTTL         time.Duration
	CORSAllowAll           bool
	CORSOrigins            []string
	CORSAllowCreds         bool
	CourierBaseURL         string
	CourierAPIKey          string
	CourierSecretKey       string
	CourierTimeout         time.Duration
	CourierWebhookToken    string
	CourierSyncInterval    time.Duration
	CourierSyncConcurrency int
	RedisURL               string
	RedisTLSInsecure       bool
	AsynqQueueName         string
	AsynqConcurrency       int
	MinIOEndpoint          string
	MinIOAccessKey         string
	MinIOSecretKey         string
	MinIOUseSSL            bool
	MinIOMaxFileSize       int64
	MinioBucketBranding    string
	LogFile                string
	LogMaxSizeMB           int
	LogMaxBackups          int
	LogMaxAgeDays          int
	LogCompress            bool
	AdminEmail             string
	AdminPassword          string
	AdminName              string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }
func (c *Config) GetDBMaxConns() int32    { return c.DBMaxConns }
func (c *Config) GetDBMinConns() int32    { return c.DBMinConns }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// AuthServiceConfig implementation
func (c *Config) GetAccessTokenTTL() time.Duration { return c.AccessTokenTTL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// CourierConfig implementation
func (c *Config) GetCourierBaseURL() string        { return c.CourierBaseURL }
func (c *Config) GetCourierAPIKey() string         { return c.CourierAPIKey }
func (c *Config) GetCourierSecretKey() string      { return c.CourierSecretKey }
func (c *Config) GetCourierTimeout() time.Duration { return c.CourierTimeout }
func (c *Config) GetCourierWebhookToken() string   { return c.CourierWebhookToken }

// CourierSyncConfig implementation
func (c *Config) GetCourierSyncInterval() time.Duration { return c.CourierSyncInterval }
func (c *Config) GetCourierSyncConcurrency() int        { return c.CourierSyncConcurrency }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string       { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string      { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string      { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool           { return c.MinIOUseSSL }
func (c *Config) GetMinIOMaxFileSize() int64     { return c.MinIOMaxFileSize }
func (c *Config) GetMinioBucketBranding() string { return c.MinioBucketBranding }
func (c *Config) IsMinIOEnabled() bool           { return c.MinIOEndpoint != "" }

// LogFileConfig implementation
func (c *Config) GetLogFile() string    { return c.LogFile }
func (c *Config) GetLogMaxSizeMB() int  { return c.LogMaxSizeMB }
func (c *Config) GetLogMaxBackups() int { return c.LogMaxBackups }
func (c *Config) GetLogMaxAgeDays() int { return c.LogMaxAgeDays }
func (c *Config) GetLogCompress() bool  { return c.LogCompress }

// BootstrapConfig implementation
func (c *Config) GetAdminEmail() string    { return c.AdminEmail }
func (c *Config) GetAdminPassword() string { return c.AdminPassword }
func (c *Config) GetAdminName() string     { return c.AdminName }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                    getEnv("APP_ENV", "development"),
		HTTPAddr:               getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		DBMaxConns:             int32(mustInt(getEnv("DB_MAX_CONNS", "10"))),
		DBMinConns:             int32(mustInt(getEnv("DB_MIN_CONNS", "1"))),
		MigrationsDir:          getEnv("MIGRATIONS_DIR", "migrations"),
		JWTAccessSecret:        getEnv("JWT_ACCESS_SECRET", ""),
		AccessTokenTTL:         mustDuration(getEnv("JWT_ACCESS_TTL", "12h")),
		CORSAllowAll:           corsAllowAll,
		CORSOrigins:            corsOrigins,
		CORSAllowCreds:         strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "false"), "true"),
		CourierBaseURL:         strings.TrimRight(getEnv("COURIER_BASE_URL", defaultCourierBaseURL), "/"),
		CourierAPIKey:          getEnv("COURIER_API_KEY", ""),
		CourierSecretKey:       getEnv("COURIER_SECRET_KEY", ""),
		CourierTimeout:         mustDuration(getEnv("COURIER_TIMEOUT", "15s")),
		CourierWebhookToken:    getEnv("COURIER_WEBHOOK_TOKEN", ""),
		CourierSyncInterval:    mustDuration(getEnv("COURIER_SYNC_INTERVAL", "30m")),
		CourierSyncConcurrency: mustInt(getEnv("COURIER_SYNC_CONCURRENCY", "4")),
		RedisURL:               getEnv("REDIS_URL", ""),
		RedisTLSInsecure:       strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:         getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:       mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		MinIOEndpoint:          getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:         getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:         getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:            strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOMaxFileSize:       mustInt64(getEnv("MINIO_MAX_FILE_SIZE", "5242880")),
		MinioBucketBranding:    getEnv("MINIO_BUCKET_BRANDING", "branding"),
		LogFile:                getEnv("LOG_FILE", ""),
		LogMaxSizeMB:           mustInt(getEnv("LOG_MAX_SIZE_MB", "50")),
		LogMaxBackups:          mustInt(getEnv("LOG_MAX_BACKUPS", "5")),
		LogMaxAgeDays:          mustInt(getEnv("LOG_MAX_AGE_DAYS", "28")),
		LogCompress:            strings.EqualFold(getEnv("LOG_COMPRESS", "true"), "true"),
		AdminEmail:             getEnv("ADMIN_EMAIL", ""),
		AdminPassword:          getEnv("ADMIN_PASSWORD", ""),
		AdminName:              getEnv("ADMIN_NAME", "Administrator"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.DBMaxConns < 1 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS and DB_MAX_CONNS must satisfy 0 <= min <= max, max >= 1")
	}
	if c.JWTAccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be a positive duration")
	}
	if c.CourierTimeout <= 0 {
		return fmt.Errorf("COURIER_TIMEOUT must be a positive duration")
	}
	if c.CourierSyncInterval <= 0 {
		return fmt.Errorf("COURIER_SYNC_INTERVAL must be a positive duration")
	}
	if c.CORSAllowAll && c.CORSAllowCreds {
		return fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if !c.CORSAllowAll && len(c.CORSOrigins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required unless CORS_ALLOW_ALL is true")
	}
	if c.AdminEmail != "" && len(c.AdminPassword) < 8 {
		return fmt.Errorf("ADMIN_PASSWORD must be at least 8 characters when ADMIN_EMAIL is set")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
