package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/kapu/hololive-member-sync/internal/constants"
)

type Config struct {
	Paths     PathsConfig
	Tables    TablesConfig
	Reconcile ReconcileConfig
	Backup    BackupConfig
	S3        S3Config
	Postgres  PostgresConfig
	Redis     RedisConfig
	Scraper   ScraperConfig
	Logging   LoggingConfig
}

type PathsConfig struct {
	MembersFile  string
	TalentsFile  string
	ScheduleFile string
	ProfileDir   string
	ProfilesFile string
}

type TablesConfig struct {
	// Dir holds optional YAML overrides of the embedded lookup tables.
	Dir string
}

type ReconcileConfig struct {
	Passes         string
	Ambiguity      string
	ApplyOverrides bool
	Source         string
	DryRun         bool
}

type BackupConfig struct {
	Enabled bool
	// Target is "file" or "s3".
	Target string
	Dir    string
}

type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type ScraperConfig struct {
	TalentsURL  string
	ScheduleURL string
	UserAgent   string
	Timeout     time.Duration
}

type LoggingConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Paths: PathsConfig{
			MembersFile:  getEnv("MEMBERS_FILE", constants.DefaultPaths.MembersFile),
			TalentsFile:  getEnv("TALENTS_FILE", constants.DefaultPaths.TalentsFile),
			ScheduleFile: getEnv("SCHEDULE_FILE", constants.DefaultPaths.ScheduleFile),
			ProfileDir:   getEnv("PROFILE_DIR", constants.DefaultPaths.ProfileDir),
			ProfilesFile: getEnv("PROFILES_FILE", constants.DefaultPaths.ProfilesFile),
		},
		Tables: TablesConfig{
			Dir: getEnv("TABLES_DIR", ""),
		},
		Reconcile: ReconcileConfig{
			Passes:         getEnv("SYNC_PASSES", "a,b,c"),
			Ambiguity:      getEnv("SYNC_AMBIGUITY", "skip"),
			ApplyOverrides: getEnvBool("SYNC_APPLY_OVERRIDES", true),
			Source:         getEnv("SYNC_SOURCE", SourceFile),
			DryRun:         getEnvBool("SYNC_DRY_RUN", false),
		},
		Backup: BackupConfig{
			Enabled: getEnvBool("BACKUP_ENABLED", true),
			Target:  getEnv("BACKUP_TARGET", BackupTargetFile),
			Dir:     getEnv("BACKUP_DIR", constants.DefaultPaths.BackupDir),
		},
		S3: S3Config{
			Endpoint:  getEnv("S3_ENDPOINT", ""),
			AccessKey: getEnv("S3_ACCESS_KEY", ""),
			SecretKey: getEnv("S3_SECRET_KEY", ""),
			Bucket:    getEnv("S3_BUCKET", ""),
			Prefix:    getEnv("S3_PREFIX", "member-sync"),
			UseSSL:    getEnvBool("S3_USE_SSL", true),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "holo_user"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DB", "holo_oshi_db"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Scraper: ScraperConfig{
			TalentsURL:  getEnv("TALENTS_URL", constants.SourceURLs.Talents),
			ScheduleURL: getEnv("SCHEDULE_URL", constants.SourceURLs.Schedule),
			UserAgent:   getEnv("SCRAPER_USER_AGENT", constants.ScraperConfig.UserAgent),
			Timeout:     time.Duration(getEnvInt("SCRAPER_TIMEOUT_SECONDS", int(constants.ScraperConfig.Timeout/time.Second))) * time.Second,
		},
		Logging: LoggingConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			File:       getEnv("LOG_FILE", "logs/member-sync.log"),
			MaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 100),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
			MaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 30),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Member record sources.
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// Backup targets.
const (
	BackupTargetFile = "file"
	BackupTargetS3   = "s3"
)

func (c *Config) Validate() error {
	switch c.Reconcile.Source {
	case SourceFile:
		if c.Paths.MembersFile == "" {
			return fmt.Errorf("MEMBERS_FILE is required")
		}
	case SourcePostgres:
		if c.Postgres.Host == "" || c.Postgres.Database == "" {
			return fmt.Errorf("POSTGRES_HOST and POSTGRES_DB are required for the postgres source")
		}
	default:
		return fmt.Errorf("unknown SYNC_SOURCE %q", c.Reconcile.Source)
	}

	if c.Backup.Enabled {
		switch c.Backup.Target {
		case BackupTargetFile:
			if c.Backup.Dir == "" {
				return fmt.Errorf("BACKUP_DIR is required")
			}
		case BackupTargetS3:
			if c.S3.Endpoint == "" || c.S3.Bucket == "" {
				return fmt.Errorf("S3_ENDPOINT and S3_BUCKET are required for s3 backups")
			}
		default:
			return fmt.Errorf("unknown BACKUP_TARGET %q", c.Backup.Target)
		}
	}

	if c.Scraper.Timeout <= 0 {
		return fmt.Errorf("SCRAPER_TIMEOUT_SECONDS must be positive")
	}
	return nil
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
