package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/xxxsen/common/logger"
)

// DefaultMaxExpiresInMinutes bounds expiresInMinutes on share creation (one year).
const DefaultMaxExpiresInMinutes = 60 * 24 * 365

// MaxExpiresInMinutes is the largest configurable bound (100 years).
const MaxExpiresInMinutes = 100 * DefaultMaxExpiresInMinutes

type Config struct {
	Database    DatabaseConfig   `json:"database"`
	JWTSecret   string           `json:"jwt_secret"`
	JWTTTLHours int              `json:"jwt_ttl_hours"`
	Port        int              `json:"port"`
	CORSOrigins []string         `json:"cors_origins"`
	LogConfig   logger.LogConfig `json:"log_config"`
	FileStore   FileStoreConfig  `json:"file_store"`
	Share       ShareConfig      `json:"share"`
	Cache       CacheConfig      `json:"cache"`
	Tracing     TracingConfig    `json:"tracing"`
}

type DatabaseConfig struct {
	DSN                string `json:"dsn"`
	Host               string `json:"host"`
	Port               int    `json:"port"`
	User               string `json:"user"`
	Password           string `json:"password"`
	DBName             string `json:"dbname"`
	SSLMode            string `json:"sslmode"`
	MaxOpenConns       int    `json:"max_open_conns"`
	MaxIdleConns       int    `json:"max_idle_conns"`
	ConnMaxLifetimeSec int    `json:"conn_max_lifetime_sec"`
}

// FileStoreConfig selects the backend used to render document file urls.
// Data is decoded by the selected backend; an empty Type disables rendering
// and the persisted file_url is returned as is.
type FileStoreConfig struct {
	Type          string      `json:"type"`
	URLTTLMinutes int         `json:"url_ttl_minutes"`
	Data          interface{} `json:"data"`
}

type ShareConfig struct {
	BaseURL             string          `json:"base_url"`
	MaxExpiresInMinutes int             `json:"max_expires_in_minutes"`
	ResolveRateLimit    RateLimitConfig `json:"resolve_rate_limit"`
}

type RateLimitConfig struct {
	WindowSeconds int `json:"window_seconds"`
	MaxRequests   int `json:"max_requests"`
}

type CacheConfig struct {
	CompanySize       int `json:"company_size"`
	CompanyTTLSeconds int `json:"company_ttl_seconds"`
}

type TracingConfig struct {
	Enabled     bool    `json:"enabled"`
	ServiceName string  `json:"service_name"`
	Protocol    string  `json:"protocol"`
	Endpoint    string  `json:"endpoint"`
	Insecure    bool    `json:"insecure"`
	SampleRatio float64 `json:"sample_ratio"`
}

// LoadEnvFile loads a dotenv file into the process environment. Variables
// already present in the environment win.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	applyEnv(&cfg)
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DOCVAULT_DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("DOCVAULT_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("DOCVAULT_JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("DOCVAULT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	if v := os.Getenv("DOCVAULT_SHARE_BASE_URL"); v != "" {
		cfg.Share.BaseURL = v
	}
}

func (cfg *Config) normalize() error {
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required")
	}
	if cfg.Port == 0 {
		return fmt.Errorf("port is required")
	}
	if cfg.JWTTTLHours == 0 {
		cfg.JWTTTLHours = 72
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.Share.BaseURL == "" {
		return fmt.Errorf("share.base_url is required")
	}
	cfg.Share.BaseURL = strings.TrimSuffix(cfg.Share.BaseURL, "/")
	if cfg.Share.MaxExpiresInMinutes <= 0 {
		cfg.Share.MaxExpiresInMinutes = DefaultMaxExpiresInMinutes
	}
	if cfg.Share.MaxExpiresInMinutes > MaxExpiresInMinutes {
		return fmt.Errorf("share.max_expires_in_minutes must not exceed %d", MaxExpiresInMinutes)
	}
	if cfg.Share.ResolveRateLimit.WindowSeconds < 0 || cfg.Share.ResolveRateLimit.MaxRequests < 0 {
		return fmt.Errorf("share.resolve_rate_limit values must not be negative")
	}
	if cfg.Cache.CompanySize > 0 && cfg.Cache.CompanyTTLSeconds <= 0 {
		cfg.Cache.CompanyTTLSeconds = 60
	}
	cfg.FileStore.Type = strings.ToLower(strings.TrimSpace(cfg.FileStore.Type))
	switch cfg.FileStore.Type {
	case "", "local", "s3", "minio":
	default:
		return fmt.Errorf("file_store.type must be empty, local, s3 or minio")
	}
	if cfg.FileStore.Type != "" && cfg.FileStore.URLTTLMinutes <= 0 {
		cfg.FileStore.URLTTLMinutes = 60
	}
	if cfg.Tracing.Enabled {
		if cfg.Tracing.ServiceName == "" {
			cfg.Tracing.ServiceName = "docvault"
		}
		if cfg.Tracing.Protocol == "" {
			cfg.Tracing.Protocol = "grpc"
		}
		if cfg.Tracing.Protocol != "grpc" && cfg.Tracing.Protocol != "http/protobuf" {
			return fmt.Errorf("tracing.protocol must be grpc or http/protobuf")
		}
		if cfg.Tracing.SampleRatio <= 0 || cfg.Tracing.SampleRatio > 1 {
			cfg.Tracing.SampleRatio = 1
		}
	}
	return nil
}
