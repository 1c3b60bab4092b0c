package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	JWT       JWTConfig       `yaml:"jwt"`
	S3        S3Config        `yaml:"s3"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors"`
	Jobs      JobsConfig      `yaml:"jobs"`
	Logger    LoggerConfig    `yaml:"logger"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	Env             string        `yaml:"env"`
	BasePath        string        `yaml:"base_path"`
	ClientURL       string        `yaml:"client_url"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver          string        `yaml:"driver"`
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	AutoMigrate     bool          `yaml:"auto_migrate"`
	LogQueries      bool          `yaml:"log_queries"`
}

type RedisConfig struct {
	URL            string        `yaml:"url"`
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	Password       string        `yaml:"password"`
	DB             int           `yaml:"db"`
	UnreadCacheTTL time.Duration `yaml:"unread_cache_ttl"`
}

type JWTConfig struct {
	Secret     string        `yaml:"secret"`
	ExpireTime time.Duration `yaml:"expire_time"`
	CookieName string        `yaml:"cookie_name"`
}

type S3Config struct {
	Bucket         string `yaml:"bucket"`
	Region         string `yaml:"region"`
	AccessKey      string `yaml:"access_key"`
	SecretKey      string `yaml:"secret_key"`
	Endpoint       string `yaml:"endpoint"`
	PublicEndpoint string `yaml:"public_endpoint"`
	AvatarPrefix   string `yaml:"avatar_prefix"`
	MaxAvatarBytes int64  `yaml:"max_avatar_bytes"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type RateLimitConfig struct {
	Enabled      bool          `yaml:"enabled"`
	APILimit     uint          `yaml:"api_limit"`
	APIWindow    time.Duration `yaml:"api_window"`
	AuthLimit    uint          `yaml:"auth_limit"`
	AuthWindow   time.Duration `yaml:"auth_window"`
	SignupLimit  uint          `yaml:"signup_limit"`
	SignupWindow time.Duration `yaml:"signup_window"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type JobsConfig struct {
	Enabled               bool   `yaml:"enabled"`
	CleanupSchedule       string `yaml:"cleanup_schedule"`
	NotificationRetention int    `yaml:"notification_retention_days"`
}

type LoggerConfig struct {
	Level string `yaml:"level"`
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// RedisAddr returns host:port of the redis server
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// Default returns the configuration used when no file or env overrides exist
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8000,
			Env:             "dev",
			BasePath:        "/api/v1",
			ClientURL:       "http://localhost:3000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          "postgres",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			AutoMigrate:     true,
		},
		Redis: RedisConfig{
			Host:           "localhost",
			Port:           6379,
			UnreadCacheTTL: 5 * time.Minute,
		},
		JWT: JWTConfig{
			ExpireTime: 24 * time.Hour,
			CookieName: "token",
		},
		S3: S3Config{
			Region:         "ap-northeast-2",
			AvatarPrefix:   "avatars",
			MaxAvatarBytes: 5 << 20,
		},
		SMTP: SMTPConfig{
			Port: 587,
		},
		RateLimit: RateLimitConfig{
			Enabled:      true,
			APILimit:     100,
			APIWindow:    time.Hour,
			AuthLimit:    5,
			AuthWindow:   15 * time.Minute,
			SignupLimit:  5,
			SignupWindow: time.Hour,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Jobs: JobsConfig{
			Enabled:               true,
			CleanupSchedule:       "@every 1h",
			NotificationRetention: 30,
		},
		Logger: LoggerConfig{
			Level: "info",
		},
	}
}

// Load reads defaults, then the YAML file at path if it exists, then
// environment variables (a .env file in the working directory is loaded first).
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that have no safe default
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return errors.New("database dsn is required")
	}
	if c.JWT.Secret == "" {
		return errors.New("jwt secret is required")
	}
	if c.IsProduction() && len(c.JWT.Secret) < 32 {
		return errors.New("jwt secret must be at least 32 characters in production")
	}
	return nil
}

func applyEnv(cfg *Config) {
	envInt("SERVER_PORT", &cfg.Server.Port)
	envInt("PORT", &cfg.Server.Port)
	envString("ENV", &cfg.Server.Env)
	envString("BASE_PATH", &cfg.Server.BasePath)
	envString("CLIENT_URL", &cfg.Server.ClientURL)

	envString("DB_DRIVER", &cfg.Database.Driver)
	envString("DB_DSN", &cfg.Database.DSN)
	envString("DATABASE_URL", &cfg.Database.DSN)
	envInt("DB_MAX_OPEN_CONNS", &cfg.Database.MaxOpenConns)
	envInt("DB_MAX_IDLE_CONNS", &cfg.Database.MaxIdleConns)
	envBool("DB_AUTO_MIGRATE", &cfg.Database.AutoMigrate)

	envString("REDIS_URL", &cfg.Redis.URL)
	envString("REDIS_HOST", &cfg.Redis.Host)
	envInt("REDIS_PORT", &cfg.Redis.Port)
	envString("REDIS_PASSWORD", &cfg.Redis.Password)
	envInt("REDIS_DB", &cfg.Redis.DB)

	envString("JWT_SECRET", &cfg.JWT.Secret)
	envDuration("JWT_EXPIRE_TIME", &cfg.JWT.ExpireTime)

	envString("S3_BUCKET", &cfg.S3.Bucket)
	envString("S3_REGION", &cfg.S3.Region)
	envString("S3_ACCESS_KEY", &cfg.S3.AccessKey)
	envString("S3_SECRET_KEY", &cfg.S3.SecretKey)
	envString("S3_ENDPOINT", &cfg.S3.Endpoint)
	envString("S3_PUBLIC_ENDPOINT", &cfg.S3.PublicEndpoint)

	envString("SMTP_HOST", &cfg.SMTP.Host)
	envInt("SMTP_PORT", &cfg.SMTP.Port)
	envString("SMTP_USER", &cfg.SMTP.Username)
	envString("SMTP_PASS", &cfg.SMTP.Password)
	envString("SMTP_FROM", &cfg.SMTP.From)

	envBool("RATE_LIMIT_ENABLED", &cfg.RateLimit.Enabled)
	envBool("JOBS_ENABLED", &cfg.Jobs.Enabled)
	envString("LOG_LEVEL", &cfg.Logger.Level)

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.CORS.AllowedOrigins = splitList(origins)
	}
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func envDuration(key string, dst *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
