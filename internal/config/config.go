// Package config loads the portal configuration: built-in defaults, then an
// optional YAML file, then environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"

	devSecret = "insecure-dev-secret"
)

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type JWTConfig struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
}

type OTPConfig struct {
	TTL            time.Duration `yaml:"ttl"`
	MaxAttempts    int           `yaml:"max_attempts"`
	ResendCooldown time.Duration `yaml:"resend_cooldown"`
}

// EmailConfig holds SMTP credentials. Leaving User or Pass empty switches the
// mailer to demo mode.
type EmailConfig struct {
	User string `yaml:"user"`
	Pass string `yaml:"pass"`
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	From string `yaml:"from"`
}

type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// RedisConfig is optional; with an empty Addr the limiter runs in process.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type Config struct {
	Port           string        `yaml:"port"`
	StoreDriver    string        `yaml:"store_driver"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	LogLevel       string        `yaml:"log_level"`
	// AdminEmail is granted the admin role once its owner verifies it.
	AdminEmail string `yaml:"admin_email"`

	Mongo MongoConfig `yaml:"mongo"`
	JWT   JWTConfig   `yaml:"jwt"`
	OTP   OTPConfig   `yaml:"otp"`
	Email EmailConfig `yaml:"email"`
	Minio MinioConfig `yaml:"minio"`
	Redis RedisConfig `yaml:"redis"`
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.Port = "5000"
	c.StoreDriver = DriverMongo
	c.RequestTimeout = 5 * time.Second
	c.LogLevel = "info"

	c.Mongo.URI = "mongodb://localhost:27017"
	c.Mongo.Database = "campus_portal"

	c.JWT.TTL = 7 * 24 * time.Hour

	c.OTP.TTL = 10 * time.Minute
	c.OTP.MaxAttempts = 5
	c.OTP.ResendCooldown = 30 * time.Second

	c.Email.Host = "smtp.gmail.com"
	c.Email.Port = "587"

	c.Minio.Endpoint = "localhost:9000"
	c.Minio.AccessKey = "minioadmin"
	c.Minio.SecretKey = "minioadmin"
	c.Minio.Bucket = "campus-portal"
}

// EmailConfigured reports whether real SMTP delivery is possible.
func (c *Config) EmailConfigured() bool {
	return c.Email.User != "" && c.Email.Pass != ""
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.StoreDriver != DriverMongo && c.StoreDriver != DriverMemory {
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWT.TTL <= 0 || c.OTP.TTL <= 0 || c.RequestTimeout <= 0 {
		return errors.New("jwt ttl, otp ttl and request timeout must be positive")
	}
	if c.OTP.MaxAttempts < 1 {
		return errors.New("otp max attempts must be at least 1")
	}
	if c.OTP.ResendCooldown < 0 {
		return errors.New("otp resend cooldown must not be negative")
	}
	return nil
}

// LoadConfig reads an optional .env file and builds the configuration from
// the process environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()
	return Load(os.LookupEnv)
}

// Load applies defaults, the YAML file named by CONFIG_FILE (if any) and the
// environment as seen through lookup, in that order.
func Load(lookup func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path, ok := lookup("CONFIG_FILE"); ok && path != "" {
		if err := parseYAML(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := parseEnv(cfg, lookup); err != nil {
		return nil, err
	}

	if cfg.JWT.Secret == "" && cfg.StoreDriver == DriverMemory {
		cfg.JWT.Secret = devSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func parseEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	var errs []error
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	flag := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}

	str("PORT", &cfg.Port)
	str("STORE_DRIVER", &cfg.StoreDriver)
	dur("REQUEST_TIMEOUT", &cfg.RequestTimeout)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("ADMIN_EMAIL", &cfg.AdminEmail)

	str("MONGO_URI", &cfg.Mongo.URI)
	str("MONGO_DB", &cfg.Mongo.Database)

	str("JWT_SECRET", &cfg.JWT.Secret)
	dur("JWT_TTL", &cfg.JWT.TTL)

	dur("OTP_TTL", &cfg.OTP.TTL)
	num("OTP_MAX_ATTEMPTS", &cfg.OTP.MaxAttempts)
	dur("OTP_RESEND_COOLDOWN", &cfg.OTP.ResendCooldown)

	str("EMAIL_USER", &cfg.Email.User)
	str("EMAIL_PASS", &cfg.Email.Pass)
	str("SMTP_HOST", &cfg.Email.Host)
	str("SMTP_PORT", &cfg.Email.Port)
	str("EMAIL_FROM", &cfg.Email.From)

	str("MINIO_ENDPOINT", &cfg.Minio.Endpoint)
	str("MINIO_ACCESS_KEY", &cfg.Minio.AccessKey)
	str("MINIO_SECRET_KEY", &cfg.Minio.SecretKey)
	str("MINIO_BUCKET", &cfg.Minio.Bucket)
	flag("MINIO_USE_SSL", &cfg.Minio.UseSSL)

	str("REDIS_ADDR", &cfg.Redis.Addr)
	str("REDIS_PASSWORD", &cfg.Redis.Password)
	num("REDIS_DB", &cfg.Redis.DB)

	return errors.Join(errs...)
}
