// Package config loads the storefront configuration.
//
// Load order:
//  1. .env (secrets and APP_ENV)
//  2. configs/{APP_ENV}.yaml
//  3. environment variables, which override the YAML values
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

	"storefront-backend/internal/logging"
)

type Environment string

const (
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
	EnvDevelopment Environment = "dev"
)

type Config struct {
	Env      Environment    `yaml:"-"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Payment  PaymentConfig  `yaml:"payment"`
	Email    EmailConfig    `yaml:"email"`
	OTP      OTPConfig      `yaml:"otp"`
	Media    MediaConfig    `yaml:"media"`
	Orders   OrdersConfig   `yaml:"orders"`
	Log      logging.Config `yaml:"log"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes"`
}

type DatabaseConfig struct {
	Driver  string        `yaml:"driver"` // mongodb or memory
	URI     string        `yaml:"uri"`
	Name    string        `yaml:"name"`
	Timeout time.Duration `yaml:"timeout"`
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

type AuthConfig struct {
	JWTSecret     string        `yaml:"-"`
	TokenTTL      time.Duration `yaml:"token_ttl"`
	AdminEmail    string        `yaml:"-"`
	AdminPassword string        `yaml:"-"`
}

type PaymentConfig struct {
	KeyID     string        `yaml:"-"`
	KeySecret string        `yaml:"-"`
	Currency  string        `yaml:"currency"`
	Timeout   time.Duration `yaml:"timeout"`
}

type EmailConfig struct {
	Host       string        `yaml:"host"`
	Port       int           `yaml:"port"`
	User       string        `yaml:"-"`
	Password   string        `yaml:"-"`
	From       string        `yaml:"from"`
	StoreEmail string        `yaml:"store_email"`
	StoreName  string        `yaml:"store_name"`
	Timeout    time.Duration `yaml:"timeout"`
}

// DemoMode is true when no mail credentials are configured; mail is then
// logged instead of sent.
func (e EmailConfig) DemoMode() bool {
	return e.User == "" || e.Password == ""
}

type OTPConfig struct {
	TTL         time.Duration `yaml:"ttl"`
	MaxAttempts int           `yaml:"max_attempts"`
}

type MediaConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"-"`
	SecretKey string `yaml:"-"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
	PublicURL string `yaml:"public_url"`
}

func (m MediaConfig) Enabled() bool {
	return m.Endpoint != ""
}

type OrdersConfig struct {
	RequireCODOTP     bool    `yaml:"require_cod_otp"`
	EnforceTotals     bool    `yaml:"enforce_totals"`
	ShippingFee       float64 `yaml:"shipping_fee"`
	FreeShippingAbove float64 `yaml:"free_shipping_above"`
	TaxRate           float64 `yaml:"tax_rate"`
}

const devJWTSecret = "storefront-dev-secret"

var configPaths = []string{
	"configs",
	"../configs",
	"../../configs",
}

var envPaths = []string{
	".env",
	"../.env",
	"../../.env",
}

// Defaults returns the built-in configuration every file and env var is
// layered on top of.
func Defaults() *Config {
	return &Config{
		Env: EnvDevelopment,
		Server: ServerConfig{
			Port:            "8080",
			CORSOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 20 * time.Second,
			MaxUploadBytes:  20 << 20,
		},
		Database: DatabaseConfig{
			Driver:  "mongodb",
			URI:     "mongodb://localhost:27017",
			Name:    "storefront",
			Timeout: 10 * time.Second,
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
		Payment: PaymentConfig{
			Currency: "INR",
			Timeout:  15 * time.Second,
		},
		Email: EmailConfig{
			Host:      "smtp.gmail.com",
			Port:      587,
			StoreName: "Storefront",
			Timeout:   10 * time.Second,
		},
		OTP: OTPConfig{
			TTL:         10 * time.Minute,
			MaxAttempts: 5,
		},
		Media: MediaConfig{
			Bucket: "products",
		},
		Orders: OrdersConfig{
			RequireCODOTP: true,
		},
		Log: logging.Config{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}

// Load reads .env, the YAML file for APP_ENV and the environment.
func Load() (*Config, error) {
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	cfg := Defaults()
	cfg.Env = parseEnv(getEnv("APP_ENV", "dev"))

	for _, dir := range configPaths {
		path := fmt.Sprintf("%s/%s.yaml", dir, cfg.Env)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		break
	}

	applyEnv(cfg)
	if cfg.Auth.JWTSecret == "" && cfg.Env != EnvProduction {
		cfg.Auth.JWTSecret = devJWTSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.Server.CORSOrigins = splitList(origins)
	}

	// MONGO_PUBLIC_URL and MONGO_URL are what the hosting platform injects.
	for _, key := range []string{"MONGO_URI", "MONGO_PUBLIC_URL", "MONGO_URL"} {
		if v := os.Getenv(key); v != "" {
			cfg.Database.URI = v
			break
		}
	}
	cfg.Database.Name = getEnv("MONGO_DB", cfg.Database.Name)
	cfg.Database.Driver = getEnv("DB_DRIVER", cfg.Database.Driver)

	cfg.Redis.URL = getEnv("REDIS_URL", cfg.Redis.URL)

	cfg.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.Auth.AdminEmail = os.Getenv("ADMIN_EMAIL")
	cfg.Auth.AdminPassword = os.Getenv("ADMIN_PASSWORD")

	cfg.Payment.KeyID = os.Getenv("RAZORPAY_KEY_ID")
	cfg.Payment.KeySecret = os.Getenv("RAZORPAY_KEY_SECRET")

	cfg.Email.User = os.Getenv("EMAIL_USER")
	cfg.Email.Password = os.Getenv("EMAIL_PASS")
	cfg.Email.Host = getEnv("SMTP_HOST", cfg.Email.Host)
	cfg.Email.Port = getEnvInt("SMTP_PORT", cfg.Email.Port)
	cfg.Email.StoreEmail = getEnv("STORE_EMAIL", cfg.Email.StoreEmail)
	if cfg.Email.From == "" {
		cfg.Email.From = cfg.Email.User
	}
	if cfg.Email.StoreEmail == "" {
		cfg.Email.StoreEmail = cfg.Email.From
	}

	cfg.Media.Endpoint = getEnv("MINIO_ENDPOINT", cfg.Media.Endpoint)
	cfg.Media.AccessKey = os.Getenv("MINIO_ACCESS_KEY")
	cfg.Media.SecretKey = os.Getenv("MINIO_SECRET_KEY")
	cfg.Media.Bucket = getEnv("MINIO_BUCKET", cfg.Media.Bucket)
	cfg.Media.PublicURL = getEnv("MINIO_PUBLIC_URL", cfg.Media.PublicURL)
	if v := os.Getenv("MINIO_USE_SSL"); v != "" {
		cfg.Media.UseSSL, _ = strconv.ParseBool(v)
	}

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)
}

// Validate refuses configurations that would run production with
// development secrets.
func (c *Config) Validate() error {
	var errs []error
	if c.Database.Driver != "mongodb" && c.Database.Driver != "memory" {
		errs = append(errs, fmt.Errorf("unsupported database driver %q", c.Database.Driver))
	}
	if c.Env == EnvProduction {
		if c.Auth.JWTSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET is required in prod"))
		}
		if c.Auth.AdminEmail == "" || c.Auth.AdminPassword == "" {
			errs = append(errs, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD are required in prod"))
		}
		if c.Payment.KeyID == "" || c.Payment.KeySecret == "" {
			errs = append(errs, errors.New("RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET are required in prod"))
		}
		if c.Database.Driver == "memory" {
			errs = append(errs, errors.New("memory database driver is not allowed in prod"))
		}
	}
	if c.OTP.MaxAttempts <= 0 {
		errs = append(errs, errors.New("otp.max_attempts must be positive"))
	}
	return errors.Join(errs...)
}

// String renders the configuration without secrets.
func (c *Config) String() string {
	return fmt.Sprintf("env=%s port=%s db=%s/%s redis=%t media=%t mail_demo=%t",
		c.Env, c.Server.Port, c.Database.Driver, c.Database.Name,
		c.Redis.URL != "", c.Media.Enabled(), c.Email.DemoMode())
}

func parseEnv(s string) Environment {
	switch strings.ToLower(s) {
	case "prod", "production":
		return EnvProduction
	case "test":
		return EnvTest
	default:
		return EnvDevelopment
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
