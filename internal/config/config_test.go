package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseEnv(t *testing.T) {
	tests := []struct {
		in   string
		want Environment
	}{
		{"prod", EnvProduction},
		{"production", EnvProduction},
		{"TEST", EnvTest},
		{"dev", EnvDevelopment},
		{"", EnvDevelopment},
		{"staging", EnvDevelopment},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseEnv(tt.in), "parseEnv(%q)", tt.in)
	}
}

func TestYAMLOverlay(t *testing.T) {
	cfg := Defaults()
	doc := `
server:
  port: "9090"
database:
  driver: memory
otp:
  ttl: 2m
orders:
  enforce_totals: true
  tax_rate: 0.18
`
	require.NoError(t, yaml.Unmarshal([]byte(doc), cfg))

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, 2*time.Minute, cfg.OTP.TTL)
	assert.True(t, cfg.Orders.EnforceTotals)
	assert.Equal(t, 0.18, cfg.Orders.TaxRate)

	// untouched keys keep their defaults
	assert.Equal(t, "storefront", cfg.Database.Name)
	assert.Equal(t, 5, cfg.OTP.MaxAttempts)
	assert.True(t, cfg.Orders.RequireCODOTP)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("MONGO_URI", "")
	t.Setenv("MONGO_PUBLIC_URL", "mongodb://public:27017")
	t.Setenv("MONGO_URL", "mongodb://private:27017")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("EMAIL_USER", "shop@example.com")
	t.Setenv("EMAIL_PASS", "")
	t.Setenv("SMTP_PORT", "465")
	t.Setenv("MINIO_USE_SSL", "true")

	cfg := Defaults()
	applyEnv(cfg)

	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, "mongodb://public:27017", cfg.Database.URI)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 465, cfg.Email.Port)
	assert.Equal(t, "shop@example.com", cfg.Email.From)
	assert.Equal(t, "shop@example.com", cfg.Email.StoreEmail)
	assert.True(t, cfg.Email.DemoMode())
	assert.True(t, cfg.Media.UseSSL)
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())

	cfg.Env = EnvProduction
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "ADMIN_EMAIL")

	cfg.Auth.JWTSecret = "s3cret"
	cfg.Auth.AdminEmail = "admin@example.com"
	cfg.Auth.AdminPassword = "pw"
	cfg.Payment.KeyID = "rzp_live_x"
	cfg.Payment.KeySecret = "secret"
	require.NoError(t, cfg.Validate())

	cfg.Database.Driver = "postgres"
	assert.Error(t, cfg.Validate())
}

func TestLoadFallsBackToDevSecret(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvTest, cfg.Env)
	assert.Equal(t, devJWTSecret, cfg.Auth.JWTSecret)
}
