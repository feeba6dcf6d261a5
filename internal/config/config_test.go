// internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 72*time.Hour, cfg.Contract.TenantSignWindow)
	assert.Equal(t, 24*time.Hour, cfg.Contract.ModificationWindow)
	assert.Equal(t, "@every 1h", cfg.Contract.SweepSchedule)
	assert.Equal(t, "fr", cfg.I18n.DefaultLocale)
	assert.Equal(t, 4, cfg.Notification.Workers)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CONTRACT_TENANT_SIGN_WINDOW", "48h")
	t.Setenv("CONTRACT_SWEEP_ON_START", "FALSE")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 48*time.Hour, cfg.Contract.TenantSignWindow)
	assert.False(t, cfg.Contract.SweepOnStart)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Frontend.AllowedOrigins)
	assert.Equal(t, 2.5, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Environment: "production",
			JWT:         JWTConfig{SecretKey: "s3cr3t"},
			Database:    DatabaseConfig{Password: "pw"},
			Contract: ContractConfig{
				TenantSignWindow:   time.Hour,
				ModificationWindow: time.Hour,
				SweepSchedule:      "@every 1h",
			},
			Notification: NotificationConfig{Workers: 1},
		}
	}
	require.NoError(t, valid().Validate())

	cases := map[string]func(*Config){
		"default jwt secret":  func(c *Config) { c.JWT.SecretKey = "your-secret-key-change-in-production" },
		"no db password":      func(c *Config) { c.Database.Password = "" },
		"zero sign window":    func(c *Config) { c.Contract.TenantSignWindow = 0 },
		"negative mod window": func(c *Config) { c.Contract.ModificationWindow = -time.Minute },
		"blank schedule":      func(c *Config) { c.Contract.SweepSchedule = "  " },
		"no workers":          func(c *Config) { c.Notification.Workers = 0 },
	}
	for name, mutate := range cases {
		cfg := valid()
		mutate(cfg)
		assert.Error(t, cfg.Validate(), name)
	}
}
