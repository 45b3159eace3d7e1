package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:             "development",
		JWTSecret:       "secure-secret-at-least-32-chars-long",
		DBDriver:        "postgres",
		DBPassword:      "secure-password",
		DBSSLMode:       "require",
		Port:            "8080",
		TracingExporter: "none",
		TraceSampleRate: 1,
	}
}

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.Env = tt.env
			c.DBSSLMode = tt.sslMode

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"missing port", func(c *Config) { c.Port = "" }, "PORT is required"},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET is required"},
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }, "unsupported DB_DRIVER"},
		{"sqlite without path", func(c *Config) { c.DBDriver = "sqlite"; c.DBPath = "" }, "DB_PATH is required"},
		{"unknown exporter", func(c *Config) { c.TracingExporter = "jaeger" }, "unsupported TRACING_EXPORTER"},
		{"sample rate out of range", func(c *Config) { c.TraceSampleRate = 1.5 }, "TRACE_SAMPLE_RATE"},
		{"default secret in production", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = defaultJWTSecret
		}, "must be changed"},
		{"sqlite in production", func(c *Config) {
			c.Env = "production"
			c.DBDriver = "sqlite"
			c.DBPath = "x.db"
		}, "not supported in production"},
		{"weak db password in production", func(c *Config) {
			c.Env = "prod"
			c.DBPassword = "password"
		}, "DB_PASSWORD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	assert.NoError(t, validConfig().Validate())
}

func TestLoadConfig_Normalization(t *testing.T) {
	defer viper.Reset()

	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("DB_DRIVER", " SQLite ")
	t.Setenv("DB_PATH", "test.db")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, "8375", c.Port)
	assert.Equal(t, 60, c.CacheTTLSeconds)
	assert.False(t, c.IsProduction())
}
