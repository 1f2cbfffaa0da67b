package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:      AppConfig{Environment: "test"},
		Server:   ServerConfig{Port: "5000"},
		Database: DatabaseConfig{Host: "localhost", Name: "db", User: "u"},
		Redis:    RedisConfig{Host: "localhost"},
		JWT:      JWTConfig{AccessSecret: "access", RefreshSecret: "refresh"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing access secret", mutate: func(c *Config) { c.JWT.AccessSecret = "" }, wantErr: "JWT_SECRET"},
		{name: "missing refresh secret", mutate: func(c *Config) { c.JWT.RefreshSecret = "" }, wantErr: "JWT_REFRESH_SECRET"},
		{name: "shared secret", mutate: func(c *Config) { c.JWT.RefreshSecret = c.JWT.AccessSecret }, wantErr: "must differ"},
		{name: "database url replaces host", mutate: func(c *Config) {
			c.Database = DatabaseConfig{URL: "postgres://x"}
		}},
		{name: "missing db host", mutate: func(c *Config) { c.Database.Host = "" }, wantErr: "DB_HOST"},
		{name: "bad environment", mutate: func(c *Config) { c.App.Environment = "staging" }, wantErr: "APP_ENV"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "a")
	t.Setenv("JWT_REFRESH_SECRET", "b")
	t.Setenv("KAFKA_BROKERS", " k1:9092, ,k2:9092")
	t.Setenv("PAYMOB_BASE_URL", "https://gateway.test/api/")

	c := FromEnv()

	assert.Equal(t, 15*time.Minute, c.JWT.AccessTokenExpiry)
	assert.Equal(t, 7*24*time.Hour, c.JWT.RefreshTokenExpiry)
	assert.Equal(t, "5000", c.Server.Port)
	assert.Equal(t, "EGP", c.Paymob.Currency)
	assert.Equal(t, "https://gateway.test/api", c.Paymob.BaseURL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.True(t, c.EventsEnabled())
}

func TestGetDatabaseDSN(t *testing.T) {
	c := validConfig()
	assert.Contains(t, c.GetDatabaseDSN(), "dbname=db")

	c.Database.URL = "postgres://user@host/db"
	assert.Equal(t, "postgres://user@host/db", c.GetDatabaseDSN())
}
