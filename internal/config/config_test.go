package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DATABASE_DRIVER", "REDIS_ENABLED", "KAFKA_BROKERS", "DB_MAX_LIFETIME_MINUTES"} {
		t.Setenv(k, "")
	}
	cfg := Load()

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 5*time.Minute, cfg.Database.MaxLifetime)
}

func TestLabelKeyDefault(t *testing.T) {
	t.Setenv("LABEL_KEY", "")
	cfg := Load()
	assert.Equal(t, DefaultLabelKey, cfg.Auth.LabelKey)
	assert.True(t, cfg.Auth.UsesDefaultLabelKey())

	t.Setenv("LABEL_KEY", "rotate-me-please")
	cfg = Load()
	assert.Equal(t, "rotate-me-please", cfg.Auth.LabelKey)
	assert.False(t, cfg.Auth.UsesDefaultLabelKey())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", ":9000")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")

	cfg := Load()
	assert.Equal(t, ":9000", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
}

func TestLoadClient(t *testing.T) {
	t.Setenv("TECHCREW_URL", "http://crew.local/")
	t.Setenv("TECHCREW_API_KEY", "anon")
	t.Setenv("TECHCREW_TOKEN", "tok")

	c := LoadClient()
	assert.Equal(t, "http://crew.local", c.URL)
	assert.Equal(t, "anon", c.APIKey)
	assert.Equal(t, "tok", c.Token)
}
