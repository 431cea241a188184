package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "visitcare", cfg.App.Name)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 180, cfg.Optimizer.DefaultTimeLimit)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, []string{"*"}, cfg.API.CORS.Origins)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_SQLITE_PATH", "/tmp/vc.db")
	t.Setenv("OPTIMIZER_TIMEOUT", "30s")
	t.Setenv("REDIS_FINDINGS_TTL", "1m")
	t.Setenv("API_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("APP_PORT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Contains(t, cfg.Database.DSN(), "file:/tmp/vc.db")
	assert.Contains(t, cfg.Database.DSN(), "journal_mode(WAL)")
	assert.Equal(t, 30*time.Second, cfg.Optimizer.Timeout)
	assert.Equal(t, time.Minute, cfg.Redis.FindingsTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.API.CORS.Origins)
	assert.Equal(t, 7012, cfg.App.Port, "无效数值回退默认值")
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("未知驱动", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "mysql")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("时间限制越界", func(t *testing.T) {
		t.Setenv("OPTIMIZER_TIME_LIMIT", "601")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestDatabaseConfig_PostgresDSN(t *testing.T) {
	c := DatabaseConfig{Driver: DriverPostgres, Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", c.DSN())
}
