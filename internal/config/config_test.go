package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("fails without a table name", func(t *testing.T) {
		t.Setenv("USERS_TABLE_NAME", "")

		cfg, err := Load()
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "TableName")
	})

	t.Run("applies defaults", func(t *testing.T) {
		t.Setenv("USERS_TABLE_NAME", "users-table")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "users-table", cfg.TableName)
		assert.Equal(t, DriverDynamoDB, cfg.Storage.Driver)
		assert.EqualValues(t, 100, cfg.Storage.PageSize)
		assert.Equal(t, "8080", cfg.Server.Port)
		require.NotNil(t, cfg.Observability)
		assert.Equal(t, "users", cfg.Observability.ServiceName)
		assert.Equal(t, "production", cfg.Observability.Environment)
		assert.Equal(t, "info", cfg.Observability.GetLogLevel())
	})

	t.Run("maps nested keys", func(t *testing.T) {
		t.Setenv("USERS_TABLE_NAME", "users")
		t.Setenv("USERS_PRIMARY__ENV", "local")
		t.Setenv("USERS_STORAGE__DRIVER", "redis")
		t.Setenv("USERS_STORAGE__PAGE_SIZE", "25")
		t.Setenv("USERS_REDIS__ADDRESS", "cache:6379")
		t.Setenv("USERS_OBSERVABILITY__LOGGING__FORMAT", "console")

		cfg, err := Load()
		require.NoError(t, err)

		assert.True(t, cfg.IsLocal())
		assert.Equal(t, DriverRedis, cfg.Storage.Driver)
		assert.EqualValues(t, 25, cfg.Storage.PageSize)
		assert.Equal(t, "cache:6379", cfg.Redis.Address)
		assert.Equal(t, "console", cfg.Observability.Logging.Format)
		assert.Equal(t, "debug", cfg.Observability.GetLogLevel())
		assert.Equal(t, "local", cfg.Observability.Environment)
	})

	t.Run("new relic is optional", func(t *testing.T) {
		t.Setenv("USERS_TABLE_NAME", "users")

		cfg, err := Load()
		require.NoError(t, err)
		assert.False(t, cfg.Observability.IsNewRelicEnabled())
		assert.True(t, cfg.Observability.NewRelic.DistributedTracingEnabled)

		t.Setenv("USERS_OBSERVABILITY__NEW_RELIC__LICENSE_KEY", "0123456789012345678901234567890123456789")
		t.Setenv("USERS_OBSERVABILITY__NEW_RELIC__APP_LOG_FORWARDING_ENABLED", "false")

		cfg, err = Load()
		require.NoError(t, err)
		assert.True(t, cfg.Observability.IsNewRelicEnabled())
		assert.False(t, cfg.Observability.NewRelic.AppLogForwardingEnabled)
		assert.True(t, cfg.Observability.NewRelic.DistributedTracingEnabled)
		assert.Equal(t, "info", cfg.Observability.Logging.Level)
	})

	t.Run("rejects unknown drivers", func(t *testing.T) {
		t.Setenv("USERS_TABLE_NAME", "users")
		t.Setenv("USERS_STORAGE__DRIVER", "mongo")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("requires database settings for postgres", func(t *testing.T) {
		t.Setenv("USERS_TABLE_NAME", "users")
		t.Setenv("USERS_STORAGE__DRIVER", "postgres")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.user")
	})
}

func TestObservabilityValidate(t *testing.T) {
	cfg := DefaultObservabilityConfig()
	require.NoError(t, cfg.Validate())

	cfg.Logging.Level = "verbose"
	assert.Error(t, cfg.Validate())

	cfg = DefaultObservabilityConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())
}
