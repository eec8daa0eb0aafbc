package bootstrap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setRequiredEnv sets every mandatory variable and blanks the optional ones
// the assertions depend on, so the process environment cannot leak in.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MYSQL_USER", "bb")
	t.Setenv("MYSQL_PASSWORD", "secret")
	t.Setenv("MYSQL_HOST", "127.0.0.1")
	t.Setenv("MYSQL_PORT", "3306")
	t.Setenv("MYSQL_DB", "brainbattle_clan")
	t.Setenv("REDIS_ADDR", "127.0.0.1:6379")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("CORE_BASE_URL", "http://core.internal")

	t.Setenv("SERVER_PORT", "")
	t.Setenv("REDIS_KEY_PREFIX", "")
	t.Setenv("EVENT_CHANNEL", "")
	t.Setenv("RATE_LIMIT_MAX", "")
	t.Setenv("RATE_LIMIT_WINDOW_SECONDS", "")
	t.Setenv("PRESENCE_TTL_SECONDS", "")
	t.Setenv("NOTIFICATION_RETENTION_DAYS", "")
}

func TestLoadConfig_DefaultsApplied(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "cc:", cfg.KeyPrefix)
	assert.Equal(t, "bb.events", cfg.EventChannel)
	assert.Equal(t, 20, cfg.MessageRateMax)
	assert.Equal(t, 5*time.Second, cfg.MessageRateWindow)
	assert.Equal(t, 120*time.Second, cfg.PresenceTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.NotificationRetention)
}

func TestLoadConfig_MissingDatabaseCredentialFailsFast(t *testing.T) {
	for _, name := range []string{"MYSQL_USER", "MYSQL_PASSWORD", "MYSQL_HOST", "MYSQL_PORT", "MYSQL_DB"} {
		t.Run(name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(name, "")

			_, err := LoadConfig()

			require.Error(t, err)
			assert.Contains(t, err.Error(), name)
		})
	}
}

func TestLoadConfig_MissingRedisAddrFailsFast(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("REDIS_ADDR", "")

	_, err := LoadConfig()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_ADDR")
}
