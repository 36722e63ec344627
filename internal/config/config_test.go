package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadStore_EmptyDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	cfg, err := LoadStore()
	require.Error(t, err, "empty driver is not a supported backend")
	require.Nil(t, cfg)
}

func TestLoadStore_FromEnv(t *testing.T) {
	t.Setenv("STORE_ADDR", ":9000")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("STORE_DELAY", "250ms")
	t.Setenv("STORE_JWT_SECRET", "s3cret")

	cfg, err := LoadStore()
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.Addr)
	require.Equal(t, "postgres", cfg.Driver)
	require.Equal(t, 250*time.Millisecond, cfg.Delay)
	require.NotContains(t, cfg.String(), "s3cret")
}

func TestLoadStore_DelayInSeconds(t *testing.T) {
	t.Setenv("STORE_DRIVER", "json")
	t.Setenv("STORE_DELAY", "0")

	cfg, err := LoadStore()
	require.NoError(t, err)
	require.Zero(t, cfg.Delay)
}

func TestLoadStore_RejectsBadValues(t *testing.T) {
	t.Setenv("STORE_DRIVER", "json")
	t.Setenv("STORE_DELAY", "soon")
	_, err := LoadStore()
	require.Error(t, err)

	t.Setenv("STORE_DELAY", "1s")
	t.Setenv("STORE_DRIVER", "mongo")
	_, err = LoadStore()
	require.Error(t, err)
}

func TestLoadConsole(t *testing.T) {
	t.Setenv("USERADMIN_STORE_URL", "http://store:3001")
	t.Setenv("USERADMIN_REDIS_DB", "3")
	t.Setenv("USERADMIN_PREFS_PATH", "")

	cfg, err := LoadConsole()
	require.NoError(t, err)
	require.Equal(t, "http://store:3001", cfg.StoreURL)
	require.Equal(t, 3, cfg.RedisDB)
	require.Empty(t, cfg.PrefsPath)
	require.Equal(t, 15*time.Second, cfg.RequestTimeout)

	t.Setenv("USERADMIN_REDIS_DB", "x")
	_, err = LoadConsole()
	require.Error(t, err)
}

func TestConsoleConfig_StringMasksSecrets(t *testing.T) {
	t.Setenv("USERADMIN_REDIS_ADDR", "cache:6379")
	t.Setenv("USERADMIN_REDIS_PASSWORD", "redispw")
	t.Setenv("STORE_JWT_SECRET", "s3cret")

	cfg, err := LoadConsole()
	require.NoError(t, err)
	out := cfg.String()
	require.Contains(t, out, "cache:6379")
	require.Contains(t, out, `JWT: "***"`)
	require.NotContains(t, out, "s3cret")
	require.NotContains(t, out, "redispw")
}
