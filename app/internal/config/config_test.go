package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("CHANNEL_POOL_SIZE", "")
	t.Setenv("CART_SESSION_TTL", "")
	t.Setenv("MAX_UPLOAD_SIZE", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("CART_SESSION_SECRET", "")

	cfg, err := Load()

	require.NoError(t, err)
	require.Equal(t, DriverMySQL, cfg.StoreDriver)
	require.Equal(t, 10, cfg.ChannelPoolSize)
	require.Equal(t, 24*time.Hour, cfg.SessionTTL)
	require.Equal(t, int64(5242880), cfg.MaxUploadSize)
	require.False(t, cfg.IsProduction())
	require.Equal(t, devSessionSecret, cfg.SessionSecret)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("APP_PORT", "9000")
	t.Setenv("CATALOG_CACHE_TTL", "30s")
	t.Setenv("CHANNEL_POOL_SIZE", "3")
	t.Setenv("APP_ENV", "production")
	t.Setenv("CART_SESSION_SECRET", "s3cret")

	cfg, err := Load()

	require.NoError(t, err)
	require.Equal(t, DriverPostgres, cfg.StoreDriver)
	require.Equal(t, "9000", cfg.Port)
	require.Equal(t, 30*time.Second, cfg.CatalogCacheTTL)
	require.Equal(t, 3, cfg.ChannelPoolSize)
	require.True(t, cfg.IsProduction())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "unknown driver", key: "STORE_DRIVER", val: "sqlite"},
		{name: "zero pool", key: "CHANNEL_POOL_SIZE", val: "0"},
		{name: "negative upload size", key: "MAX_UPLOAD_SIZE", val: "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("APP_ENV", "")
			t.Setenv(tt.key, tt.val)

			_, err := Load()

			require.Error(t, err)
		})
	}
}

func TestGetEnvAsDuration_FallsBack(t *testing.T) {
	t.Setenv("SOME_TTL", "soon")
	require.Equal(t, time.Minute, getEnvAsDuration("SOME_TTL", time.Minute))

	t.Setenv("SOME_TTL", "-5s")
	require.Equal(t, time.Minute, getEnvAsDuration("SOME_TTL", time.Minute))
}

func TestLoad_ProductionRequiresSessionSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("CART_SESSION_SECRET", "")

	_, err := Load()

	require.ErrorContains(t, err, "CART_SESSION_SECRET")

	t.Setenv("CART_SESSION_SECRET", devSessionSecret)
	_, err = Load()
	require.Error(t, err)
}
