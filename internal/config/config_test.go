package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmynk/billsplitter/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"PORT", "DB_PATH", "IDEMPOTENCY_DB_PATH", "IDEMPOTENCY_TTL", "JWT_SECRET", "JWT_TTL",
	"LOG_LEVEL", "LOG_FORMAT", "OWNER_ADDRESS", "PLATFORM_FEE_BPS", "DEFAULT_TOKEN_SYMBOL",
	"DEFAULT_TOKEN_NAME", "DEFAULT_TOKEN_DECIMALS", "FAUCET_AMOUNT", "REDIS_ADDR",
	"REDIS_PASSWORD", "REDIS_DB", "REDIS_STREAM", "REDIS_MAXLEN", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
}

// clearEnv blanks every config variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, uint16(100), cfg.PlatformFee)
	assert.Equal(t, "USDT", cfg.TokenSymbol)
	assert.Equal(t, uint8(6), cfg.TokenDecimals)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.True(t, cfg.Owner.IsZero())
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoad_FromEnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv does not override variables that are already set.
	for _, k := range []string{"PLATFORM_FEE_BPS", "OWNER_ADDRESS", "JWT_TTL", "REDIS_ADDR"} {
		os.Unsetenv(k)
	}

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		"PLATFORM_FEE_BPS=250\n"+
			"OWNER_ADDRESS=0x00000000000000000000000000000000000000a1\n"+
			"JWT_TTL=2h\n"+
			"REDIS_ADDR=localhost:6379\n",
	), 0o600))
	t.Cleanup(func() {
		for _, k := range []string{"PLATFORM_FEE_BPS", "OWNER_ADDRESS", "JWT_TTL", "REDIS_ADDR"} {
			os.Unsetenv(k)
		}
	})

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, uint16(250), cfg.PlatformFee)
	assert.Equal(t, models.MustAddress("0x00000000000000000000000000000000000000a1"), cfg.Owner)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"PLATFORM_FEE_BPS", "501"},
		{"PLATFORM_FEE_BPS", "ten"},
		{"OWNER_ADDRESS", "0x1234"},
		{"JWT_TTL", "forever"},
		{"DEFAULT_TOKEN_DECIMALS", "90"},
		{"RATE_LIMIT_RPS", "fast"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}
}
