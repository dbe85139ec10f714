// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/mmynk/billsplitter/internal/models"
)

// Config holds every server setting.
type Config struct {
	// Server
	Port string

	// Storage
	DBPath            string
	IdempotencyDBPath string
	IdempotencyTTL    time.Duration

	// Auth
	JWTSecret string
	JWTTTL    time.Duration

	// Logging
	LogLevel  string
	LogFormat string

	// Ledger. The owner address is closed to self-registration; its login
	// account is provisioned from OwnerPassword when that is set.
	Owner         models.Address
	OwnerPassword string
	PlatformFee   uint16

	// Default token (testnet stablecoin) and faucet
	TokenSymbol   string
	TokenName     string
	TokenDecimals uint8
	FaucetAmount  string

	// Event stream; disabled when RedisAddr is empty
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisStream   string
	RedisMaxLen   int64

	// Rate limiting; disabled when RateLimitRPS <= 0
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads an optional .env file (or the files given) and then the
// environment. Missing variables take their defaults; malformed ones fail.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		DBPath:            getEnv("DB_PATH", "data/billsplitter.db"),
		IdempotencyDBPath: getEnv("IDEMPOTENCY_DB_PATH", "data/idempotency.db"),
		JWTSecret:         getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
		TokenSymbol:       getEnv("DEFAULT_TOKEN_SYMBOL", "USDT"),
		TokenName:         getEnv("DEFAULT_TOKEN_NAME", "Tether USD"),
		FaucetAmount:      getEnv("FAUCET_AMOUNT", "1000"),
		OwnerPassword:     getEnv("OWNER_PASSWORD", ""),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisStream:       getEnv("REDIS_STREAM", "billsplitter:events"),
	}

	var err error
	if cfg.IdempotencyTTL, err = getEnvDuration("IDEMPOTENCY_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.JWTTTL, err = getEnvDuration("JWT_TTL", 24*time.Hour); err != nil {
		return nil, err
	}

	fee, err := getEnvInt("PLATFORM_FEE_BPS", 100)
	if err != nil {
		return nil, err
	}
	if fee < 0 || fee > 500 {
		return nil, fmt.Errorf("PLATFORM_FEE_BPS must be within 0..500, got %d", fee)
	}
	cfg.PlatformFee = uint16(fee)

	decimals, err := getEnvInt("DEFAULT_TOKEN_DECIMALS", 6)
	if err != nil {
		return nil, err
	}
	if decimals < 0 || decimals > 77 {
		return nil, fmt.Errorf("DEFAULT_TOKEN_DECIMALS must be within 0..77, got %d", decimals)
	}
	cfg.TokenDecimals = uint8(decimals)

	if owner := os.Getenv("OWNER_ADDRESS"); owner != "" {
		if cfg.Owner, err = models.ParseAddress(owner); err != nil {
			return nil, fmt.Errorf("OWNER_ADDRESS: %w", err)
		}
	}

	if cfg.RedisDB, err = getEnvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	maxLen, err := getEnvInt("REDIS_MAXLEN", 100000)
	if err != nil {
		return nil, err
	}
	cfg.RedisMaxLen = int64(maxLen)

	if cfg.RateLimitRPS, err = getEnvFloat("RATE_LIMIT_RPS", 20); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = getEnvInt("RATE_LIMIT_BURST", 40); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return i, nil
}

func getEnvFloat(key string, defaultVal float64) (float64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
