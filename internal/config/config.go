package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Dan9191/loan-service/internal/finance"
)

// Storage backends
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds application configuration
type Config struct {
	Port     string
	LogLevel string
	Storage  string
	DBConn   string

	JWTSecret     string
	TokenTTL      time.Duration
	AdminEmail    string
	AdminPassword string
	HMACSecret    string
	EncryptionKey []byte

	CBRURL     string
	BankMargin float64
	RedisAddr  string
	RedisPass  string
	KeyRateTTL time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string

	ReminderSchedule    string
	ReminderDaysAhead   int
	DefaultAfterOverdue int

	Rates        finance.RateTable
	ScoreWeights finance.Weights
	FactorPolicy finance.FactorPolicy
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "INFO"),
		Storage:          getEnv("STORAGE", StoragePostgres),
		DBConn:           getEnv("DB_CONN", "host=localhost port=5436 user=test password=test dbname=loans sslmode=disable"),
		JWTSecret:        getEnv("JWT_SECRET", "secret"),
		AdminEmail:       getEnv("ADMIN_EMAIL", ""),
		AdminPassword:    getEnv("ADMIN_PASSWORD", ""),
		HMACSecret:       getEnv("HMAC_SECRET", "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6"),
		CBRURL:           getEnv("CBR_URL", "https://www.cbr.ru/DailyInfoWebServ/DailyInfo.asmx"),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPass:        getEnv("REDIS_PASSWORD", ""),
		SMTPHost:         getEnv("SMTP_HOST", ""),
		SMTPPort:         getEnv("SMTP_PORT", "587"),
		SMTPUsername:     getEnv("SMTP_USERNAME", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
		SenderEmail:      getEnv("SENDER_EMAIL", "noreply@loans.local"),
		ReminderSchedule: getEnv("REMINDER_SCHEDULE", "@daily"),
	}

	var err error
	if cfg.TokenTTL, err = time.ParseDuration(getEnv("TOKEN_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	if cfg.KeyRateTTL, err = time.ParseDuration(getEnv("KEY_RATE_TTL", "6h")); err != nil {
		return nil, fmt.Errorf("invalid KEY_RATE_TTL: %w", err)
	}
	if cfg.BankMargin, err = strconv.ParseFloat(getEnv("BANK_MARGIN", "5"), 64); err != nil {
		return nil, fmt.Errorf("invalid BANK_MARGIN: %w", err)
	}
	if cfg.ReminderDaysAhead, err = strconv.Atoi(getEnv("REMINDER_DAYS_AHEAD", "3")); err != nil || cfg.ReminderDaysAhead < 0 {
		return nil, fmt.Errorf("invalid REMINDER_DAYS_AHEAD: %q", os.Getenv("REMINDER_DAYS_AHEAD"))
	}
	if cfg.DefaultAfterOverdue, err = strconv.Atoi(getEnv("DEFAULT_AFTER_OVERDUE", "3")); err != nil || cfg.DefaultAfterOverdue < 0 {
		return nil, fmt.Errorf("invalid DEFAULT_AFTER_OVERDUE: %q", os.Getenv("DEFAULT_AFTER_OVERDUE"))
	}
	if cfg.EncryptionKey, err = hex.DecodeString(getEnv("ENCRYPTION_KEY", "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6")); err != nil {
		return nil, fmt.Errorf("ENCRYPTION_KEY must be hex encoded: %w", err)
	}

	if cfg.Rates, err = loadRates(); err != nil {
		return nil, err
	}
	if cfg.ScoreWeights, err = finance.ParseWeights(getEnv("SCORE_WEIGHTS", "0.35,0.30,0.15,0.10,0.10")); err != nil {
		return nil, fmt.Errorf("invalid SCORE_WEIGHTS: %w", err)
	}
	if cfg.FactorPolicy, err = finance.ParseFactorPolicy(getEnv("FACTOR_POLICY", string(finance.PolicyPassThrough))); err != nil {
		return nil, fmt.Errorf("invalid FACTOR_POLICY: %w", err)
	}

	switch cfg.Storage {
	case StoragePostgres:
		if cfg.DBConn == "" {
			return nil, fmt.Errorf("DB_CONN is required")
		}
	case StorageMemory:
	default:
		return nil, fmt.Errorf("STORAGE must be %q or %q, got %q", StoragePostgres, StorageMemory, cfg.Storage)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.HMACSecret == "" {
		return nil, fmt.Errorf("HMAC_SECRET is required")
	}
	if l := len(cfg.EncryptionKey); l != 16 && l != 24 && l != 32 {
		return nil, fmt.Errorf("ENCRYPTION_KEY must decode to 16, 24, or 32 bytes, got %d", l)
	}

	return cfg, nil
}

// loadRates overrides the default loan-type rates from RATE_<TYPE> variables
func loadRates() (finance.RateTable, error) {
	rates := finance.DefaultRates()
	for _, lt := range finance.LoanTypes() {
		key := "RATE_" + string(lt)
		raw, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		rate, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", key, err)
		}
		rates[lt] = rate
	}
	if err := rates.Validate(); err != nil {
		return nil, fmt.Errorf("invalid loan rates: %w", err)
	}
	return rates, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
