package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds service configuration.
type Config struct {
	DatabaseURL         string
	ServerAddr          string
	MigrationsDir       string
	SessionTTL          time.Duration
	SessionCookieName   string
	SessionCookieSecure bool

	AuditSignKey string

	BcryptCost         int
	AutosaveAuditEvery int

	LockSweepInterval        time.Duration
	SessionSweepInterval     time.Duration
	NotificationSendInterval time.Duration
	NotificationExpireEvery  time.Duration
}

// Load reads configuration from environment.
func Load() (*Config, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		user := getenv("POSTGRES_USER", "docvault")
		pass := getenv("POSTGRES_PASSWORD", "docvault_pass")
		db := getenv("POSTGRES_DB", "docvault")
		host := getenv("POSTGRES_HOST", "localhost")
		port := getenv("POSTGRES_PORT", "5432")
		sslmode := getenv("DATABASE_SSLMODE", "disable")
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, pass, host, port, db, sslmode)
	}
	addr := getenv("SERVER_ADDR", "0.0.0.0:8080")
	migrationsDir := getenv("MIGRATIONS_DIR", "scripts/migrations")
	ttl := parseDuration(getenv("SESSION_TTL", "24h"), 24*time.Hour)
	cookieName := getenv("SESSION_COOKIE_NAME", "docvault_session")
	cookieSecure := parseBool(getenv("SESSION_COOKIE_SECURE", "false"), false)
	signKey := getenv("AUDIT_SIGN_KEY", "")
	bcryptCost := parseInt(getenv("BCRYPT_COST", "0"), 0)
	autosaveEvery := parseInt(getenv("AUTOSAVE_AUDIT_EVERY", "10"), 10)

	return &Config{
		DatabaseURL:         dsn,
		ServerAddr:          addr,
		MigrationsDir:       migrationsDir,
		SessionTTL:          ttl,
		SessionCookieName:   cookieName,
		SessionCookieSecure: cookieSecure,
		AuditSignKey:        signKey,

		BcryptCost:         bcryptCost,
		AutosaveAuditEvery: autosaveEvery,

		LockSweepInterval:        parseDuration(getenv("LOCK_SWEEP_INTERVAL", "1m"), time.Minute),
		SessionSweepInterval:     parseDuration(getenv("SESSION_SWEEP_INTERVAL", "10m"), 10*time.Minute),
		NotificationSendInterval: parseDuration(getenv("NOTIFICATION_SEND_INTERVAL", "15s"), 15*time.Second),
		NotificationExpireEvery:  parseDuration(getenv("NOTIFICATION_EXPIRE_INTERVAL", "5m"), 5*time.Minute),
	}, nil
}

func getenv(key, def string) string {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	return val
}

func parseDuration(val string, def time.Duration) time.Duration {
	if val == "" {
		return def
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return def
	}
	return d
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return n
}

func parseBool(val string, def bool) bool {
	if val == "" {
		return def
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return def
	}
	return b
}
