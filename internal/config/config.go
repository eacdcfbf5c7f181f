// Package config loads server settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"household-ledger/internal/auth"

	"github.com/subosito/gotenv"
)

// Config holds the server settings.
type Config struct {
	Host          string
	Port          string
	DBPath        string
	ReceiptsDir   string
	StaticDir     string
	AdminUser     string
	AdminPassword string
	SecureCookie  bool
	CORSOrigins   []string
	AppEnv        string
	LogLevel      string
	LogFile       string
	Argon2        auth.Params
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

// Production reports whether APP_ENV is production.
func (c *Config) Production() bool {
	return c.AppEnv == "production"
}

// Load reads envFiles (".env" when none are given) into the environment
// without overriding variables that are already set, then builds a Config.
// Missing env files are ignored.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := gotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := &Config{
		Host:          os.Getenv("HOST"),
		Port:          getenv("PORT", "8080"),
		DBPath:        getenv("DB_PATH", "expenses.db"),
		ReceiptsDir:   getenv("RECEIPTS_DIR", "receipts"),
		StaticDir:     os.Getenv("STATIC_DIR"),
		AdminUser:     getenv("ADMIN_USER", "admin"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AppEnv:        strings.ToLower(getenv("APP_ENV", "development")),
		LogLevel:      strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogFile:       os.Getenv("LOG_FILE"),
		CORSOrigins:   splitList(getenv("CORS_ORIGINS", "*")),
		Argon2:        auth.DefaultParams,
	}

	var err error
	if cfg.SecureCookie, err = getBool("SECURE_COOKIE", false); err != nil {
		return nil, err
	}
	if cfg.Argon2.Time, err = getUint32("ARGON2_TIME", auth.DefaultParams.Time); err != nil {
		return nil, err
	}
	if cfg.Argon2.MemoryKiB, err = getUint32("ARGON2_MEMORY_KIB", auth.DefaultParams.MemoryKiB); err != nil {
		return nil, err
	}
	threads, err := getUint32("ARGON2_THREADS", uint32(auth.DefaultParams.Threads))
	if err != nil {
		return nil, err
	}
	if threads == 0 || threads > 255 {
		return nil, fmt.Errorf("ARGON2_THREADS must be between 1 and 255")
	}
	cfg.Argon2.Threads = uint8(threads)
	if cfg.Argon2.Time == 0 {
		return nil, fmt.Errorf("ARGON2_TIME must be at least 1")
	}

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return nil, fmt.Errorf("PORT: %w", err)
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getUint32(key string, fallback uint32) (uint32, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return uint32(n), nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
