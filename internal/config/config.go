// Package config resolves command line defaults from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/goliatone/go-formfill/pkg/mailbox"
)

const (
	EnvMailboxURL     = "FORMFILL_MAILBOX_URL"
	EnvDictionaryDir  = "FORMFILL_DICTIONARY_DIR"
	EnvBrowserURL     = "FORMFILL_BROWSER_URL"
	EnvHeadless       = "FORMFILL_HEADLESS"
	EnvLogLevel       = "FORMFILL_LOG_LEVEL"
	EnvLogJSON        = "FORMFILL_LOG_JSON"
	EnvReconnectDelay = "FORMFILL_RECONNECT_DELAY"
	EnvSeed           = "FORMFILL_SEED"
)

type Config struct {
	MailboxURL     string
	DictionaryDir  string
	BrowserURL     string
	Headless       bool
	LogLevel       string
	LogJSON        bool
	ReconnectDelay time.Duration
	// Seed makes plans reproducible when set.
	Seed *uint64
}

// Load reads the given .env files (".env" when none are named) without
// overriding variables that are already set, then resolves the config from
// the environment. Missing .env files are not an error.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", file, err)
		}
	}
	return FromEnv()
}

// FromEnv resolves the config from process environment variables only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		MailboxURL:     firstNonEmpty(env(EnvMailboxURL), mailbox.DefaultBaseURL),
		DictionaryDir:  env(EnvDictionaryDir),
		BrowserURL:     env(EnvBrowserURL),
		LogLevel:       firstNonEmpty(env(EnvLogLevel), "info"),
		ReconnectDelay: mailbox.DefaultReconnectDelay,
	}

	var err error
	if cfg.Headless, err = parseBool(EnvHeadless, true); err != nil {
		return nil, err
	}
	if cfg.LogJSON, err = parseBool(EnvLogJSON, false); err != nil {
		return nil, err
	}
	if raw := env(EnvReconnectDelay); raw != "" {
		delay, err := time.ParseDuration(raw)
		if err != nil || delay <= 0 {
			return nil, fmt.Errorf("config: %s: invalid duration %q", EnvReconnectDelay, raw)
		}
		cfg.ReconnectDelay = delay
	}
	if raw := env(EnvSeed); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", EnvSeed, err)
		}
		cfg.Seed = &seed
	}
	return cfg, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func parseBool(key string, fallback bool) (bool, error) {
	raw := env(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback, fmt.Errorf("config: %s: %w", key, err)
	}
	return v, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
