package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formfill/pkg/mailbox"
)

var allKeys = []string{
	EnvMailboxURL, EnvDictionaryDir, EnvBrowserURL, EnvHeadless,
	EnvLogLevel, EnvLogJSON, EnvReconnectDelay, EnvSeed,
}

// clearEnv unsets every config variable for the duration of the test. The
// t.Setenv call registers the restore; godotenv only fills unset variables.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allKeys {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("from env: %v", err)
	}
	want := &Config{
		MailboxURL:     mailbox.DefaultBaseURL,
		Headless:       true,
		LogLevel:       "info",
		ReconnectDelay: mailbox.DefaultReconnectDelay,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvLogLevel, "debug")

	path := filepath.Join(t.TempDir(), "test.env")
	body := "FORMFILL_MAILBOX_URL=https://mail.test/api/v1\n" +
		"FORMFILL_LOG_LEVEL=error\n" +
		"FORMFILL_HEADLESS=false\n" +
		"FORMFILL_RECONNECT_DELAY=250ms\n" +
		"FORMFILL_SEED=42\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	seed := uint64(42)
	want := &Config{
		MailboxURL:     "https://mail.test/api/v1",
		Headless:       false,
		LogLevel:       "debug",
		ReconnectDelay: 250 * time.Millisecond,
		Seed:           &seed,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_MissingFileIsIgnored(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("missing .env must be ignored, got %v", err)
	}
}

func TestFromEnv_InvalidValues(t *testing.T) {
	tests := map[string]string{
		EnvHeadless:       "sometimes",
		EnvLogJSON:        "2",
		EnvReconnectDelay: "soon",
		EnvSeed:           "-1",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			if _, err := FromEnv(); err == nil {
				t.Fatalf("expected error for %s=%q", key, value)
			}
		})
	}
}
