// internal/infrastructure/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func setBase(t *testing.T) {
	t.Helper()
	t.Setenv("TOKEN", "abcdefghijklmnopqrstuvwxyz")
	t.Setenv("BOT_ID", "123456789012345678")
}

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadConfigDefaults(t *testing.T) {
	setBase(t)

	cfg, err := LoadConfig(missingEnvFile(t))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Discord.Mode != ModeGateway || cfg.IsWebhookMode() {
		t.Fatalf("mode = %q", cfg.Discord.Mode)
	}
	if cfg.Discord.Intents != 0 {
		t.Fatalf("intents = %d", cfg.Discord.Intents)
	}
	if cfg.Discord.HTTPTimeout != 30*time.Second {
		t.Fatalf("timeout = %v", cfg.Discord.HTTPTimeout)
	}
	if cfg.Database.Enabled || cfg.Redis.Enabled {
		t.Fatal("storages must be disabled by default")
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("log level = %q", cfg.LogLevel)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "TOKEN=from-file-token-value\nBOT_ID=42\nDISCORD_INTENTS=513\nLOG_LEVEL=DEBUG\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	// t.Setenv регистрирует восстановление переменных, которые выставит godotenv
	for _, key := range []string{"TOKEN", "BOT_ID", "DISCORD_INTENTS", "LOG_LEVEL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Discord.Token != "from-file-token-value" || cfg.Discord.ApplicationID != "42" {
		t.Fatalf("discord = %+v", cfg.Discord)
	}
	if cfg.Discord.Intents != 513 || cfg.LogLevel != "debug" {
		t.Fatalf("intents=%d level=%q", cfg.Discord.Intents, cfg.LogLevel)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	t.Setenv("TOKEN", "")
	t.Setenv("BOT_ID", "not-a-snowflake")
	t.Setenv("DISCORD_MODE", "carrier-pigeon")

	_, err := LoadConfig(missingEnvFile(t))
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"TOKEN is required", "BOT_ID", "DISCORD_MODE"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestWebhookModeRequiresPublicKey(t *testing.T) {
	setBase(t)
	t.Setenv("DISCORD_MODE", "WEBHOOK")
	t.Setenv("DISCORD_PUBLIC_KEY", "")

	_, err := LoadConfig(missingEnvFile(t))
	if err == nil || !strings.Contains(err.Error(), "DISCORD_PUBLIC_KEY") {
		t.Fatalf("err = %v", err)
	}

	t.Setenv("DISCORD_PUBLIC_KEY", "00ff")
	cfg, err := LoadConfig(missingEnvFile(t))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !cfg.IsWebhookMode() || cfg.Webhook.Path != "/interactions" {
		t.Fatalf("webhook = %+v", cfg.Webhook)
	}
}

func TestDatabaseValidatedOnlyWhenEnabled(t *testing.T) {
	setBase(t)
	t.Setenv("DB_ENABLED", "true")
	t.Setenv("DB_USER", "")

	if _, err := LoadConfig(missingEnvFile(t)); err == nil {
		t.Fatal("enabled database without user must fail")
	}

	t.Setenv("DB_USER", "bot")
	t.Setenv("DB_NAME", "bot")
	cfg, err := LoadConfig(missingEnvFile(t))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	want := "host=localhost port=5432 user=bot password= dbname=bot sslmode=disable"
	if cfg.GetPostgresDSN() != want {
		t.Fatalf("dsn = %q", cfg.GetPostgresDSN())
	}
}

func TestMaskToken(t *testing.T) {
	if got := MaskToken("short"); got != "*****" {
		t.Fatalf("got %q", got)
	}
	if got := MaskToken("abcdefghijklmnop"); got != "abcde...lmnop" {
		t.Fatalf("got %q", got)
	}
}
