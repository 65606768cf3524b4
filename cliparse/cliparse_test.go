// cliparse/cliparse_test.go
package cliparse

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// clearConfigEnv blanks every variable ParseFlags reads for the duration of the test
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "DATABASE_URL", "DATABASE_TYPE", "DASHBOARD_KEY",
		"TWITCH_CHANNEL", "TWITCH_USERNAME", "TWITCH_OAUTH_TOKEN",
		"DEFAULT_POLL_DURATION", "SEED_FILE", "COMMAND_RATE_LIMIT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestParseFlags_Defaults(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("DATABASE_URL", "file:test.db")
	t.Setenv("DASHBOARD_KEY", "key")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 3318 {
		t.Errorf("expected default port 3318, got %d", cfg.Port)
	}
	if cfg.DatabaseType != DatabaseSQLite {
		t.Errorf("expected default database type sqlite, got %q", cfg.DatabaseType)
	}
	if cfg.DefaultPollDuration != 30 {
		t.Errorf("expected default poll duration 30, got %d", cfg.DefaultPollDuration)
	}
	if cfg.CommandRateLimit != 5 {
		t.Errorf("expected default rate 5, got %v", cfg.CommandRateLimit)
	}
}

func TestParseFlags_EnvVars(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_TYPE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://test")
	t.Setenv("DASHBOARD_KEY", "test-key")
	t.Setenv("TWITCH_CHANNEL", "somestreamer")
	t.Setenv("DEFAULT_POLL_DURATION", "20")
	t.Setenv("COMMAND_RATE_LIMIT", "2.5")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != DatabasePostgres {
		t.Errorf("expected postgres, got %q", cfg.DatabaseType)
	}
	if cfg.TwitchChannel != "somestreamer" {
		t.Errorf("expected channel from env, got %q", cfg.TwitchChannel)
	}
	if cfg.DefaultPollDuration != 20 {
		t.Errorf("expected duration 20, got %d", cfg.DefaultPollDuration)
	}
	if cfg.CommandRateLimit != 2.5 {
		t.Errorf("expected rate 2.5, got %v", cfg.CommandRateLimit)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DASHBOARD_KEY", "env-key")

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db", "-dashboard-key", "cli-key", "-default-duration", "15"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.DashboardKey != "cli-key" {
		t.Errorf("CLI should override env: expected cli-key, got %q", cfg.DashboardKey)
	}
	if cfg.DefaultPollDuration != 15 {
		t.Errorf("expected duration 15, got %d", cfg.DefaultPollDuration)
	}
}

func TestParseFlags_MemoryNeedsNoURL(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := ParseFlags([]string{"-t", "memory", "-dashboard-key", "k"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DatabaseType != DatabaseMemory {
		t.Errorf("expected memory, got %q", cfg.DatabaseType)
	}
}

func TestParseFlags_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		env     map[string]string
		wantErr string
	}{
		{"missing database url", []string{"-dashboard-key", "k"}, nil, "database URL required"},
		{"missing dashboard key", []string{"-d", "file:test.db"}, nil, "DASHBOARD_KEY required"},
		{"unknown database type", []string{"-t", "mysql", "-d", "x", "-dashboard-key", "k"}, nil, "unknown database type"},
		{"port out of range", []string{"-p", "70000", "-t", "memory", "-dashboard-key", "k"}, nil, "invalid port"},
		{"zero duration", []string{"-t", "memory", "-dashboard-key", "k", "-default-duration", "0"}, nil, "poll duration"},
		{"negative rate", []string{"-t", "memory", "-dashboard-key", "k", "-rate", "-1"}, nil, "rate limit"},
		{"user without token", []string{"-t", "memory", "-dashboard-key", "k", "-twitch-user", "bot"}, nil, "TWITCH_OAUTH_TOKEN"},
		{"bad env port", []string{"-t", "memory", "-dashboard-key", "k"}, map[string]string{"PORT": "abc"}, "parse env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := ParseFlags(tt.args)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearConfigEnv(t)

	// Missing file is fine
	if err := loadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing .env should be ignored, got %v", err)
	}

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("DASHBOARD_KEY=from-file\nTWITCH_CHANNEL=filechannel\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	// Already-set variables win over the file
	t.Setenv("TWITCH_CHANNEL", "envchannel")

	if err := loadDotEnv(path); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("DASHBOARD_KEY"); got != "from-file" {
		t.Errorf("expected DASHBOARD_KEY from file, got %q", got)
	}
	if got := os.Getenv("TWITCH_CHANNEL"); got != "envchannel" {
		t.Errorf("expected env to win over file, got %q", got)
	}
	os.Unsetenv("DASHBOARD_KEY")
}
