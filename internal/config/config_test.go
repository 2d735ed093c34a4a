package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "DATA_FILE", "ROSTER_FILE", "SESSION_SECRET", "COOKIE_SECURE",
		"FLASH_TTL", "LOG_LEVEL", "LOG_FORMAT", "METRICS_ENABLED", "SHUTDOWN_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
	// Keep godotenv away from any .env in the package directory.
	t.Chdir(t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8501", cfg.ServerPort)
	assert.Equal(t, "wellness_data.csv", cfg.DataFile)
	assert.Equal(t, DefaultRoster, cfg.Roster)
	assert.Len(t, cfg.Roster, 10)
	assert.True(t, cfg.SecretGenerated)
	assert.Len(t, cfg.SessionSecret, 64)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, time.Minute, cfg.FlashTTL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.MetricsEnabled)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DATA_FILE", "/data/responses.csv")
	t.Setenv("SESSION_SECRET", "fixed")
	t.Setenv("COOKIE_SECURE", "yes")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("FLASH_TTL", "nonsense")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.ServerPort)
	assert.Equal(t, "/data/responses.csv", cfg.DataFile)
	assert.Equal(t, "fixed", cfg.SessionSecret)
	assert.False(t, cfg.SecretGenerated)
	assert.True(t, cfg.CookieSecure)
	assert.False(t, cfg.MetricsEnabled)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, time.Minute, cfg.FlashTTL)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.WriteFile(".env", []byte("DATA_FILE=from-dotenv.csv\n"), 0o644))
	// godotenv never overrides a variable that is already set, even to "".
	require.NoError(t, os.Unsetenv("DATA_FILE"))
	t.Cleanup(func() { os.Unsetenv("DATA_FILE") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.csv", cfg.DataFile)
}

func TestLoadRejectsBadPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "http")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRoster(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	tests := []struct {
		name    string
		path    string
		want    []string
		wantErr bool
	}{
		{name: "no path", path: "", want: DefaultRoster},
		{name: "missing file", path: filepath.Join(dir, "absent.yaml"), want: DefaultRoster},
		{name: "custom roster", path: write("ok.yaml", "players:\n  - Ann Lee\n  - ' Bo Diaz '\n"), want: []string{"Ann Lee", "Bo Diaz"}},
		{name: "empty list", path: write("empty.yaml", "players: []\n"), wantErr: true},
		{name: "duplicate", path: write("dup.yaml", "players: [Ann Lee, Ann Lee]\n"), wantErr: true},
		{name: "blank name", path: write("blank.yaml", "players: ['']\n"), wantErr: true},
		{name: "bad yaml", path: write("bad.yaml", "players: [\n"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadRoster(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadRosterReturnsCopy(t *testing.T) {
	got, err := LoadRoster("")
	require.NoError(t, err)
	got[0] = "Changed"
	assert.Equal(t, "John Smith", DefaultRoster[0])
}
