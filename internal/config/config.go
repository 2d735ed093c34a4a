package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultRoster is used when no roster file is configured.
var DefaultRoster = []string{
	"John Smith",
	"Emma Rodriguez",
	"Michael Johnson",
	"Sophia Lee",
	"David Kim",
	"Olivia Chen",
	"Carlos Mendez",
	"Aisha Patel",
	"Ryan Thompson",
	"Isabella Garcia",
}

// Config holds application configuration
type Config struct {
	ServerPort string
	DataFile   string
	RosterFile string
	Roster     []string

	SessionSecret string
	// SecretGenerated is set when SESSION_SECRET was empty and a random one
	// was made; flash cookies and CSRF tokens then do not survive a restart.
	SecretGenerated bool
	CookieSecure    bool
	FlashTTL        time.Duration

	LogLevel  string
	LogFormat string

	MetricsEnabled  bool
	ShutdownTimeout time.Duration
}

// Load reads an optional .env file and then environment variables with
// sensible defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := &Config{
		ServerPort:      getEnv("PORT", "8501"),
		DataFile:        getEnv("DATA_FILE", "wellness_data.csv"),
		RosterFile:      getEnv("ROSTER_FILE", ""),
		SessionSecret:   getEnv("SESSION_SECRET", ""),
		CookieSecure:    getBoolEnv("COOKIE_SECURE", false),
		FlashTTL:        getDurationEnv("FLASH_TTL", time.Minute),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
		MetricsEnabled:  getBoolEnv("METRICS_ENABLED", true),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if _, err := strconv.Atoi(cfg.ServerPort); err != nil {
		return nil, fmt.Errorf("invalid PORT %q", cfg.ServerPort)
	}

	roster, err := LoadRoster(cfg.RosterFile)
	if err != nil {
		return nil, err
	}
	cfg.Roster = roster

	if cfg.SessionSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		cfg.SessionSecret = secret
		cfg.SecretGenerated = true
	}

	return cfg, nil
}

type rosterFile struct {
	Players []string `yaml:"players"`
}

// LoadRoster reads the player list from a YAML file of the form
// "players: [...]". An empty path or a missing file yields DefaultRoster.
func LoadRoster(path string) ([]string, error) {
	if path == "" {
		return append([]string(nil), DefaultRoster...), nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return append([]string(nil), DefaultRoster...), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read roster: %w", err)
	}

	var rf rosterFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse roster %s: %w", path, err)
	}

	seen := make(map[string]bool, len(rf.Players))
	players := make([]string, 0, len(rf.Players))
	for _, p := range rf.Players {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, fmt.Errorf("roster %s: empty player name", path)
		}
		if seen[p] {
			return nil, fmt.Errorf("roster %s: duplicate player %q", path, p)
		}
		seen[p] = true
		players = append(players, p)
	}
	if len(players) == 0 {
		return nil, fmt.Errorf("roster %s: no players", path)
	}
	return players, nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return defaultValue
	}
	return parsed
}

func getBoolEnv(key string, defaultValue bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	if v, err := strconv.ParseBool(raw); err == nil {
		return v
	}
	switch strings.ToLower(raw) {
	case "yes", "on":
		return true
	case "no", "off":
		return false
	}
	return defaultValue
}
