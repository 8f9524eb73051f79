package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Auth modes.
const (
	AuthModeNone  = "none"
	AuthModeToken = "token"
)

// Config holds process configuration resolved from the environment.
type Config struct {
	Addr          string
	SQLitePath    string
	MigrationsDir string
	AuthMode      string
	CORSOrigins   []string
}

// Load reads an optional .env file and resolves configuration from the
// environment with defaults.
func Load() Config {
	_ = godotenv.Load() // .env is optional

	cfg := Config{
		Addr:          getenv("APP_ADDR", ":8080"),
		SQLitePath:    getenv("SQLITE_PATH", "opname.db"),
		MigrationsDir: getenv("MIGRATIONS_DIR", ""),
		AuthMode:      strings.ToLower(getenv("AUTH_MODE", AuthModeNone)),
		CORSOrigins:   splitList(getenv("CORS_ORIGINS", "*")),
	}
	if cfg.AuthMode != AuthModeToken {
		cfg.AuthMode = AuthModeNone
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
