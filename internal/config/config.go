package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Env  string
	Port string

	BotToken string
	OwnerID  int64
	RefLink  string

	RedisURL  string
	RedisPass string
	RedisDB   int

	SQLitePath string

	JWTSecret  string
	AdminToken string
}

// Load reads the configuration from environment variables. godotenv is
// loaded by main before this runs, so a local .env works too.
func Load() (*Config, error) {
	cfg := &Config{
		Env:        getEnv("ENV", "development"),
		Port:       getEnv("PORT", "8080"),
		BotToken:   os.Getenv("TOKEN"),
		RefLink:    os.Getenv("REF_LINK"),
		RedisURL:   getEnv("REDIS_URL", "localhost:6379"),
		RedisPass:  os.Getenv("REDIS_PASS"),
		SQLitePath: getEnv("SQLITE_PATH", "signalbot.db"),
		JWTSecret:  getEnv("JWT_SECRET", "dev-secret-change-me"),
		AdminToken: os.Getenv("ADMIN_TOKEN"),
	}

	if raw := os.Getenv("OWNER_ID"); raw != "" {
		ownerID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid OWNER_ID %q: %v", raw, err)
		}
		cfg.OwnerID = ownerID
	}

	if raw := os.Getenv("REDIS_DB"); raw != "" {
		db, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB %q: %v", raw, err)
		}
		cfg.RedisDB = db
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
