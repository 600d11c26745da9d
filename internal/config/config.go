package config

import (
	"fmt"
	"os"
	"strings"

	"eventplanner/internal/ai"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	HTTPAddr             string
	Store                string
	DatabaseURL          string
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	JWTSecret    string
	CookieSecure bool

	RedisURL     string
	RedisChannel string

	LogLevel string

	// EventOwnershipCheck puts the generation endpoints behind auth and
	// restricts them to the event's owner.
	EventOwnershipCheck bool
	WorkerEnabled       bool

	AI ai.Config
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:             getenv("HTTP_ADDR", ":8080"),
		Store:                strings.ToLower(getenv("STORE", StorePostgres)),
		CORSAllowCredentials: getenv("CORS_ALLOW_CREDENTIALS", "false") == "true",
		CookieSecure:         getenv("COOKIE_SECURE", "false") == "true",
		RedisURL:             getenv("REDIS_URL", ""),
		RedisChannel:         getenv("REDIS_CHANNEL", "event_outputs"),
		LogLevel:             getenv("LOG_LEVEL", "info"),
		EventOwnershipCheck:  getenv("EVENT_OWNERSHIP_CHECK", "false") == "true",
		WorkerEnabled:        getenv("WORKER_ENABLED", "true") == "true",
		AI:                   ai.LoadConfig(),
	}

	origins := strings.Split(getenv("CORS_ALLOWED_ORIGINS", ""), ",")
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	switch cfg.Store {
	case StorePostgres:
		v, err := requireEnv("DATABASE_URL")
		if err != nil {
			return Config{}, err
		}
		cfg.DatabaseURL = v
	case StoreMemory:
	default:
		return Config{}, fmt.Errorf("config: unknown STORE %q", cfg.Store)
	}

	v, err := requireEnv("JWT_SECRET")
	if err != nil {
		return Config{}, err
	}
	cfg.JWTSecret = v
	return cfg, nil
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func requireEnv(key string) (string, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return "", fmt.Errorf("config: missing env %s", key)
	}
	return v, nil
}
