package config

import (
	"log"
	"os"
	"time"

	"github.com/spf13/cast"
)

type Config struct {
	Port         string
	APIBaseURL   string
	APITimeout   time.Duration // 0 disables the client timeout
	DBDSN        string
	LogFile      string
	TemplatesDir string
	UIUser       string
	UIPassHash   string // bcrypt

	SessionMaxLive int           // controllers kept in memory
	SessionIdleTTL time.Duration // idle sessions are forgotten after this
}

// BasicAuth reports whether the UI should be put behind basic auth.
func (c Config) BasicAuth() bool { return c.UIUser != "" && c.UIPassHash != "" }

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func Load() Config {
	timeout, err := cast.ToDurationE(getenv("API_TIMEOUT", "0"))
	if err != nil {
		log.Printf("[config] bad API_TIMEOUT %q, using no timeout: %v", os.Getenv("API_TIMEOUT"), err)
		timeout = 0
	}

	idle, err := cast.ToDurationE(getenv("SESSION_IDLE_TTL", "30m"))
	if err != nil || idle <= 0 {
		log.Printf("[config] bad SESSION_IDLE_TTL %q, using 30m", os.Getenv("SESSION_IDLE_TTL"))
		idle = 30 * time.Minute
	}
	maxLive, err := cast.ToIntE(getenv("SESSION_MAX_LIVE", "1000"))
	if err != nil || maxLive <= 0 {
		log.Printf("[config] bad SESSION_MAX_LIVE %q, using 1000", os.Getenv("SESSION_MAX_LIVE"))
		maxLive = 1000
	}

	cfg := Config{
		Port:         getenv("PORT", "8080"),
		APIBaseURL:   getenv("API_BASE_URL", "http://localhost:8000"),
		APITimeout:   timeout,
		DBDSN:        getenv("DB_DSN", "productos.db"), // sqlite file in project root
		LogFile:      getenv("LOG_FILE", "./productos.log"),
		TemplatesDir: getenv("TEMPLATES_DIR", "./web/templates"),
		UIUser:       os.Getenv("UI_USER"),
		UIPassHash:   os.Getenv("UI_PASSWORD_HASH"),

		SessionMaxLive: maxLive,
		SessionIdleTTL: idle,
	}
	log.Printf("[config] PORT=%s API_BASE_URL=%s API_TIMEOUT=%s DB_DSN=%s LOG_FILE=%s BASIC_AUTH=%s SESSION_MAX_LIVE=%d SESSION_IDLE_TTL=%s",
		cfg.Port, cfg.APIBaseURL, cfg.APITimeout, cfg.DBDSN, cfg.LogFile, cast.ToString(cfg.BasicAuth()),
		cfg.SessionMaxLive, cfg.SessionIdleTTL)
	return cfg
}
