package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies MARKETPULSE_* environment variable overrides,
// and returns the final Config. The returned Config has NOT been validated;
// the caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known MARKETPULSE_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Angel One ──
	setStr(&cfg.Angel.BaseURL, "MARKETPULSE_ANGEL_BASE_URL")
	setStr(&cfg.Angel.APIKey, "MARKETPULSE_ANGEL_API_KEY")
	setStr(&cfg.Angel.ClientCode, "MARKETPULSE_ANGEL_CLIENT_CODE")
	setStr(&cfg.Angel.PIN, "MARKETPULSE_ANGEL_PIN")
	setStr(&cfg.Angel.TOTPSecret, "MARKETPULSE_ANGEL_TOTP_SECRET")
	setStr(&cfg.Angel.Exchange, "MARKETPULSE_ANGEL_EXCHANGE")

	// ── Watchlist ──
	setDuration(&cfg.Watchlist.RefreshInterval, "MARKETPULSE_WATCHLIST_REFRESH_INTERVAL")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "MARKETPULSE_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "MARKETPULSE_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "MARKETPULSE_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "MARKETPULSE_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "MARKETPULSE_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "MARKETPULSE_REDIS_TLS_ENABLED")

	// ── Database ──
	setBool(&cfg.Database.Enabled, "MARKETPULSE_DATABASE_ENABLED")
	setStr(&cfg.Database.DSN, "MARKETPULSE_DATABASE_DSN")
	setStr(&cfg.Database.Host, "MARKETPULSE_DATABASE_HOST")
	setInt(&cfg.Database.Port, "MARKETPULSE_DATABASE_PORT")
	setStr(&cfg.Database.Database, "MARKETPULSE_DATABASE_NAME")
	setStr(&cfg.Database.User, "MARKETPULSE_DATABASE_USER")
	setStr(&cfg.Database.Password, "MARKETPULSE_DATABASE_PASSWORD")
	setStr(&cfg.Database.SSLMode, "MARKETPULSE_DATABASE_SSLMODE")
	setInt(&cfg.Database.PoolMaxConns, "MARKETPULSE_DATABASE_POOL_MAX_CONNS")
	setInt(&cfg.Database.PoolMinConns, "MARKETPULSE_DATABASE_POOL_MIN_CONNS")

	// ── Server ──
	setInt(&cfg.Server.Port, "MARKETPULSE_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "MARKETPULSE_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "MARKETPULSE_SERVER_API_KEY")
	setInt(&cfg.Server.RateLimitPerMin, "MARKETPULSE_SERVER_RATE_LIMIT_PER_MIN")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "MARKETPULSE_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "MARKETPULSE_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "MARKETPULSE_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "MARKETPULSE_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "MARKETPULSE_MODE")
	setStr(&cfg.LogLevel, "MARKETPULSE_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
