// Package config defines the top-level configuration for the market strength
// backend and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by MARKETPULSE_* environment
// variables.
type Config struct {
	Angel     AngelConfig     `toml:"angel"`
	Watchlist WatchlistConfig `toml:"watchlist"`
	Redis     RedisConfig     `toml:"redis"`
	Database  DatabaseConfig  `toml:"database"`
	Server    ServerConfig    `toml:"server"`
	Notify    NotifyConfig    `toml:"notify"`
	Mode      string          `toml:"mode"`
	LogLevel  string          `toml:"log_level"`
}

// AngelConfig holds the Angel One SmartAPI endpoint and credentials.
type AngelConfig struct {
	BaseURL    string `toml:"base_url"`
	APIKey     string `toml:"api_key"`
	ClientCode string `toml:"client_code"`
	PIN        string `toml:"pin"`
	TOTPSecret string `toml:"totp_secret"`
	Exchange   string `toml:"exchange"`
}

// WatchlistEntry is one tracked instrument in the configuration file.
type WatchlistEntry struct {
	Symbol string `toml:"symbol"`
	Token  string `toml:"token"`
}

// WatchlistConfig holds the tracked instruments and the refresh cadence.
type WatchlistConfig struct {
	Entries         []WatchlistEntry `toml:"entries"`
	RefreshInterval duration         `toml:"refresh_interval"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// DatabaseConfig holds PostgreSQL connection parameters for the optional
// strength history store.
type DatabaseConfig struct {
	Enabled      bool   `toml:"enabled"`
	DSN          string `toml:"dsn"`
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	Database     string `toml:"database"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	SSLMode      string `toml:"ssl_mode"`
	PoolMaxConns int    `toml:"pool_max_conns"`
	PoolMinConns int    `toml:"pool_min_conns"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port            int      `toml:"port"`
	CORSOrigins     []string `toml:"cors_origins"`
	APIKey          string   `toml:"api_key"`
	RateLimitPerMin int      `toml:"rate_limit_per_min"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "1s", "500ms").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for the TOML decoder.
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// defaultWatchlist is the seed instrument set: BSE tokens verified against
// the live SmartAPI.
var defaultWatchlist = []WatchlistEntry{
	{Symbol: "RPOWER.BSE", Token: "532939"},
	{Symbol: "TCS.BSE", Token: "532540"},
	{Symbol: "HDFCBANK.BSE", Token: "500180"},
	{Symbol: "ICICIBANK.BSE", Token: "532174"},
	{Symbol: "INFY.BSE", Token: "500209"},
	{Symbol: "IREDA.BSE", Token: "544026"},
	{Symbol: "HINDCOPPER.BSE", Token: "513599"},
	{Symbol: "KAYNES.BSE", Token: "543664"},
	{Symbol: "HFCL.BSE", Token: "500183"},
	{Symbol: "SOLARINDS.BSE", Token: "532725"},
	{Symbol: "GROWW.BSE", Token: "544603"},
	{Symbol: "ORKLAINDIA.BSE", Token: "544595"},
	{Symbol: "EXCELSOFT.BSE", Token: "544617"},
	{Symbol: "MTARTECH.BSE", Token: "543270"},
	{Symbol: "PARAS.BSE", Token: "543367"},
	{Symbol: "HAL.BSE", Token: "541154"},
	{Symbol: "SUZLON.BSE", Token: "532667"},
	{Symbol: "GMDCLTD.BSE", Token: "532181"},
	{Symbol: "SWIGGY.BSE", Token: "544285"},
	{Symbol: "BEL.BSE", Token: "500049"},
	{Symbol: "ADANIPOWER.BSE", Token: "533096"},
	{Symbol: "ZOMATO.BSE", Token: "543320"},
	{Symbol: "LTF.BSE", Token: "533519"},
	{Symbol: "POWERINDIA.BSE", Token: "543187"},
	{Symbol: "TENNECO.BSE", Token: "544612"},
	{Symbol: "SUDEEP.BSE", Token: "544619"},
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Angel: AngelConfig{
			BaseURL:  "https://apiconnect.angelbroking.com",
			Exchange: "BSE",
		},
		Watchlist: WatchlistConfig{
			Entries:         defaultWatchlist,
			RefreshInterval: duration{time.Second},
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		Database: DatabaseConfig{
			Enabled:      false,
			Host:         "localhost",
			Port:         5432,
			Database:     "marketpulse",
			User:         "postgres",
			SSLMode:      "disable",
			PoolMaxConns: 10,
			PoolMinConns: 2,
		},
		Server: ServerConfig{
			Port:            8000,
			CORSOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
			RateLimitPerMin: 300,
		},
		Notify: NotifyConfig{
			Events: []string{"sentiment_flip", "login_failed"},
		},
		Mode:     "server",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"server":  true,
	"monitor": true,
	"full":    true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: server, monitor, full)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Angel.BaseURL == "" {
		errs = append(errs, "angel: base_url must be set")
	}
	if c.Angel.Exchange == "" {
		errs = append(errs, "angel: exchange must be set")
	}

	if len(c.Watchlist.Entries) == 0 {
		errs = append(errs, "watchlist: at least one entry is required")
	}
	for i, e := range c.Watchlist.Entries {
		if e.Symbol == "" || e.Token == "" {
			errs = append(errs, fmt.Sprintf("watchlist: entry %d is missing symbol or token", i))
		}
	}
	if c.Watchlist.RefreshInterval.Duration < 100*time.Millisecond {
		errs = append(errs, "watchlist: refresh_interval must be at least 100ms")
	}

	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must be set")
	}

	if c.Database.Enabled && c.Database.DSN == "" && c.Database.Host == "" {
		errs = append(errs, "database: dsn or host must be set when enabled")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server: invalid port %d", c.Server.Port))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// RefreshInterval returns the configured cadence for streaming refreshes.
func (c *Config) RefreshInterval() time.Duration {
	return c.Watchlist.RefreshInterval.Duration
}
