// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes server timeouts,
// logging, database path, auth, room discovery, websocket, and rate limiting
// settings.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// AuthConfig defines credential issuance and verification settings.
type AuthConfig struct {
	JWTSecret string        // JWT_SECRET (required outside dev)
	TokenTTL  time.Duration // TOKEN_TTL, e.g. 24h
	Issuer    string        // TOKEN_ISSUER
}

// WSConfig defines websocket transport tuning.
type WSConfig struct {
	ReadLimit      int64         // max inbound frame size in bytes
	SendBuffer     int           // per-connection outbound queue length
	WriteTimeout   time.Duration // deadline for a single frame write
	PongTimeout    time.Duration // read deadline refreshed on pong
	PingInterval   time.Duration // keepalive ping cadence (< PongTimeout)
	MaxMessageRune int           // max chat message length in runes
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s; must exceed WS handshake needs
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging
	LogLevel  string // debug|info|warn|error|fatal|panic
	LogPretty bool   // pretty console logs in dev

	// App
	DBPath      string        // SQLite path
	APIBasePath string        // base path for API routes
	RoomTTL     time.Duration // lifetime of a room after creation
	RadiusKm    float64       // discovery radius in kilometres

	// Rate limiting (REST only; the ws event stream is not rate limited here)
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	Auth AuthConfig
	CORS CORSConfig
	WS   WSConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from the environment (and a .env file when
// present), applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	// Best effort; absence of a .env file is the normal production case.
	_ = godotenv.Load()

	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging
		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty: getbool("LOG_PRETTY", false),

		// App
		DBPath:      getenv("DB_PATH", "app.db"),
		APIBasePath: normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),
		RoomTTL:     getdur("ROOM_TTL", 3*time.Hour),
		RadiusKm:    getfloat("RADIUS_KM", 15.0),

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		Auth: AuthConfig{
			JWTSecret: getenv("JWT_SECRET", "dev-secret-change-me"),
			TokenTTL:  getdur("TOKEN_TTL", 24*time.Hour),
			Issuer:    getenv("TOKEN_ISSUER", "nearbychat"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		WS: WSConfig{
			ReadLimit:      int64(getint("WS_READ_LIMIT", 4<<10)),
			SendBuffer:     getint("WS_SEND_BUFFER", 256),
			WriteTimeout:   getdur("WS_WRITE_TIMEOUT", 10*time.Second),
			PongTimeout:    getdur("WS_PONG_TIMEOUT", 60*time.Second),
			PingInterval:   getdur("WS_PING_INTERVAL", 54*time.Second),
			MaxMessageRune: getint("WS_MAX_MESSAGE_RUNES", 1000),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validate performs sanity checks on loaded values.
func (c Config) validate() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return errors.New("config: PORT must be numeric")
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return errors.New("config: GIN_MODE must be debug, release, or test")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("config: JWT_SECRET must not be empty")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("config: TOKEN_TTL must be positive")
	}
	if c.RoomTTL <= 0 {
		return errors.New("config: ROOM_TTL must be positive")
	}
	if c.RadiusKm <= 0 {
		return errors.New("config: RADIUS_KM must be positive")
	}
	if c.RateRPS < 0 {
		return errors.New("config: RATE_RPS must be >= 0")
	}
	if c.RateBurst < 1 {
		return errors.New("config: RATE_BURST must be >= 1")
	}
	if c.WS.PingInterval >= c.WS.PongTimeout {
		return errors.New("config: WS_PING_INTERVAL must be below WS_PONG_TIMEOUT")
	}
	if c.WS.SendBuffer < 1 {
		return errors.New("config: WS_SEND_BUFFER must be >= 1")
	}
	if c.WS.MaxMessageRune < 1 {
		return errors.New("config: WS_MAX_MESSAGE_RUNES must be >= 1")
	}
	return nil
}

// getenv returns the value of key or def when unset/empty.
func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// getdur parses a duration env var, falling back to def on error.
func getdur(key string, def time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// getint parses an int env var, falling back to def on error.
func getint(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// getfloat parses a float env var, falling back to def on error.
func getfloat(key string, def float64) float64 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

// getbool parses a boolean env var ("1", "true", "yes", "on"), falling back
// to def otherwise.
func getbool(key string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	}
	return def
}

// splitCSV splits a comma-separated list, trimming blanks.
func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalizeBasePath ensures a leading slash and strips a trailing one.
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || p == "/" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return strings.TrimRight(p, "/")
}
