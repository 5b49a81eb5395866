package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const devJWTSecret = "posdash-development-secret"

// Config captures the runtime configuration for the application.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Logging   LoggingConfig
	Auth      AuthConfig
	Storage   StorageConfig
	Redis     RedisConfig
	API       APIConfig
	RateLimit RateLimitConfig
}

// ServerConfig configures the HTTP server runtime behavior.
type ServerConfig struct {
	Addr string
	// PublicURL is the externally reachable base URL used in emailed links
	// and storage object URLs.
	PublicURL string
	// TrustedProxies lists the peers (IPs or CIDR ranges) whose forwarding
	// headers are honored when resolving the client address.
	TrustedProxies []string
}

// DatabaseConfig contains the database connection settings.
type DatabaseConfig struct {
	URL             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	UseMock         bool
}

type LoggingConfig struct {
	Level string
}

// AuthConfig groups browser session and token settings.
type AuthConfig struct {
	Session                  SessionConfig
	JWTSecret                string
	// AccessTokenTTL defaults to the session lifetime because browser
	// sessions hold an access token.
	AccessTokenTTL           time.Duration
	RecoveryTokenTTL         time.Duration
	RequireEmailConfirmation bool
}

type SessionConfig struct {
	Lifetime     time.Duration
	CookieName   string
	CookieDomain string
	CookieSecure bool
}

// StorageConfig points at the directory holding object storage buckets.
type StorageConfig struct {
	Dir string
}

// RedisConfig enables the shared session store when URL is set.
type RedisConfig struct {
	URL string
}

type APIConfig struct {
	AllowedOrigins []string
}

type RateLimitConfig struct {
	LoginPerMinute int
	LoginBurst     int
}

// Load inspects the environment and builds a Config value. A .env file in the
// working directory is applied first when present; real environment variables
// take precedence over it.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{}

	cfg.Server = ServerConfig{
		Addr: firstNonEmpty(
			os.Getenv("SERVER_ADDR"),
			os.Getenv("ADDR"),
			":8080",
		),
		PublicURL:      strings.TrimRight(firstNonEmpty(os.Getenv("PUBLIC_URL"), "http://localhost:8080"), "/"),
		TrustedProxies: splitList(os.Getenv("TRUSTED_PROXIES")),
	}

	cfg.Database = DatabaseConfig{
		URL: firstNonEmpty(
			os.Getenv("DATABASE_URL"),
			os.Getenv("DB_URL"),
			"",
		),
		MaxIdleConns:    parseIntWithDefault(os.Getenv("DATABASE_MAX_IDLE_CONNS"), 5),
		MaxOpenConns:    parseIntWithDefault(os.Getenv("DATABASE_MAX_OPEN_CONNS"), 25),
		ConnMaxLifetime: parseDurationWithDefault(os.Getenv("DATABASE_CONN_MAX_LIFETIME"), time.Hour),
		ConnMaxIdleTime: parseDurationWithDefault(os.Getenv("DATABASE_CONN_MAX_IDLE_TIME"), 15*time.Minute),
		UseMock:         parseBoolWithDefault(os.Getenv("DATABASE_USE_MOCK"), false),
	}

	cfg.Logging = LoggingConfig{
		Level: firstNonEmpty(os.Getenv("LOG_LEVEL"), "info"),
	}

	sessionLifetime := parseDurationWithDefault(os.Getenv("SESSION_LIFETIME"), 12*time.Hour)
	jwtSecret := strings.TrimSpace(os.Getenv("AUTH_JWT_SECRET"))
	if jwtSecret == "" {
		// Only the in-memory demo database may run on the well-known key.
		if !cfg.Database.UseMock {
			return Config{}, fmt.Errorf("AUTH_JWT_SECRET is required unless DATABASE_USE_MOCK is set")
		}
		jwtSecret = devJWTSecret
	}
	cfg.Auth = AuthConfig{
		Session: SessionConfig{
			Lifetime:     sessionLifetime,
			CookieName:   firstNonEmpty(os.Getenv("SESSION_COOKIE_NAME"), "posdash_session"),
			CookieDomain: os.Getenv("SESSION_COOKIE_DOMAIN"),
			CookieSecure: parseBoolWithDefault(os.Getenv("SESSION_COOKIE_SECURE"), true),
		},
		JWTSecret:                jwtSecret,
		AccessTokenTTL:           parseDurationWithDefault(os.Getenv("AUTH_ACCESS_TOKEN_TTL"), sessionLifetime),
		RecoveryTokenTTL:         parseDurationWithDefault(os.Getenv("AUTH_RECOVERY_TOKEN_TTL"), time.Hour),
		RequireEmailConfirmation: parseBoolWithDefault(os.Getenv("AUTH_REQUIRE_EMAIL_CONFIRMATION"), false),
	}

	cfg.Storage = StorageConfig{
		Dir: firstNonEmpty(os.Getenv("STORAGE_DIR"), "data/storage"),
	}

	cfg.Redis = RedisConfig{
		URL: strings.TrimSpace(os.Getenv("REDIS_URL")),
	}

	cfg.API = APIConfig{
		AllowedOrigins: splitList(os.Getenv("API_ALLOWED_ORIGINS")),
	}

	cfg.RateLimit = RateLimitConfig{
		LoginPerMinute: parseIntWithDefault(os.Getenv("LOGIN_RATE_PER_MINUTE"), 10),
		LoginBurst:     parseIntWithDefault(os.Getenv("LOGIN_RATE_BURST"), 5),
	}

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return Config{}, fmt.Errorf("server address must not be empty")
	}
	if len(cfg.Auth.JWTSecret) < 16 {
		return Config{}, fmt.Errorf("AUTH_JWT_SECRET must be at least 16 characters")
	}

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func parseIntWithDefault(value string, def int) int {
	if strings.TrimSpace(value) == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return n
}

func parseDurationWithDefault(value string, def time.Duration) time.Duration {
	if strings.TrimSpace(value) == "" {
		return def
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return d
}

func parseBoolWithDefault(value string, def bool) bool {
	if strings.TrimSpace(value) == "" {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return b
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
