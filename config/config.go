package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration loaded from environment variables.
// Provide sane defaults for local development.
type Config struct {
	AppName string
	Env     string // development, staging, production
	Port    string
	GinMode string

	// Upstream books-api gateway
	GatewayBaseURL string
	GatewayTimeout time.Duration

	// Base URL used to qualify book cover image references
	ImageBaseURL string

	// Redis (session cache)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// JWT
	JWTAccessSecret  string
	JWTRefreshSecret string
	AccessTTL        time.Duration
	RefreshTTL       time.Duration

	// Session profile cache TTL
	SessionTTL time.Duration

	// Cookies
	CookieDomain string
	CookieSecure bool

	// CORS
	CORSAllowedOrigins string // comma-separated

	// HTTP access log toggle (Gin logger)
	HTTPLogEnabled bool
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %v, using default %v", key, err, def)
			return def
		}
		return b
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid int for %s: %v, using default %d", key, err, def)
			return def
		}
		return i
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using default %v", key, err, def)
			return def
		}
		return d
	}
	return def
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		AppName: getenv("APP_NAME", "librogate"),
		Env:     getenv("APP_ENV", "development"),
		Port:    getenv("PORT", "8081"),
		GinMode: getenv("GIN_MODE", "release"),

		GatewayBaseURL: getenv("GATEWAY_BASE_URL", "http://localhost:8080"),
		GatewayTimeout: getdur("GATEWAY_TIMEOUT", 15*time.Second),

		ImageBaseURL: getenv("IMAGE_BASE_URL", "http://localhost:8080"),

		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getint("REDIS_DB", 0),

		JWTAccessSecret:  getenv("JWT_ACCESS_SECRET", "devaccesssecret"),
		JWTRefreshSecret: getenv("JWT_REFRESH_SECRET", "devrefreshsecret"),
		AccessTTL:        getdur("JWT_ACCESS_TTL", time.Hour),
		RefreshTTL:       getdur("JWT_REFRESH_TTL", 168*time.Hour),

		SessionTTL: getdur("SESSION_TTL", 24*time.Hour),

		CookieDomain: getenv("COOKIE_DOMAIN", "localhost"),
		CookieSecure: getbool("COOKIE_SECURE", false),

		CORSAllowedOrigins: getenv("CORS_ALLOWED_ORIGINS", ""),

		// HTTP access log toggle (default false; enable when needed)
		HTTPLogEnabled: getbool("HTTP_LOG_ENABLED", false),
	}
}

// CORSOrigins returns the allowed origins as slice
func (c *Config) CORSOrigins() []string {
	parts := strings.Split(c.CORSAllowedOrigins, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}
