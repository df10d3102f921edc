package session

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig is the env-backed Config implementation. Field getters satisfy
// the Config interface so host apps can substitute their own provider.
type AppConfig struct {
	APIBaseURL           string
	RequestTimeout       time.Duration
	HydrationTimeout     time.Duration
	ContextKey           string
	RejectedRouteKey     string
	RejectedRouteDefault string
}

// LoadConfig builds an AppConfig from the environment, loading .env files
// first when present. Missing variables fall back to defaults.
func LoadConfig(envFiles ...string) *AppConfig {
	// Missing .env files are fine; real env vars still apply.
	_ = godotenv.Load(envFiles...)

	return &AppConfig{
		APIBaseURL:           getenv("SESSION_API_BASE_URL", "http://localhost:5000/api/v1"),
		RequestTimeout:       parseDur(getenv("SESSION_REQUEST_TIMEOUT", "10s")),
		HydrationTimeout:     parseDur(getenv("SESSION_HYDRATION_TIMEOUT", "15s")),
		ContextKey:           getenv("SESSION_CONTEXT_KEY", "session"),
		RejectedRouteKey:     getenv("SESSION_REJECTED_ROUTE_KEY", "rejected_route"),
		RejectedRouteDefault: getenv("SESSION_REJECTED_ROUTE_DEFAULT", PathHome),
	}
}

func (c *AppConfig) GetAPIBaseURL() string {
	return c.APIBaseURL
}

func (c *AppConfig) GetRequestTimeout() time.Duration {
	return c.RequestTimeout
}

func (c *AppConfig) GetHydrationTimeout() time.Duration {
	return c.HydrationTimeout
}

func (c *AppConfig) GetContextKey() string {
	return c.ContextKey
}

func (c *AppConfig) GetRejectedRouteKey() string {
	return c.RejectedRouteKey
}

func (c *AppConfig) GetRejectedRouteDefault() string {
	return c.RejectedRouteDefault
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDur(s string) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second
	}
	return 0
}

var _ Config = (*AppConfig)(nil)
