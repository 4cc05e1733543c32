package config

import (
	"os"
	"strconv"
	"time"
)

// AuthVariant selects how the gateway authenticates against the upstream
// API. The bearer variant forwards the token issued at login; the headers
// variant forwards the admin identity as custom headers.
type AuthVariant string

const (
	AuthBearer  AuthVariant = "bearer"
	AuthHeaders AuthVariant = "headers"
)

type Gateway struct {
	HTTPAddr      string
	UpstreamURL   string
	StaticDir     string
	CookieName    string
	SessionTTL    time.Duration
	AuthVariant   AuthVariant
	RedisAddr     string
	RedisPassword string
}

type Kiosk struct {
	UpstreamURL     string
	WSURL           string
	CaptureInterval time.Duration
	RefreshInterval time.Duration
	ReconnectDelay  time.Duration
	PageSize        int
}

func LoadGateway() Gateway {
	return Gateway{
		HTTPAddr:      getenv("HTTP_ADDR", ":3001"),
		UpstreamURL:   getenv("API_URL", "http://127.0.0.1:8000"),
		StaticDir:     getenv("STATIC_DIR", "web"),
		CookieName:    getenv("SESSION_COOKIE", "labshop_session"),
		SessionTTL:    getenvDuration("SESSION_TTL", 6*time.Minute),
		AuthVariant:   authVariant(getenv("UPSTREAM_AUTH", "bearer")),
		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
	}
}

func LoadKiosk() Kiosk {
	return Kiosk{
		UpstreamURL:     getenv("API_URL", "http://127.0.0.1:8000"),
		WSURL:           getenv("WS_URL", "ws://127.0.0.1:8000/ws/tablet"),
		CaptureInterval: getenvDuration("CAPTURE_POLL_INTERVAL", 2*time.Second),
		RefreshInterval: getenvDuration("REFRESH_INTERVAL", 5*time.Second),
		ReconnectDelay:  getenvDuration("WS_RECONNECT_DELAY", 3*time.Second),
		PageSize:        getenvInt("PAGE_SIZE", 10),
	}
}

func authVariant(raw string) AuthVariant {
	if raw == string(AuthHeaders) {
		return AuthHeaders
	}
	return AuthBearer
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	if val := os.Getenv(key + "_SECONDS"); val != "" {
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
