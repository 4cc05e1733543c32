package config

import (
	"testing"
	"time"
)

func TestGatewayDefaults(t *testing.T) {
	cfg := LoadGateway()
	if cfg.HTTPAddr != ":3001" {
		t.Fatalf("unexpected addr %q", cfg.HTTPAddr)
	}
	if cfg.SessionTTL != 6*time.Minute {
		t.Fatalf("unexpected session ttl %v", cfg.SessionTTL)
	}
	if cfg.AuthVariant != AuthBearer {
		t.Fatalf("unexpected auth variant %q", cfg.AuthVariant)
	}
	if cfg.CookieName != "labshop_session" {
		t.Fatalf("unexpected cookie name %q", cfg.CookieName)
	}
}

func TestAuthVariantFallsBackToBearer(t *testing.T) {
	if got := authVariant("headers"); got != AuthHeaders {
		t.Fatalf("expected headers variant, got %q", got)
	}
	for _, raw := range []string{"", "bearer", "token", "nonsense"} {
		if got := authVariant(raw); got != AuthBearer {
			t.Fatalf("expected %q to fall back to bearer, got %q", raw, got)
		}
	}
}

func TestGetenvDuration(t *testing.T) {
	t.Setenv("REFRESH_INTERVAL", "250ms")
	if got := getenvDuration("REFRESH_INTERVAL", time.Second); got != 250*time.Millisecond {
		t.Fatalf("unexpected duration %v", got)
	}

	t.Setenv("REFRESH_INTERVAL", "")
	t.Setenv("REFRESH_INTERVAL_SECONDS", "7")
	if got := getenvDuration("REFRESH_INTERVAL", time.Second); got != 7*time.Second {
		t.Fatalf("unexpected seconds duration %v", got)
	}

	t.Setenv("REFRESH_INTERVAL_SECONDS", "")
	if got := getenvDuration("REFRESH_INTERVAL", time.Second); got != time.Second {
		t.Fatalf("expected fallback, got %v", got)
	}
}

func TestKioskDefaults(t *testing.T) {
	cfg := LoadKiosk()
	if cfg.CaptureInterval != 2*time.Second {
		t.Fatalf("unexpected capture interval %v", cfg.CaptureInterval)
	}
	if cfg.RefreshInterval != 5*time.Second {
		t.Fatalf("unexpected refresh interval %v", cfg.RefreshInterval)
	}
	if cfg.ReconnectDelay != 3*time.Second {
		t.Fatalf("unexpected reconnect delay %v", cfg.ReconnectDelay)
	}
	if cfg.PageSize != 10 {
		t.Fatalf("unexpected page size %d", cfg.PageSize)
	}
}
