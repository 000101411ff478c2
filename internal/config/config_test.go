package config

import (
	"encoding/base64"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.GRPCAddr != ":9090" {
		t.Fatalf("addrs = %q/%q", cfg.HTTPAddr, cfg.GRPCAddr)
	}
	if cfg.Location.String() != "Europe/Paris" {
		t.Fatalf("location = %s", cfg.Location)
	}
	if cfg.OpenHour != 10 || cfg.CloseHour != 19 || cfg.SlotDuration != time.Hour || cfg.ClosedWeekday != time.Sunday {
		t.Fatalf("hours = %d-%d step %s closed %s", cfg.OpenHour, cfg.CloseHour, cfg.SlotDuration, cfg.ClosedWeekday)
	}
	if cfg.PendingTTL != 72*time.Hour || cfg.SessionMaxAge != 12*time.Hour {
		t.Fatalf("ttl=%s session=%s", cfg.PendingTTL, cfg.SessionMaxAge)
	}
	if cfg.CookieHashKey != nil || cfg.CookieBlockKey != nil {
		t.Fatalf("expected no cookie keys by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	hashKey := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("h", 32)))
	blockKey := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("b", 16)))

	t.Setenv("PORT", "3000")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/app")
	t.Setenv("DRESSCUTUR_ATELIER_TIMEZONE", "UTC")
	t.Setenv("DRESSCUTUR_ATELIER_CLOSED_WEEKDAY", "1")
	t.Setenv("DRESSCUTUR_HTTP_CORS_ORIGINS", "https://dresscutur.fr, http://localhost:5173 ,")
	t.Setenv("DRESSCUTUR_SESSION_HASH_KEY", hashKey)
	t.Setenv("DRESSCUTUR_SESSION_BLOCK_KEY", blockKey)
	t.Setenv("DRESSCUTUR_BOOKING_PENDING_TTL", "24h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.HTTPAddr != ":3000" {
		t.Fatalf("http addr = %q, want :3000", cfg.HTTPAddr)
	}
	if cfg.DatabaseURL != "postgres://u:p@db:5432/app" {
		t.Fatalf("database url = %q", cfg.DatabaseURL)
	}
	if cfg.Location != time.UTC || cfg.ClosedWeekday != time.Monday {
		t.Fatalf("location=%s closed=%s", cfg.Location, cfg.ClosedWeekday)
	}
	if !reflect.DeepEqual(cfg.CORSOrigins, []string{"https://dresscutur.fr", "http://localhost:5173"}) {
		t.Fatalf("cors = %v", cfg.CORSOrigins)
	}
	if len(cfg.CookieHashKey) != 32 || len(cfg.CookieBlockKey) != 16 {
		t.Fatalf("key sizes = %d/%d", len(cfg.CookieHashKey), len(cfg.CookieBlockKey))
	}
	if cfg.PendingTTL != 24*time.Hour {
		t.Fatalf("pending ttl = %s", cfg.PendingTTL)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{name: "duration", key: "DRESSCUTUR_SHUTDOWN_TIMEOUT", value: "soon"},
		{name: "timezone", key: "DRESSCUTUR_ATELIER_TIMEZONE", value: "Atlantis/Center"},
		{name: "weekday", key: "DRESSCUTUR_ATELIER_CLOSED_WEEKDAY", value: "caturday"},
		{name: "key size", key: "DRESSCUTUR_SESSION_HASH_KEY", value: base64.StdEncoding.EncodeToString([]byte("short"))},
		{name: "sample ratio", key: "DRESSCUTUR_OTEL_SAMPLE_RATIO", value: "2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}
