package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("LOCATION_PING_INTERVAL_MS", "")

	s := Load()
	if s.Port != "8080" {
		t.Fatalf("expected default port, got %q", s.Port)
	}
	if s.LocationPingInterval != 5*time.Minute {
		t.Fatalf("expected 5m ping interval, got %v", s.LocationPingInterval)
	}
	if s.InvoiceDueDays != 30 || s.DigestSchedule != "0 7 * * *" {
		t.Fatalf("unexpected defaults %+v", s)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com, http://localhost:3000,")
	t.Setenv("LOCATION_PING_INTERVAL_MS", "60000")
	t.Setenv("SLOW_REQUEST_MS", "500")

	s := Load()
	if s.Port != "9090" || s.LocationPingInterval != time.Minute || s.SlowRequestThreshold != 500*time.Millisecond {
		t.Fatalf("unexpected settings %+v", s)
	}
	if len(s.AllowedOrigins) != 2 || s.AllowedOrigins[0] != "https://app.example.com" {
		t.Fatalf("unexpected origins %v", s.AllowedOrigins)
	}
	if App.Port != "9090" {
		t.Fatalf("expected App to be updated")
	}
}
