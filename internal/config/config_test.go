package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.SlotStepMinutes != 45 {
		t.Errorf("SlotStepMinutes = %d, want 45", cfg.SlotStepMinutes)
	}
	if cfg.CancelNotice != 2*time.Hour {
		t.Errorf("CancelNotice = %v, want 2h", cfg.CancelNotice)
	}
	if cfg.PublicRateBurst != 20 {
		t.Errorf("PublicRateBurst = %d, want 20", cfg.PublicRateBurst)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SLOT_STEP_MIN", "30")
	t.Setenv("CANCEL_NOTICE", "1h30m")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.SlotStepMinutes != 30 {
		t.Errorf("SlotStepMinutes = %d, want 30", cfg.SlotStepMinutes)
	}
	if cfg.CancelNotice != 90*time.Minute {
		t.Errorf("CancelNotice = %v, want 1h30m", cfg.CancelNotice)
	}
	if !cfg.RedisTLS {
		t.Error("RedisTLS = false, want true")
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Errorf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
}

func TestMalformedValuesFallBack(t *testing.T) {
	t.Setenv("SLOT_STEP_MIN", "soon")
	t.Setenv("CANCEL_NOTICE", "whenever")

	cfg := Load()

	if cfg.SlotStepMinutes != 45 {
		t.Errorf("SlotStepMinutes = %d, want default 45", cfg.SlotStepMinutes)
	}
	if cfg.CancelNotice != 2*time.Hour {
		t.Errorf("CancelNotice = %v, want default 2h", cfg.CancelNotice)
	}
}
