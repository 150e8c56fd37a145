package config

import (
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("DB_PASSWORD", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Scheduling.SlotDuration != 30*time.Minute {
		t.Errorf("slot duration = %v, want 30m", cfg.Scheduling.SlotDuration)
	}
	if cfg.Scheduling.CancelNotice != 24*time.Hour {
		t.Errorf("cancel notice = %v, want 24h", cfg.Scheduling.CancelNotice)
	}
	if cfg.Events.Enabled {
		t.Error("events enabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SCHEDULING_SLOT_MINUTES", "15")
	t.Setenv("SCHEDULING_CANCEL_NOTICE", "48h")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scheduling.SlotDuration != 15*time.Minute {
		t.Errorf("slot duration = %v, want 15m", cfg.Scheduling.SlotDuration)
	}
	if cfg.Scheduling.CancelNotice != 48*time.Hour {
		t.Errorf("cancel notice = %v, want 48h", cfg.Scheduling.CancelNotice)
	}
	if len(cfg.Events.Brokers) != 2 || cfg.Events.Brokers[1] != "kafka-2:9092" {
		t.Errorf("brokers = %v", cfg.Events.Brokers)
	}
}

func TestLoadRejectsMissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_PASSWORD", "secret")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Errorf("err = %v, want JWT_SECRET complaint", err)
	}
}

func TestLoadRejectsBadSlotDuration(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SCHEDULING_SLOT_MINUTES", "3")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "SCHEDULING_SLOT_MINUTES") {
		t.Errorf("err = %v, want SCHEDULING_SLOT_MINUTES complaint", err)
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5433, Name: "clinic", User: "app", Password: "pw", SSLMode: "require"}
	dsn := d.DSN()
	for _, part := range []string{"host=db", "port=5433", "dbname=clinic", "user=app", "sslmode=require"} {
		if !strings.Contains(dsn, part) {
			t.Errorf("dsn %q missing %q", dsn, part)
		}
	}
}
