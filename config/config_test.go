package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Web.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Web.Port)
	}
	if cfg.Web.SessionTimeout != time.Hour {
		t.Errorf("SessionTimeout = %v, want 1h", cfg.Web.SessionTimeout)
	}
	if cfg.Company.Name == "" {
		t.Error("company letterhead defaults missing")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partsdesk.yaml")

	cfg := Defaults()
	cfg.DatabasePath = "/var/lib/partsdesk/app.db"
	cfg.Web.Port = 9090
	cfg.Web.SessionTimeout = 30 * time.Minute
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.DatabasePath != cfg.DatabasePath {
		t.Errorf("DatabasePath = %q", got.DatabasePath)
	}
	if got.Web.Port != 9090 {
		t.Errorf("Port = %d", got.Web.Port)
	}
	if got.Web.SessionTimeout != 30*time.Minute {
		t.Errorf("SessionTimeout = %v", got.Web.SessionTimeout)
	}
}

func TestLoadRejectsBadCompanyEmail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partsdesk.yaml")

	cfg := Defaults()
	cfg.Company.Email = "not-an-email"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("invalid company email should fail to load")
	}
}
