package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Sync.FetchTimeout != 20*time.Second {
		t.Errorf("Expected default fetch timeout 20s, got %v", cfg.Sync.FetchTimeout)
	}
	if cfg.Sync.RetryAttempts != 3 {
		t.Errorf("Expected default retry attempts 3, got %d", cfg.Sync.RetryAttempts)
	}
	if cfg.Sync.FeedDelay != 2*time.Second {
		t.Errorf("Expected default feed delay 2s, got %v", cfg.Sync.FeedDelay)
	}
	if cfg.Sync.DedupWindow != 7*24*time.Hour {
		t.Errorf("Expected default dedup window 7 days, got %v", cfg.Sync.DedupWindow)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Expected default log format json, got %s", cfg.Logging.Format)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	os.Setenv("SERVER_PORT", "9999")
	os.Setenv("SYNC_FEED_DELAY", "500ms")
	defer os.Unsetenv("SERVER_PORT")
	defer os.Unsetenv("SYNC_FEED_DELAY")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("Expected port 9999, got %d", cfg.Server.Port)
	}
	if cfg.Sync.FeedDelay != 500*time.Millisecond {
		t.Errorf("Expected feed delay 500ms, got %v", cfg.Sync.FeedDelay)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, true},
		{"bad max conns", func(c *Config) { c.Database.MaxConns = 0 }, true},
		{"bad retry attempts", func(c *Config) { c.Sync.RetryAttempts = 0 }, true},
		{"bad dedup window", func(c *Config) { c.Sync.DedupWindow = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			tt.mutate(cfg)
			err = cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultFeeds(t *testing.T) {
	feeds := DefaultFeeds()
	if len(feeds) == 0 {
		t.Fatal("Expected non-empty feed registry")
	}

	seen := make(map[string]bool)
	for _, f := range feeds {
		if f.Agency == "" || f.Source == "" || f.URL == "" {
			t.Errorf("Feed %q missing required fields", f.Source)
		}
		if len(f.Keywords) == 0 {
			t.Errorf("Feed %q has no keywords", f.Source)
		}
		if f.DefaultUrgency == "" {
			t.Errorf("Feed %q has no default urgency", f.Source)
		}
		if seen[f.Source] {
			t.Errorf("Duplicate source label %q", f.Source)
		}
		seen[f.Source] = true
	}
}

func TestFeedsForAgency(t *testing.T) {
	feeds := DefaultFeeds()

	fda := FeedsForAgency(feeds, "FDA")
	if len(fda) == 0 {
		t.Fatal("Expected FDA feeds")
	}
	for _, f := range fda {
		if f.Agency != "FDA" {
			t.Errorf("Expected agency FDA, got %s", f.Agency)
		}
	}

	if got := FeedsForAgency(feeds, "UNKNOWN"); len(got) != 0 {
		t.Errorf("Expected no feeds for unknown agency, got %d", len(got))
	}
}
