package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Setenv("SESSION_SECRET", "test-secret-32-characters-long!")
	os.Setenv("DB_PASSWORD", "test")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Database.Host != "localhost" {
		t.Errorf("Database.Host: got %q, want %q", cfg.Database.Host, "localhost")
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("Redis.Addr: got %q, want %q", cfg.Redis.Addr, "localhost:6379")
	}
	if cfg.Auth.SessionLifetime != 7*24*time.Hour {
		t.Errorf("Auth.SessionLifetime: got %v, want %v", cfg.Auth.SessionLifetime, 7*24*time.Hour)
	}
	if cfg.Search.BaseURL != "https://serpapi.com/search" {
		t.Errorf("Search.BaseURL: got %q, want %q", cfg.Search.BaseURL, "https://serpapi.com/search")
	}
	if cfg.Search.Timeout != 10*time.Second {
		t.Errorf("Search.Timeout: got %v, want %v", cfg.Search.Timeout, 10*time.Second)
	}
	if cfg.Email.Enabled {
		t.Error("Email.Enabled: got true, want false by default")
	}
}

func TestLoad_MissingSessionSecret(t *testing.T) {
	os.Clearenv()
	os.Setenv("DB_PASSWORD", "test")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() = nil, want error for missing SESSION_SECRET")
	}
}

func TestLoad_WeakSessionSecret(t *testing.T) {
	os.Setenv("SESSION_SECRET", "short")
	os.Setenv("DB_PASSWORD", "test")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() = nil, want error for weak SESSION_SECRET")
	}
}

func TestLoad_MissingDBPassword(t *testing.T) {
	os.Clearenv()
	os.Setenv("SESSION_SECRET", "test-secret-32-characters-long!")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() = nil, want error for missing DB_PASSWORD")
	}
}

func TestLoad_EmailEnabledRequiresFromAddress(t *testing.T) {
	os.Setenv("SESSION_SECRET", "test-secret-32-characters-long!")
	os.Setenv("DB_PASSWORD", "test")
	os.Setenv("EMAIL_ENABLED", "true")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() = nil, want error when EMAIL_ENABLED without EMAIL_FROM_ADDRESS")
	}
}

func TestLoad_CustomDurations(t *testing.T) {
	os.Setenv("SESSION_SECRET", "test-secret-32-characters-long!")
	os.Setenv("DB_PASSWORD", "test")
	os.Setenv("SESSION_LIFETIME", "24h")
	os.Setenv("SERPAPI_TIMEOUT", "3s")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Auth.SessionLifetime != 24*time.Hour {
		t.Errorf("Auth.SessionLifetime: got %v, want %v", cfg.Auth.SessionLifetime, 24*time.Hour)
	}
	if cfg.Search.Timeout != 3*time.Second {
		t.Errorf("Search.Timeout: got %v, want %v", cfg.Search.Timeout, 3*time.Second)
	}
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	os.Setenv("SESSION_SECRET", "test-secret-32-characters-long!")
	os.Setenv("DB_PASSWORD", "test")
	os.Setenv("SESSION_LIFETIME", "not-a-duration")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Auth.SessionLifetime != 7*24*time.Hour {
		t.Errorf("SessionLifetime with invalid value: got %v, want %v", cfg.Auth.SessionLifetime, 7*24*time.Hour)
	}
}
