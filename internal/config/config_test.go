package config

import (
	"path/filepath"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		API: APIConfig{
			Endpoint: "https://search.example.com/multi_search",
			Key:      "public-key",
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_MissingEndpoint(t *testing.T) {
	cfg := validConfig()
	cfg.API.Endpoint = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing api.endpoint")
	}
}

func TestValidate_MissingKey(t *testing.T) {
	cfg := validConfig()
	cfg.API.Key = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing api.key")
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_CacheFilesMustDiffer(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.UnfilteredFile = cfg.Cache.FilteredFile
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for identical cache files")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Collections.Primary != "public_characters_alias" {
		t.Errorf("expected default primary collection, got %q", cfg.Collections.Primary)
	}
	if len(cfg.Collections.CreatedAtPriority) != 2 {
		t.Errorf("expected 2 default created_at collections, got %v", cfg.Collections.CreatedAtPriority)
	}
	if cfg.Collections.CreatedAtPriority[0] != "public_characters" {
		t.Errorf("non-alias collection must be consulted first, got %v", cfg.Collections.CreatedAtPriority)
	}
	if cfg.Cache.FilteredFile != filepath.Join("data", "trending_filtered.json") {
		t.Errorf("unexpected filtered cache default %q", cfg.Cache.FilteredFile)
	}
	if cfg.Crawl.MaxPages != 10 {
		t.Errorf("expected max_pages=10, got %d", cfg.Crawl.MaxPages)
	}
	if cfg.HTTP.Port != 8080 || cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("unexpected http defaults: %+v", cfg.HTTP)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("CHARWATCH_TEST_KEY", "secret")

	in := []byte("key: ${CHARWATCH_TEST_KEY}\nendpoint: ${CHARWATCH_TEST_MISSING:-https://fallback}\n")
	out := string(expandEnvVars(in))

	want := "key: secret\nendpoint: https://fallback\n"
	if out != want {
		t.Errorf("expansion mismatch:\ngot:  %q\nwant: %q", out, want)
	}
}
