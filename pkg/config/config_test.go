package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Crawler.UserAgent != "webseek-crawler/0.3" {
		t.Errorf("Crawler.UserAgent = %q", cfg.Crawler.UserAgent)
	}
	if cfg.Indexer.MinTermLength != 4 {
		t.Errorf("Indexer.MinTermLength = %d, want 4", cfg.Indexer.MinTermLength)
	}
	if cfg.Search.MaxResults != 100 || cfg.Search.PartialWeight != 0.5 {
		t.Errorf("Search defaults = %+v", cfg.Search)
	}
	if len(cfg.Crawler.Seeds) != 1 {
		t.Errorf("Crawler.Seeds = %v, want one default seed", cfg.Crawler.Seeds)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9999
crawler:
  userAgent: custom-agent/1.0
  fetchTimeout: 10s
search:
  partialWeight: 0.25
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Crawler.UserAgent != "custom-agent/1.0" {
		t.Errorf("Crawler.UserAgent = %q", cfg.Crawler.UserAgent)
	}
	if cfg.Crawler.FetchTimeout != 10*time.Second {
		t.Errorf("Crawler.FetchTimeout = %v, want 10s", cfg.Crawler.FetchTimeout)
	}
	if cfg.Search.PartialWeight != 0.25 {
		t.Errorf("Search.PartialWeight = %v, want 0.25", cfg.Search.PartialWeight)
	}
	// Unset fields keep their defaults.
	if cfg.Postgres.Port != 5432 {
		t.Errorf("Postgres.Port = %d, want default 5432", cfg.Postgres.Port)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("WS_POSTGRES_HOST", "db.internal")
	t.Setenv("WS_CRAWLER_SEEDS", "http://a,http://b")
	t.Setenv("WS_SERVER_PORT", "7070")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Postgres.Host != "db.internal" {
		t.Errorf("Postgres.Host = %q, want db.internal", cfg.Postgres.Host)
	}
	if len(cfg.Crawler.Seeds) != 2 || cfg.Crawler.Seeds[0] != "http://a" {
		t.Errorf("Crawler.Seeds = %v, want [http://a http://b]", cfg.Crawler.Seeds)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("Load with missing file did not fail")
	}
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{
		Host: "localhost", Port: 5432, Database: "webseek",
		User: "webseek", Password: "secret", SSLMode: "disable",
	}
	want := "host=localhost port=5432 user=webseek password=secret dbname=webseek sslmode=disable"
	if got := p.DSN(); got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}
