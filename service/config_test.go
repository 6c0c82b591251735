package service

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
store:
  scheme: s3
  bucket: corpus
  region: us-west-2
  endpoint: http://localhost:9000
  pathStyle: true
manifest:
  url: s3://corpus/.manifest.json
  ttlSeconds: 120
cache:
  dir: /var/cache/bucketfs
  maxBytes: 1073741824
  maxEntries: 5000
search:
  binary: rg
  timeoutSeconds: 30
  concurrency: 4
mcpServer:
  addr: 0.0.0.0
  port: 5000
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store.Bucket != "corpus" || !cfg.Store.PathStyle || cfg.Store.Region != "us-west-2" {
		t.Fatalf("store: %+v", cfg.Store)
	}
	if cfg.manifestTTL() != 2*time.Minute {
		t.Fatalf("ttl: got %v", cfg.manifestTTL())
	}
	if cfg.searchTimeout() != 30*time.Second {
		t.Fatalf("timeout: got %v", cfg.searchTimeout())
	}
	if cfg.Cache.MaxBytes != 1<<30 || cfg.Cache.MaxEntries != 5000 {
		t.Fatalf("cache: %+v", cfg.Cache)
	}
	if cfg.MCPServer.Port != 5000 {
		t.Fatalf("mcp: %+v", cfg.MCPServer)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "store:\n  bucket: corpus\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.manifestTTL() != 5*time.Minute {
		t.Fatalf("default ttl: got %v", cfg.manifestTTL())
	}
	if cfg.searchTimeout() != 45*time.Second {
		t.Fatalf("default timeout: got %v", cfg.searchTimeout())
	}
}

func TestLoadConfigValidation(t *testing.T) {
	if _, err := LoadConfig(writeConfig(t, "store:\n  region: us-east-1\n")); err == nil {
		t.Fatal("expected error for missing bucket")
	}
	if _, err := LoadConfig(writeConfig(t, "store:\n  scheme: mem\n  bucket: corpus\n")); err == nil {
		t.Fatal("expected error for missing baseURL")
	}
}

func TestExpandUserPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	got, err := expandUserPath("~/cache")
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if got != filepath.Join(home, "cache") {
		t.Fatalf("got %v", got)
	}
	plain, err := expandUserPath("/var/cache")
	if err != nil || plain != "/var/cache" {
		t.Fatalf("plain path: %v %v", plain, err)
	}
	if _, err := expandUserPath("~other/cache"); err == nil {
		t.Fatal("expected error for ~user path")
	}
}
