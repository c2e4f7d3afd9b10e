package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Driver != StorageMemory || cfg.Server.GRPCAddr != ":50051" {
		t.Fatalf("cfg %+v", cfg)
	}
	if cfg.Storage.MySQL.ConnMaxLifetime != 30*time.Minute {
		t.Fatalf("conn_max_lifetime=%s", cfg.Storage.MySQL.ConnMaxLifetime)
	}
}

func TestFileThenEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
storage:
  driver: sqlite
  sqlite:
    path: /tmp/x.db
lock:
  redis:
    ttl: 3s
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LEDGER_SERVER_HTTP_ADDR", ":9999")
	t.Setenv("LEDGER_STORAGE_MYSQL_PORT", "3307")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Driver != StorageSQLite || cfg.Storage.SQLite.Path != "/tmp/x.db" {
		t.Fatalf("storage %+v", cfg.Storage)
	}
	if cfg.Lock.Redis.TTL != 3*time.Second {
		t.Fatalf("ttl=%s", cfg.Lock.Redis.TTL)
	}
	// 設定檔沒寫的 key 保留預設值
	if cfg.Lock.Redis.Prefix != "ledger:lock:" {
		t.Fatalf("prefix=%q", cfg.Lock.Redis.Prefix)
	}
	if cfg.Server.HTTPAddr != ":9999" || cfg.Storage.MySQL.Port != 3307 {
		t.Fatalf("env not applied: http=%s port=%d", cfg.Server.HTTPAddr, cfg.Storage.MySQL.Port)
	}
	if cfg.ConfigPath != path {
		t.Fatalf("config path %q", cfg.ConfigPath)
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("LEDGER_STORAGE_DRIVER", "cassandra")
	if _, err := Load(""); err == nil || !strings.Contains(err.Error(), "storage.driver") {
		t.Fatalf("err=%v", err)
	}
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}
	if err := WriteDefault(path); err == nil {
		t.Fatal("second WriteDefault should refuse to overwrite")
	}
	raw, _ := os.ReadFile(path)
	if !strings.Contains(string(raw), "grpc_addr:") || !strings.Contains(string(raw), "50051") {
		t.Fatalf("rendered:\n%s", raw)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second || cfg.Lock.Redis.Retry != 5*time.Millisecond {
		t.Fatalf("durations %s %s", cfg.Server.ShutdownTimeout, cfg.Lock.Redis.Retry)
	}
}
