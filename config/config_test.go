package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestReadConfigDefaults(t *testing.T) {
	cfg, err := ReadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if cfg.Storage.Backend != BackendFile || cfg.Storage.Path == "" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Server.Port != 8080 || cfg.Logging.Level != "info" {
		t.Errorf("unexpected defaults %+v", cfg.Server)
	}
}

func TestReadConfigFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
storage:
  backend: redis
redis:
  addr: localhost:6379
export:
  enabled: true
  url: https://script.example.com/exec
`)
	t.Setenv("FIELDCARE_SERVER_PORT", "7070")
	t.Setenv("FIELDCARE_STORAGE_ENCRYPTION_KEY", strings.Repeat("ab", 32))

	cfg, err := ReadConfig(path)
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("env override ignored: port %d", cfg.Server.Port)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Redis.KeyPrefix != "fieldcare" {
		t.Errorf("redis = %+v", cfg.Redis)
	}
	if cfg.Storage.EncryptionKey == "" {
		t.Error("encryption key not read from env")
	}
	if !cfg.Export.Enabled || cfg.Export.QueueSize != 64 {
		t.Errorf("export = %+v", cfg.Export)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:  ServerConfig{Port: 8080},
			Storage: StorageConfig{Backend: BackendMemory},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: "server.port"},
		{name: "unknown backend", mutate: func(c *Config) { c.Storage.Backend = "sqlite" }, wantErr: "storage.backend"},
		{name: "redis without addr", mutate: func(c *Config) { c.Storage.Backend = BackendRedis }, wantErr: "redis.addr"},
		{name: "postgres without db", mutate: func(c *Config) { c.Storage.Backend = BackendPostgres }, wantErr: "database.host"},
		{name: "file without path", mutate: func(c *Config) { c.Storage.Backend = BackendFile; c.Storage.Path = "" }, wantErr: "storage.path"},
		{name: "s3 without bucket", mutate: func(c *Config) { c.Storage.Backend = BackendS3 }, wantErr: "s3.bucket"},
		{name: "short key", mutate: func(c *Config) { c.Storage.EncryptionKey = "abcd" }, wantErr: "encryption_key"},
		{name: "export without url", mutate: func(c *Config) { c.Export.Enabled = true }, wantErr: "export.url"},
		{name: "assist relative url", mutate: func(c *Config) {
			c.Assist.Enabled = true
			c.Assist.URL = "/generate"
		}, wantErr: "assist.url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
