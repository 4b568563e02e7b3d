package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadAppConfig(t *testing.T) {
	writeConfig(t, `
archive:
  dir: ./data/20190601
feeds: ["7", "ace"]
chunks: 4
export:
  csvDir: ./out
nats:
  url: nats://localhost:4222
`)

	if err := LoadAppConfig(); err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if Config.Archive.Dir != "./data/20190601" {
		t.Errorf("Archive.Dir = %q", Config.Archive.Dir)
	}
	if len(Config.Feeds) != 2 || Config.Feeds[0] != "7" {
		t.Errorf("Feeds = %v", Config.Feeds)
	}
	if Config.Chunks != 4 {
		t.Errorf("Chunks = %d", Config.Chunks)
	}
	if Config.NATS.SubjectPrefix != "logbook" {
		t.Errorf("SubjectPrefix default = %q, want logbook", Config.NATS.SubjectPrefix)
	}
}

func TestLoadAppConfig_EnvOverride(t *testing.T) {
	writeConfig(t, "archive:\n  dir: ./data\n")
	t.Setenv("LOGBOOK_POSTGRES_URL", "postgres://user:pw@localhost/logbooks")

	if err := LoadAppConfig(); err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if Config.Export.PostgresURL != "postgres://user:pw@localhost/logbooks" {
		t.Errorf("PostgresURL = %q, want env override", Config.Export.PostgresURL)
	}
}

func TestLoadAppConfig_InvalidChunks(t *testing.T) {
	writeConfig(t, "chunks: -1\n")

	if err := LoadAppConfig(); err == nil {
		t.Fatal("LoadAppConfig should reject negative chunks")
	}
}

func TestLoadAppConfig_MissingFile(t *testing.T) {
	writeConfig(t, "chunks: 0\n")
	if err := os.Remove("config.yml"); err != nil {
		t.Fatalf("remove config: %v", err)
	}

	if err := LoadAppConfig(); err == nil {
		t.Fatal("LoadAppConfig should fail without a config file")
	}
}
