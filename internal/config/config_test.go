package config

import (
	"os"
	"path/filepath"
	"testing"
)

const minimalYAML = `
service:
  name: "JournalSearch"
  httpAddr: ":9090"
databases:
  mysql:
    address: "db:3306"
    username: "app"
    password: "secret"
    database: "nature_articles"
  milvus:
    address: "milvus:19530"
    collection: "article_titles"
embedding:
  provider: "ollama"
  model: "nomic-embed-text"
  dimension: 768
`

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Service.HTTPAddr != ":9090" {
		t.Errorf("httpAddr = %q, want :9090", cfg.Service.HTTPAddr)
	}
	if cfg.Databases.Milvus.Collection != "article_titles" {
		t.Errorf("collection = %q, want article_titles", cfg.Databases.Milvus.Collection)
	}
	if cfg.Embedding.Dimension != 768 {
		t.Errorf("dimension = %d, want 768", cfg.Embedding.Dimension)
	}
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Search.DefaultTopK != 10 {
		t.Errorf("defaultTopK = %d, want 10", cfg.Search.DefaultTopK)
	}
	if cfg.Search.OverfetchFactor != 5 {
		t.Errorf("overfetchFactor = %d, want 5", cfg.Search.OverfetchFactor)
	}
	if cfg.Search.MaxCandidates != 200 {
		t.Errorf("maxCandidates = %d, want 200", cfg.Search.MaxCandidates)
	}
	if cfg.Ingest.Concurrency != 4 {
		t.Errorf("concurrency = %d, want 4", cfg.Ingest.Concurrency)
	}
	if cfg.Databases.Milvus.VectorField != "embedding" {
		t.Errorf("vectorField = %q, want embedding", cfg.Databases.Milvus.VectorField)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
