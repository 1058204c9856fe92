package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFromEnv(t *testing.T) {
	os.Setenv("ELASTICSEARCH_HOST", "es.internal")
	os.Setenv("ELASTICSEARCH_PORT", "9201")
	os.Setenv("EMBEDDING_COST_PER_1K", "0.0005")
	os.Setenv("ROI_LOG_LEVEL", "debug")
	defer func() {
		os.Unsetenv("ELASTICSEARCH_HOST")
		os.Unsetenv("ELASTICSEARCH_PORT")
		os.Unsetenv("EMBEDDING_COST_PER_1K")
		os.Unsetenv("ROI_LOG_LEVEL")
	}()

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}

	if cfg.Elasticsearch.Host != "es.internal" {
		t.Errorf("Elasticsearch.Host = %s, want es.internal", cfg.Elasticsearch.Host)
	}

	if cfg.Elasticsearch.Port != 9201 {
		t.Errorf("Elasticsearch.Port = %d, want 9201", cfg.Elasticsearch.Port)
	}

	if cfg.Cost.EmbeddingPer1K != 0.0005 {
		t.Errorf("Cost.EmbeddingPer1K = %v, want 0.0005", cfg.Cost.EmbeddingPer1K)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %s, want debug", cfg.Log.Level)
	}
}

func TestDefaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}

	if cfg.Benchmark.NumDocuments != 100 {
		t.Errorf("Benchmark.NumDocuments = %d, want 100", cfg.Benchmark.NumDocuments)
	}

	if cfg.Benchmark.TopK != 5 {
		t.Errorf("Benchmark.TopK = %d, want 5", cfg.Benchmark.TopK)
	}

	if cfg.Benchmark.HybridLimit != 10 {
		t.Errorf("Benchmark.HybridLimit = %d, want 10", cfg.Benchmark.HybridLimit)
	}

	if cfg.Cost.VectorPerQuery != 0.00001 {
		t.Errorf("Cost.VectorPerQuery = %v, want 0.00001", cfg.Cost.VectorPerQuery)
	}

	if cfg.Embedding.TokensPerWord != 100 {
		t.Errorf("Embedding.TokensPerWord = %d, want 100", cfg.Embedding.TokensPerWord)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
benchmark:
  num_documents: 50
  num_queries: 20
elasticsearch:
  host: "127.0.0.1"
  port: 9300
cost:
  embedding_cost_per_1k: 0.0002
  vector_time_multiplier: 0.00005
log:
  level: warn
  format: json
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Benchmark.NumDocuments != 50 {
		t.Errorf("Benchmark.NumDocuments = %d, want 50", cfg.Benchmark.NumDocuments)
	}

	if cfg.Elasticsearch.Port != 9300 {
		t.Errorf("Elasticsearch.Port = %d, want 9300", cfg.Elasticsearch.Port)
	}

	if cfg.Cost.EmbeddingPer1K != 0.0002 {
		t.Errorf("Cost.EmbeddingPer1K = %v, want 0.0002", cfg.Cost.EmbeddingPer1K)
	}

	if cfg.Cost.VectorTimeMultiplier != 0.00005 {
		t.Errorf("Cost.VectorTimeMultiplier = %v, want 0.00005", cfg.Cost.VectorTimeMultiplier)
	}

	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %s, want warn", cfg.Log.Level)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:    "negative embedding rate",
			modify:  func(c *Config) { c.Cost.EmbeddingPer1K = -0.1 },
			wantErr: "embedding_cost_per_1k cannot be negative",
		},
		{
			name:    "zero top_k",
			modify:  func(c *Config) { c.Benchmark.TopK = 0 },
			wantErr: "top_k must be positive",
		},
		{
			name:    "bad scoring provider",
			modify:  func(c *Config) { c.Scoring.Provider = "magic" },
			wantErr: "invalid scoring provider",
		},
		{
			name:    "bad results type",
			modify:  func(c *Config) { c.Results.Type = "s3" },
			wantErr: "invalid results type",
		},
		{
			name:    "bad bus type",
			modify:  func(c *Config) { c.Bus.Type = "nats" },
			wantErr: "invalid bus type",
		},
		{
			name:    "bad log level",
			modify:  func(c *Config) { c.Log.Level = "trace" },
			wantErr: "invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			setDefaults(cfg)
			tt.modify(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestAddresses(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	if got := cfg.Elasticsearch.Address(); got != "http://localhost:9200" {
		t.Errorf("Elasticsearch.Address() = %s, want http://localhost:9200", got)
	}

	if got := cfg.Dashboard.Address(); got != "0.0.0.0:8080" {
		t.Errorf("Dashboard.Address() = %s, want 0.0.0.0:8080", got)
	}
}
