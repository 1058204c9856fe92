// Package config handles configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	// Benchmark configuration
	Benchmark BenchmarkConfig `yaml:"benchmark"`

	// Elasticsearch configuration
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`

	// Qdrant configuration
	Qdrant QdrantConfig `yaml:"qdrant"`

	// Embedding configuration
	Embedding EmbeddingConfig `yaml:"embedding"`

	// Scoring configuration
	Scoring ScoringConfig `yaml:"scoring"`

	// Cost configuration
	Cost CostConfig `yaml:"cost"`

	// Results configuration
	Results ResultsConfig `yaml:"results"`

	// Bus configuration
	Bus BusConfig `yaml:"bus"`

	// Dashboard configuration
	Dashboard DashboardConfig `yaml:"dashboard"`

	// Logging configuration
	Log LogConfig `yaml:"log"`
}

// BenchmarkConfig holds benchmark run settings.
type BenchmarkConfig struct {
	NumDocuments int `envconfig:"ROI_NUM_DOCUMENTS" yaml:"num_documents"`
	NumQueries   int `envconfig:"ROI_NUM_QUERIES" yaml:"num_queries"`

	// TopK is the per-backend result limit during benchmarking.
	TopK int `envconfig:"ROI_TOP_K" yaml:"top_k"`

	// HybridLimit caps the fused hybrid result list.
	HybridLimit int `envconfig:"ROI_HYBRID_LIMIT" yaml:"hybrid_limit"`
}

// ElasticsearchConfig holds Elasticsearch connection settings.
type ElasticsearchConfig struct {
	Host      string `envconfig:"ELASTICSEARCH_HOST" yaml:"host"`
	Port      int    `envconfig:"ELASTICSEARCH_PORT" yaml:"port"`
	IndexName string `envconfig:"ROI_ES_INDEX" yaml:"index_name"`
}

// Address returns the Elasticsearch HTTP address.
func (c ElasticsearchConfig) Address() string {
	return fmt.Sprintf("http://%s:%d", c.Host, c.Port)
}

// QdrantConfig holds Qdrant connection settings.
type QdrantConfig struct {
	Host           string `envconfig:"QDRANT_HOST" yaml:"host"`
	Port           int    `envconfig:"QDRANT_PORT" yaml:"port"`
	CollectionName string `envconfig:"ROI_QDRANT_COLLECTION" yaml:"collection_name"`
	VectorSize     int    `envconfig:"ROI_VECTOR_SIZE" yaml:"vector_size"`
}

// EmbeddingConfig holds embedding service settings.
type EmbeddingConfig struct {
	APIKey  string `envconfig:"OPENAI_API_KEY" yaml:"api_key"`
	BaseURL string `envconfig:"ROI_EMBEDDING_BASE_URL" yaml:"base_url"`
	Model   string `envconfig:"ROI_EMBEDDING_MODEL" yaml:"model"`

	// RequestsPerSecond throttles embedding API calls. 0 disables throttling.
	RequestsPerSecond float64 `envconfig:"ROI_EMBEDDING_RPS" yaml:"requests_per_second"`

	// TokensPerWord is the token-count heuristic for query cost estimation.
	TokensPerWord int `envconfig:"ROI_TOKENS_PER_WORD" yaml:"tokens_per_word"`
}

// ScoringConfig holds accuracy scoring settings.
type ScoringConfig struct {
	// Provider selects the scoring capability: "llm" or "overlap".
	Provider string `envconfig:"ROI_SCORING_PROVIDER" yaml:"provider"`
	Model    string `envconfig:"ROI_SCORING_MODEL" yaml:"model"`
}

// CostConfig holds simulated pricing rates.
type CostConfig struct {
	EmbeddingPer1K        float64 `envconfig:"EMBEDDING_COST_PER_1K" yaml:"embedding_cost_per_1k"`
	VectorPerQuery        float64 `envconfig:"VECTOR_DB_COST_PER_QUERY" yaml:"vector_db_cost_per_query"`
	LexicalPerQuery       float64 `envconfig:"LEXICAL_DB_COST_PER_QUERY" yaml:"lexical_db_cost_per_query"`
	VectorTimeMultiplier  float64 `envconfig:"ROI_VECTOR_TIME_MULTIPLIER" yaml:"vector_time_multiplier"`
	LexicalTimeMultiplier float64 `envconfig:"ROI_LEXICAL_TIME_MULTIPLIER" yaml:"lexical_time_multiplier"`
}

// ResultsConfig holds result storage settings.
type ResultsConfig struct {
	// Type selects the storage backend: "file", "memory", or "redis".
	Type     string `envconfig:"ROI_RESULTS_TYPE" yaml:"type"`
	Dir      string `envconfig:"ROI_RESULTS_DIR" yaml:"dir"`
	RedisURL string `envconfig:"ROI_REDIS_URL" yaml:"redis_url"`
}

// BusConfig holds event bus settings.
type BusConfig struct {
	Type         string `envconfig:"ROI_BUS_TYPE" yaml:"type"`
	KafkaBrokers string `envconfig:"ROI_KAFKA_BROKERS" yaml:"kafka_brokers"`
}

// DashboardConfig holds dashboard server settings.
type DashboardConfig struct {
	Host string `envconfig:"ROI_DASHBOARD_HOST" yaml:"host"`
	Port int    `envconfig:"ROI_DASHBOARD_PORT" yaml:"port"`
}

// Address returns the dashboard listen address.
func (c DashboardConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `envconfig:"ROI_LOG_LEVEL" yaml:"level"`
	Format string `envconfig:"ROI_LOG_FORMAT" yaml:"format"`
}

// Load loads configuration from environment variables and optional config file.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	// Set defaults first
	setDefaults(cfg)

	// Load from YAML file if provided (overrides defaults)
	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	// Override with environment variables (highest priority)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("processing env config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables only.
func LoadFromEnv() (*Config, error) {
	return Load("")
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

func setDefaults(cfg *Config) {
	cfg.Benchmark = BenchmarkConfig{
		NumDocuments: 100,
		NumQueries:   100,
		TopK:         5,
		HybridLimit:  10,
	}

	cfg.Elasticsearch = ElasticsearchConfig{
		Host:      "localhost",
		Port:      9200,
		IndexName: "search_benchmark",
	}

	cfg.Qdrant = QdrantConfig{
		Host:           "localhost",
		Port:           6334,
		CollectionName: "search_benchmark",
		VectorSize:     1536,
	}

	cfg.Embedding = EmbeddingConfig{
		Model:             "text-embedding-ada-002",
		RequestsPerSecond: 10,
		TokensPerWord:     100,
	}

	cfg.Scoring = ScoringConfig{
		Provider: "overlap",
		Model:    "gpt-3.5-turbo",
	}

	cfg.Cost = CostConfig{
		EmbeddingPer1K:        0.0001,
		VectorPerQuery:        0.00001,
		LexicalPerQuery:       0.000001,
		VectorTimeMultiplier:  0.00001,
		LexicalTimeMultiplier: 0.000001,
	}

	cfg.Results = ResultsConfig{
		Type:     "file",
		Dir:      "./data",
		RedisURL: "redis://localhost:6379",
	}

	cfg.Bus = BusConfig{
		Type: "memory",
	}

	cfg.Dashboard = DashboardConfig{
		Host: "0.0.0.0",
		Port: 8080,
	}

	cfg.Log = LogConfig{
		Level:  "info",
		Format: "text",
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []string

	if c.Benchmark.NumDocuments < 1 {
		errs = append(errs, "num_documents must be positive")
	}

	if c.Benchmark.NumQueries < 0 {
		errs = append(errs, "num_queries cannot be negative")
	}

	if c.Benchmark.TopK < 1 {
		errs = append(errs, "top_k must be positive")
	}

	if c.Benchmark.HybridLimit < 1 {
		errs = append(errs, "hybrid_limit must be positive")
	}

	if c.Elasticsearch.Port < 1 || c.Elasticsearch.Port > 65535 {
		errs = append(errs, "elasticsearch port must be between 1 and 65535")
	}

	if c.Qdrant.Port < 1 || c.Qdrant.Port > 65535 {
		errs = append(errs, "qdrant port must be between 1 and 65535")
	}

	if c.Qdrant.VectorSize < 1 {
		errs = append(errs, "vector_size must be positive")
	}

	if c.Embedding.TokensPerWord < 1 {
		errs = append(errs, "tokens_per_word must be positive")
	}

	if c.Embedding.RequestsPerSecond < 0 {
		errs = append(errs, "requests_per_second cannot be negative")
	}

	validProviders := map[string]bool{"llm": true, "overlap": true}
	if !validProviders[c.Scoring.Provider] {
		errs = append(errs, fmt.Sprintf("invalid scoring provider: %s (must be llm or overlap)", c.Scoring.Provider))
	}

	for name, rate := range map[string]float64{
		"embedding_cost_per_1k":     c.Cost.EmbeddingPer1K,
		"vector_db_cost_per_query":  c.Cost.VectorPerQuery,
		"lexical_db_cost_per_query": c.Cost.LexicalPerQuery,
		"vector_time_multiplier":    c.Cost.VectorTimeMultiplier,
		"lexical_time_multiplier":   c.Cost.LexicalTimeMultiplier,
	} {
		if rate < 0 {
			errs = append(errs, fmt.Sprintf("%s cannot be negative", name))
		}
	}

	validResultsTypes := map[string]bool{"file": true, "memory": true, "redis": true}
	if !validResultsTypes[c.Results.Type] {
		errs = append(errs, fmt.Sprintf("invalid results type: %s (must be file, memory, or redis)", c.Results.Type))
	}

	validBusTypes := map[string]bool{"memory": true, "kafka": true, "none": true}
	if !validBusTypes[c.Bus.Type] {
		errs = append(errs, fmt.Sprintf("invalid bus type: %s (must be memory, kafka, or none)", c.Bus.Type))
	}

	if c.Dashboard.Port < 1 || c.Dashboard.Port > 65535 {
		errs = append(errs, "dashboard port must be between 1 and 65535")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("invalid log format: %s (must be text or json)", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
