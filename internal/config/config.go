// Package config loads and validates the service configuration.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// OllamaConfig holds connection details for the Ollama backend.
type OllamaConfig struct {
	BaseURL        string `yaml:"base_url"`
	EmbedModel     string `yaml:"embed_model"`
	LLMModel       string `yaml:"llm_model"`
	TimeoutSecs    int    `yaml:"timeout_secs"`
	LLMTimeoutSecs int    `yaml:"llm_timeout_secs"`
	MaxRetries     int    `yaml:"max_retries"`
}

// PipelineConfig configures chunking, retrieval and context assembly.
type PipelineConfig struct {
	ChunkSize       int     `yaml:"chunk_size"`
	ChunkOverlap    int     `yaml:"chunk_overlap"`
	TopK            int     `yaml:"top_k"`
	MinScore        float64 `yaml:"min_score"`
	MaxContextChars int     `yaml:"max_context_chars"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr                 string `yaml:"addr"`
	MaxConcurrentAnswers int    `yaml:"max_concurrent_answers"`
}

// Config is the root application configuration.
type Config struct {
	DocumentsDir   string         `yaml:"documents_dir"`
	VectorStoreDir string         `yaml:"vector_store_dir"`
	WatchDocuments bool           `yaml:"watch_documents"`
	Debug          bool           `yaml:"debug"`
	Ollama         OllamaConfig   `yaml:"ollama"`
	Pipeline       PipelineConfig `yaml:"pipeline"`
	Server         ServerConfig   `yaml:"server"`
}

// Load reads a config from path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the documented default configuration.
func Default() *Config {
	return &Config{
		DocumentsDir:   "./documents",
		VectorStoreDir: "./vector_store",
		WatchDocuments: true,
		Ollama: OllamaConfig{
			BaseURL:        "http://localhost:11434",
			EmbedModel:     "nomic-embed-text",
			LLMModel:       "llama2:latest",
			TimeoutSecs:    60,
			LLMTimeoutSecs: 300,
			MaxRetries:     1,
		},
		Pipeline: PipelineConfig{
			ChunkSize:       1000,
			ChunkOverlap:    200,
			TopK:            5,
			MinScore:        0.3,
			MaxContextChars: 12000,
		},
		Server: ServerConfig{
			Addr:                 ":8080",
			MaxConcurrentAnswers: 4,
		},
	}
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.DocumentsDir == "" {
		cfg.DocumentsDir = def.DocumentsDir
	}
	if cfg.VectorStoreDir == "" {
		cfg.VectorStoreDir = def.VectorStoreDir
	}
	if cfg.Ollama.BaseURL == "" {
		cfg.Ollama.BaseURL = def.Ollama.BaseURL
	}
	if cfg.Ollama.EmbedModel == "" {
		cfg.Ollama.EmbedModel = def.Ollama.EmbedModel
	}
	if cfg.Ollama.LLMModel == "" {
		cfg.Ollama.LLMModel = def.Ollama.LLMModel
	}
	if cfg.Ollama.TimeoutSecs == 0 {
		cfg.Ollama.TimeoutSecs = def.Ollama.TimeoutSecs
	}
	if cfg.Ollama.LLMTimeoutSecs == 0 {
		cfg.Ollama.LLMTimeoutSecs = def.Ollama.LLMTimeoutSecs
	}
	if cfg.Pipeline.ChunkSize == 0 {
		cfg.Pipeline.ChunkSize = def.Pipeline.ChunkSize
	}
	if cfg.Pipeline.TopK == 0 {
		cfg.Pipeline.TopK = def.Pipeline.TopK
	}
	if cfg.Pipeline.MinScore == 0 {
		cfg.Pipeline.MinScore = def.Pipeline.MinScore
	}
	if cfg.Pipeline.MaxContextChars == 0 {
		cfg.Pipeline.MaxContextChars = def.Pipeline.MaxContextChars
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
	if cfg.Server.MaxConcurrentAnswers == 0 {
		cfg.Server.MaxConcurrentAnswers = def.Server.MaxConcurrentAnswers
	}
}

// Validate checks the configuration invariants.
func (c *Config) Validate() error {
	if c.Pipeline.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.Pipeline.ChunkSize)
	}
	if c.Pipeline.ChunkOverlap < 0 {
		return fmt.Errorf("chunk_overlap must not be negative, got %d", c.Pipeline.ChunkOverlap)
	}
	if c.Pipeline.ChunkOverlap >= c.Pipeline.ChunkSize {
		return fmt.Errorf("chunk_overlap (%d) must be strictly less than chunk_size (%d)",
			c.Pipeline.ChunkOverlap, c.Pipeline.ChunkSize)
	}
	if c.Pipeline.TopK <= 0 {
		return fmt.Errorf("top_k must be positive, got %d", c.Pipeline.TopK)
	}
	if c.Pipeline.MaxContextChars <= 0 {
		return fmt.Errorf("max_context_chars must be positive, got %d", c.Pipeline.MaxContextChars)
	}
	if c.Server.MaxConcurrentAnswers <= 0 {
		return fmt.Errorf("max_concurrent_answers must be positive, got %d", c.Server.MaxConcurrentAnswers)
	}
	return nil
}
