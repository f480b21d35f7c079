package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nmrocha/munirag-go/internal/adapters/embedding"
	"github.com/nmrocha/munirag-go/internal/adapters/filewatcher"
	"github.com/nmrocha/munirag-go/internal/adapters/llm"
	"github.com/nmrocha/munirag-go/internal/adapters/loader"
	"github.com/nmrocha/munirag-go/internal/adapters/parser"
	"github.com/nmrocha/munirag-go/internal/adapters/vectordb"
	"github.com/nmrocha/munirag-go/internal/config"
	"github.com/nmrocha/munirag-go/internal/domain/entities"
	"github.com/nmrocha/munirag-go/internal/domain/usecases"
	httpserver "github.com/nmrocha/munirag-go/internal/infrastructure/http"
	"github.com/nmrocha/munirag-go/internal/logger"
)

func main() {
	// .env is optional; real config comes from the YAML file.
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("loading config: %v", err)
		os.Exit(1)
	}
	logger.Init(cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Adapters.
	docSource := loader.NewDirectoryLoader(
		parser.NewPDFExtractor(),
		parser.NewPlainTextExtractor(),
	)
	embedder := embedding.NewOllamaAdapter(
		cfg.Ollama.BaseURL,
		cfg.Ollama.EmbedModel,
		time.Duration(cfg.Ollama.TimeoutSecs)*time.Second,
	)
	model := llm.NewOllamaAdapter(
		cfg.Ollama.BaseURL,
		cfg.Ollama.LLMModel,
		time.Duration(cfg.Ollama.LLMTimeoutSecs)*time.Second,
		cfg.Ollama.MaxRetries,
	)
	store, err := vectordb.NewSQLiteStore(cfg.VectorStoreDir)
	if err != nil {
		logger.Error("opening vector store: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	// Pipeline.
	chunker := usecases.NewChunker(cfg.Pipeline.ChunkSize, cfg.Pipeline.ChunkOverlap)
	builder := usecases.NewBuilder(embedder, chunker)
	retriever := usecases.NewRetriever(embedder, cfg.Pipeline.TopK, cfg.Pipeline.MinScore)
	assembler := usecases.NewAssembler(cfg.Pipeline.MaxContextChars)
	orch := usecases.NewOrchestrator(
		docSource, builder, retriever, assembler, model, store,
		cfg.DocumentsDir, cfg.Server.MaxConcurrentAnswers,
	)

	// Restore the persisted generation so a restart answers immediately;
	// otherwise build from the documents directory.
	restored, err := orch.Restore(ctx)
	if err != nil {
		logger.Warn("restore failed, rebuilding: %v", err)
	}
	if !restored {
		if err := orch.Reload(ctx); err != nil {
			if errors.Is(err, entities.ErrEmptyCorpus) {
				logger.Warn("no documents in %s, starting not ready", cfg.DocumentsDir)
			} else {
				logger.Error("initial build failed, starting not ready: %v", err)
			}
		}
	}

	// Watch the documents directory and reload automatically.
	if cfg.WatchDocuments {
		watcher, err := filewatcher.NewFSNotifyWatcher(nil)
		if err != nil {
			logger.Warn("file watcher unavailable: %v", err)
		} else {
			defer watcher.Stop()
			changes, err := watcher.Watch(ctx, cfg.DocumentsDir)
			if err != nil {
				logger.Warn("watching %s: %v", cfg.DocumentsDir, err)
			} else {
				go filewatcher.TriggerReloads(ctx, changes, 2*time.Second, orch.Reload)
			}
		}
	}

	server := httpserver.NewServer(orch, cfg.Server.Addr)
	if err := server.Start(ctx); err != nil {
		logger.Error("server: %v", err)
		os.Exit(1)
	}
}
