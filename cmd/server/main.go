// Package main implements the entry point for the cardforge server, which
// turns uploaded documents into validated flashcard decks using a local or
// hosted LLM.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"cardforge/internal/api"
	"cardforge/internal/chunker"
	"cardforge/internal/config"
	"cardforge/internal/deck"
	"cardforge/internal/export"
	"cardforge/internal/generation"
	"cardforge/internal/ingest"
	"cardforge/internal/pipeline"
	"cardforge/internal/platform/gemini"
	"cardforge/internal/platform/lmstudio"
	"cardforge/internal/platform/logger"
	"cardforge/internal/platform/postgres"
	"cardforge/internal/task"
	"cardforge/internal/token"
	"cardforge/internal/validation"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"llm_provider", cfg.LLM.Provider,
		"chunking_strategy", cfg.Chunking.Strategy)

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := postgres.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	sourceStore := postgres.NewSourceStore(db, appLogger)
	chunkStore := postgres.NewChunkStore(db, appLogger)
	deckStore := postgres.NewDeckStore(db, appLogger)

	pipe, err := buildPipeline(ctx, cfg, appLogger)
	if err != nil {
		return err
	}

	sourceService, err := task.NewSourceService(sourceStore)
	if err != nil {
		return fmt.Errorf("failed to build source service: %w", err)
	}
	saver, err := task.NewResultSaver(db, chunkStore, deckStore, appLogger)
	if err != nil {
		return fmt.Errorf("failed to build result saver: %w", err)
	}
	factory := task.NewSourceGenerationTaskFactory(sourceService, pipe, saver, appLogger)

	queue := task.NewTaskQueue(cfg.Task.QueueSize, appLogger)
	pool := task.NewWorkerPool(queue, task.WorkerPoolConfig{WorkerCount: cfg.Task.WorkerCount}, appLogger)
	pool.Start()
	defer pool.Stop()

	loader, err := ingest.NewLoader(ingest.NewCleaner(cfg.Cleaner), appLogger)
	if err != nil {
		return fmt.Errorf("failed to build ingest loader: %w", err)
	}

	sourceHandler := api.NewSourceHandler(sourceStore, loader, factory, queue, appLogger)
	deckHandler := api.NewDeckHandler(deckStore, export.NewExporter(cfg.Export), appLogger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewRouter(sourceHandler, deckHandler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLogger.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	appLogger.Info("shutting down")
	queue.Close()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("server shutdown failed", "error", err)
		return err
	}

	appLogger.Info("server stopped")
	return nil
}

// buildPipeline assembles the generation pipeline from configuration:
// token counter, chunker, LLM client, validator and assembler.
func buildPipeline(ctx context.Context, cfg *config.Config, appLogger *slog.Logger) (*pipeline.Pipeline, error) {
	counter := token.NewCounter(cfg.Chunking.Encoding, appLogger)

	strategy, err := chunker.ParseStrategy(cfg.Chunking.Strategy)
	if err != nil {
		return nil, fmt.Errorf("invalid chunking strategy: %w", err)
	}

	splitter, err := chunker.New(chunker.Config{
		MaxTokens:     cfg.Chunking.MaxTokens,
		OverlapTokens: cfg.Chunking.OverlapTokens,
		Strategy:      strategy,
	}, counter)
	if err != nil {
		return nil, fmt.Errorf("failed to build chunker: %w", err)
	}

	prompts, err := generation.NewPromptBuilder(
		cfg.LLM.PromptTemplatePath,
		cfg.Validation.MaxCardsPerChunk,
		"",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt builder: %w", err)
	}

	completer, err := buildCompleter(ctx, cfg, appLogger)
	if err != nil {
		return nil, err
	}

	generator, err := generation.NewCardGenerator(appLogger, prompts, completer)
	if err != nil {
		return nil, fmt.Errorf("failed to build card generator: %w", err)
	}

	validator, err := validation.New(validation.Config{
		MinCardLength:    cfg.Validation.MinCardLength,
		MaxCardLength:    cfg.Validation.MaxCardLength,
		MaxCardsPerChunk: cfg.Validation.MaxCardsPerChunk,
		LanguageCheck:    cfg.Validation.LanguageCheck,
	}, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to build validator: %w", err)
	}

	assembler, err := deck.NewAssembler(appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to build assembler: %w", err)
	}

	pipe, err := pipeline.New(appLogger, splitter, generator, validator, assembler, cfg.Pipeline.Concurrency)
	if err != nil {
		return nil, fmt.Errorf("failed to build pipeline: %w", err)
	}
	return pipe, nil
}

// buildCompleter selects the LLM backend based on configuration.
func buildCompleter(ctx context.Context, cfg *config.Config, appLogger *slog.Logger) (generation.TextCompleter, error) {
	switch cfg.LLM.Provider {
	case "gemini":
		client, err := gemini.New(ctx, appLogger, cfg.LLM)
		if err != nil {
			return nil, fmt.Errorf("failed to build gemini client: %w", err)
		}
		return client, nil
	default:
		client, err := lmstudio.New(appLogger, cfg.LLM)
		if err != nil {
			return nil, fmt.Errorf("failed to build lmstudio client: %w", err)
		}
		return client, nil
	}
}
