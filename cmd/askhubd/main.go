// Command askhubd serves the knowledge-base API and keeps the vector
// index in sync with the configured remote folder.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/askhub-ai/askhub/internal/adapters/driven/drive"
	openaiembed "github.com/askhub-ai/askhub/internal/adapters/driven/embedding/openai"
	openaillm "github.com/askhub-ai/askhub/internal/adapters/driven/llm/openai"
	statefile "github.com/askhub-ai/askhub/internal/adapters/driven/state/file"
	"github.com/askhub-ai/askhub/internal/adapters/driven/vector/pinecone"
	"github.com/askhub-ai/askhub/internal/adapters/driving/httpapi"
	"github.com/askhub-ai/askhub/internal/config"
	"github.com/askhub-ai/askhub/internal/core/services"
	"github.com/askhub-ai/askhub/internal/loaders"
	"github.com/askhub-ai/askhub/internal/logger"
	"github.com/askhub-ai/askhub/internal/textproc"
)

func main() {
	if err := run(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	if cfg.Env == "dev" {
		logger.SetVerbose(true)
	}
	logger.Info("%s starting", cfg.AppName)

	// The answering path cannot degrade gracefully; refuse to start
	// without its collaborators.
	if cfg.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if cfg.PineconeAPIKey == "" || cfg.PineconeIndexHost == "" {
		return fmt.Errorf("PINECONE_API_KEY and PINECONE_INDEX_HOST are required")
	}

	embedder, err := openaiembed.New(openaiembed.Config{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.EmbedModel,
	})
	if err != nil {
		return fmt.Errorf("embedding client: %w", err)
	}
	llm, err := openaillm.New(openaillm.Config{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.ChatModel,
	})
	if err != nil {
		return fmt.Errorf("llm client: %w", err)
	}
	index, err := pinecone.New(pinecone.Config{
		APIKey:    cfg.PineconeAPIKey,
		IndexHost: cfg.PineconeIndexHost,
	})
	if err != nil {
		return fmt.Errorf("vector index: %w", err)
	}

	chunker, err := textproc.NewChunker(textproc.ChunkerConfig{})
	if err != nil {
		return fmt.Errorf("chunker: %w", err)
	}

	ingester := services.NewIngestService(
		services.IngestConfig{
			FolderID:   cfg.DriveFolderID,
			StagingDir: cfg.StagingDir(),
		},
		drive.NewConnector(cfg.ServiceAccountJSON),
		loaders.NewRegistry(),
		chunker,
		embedder,
		index,
		statefile.New(cfg.StatePath()),
	)
	answerer := services.NewAnswerService(
		services.AnswerConfig{TopK: cfg.TopK, MinScore: cfg.MinScore},
		embedder, index, llm,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := services.NewScheduler(
		time.Duration(cfg.PollIntervalMinutes)*time.Minute, ingester)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	server := httpapi.NewServer(httpapi.Config{
		AppName:            cfg.AppName,
		Addr:               net.JoinHostPort("", cfg.Port),
		AllowOrigins:       cfg.AllowOrigins,
		EmbedModel:         embedder.ModelName(),
		PineconeIndex:      cfg.PineconeIndexName,
		OpenAIConfigured:   cfg.OpenAIAPIKey != "",
		PineconeConfigured: cfg.PineconeAPIKey != "" && cfg.PineconeIndexHost != "",
		DriveConfigured:    cfg.ServiceAccountJSON != "" && cfg.DriveFolderID != "",
	}, answerer, ingester)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("received %s, shutting down", sig)
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("bye")
	return nil
}
