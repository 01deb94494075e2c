package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mikey/llm-mail-triage/internal/core"
	"github.com/mikey/llm-mail-triage/internal/di"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	orchestrator *core.Orchestrator,
	llmClient core.LLMClient,
	history core.HistoryStore,
) error {
	defer logger.Sync()

	result, err := orchestrator.Run(context.Background())

	// Close any resources that need closing
	if closer, ok := llmClient.(interface{ Close() error }); ok {
		if cerr := closer.Close(); cerr != nil {
			logger.Error("Failed to close LLM client", zap.Error(cerr))
		}
	}
	if closer, ok := history.(interface{ Close() error }); ok {
		if cerr := closer.Close(); cerr != nil {
			logger.Error("Failed to close history store", zap.Error(cerr))
		}
	}

	if err != nil {
		return err
	}

	logger.Info("Triage finished",
		zap.Int("processed", result.Processed),
		zap.Int("listed", result.TotalListed()),
		zap.Int("errors", len(result.Errors)))
	return nil
}
