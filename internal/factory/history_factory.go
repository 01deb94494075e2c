package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mikey/llm-mail-triage/internal/adapters/history"
	"github.com/mikey/llm-mail-triage/internal/config"
	"github.com/mikey/llm-mail-triage/internal/core"
	"go.uber.org/zap"
)

// HistoryFactory creates sender history stores based on configuration
type HistoryFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewHistoryFactory creates a new history factory
func NewHistoryFactory(cfg *config.Config, logger *zap.Logger) *HistoryFactory {
	return &HistoryFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateHistoryStore creates a history store based on the configuration
func (f *HistoryFactory) CreateHistoryStore() (core.HistoryStore, error) {
	historyCfg := f.cfg.GetHistory()

	switch historyCfg.Type {
	case "memory":
		return history.NewMemoryStore(f.logger), nil
	case "sqlite":
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(historyCfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return history.NewSQLiteStore(historyCfg.SQLitePath, f.logger)
	case "mysql":
		return history.NewMySQLStore(historyCfg.MySQLDSN, f.logger)
	default:
		return nil, fmt.Errorf("unsupported history store type: %s", historyCfg.Type)
	}
}

// IsHistoryEnabled returns whether sender history recording is enabled
func (f *HistoryFactory) IsHistoryEnabled() bool {
	return f.cfg.GetBool("history.enabled")
}
