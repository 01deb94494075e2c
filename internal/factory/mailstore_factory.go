package factory

import (
	"context"
	"fmt"

	"github.com/mikey/llm-mail-triage/internal/adapters/gmail"
	"github.com/mikey/llm-mail-triage/internal/config"
	"github.com/mikey/llm-mail-triage/internal/core"
	"go.uber.org/zap"
)

// MailStoreFactory creates the mail store the engine triages
type MailStoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewMailStoreFactory creates a new mail store factory
func NewMailStoreFactory(cfg *config.Config, logger *zap.Logger) *MailStoreFactory {
	return &MailStoreFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateMailStore creates a Gmail-backed mail store
func (f *MailStoreFactory) CreateMailStore() (core.MailStore, error) {
	gmailCfg := f.cfg.GetGmail()

	svc, err := gmail.NewService(context.Background(), gmailCfg.CredentialsPath, gmailCfg.TokenPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return gmail.NewStore(svc, gmailCfg.User, gmailCfg.Query, f.logger), nil
}
