package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/llm-mail-triage/internal/adapters/report"
	"github.com/mikey/llm-mail-triage/internal/config"
	"github.com/mikey/llm-mail-triage/internal/core"
	"github.com/mikey/llm-mail-triage/internal/factory"
	"github.com/mikey/llm-mail-triage/internal/logging"
	"github.com/mikey/llm-mail-triage/internal/utils"
	"github.com/mikey/llm-mail-triage/internal/whitelist"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewHistoryFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewMailStoreFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}

	// Register LLM client
	if err := container.Provide(func(f *factory.LLMFactory) (core.LLMClient, error) {
		return f.CreateLLMClient()
	}); err != nil {
		return nil, err
	}

	// Register mail store
	if err := container.Provide(func(f *factory.MailStoreFactory) (core.MailStore, error) {
		return f.CreateMailStore()
	}); err != nil {
		return nil, err
	}

	// Register history store
	if err := container.Provide(func(f *factory.HistoryFactory) (core.HistoryStore, error) {
		return f.CreateHistoryStore()
	}); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register run mode
	if err := container.Provide(func(cfg *config.Config) core.RunMode {
		return core.ParseRunMode(cfg.GetRun().Mode)
	}); err != nil {
		return nil, err
	}

	// Register retention policy configuration
	if err := container.Provide(func(cfg *config.Config) core.PolicyConfig {
		aging := cfg.GetAging()
		return core.PolicyConfig{
			Financial: core.AgingThresholds{
				WarningDays: aging.FinancialWarningDays,
				ArchiveDays: aging.FinancialArchiveDays,
			},
			Purchases: core.AgingThresholds{
				WarningDays: aging.PurchasesWarningDays,
				ArchiveDays: aging.PurchasesArchiveDays,
			},
			PurchasesAging: aging.PurchasesPolicy == "age",
		}
	}); err != nil {
		return nil, err
	}

	// Register classification gateway
	if err := container.Provide(func(llm core.LLMClient, tp *utils.TextProcessor, cfg *config.Config, logger *zap.Logger) *core.ClassificationGateway {
		return core.NewClassificationGateway(llm, tp, providerMaxBodySize(cfg), logger)
	}); err != nil {
		return nil, err
	}

	// Register protected-domain checker
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *whitelist.Checker {
		return whitelist.NewChecker(cfg.GetStringSlice("triage.protected_domains"), logger)
	}); err != nil {
		return nil, err
	}

	// Register decision engine components
	if err := container.Provide(core.NewRetentionEngine); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewLabelManager); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewDigestSummarizer); err != nil {
		return nil, err
	}

	// Register report renderer
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (core.Renderer, error) {
		return report.NewHTMLRenderer(cfg.GetReport().SubjectMarker, logger)
	}); err != nil {
		return nil, err
	}

	// Register orchestrator configuration
	if err := container.Provide(func(cfg *config.Config, f *factory.HistoryFactory) core.OrchestratorConfig {
		run := cfg.GetRun()
		rep := cfg.GetReport()
		return core.OrchestratorConfig{
			Mode:            core.ParseRunMode(run.Mode),
			Limit:           run.Limit,
			FetchMax:        run.FetchMax,
			ReportRecipient: rep.Recipient,
			ReportSender:    rep.Sender,
			SubjectMarker:   rep.SubjectMarker,
			HistoryEnabled:  f.IsHistoryEnabled(),
		}
	}); err != nil {
		return nil, err
	}

	// Register orchestrator
	if err := container.Provide(core.NewOrchestrator); err != nil {
		return nil, err
	}

	return container, nil
}

// providerMaxBodySize returns the active provider's body cap
func providerMaxBodySize(cfg *config.Config) int {
	switch cfg.GetLLM().Provider {
	case "bedrock":
		return cfg.GetBedrock().MaxBodySize
	case "gemini":
		return cfg.GetGemini().MaxBodySize
	default:
		return cfg.GetOpenAI().MaxBodySize
	}
}
