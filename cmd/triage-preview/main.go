package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mikey/llm-mail-triage/internal/adapters/report"
	"github.com/mikey/llm-mail-triage/internal/config"
	"github.com/mikey/llm-mail-triage/internal/core"
	"github.com/mikey/llm-mail-triage/internal/factory"
	"github.com/mikey/llm-mail-triage/internal/logging"
	"github.com/mikey/llm-mail-triage/internal/whitelist"
	"go.uber.org/zap"
)

var (
	// LLM provider flags
	provider    = flag.String("provider", "openai", "LLM provider (bedrock, gemini, openai)")
	maxTokens   = flag.Int("max-tokens", 1000, "Maximum tokens for LLM response")
	temperature = flag.Float64("temperature", 0.1, "Temperature for LLM generation")
	topP        = flag.Float64("top-p", 0.9, "Top-p for LLM generation")
	maxBodySize = flag.Int("max-body-size", 4096, "Maximum email body size to send to LLM")

	// Bedrock flags
	bedrockRegion  = flag.String("bedrock-region", "us-east-1", "AWS region for Bedrock")
	bedrockModelID = flag.String("bedrock-model", "anthropic.claude-v2", "Bedrock model ID")

	// Gemini flags
	geminiAPIKey    = flag.String("gemini-api-key", "", "API key for Google Gemini")
	geminiModelName = flag.String("gemini-model", "gemini-pro", "Gemini model name")

	// OpenAI flags
	openaiAPIKey    = flag.String("openai-api-key", "", "API key for OpenAI")
	openaiModelName = flag.String("openai-model", "gpt-4o-mini", "OpenAI model name")

	// Mailbox flags
	credentialsPath = flag.String("credentials", "credentials.json", "Path to OAuth credentials file")
	tokenPath       = flag.String("token", "token.json", "Path to OAuth token file")
	gmailQuery      = flag.String("query", "in:inbox", "Mailbox query for the fetch step")

	// Run flags
	runMode  = flag.String("mode", "preview", "Run mode (preview, limited, full)")
	runLimit = flag.Int("limit", 10, "Batch cap in limited mode")
	fetchMax = flag.Int64("fetch-max", 50, "Maximum messages to fetch")

	// Output flags
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile = flag.String("config", "", "Path to config file (overrides command line flags)")
)

func main() {
	flag.Parse()

	var cfg *config.Config
	var err error

	// Initialize logger
	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Load configuration from file if specified
	if *configFile != "" {
		cfg, err = config.New()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
	} else {
		// Create config from command line flags
		cfg = createConfigFromFlags()
	}

	// Initialize LLM client
	llmFactory := factory.NewLLMFactory(cfg, logger)
	llmClient, err := llmFactory.CreateLLMClient()
	if err != nil {
		logger.Fatal("Failed to create LLM client", zap.Error(err))
	}

	// Initialize mail store
	storeFactory := factory.NewMailStoreFactory(cfg, logger)
	mailStore, err := storeFactory.CreateMailStore()
	if err != nil {
		logger.Fatal("Failed to create mail store", zap.Error(err))
	}

	// Initialize history store
	historyFactory := factory.NewHistoryFactory(cfg, logger)
	historyStore, err := historyFactory.CreateHistoryStore()
	if err != nil {
		logger.Fatal("Failed to create history store", zap.Error(err))
	}

	textFactory := factory.NewTextProcessorFactory(logger)
	textProcessor := textFactory.CreateTextProcessor()

	mode := core.ParseRunMode(cfg.GetRun().Mode)
	aging := cfg.GetAging()
	policyCfg := core.PolicyConfig{
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

	protectedChecker := whitelist.NewChecker(cfg.GetStringSlice("triage.protected_domains"), logger)

	rep := cfg.GetReport()
	renderer, err := report.NewHTMLRenderer(rep.SubjectMarker, logger)
	if err != nil {
		logger.Fatal("Failed to create renderer", zap.Error(err))
	}

	run := cfg.GetRun()
	orchestrator := core.NewOrchestrator(
		mailStore,
		core.NewClassificationGateway(llmClient, textProcessor, *maxBodySize, logger),
		core.NewLabelManager(mailStore, mode, logger),
		core.NewRetentionEngine(mailStore, mode, policyCfg, protectedChecker, logger),
		core.NewDigestSummarizer(llmClient, logger),
		renderer,
		historyStore,
		core.OrchestratorConfig{
			Mode:            mode,
			Limit:           run.Limit,
			FetchMax:        run.FetchMax,
			ReportRecipient: rep.Recipient,
			ReportSender:    rep.Sender,
			SubjectMarker:   rep.SubjectMarker,
			HistoryEnabled:  historyFactory.IsHistoryEnabled(),
		},
		logger,
	)

	fmt.Printf("=== Triage Run ===\n")
	fmt.Printf("Provider: %s\n", cfg.GetString("llm.provider"))
	fmt.Printf("Mode: %s\n", mode)
	fmt.Printf("Query: %s\n", cfg.GetGmail().Query)
	fmt.Printf("\n")

	startTime := time.Now()
	result, err := orchestrator.Run(context.Background())
	if err != nil {
		logger.Fatal("Run failed", zap.Error(err))
	}
	duration := time.Since(startTime)

	printResult(result)
	fmt.Printf("Processing time: %v\n", duration)

	// Close any resources that need closing
	if closer, ok := llmClient.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close LLM client", zap.Error(err))
		}
	}
	if closer, ok := historyStore.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close history store", zap.Error(err))
		}
	}
}

// printResult prints a plain-text view of the run aggregate
func printResult(result *core.RunResult) {
	fmt.Printf("=== Results ===\n")
	fmt.Printf("Processed: %d (skipped %d)\n", result.Processed, result.Skipped)

	for _, category := range core.AllCategories {
		items := result.Buckets[category]
		archived := result.AutoArchived[category]
		if len(items) == 0 && archived == 0 {
			continue
		}
		fmt.Printf("\n[%s]", category)
		if archived > 0 {
			fmt.Printf(" (%d auto-archived)", archived)
		}
		fmt.Printf("\n")
		for _, item := range items {
			fmt.Printf("  - %s — %s\n", item.Email.Subject, item.Email.From)
			if item.Classification.Summary != "" {
				fmt.Printf("    %s\n", item.Classification.Summary)
			}
			if item.AgingWarning != "" {
				fmt.Printf("    (%s)\n", item.AgingWarning)
			}
		}
	}

	for category, n := range result.AgedArchived {
		fmt.Printf("\n%d aged %s message(s) archived\n", n, category)
	}

	for platform, digest := range result.SocialDigests {
		fmt.Printf("\n%s: %s\n", platform, digest)
	}

	if len(result.Errors) > 0 {
		fmt.Printf("\n=== Errors ===\n")
		for _, e := range result.Errors {
			fmt.Printf("  - %s (%s): %s\n", e.Subject, e.From, e.Err)
		}
	}
	fmt.Printf("\n")
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()

	// Set LLM provider
	v.Set("llm.provider", *provider)

	// Set provider-specific configuration
	switch *provider {
	case "bedrock":
		v.Set("bedrock.region", *bedrockRegion)
		v.Set("bedrock.model_id", *bedrockModelID)
		v.Set("bedrock.max_tokens", *maxTokens)
		v.Set("bedrock.temperature", *temperature)
		v.Set("bedrock.top_p", *topP)
		v.Set("bedrock.max_body_size", *maxBodySize)
	case "gemini":
		v.Set("gemini.api_key", *geminiAPIKey)
		v.Set("gemini.model_name", *geminiModelName)
		v.Set("gemini.max_tokens", *maxTokens)
		v.Set("gemini.temperature", *temperature)
		v.Set("gemini.top_p", *topP)
		v.Set("gemini.max_body_size", *maxBodySize)
	case "openai":
		v.Set("openai.api_key", *openaiAPIKey)
		v.Set("openai.model_name", *openaiModelName)
		v.Set("openai.max_tokens", *maxTokens)
		v.Set("openai.temperature", *temperature)
		v.Set("openai.top_p", *topP)
		v.Set("openai.max_body_size", *maxBodySize)
	}

	// Set mailbox configuration
	v.Set("gmail.credentials_path", *credentialsPath)
	v.Set("gmail.token_path", *tokenPath)
	v.Set("gmail.query", *gmailQuery)

	// Set run configuration
	v.Set("run.mode", *runMode)
	v.Set("run.limit", *runLimit)
	v.Set("run.fetch_max", *fetchMax)

	return config.NewFromViper(v)
}
