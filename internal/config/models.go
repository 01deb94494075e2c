package config

// LLMConfig represents the configuration for the LLM provider
type LLMConfig struct {
	Provider string
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GmailConfig represents the configuration for the Gmail mail store
type GmailConfig struct {
	CredentialsPath string
	TokenPath       string
	User            string
	Query           string
}

// RunConfig represents the run mode and batch sizing for one execution
type RunConfig struct {
	Mode     string
	Limit    int
	FetchMax int64
}

// AgingConfig represents the retention aging thresholds
type AgingConfig struct {
	FinancialWarningDays int
	FinancialArchiveDays int
	// PurchasesPolicy is "archive" (immediate) or "age"
	PurchasesPolicy      string
	PurchasesWarningDays int
	PurchasesArchiveDays int
}

// ReportConfig represents the digest report delivery settings
type ReportConfig struct {
	Recipient     string
	Sender        string
	SubjectMarker string
}

// HistoryConfig represents the optional per-sender history store
type HistoryConfig struct {
	Enabled    bool
	Type       string
	SQLitePath string
	MySQLDSN   string
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider: c.GetString("llm.provider"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxBodySize: c.GetInt("bedrock.max_body_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
		MaxBodySize: c.GetInt("gemini.max_body_size"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxBodySize: c.GetInt("openai.max_body_size"),
	}
}

// GetGmail returns the Gmail configuration
func (c *Config) GetGmail() GmailConfig {
	return GmailConfig{
		CredentialsPath: c.GetString("gmail.credentials_path"),
		TokenPath:       c.GetString("gmail.token_path"),
		User:            c.GetString("gmail.user"),
		Query:           c.GetString("gmail.query"),
	}
}

// GetRun returns the run configuration
func (c *Config) GetRun() RunConfig {
	return RunConfig{
		Mode:     c.GetString("run.mode"),
		Limit:    c.GetInt("run.limit"),
		FetchMax: c.GetInt64("run.fetch_max"),
	}
}

// GetAging returns the aging threshold configuration
func (c *Config) GetAging() AgingConfig {
	return AgingConfig{
		FinancialWarningDays: c.GetInt("aging.financial_warning_days"),
		FinancialArchiveDays: c.GetInt("aging.financial_archive_days"),
		PurchasesPolicy:      c.GetString("aging.purchases_policy"),
		PurchasesWarningDays: c.GetInt("aging.purchases_warning_days"),
		PurchasesArchiveDays: c.GetInt("aging.purchases_archive_days"),
	}
}

// GetReport returns the report delivery configuration
func (c *Config) GetReport() ReportConfig {
	return ReportConfig{
		Recipient:     c.GetString("report.recipient"),
		Sender:        c.GetString("report.sender"),
		SubjectMarker: c.GetString("report.subject_marker"),
	}
}

// GetHistory returns the sender history configuration
func (c *Config) GetHistory() HistoryConfig {
	return HistoryConfig{
		Enabled:    c.GetBool("history.enabled"),
		Type:       c.GetString("history.type"),
		SQLitePath: c.GetString("history.sqlite_path"),
		MySQLDSN:   c.GetString("history.mysql_dsn"),
	}
}
