package types

// AppConfig is the root configuration structure, populated by viper from
// the config file, environment variables, and flags.
type AppConfig struct {
	Verbose bool         `mapstructure:"verbose"`
	Data    DataConfig   `mapstructure:"data"`
	LLM     LLMConfig    `mapstructure:"llm"`
	Notify  NotifyConfig `mapstructure:"notify"`
}

// DataConfig locates the on-disk store.
type DataConfig struct {
	// Dir is the directory holding the sqlite database. Use ":memory:" for
	// an ephemeral store.
	Dir string `mapstructure:"dir"`
}

// LLMConfig configures the embedding provider for the semantic index.
// Leaving the provider credential empty disables semantic search entirely.
type LLMConfig struct {
	Provider       string `mapstructure:"provider" validate:"omitempty,oneof=openai ollama gemini"`
	EmbeddingModel string `mapstructure:"embeddingModel"`
	APIKey         string `mapstructure:"apiKey"`
	BaseURL        string `mapstructure:"baseURL"`
}

// NotifyConfig configures mutation fan-out to an out-of-process observer.
type NotifyConfig struct {
	// URL is the HTTP endpoint mutation events are pushed to. Empty disables
	// network delivery.
	URL string `mapstructure:"url"`
	// TimeoutSeconds bounds each delivery attempt.
	TimeoutSeconds int `mapstructure:"timeoutSeconds"`
}
