package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/techfulness/getsticky/internal/llm"
	"github.com/techfulness/getsticky/internal/store"
	"github.com/techfulness/getsticky/types"
)

const (
	configName = ".getsticky"
	envPrefix  = "GETSTICKY"
)

// GlobalAppConfig holds the global application configuration instance.
var GlobalAppConfig types.AppConfig

// InitConfig reads in config file and ENV variables if set.
func InitConfig() {
	// Load .env file first if present; missing is fine.
	_ = godotenv.Load()

	// Environment handling must be set up before reading the config file so
	// GETSTICKY_* vars can override file values.
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfgFileFlag := viper.GetString("config")
	if cfgFileFlag != "" {
		viper.SetConfigFile(cfgFileFlag)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(configName)
	}

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	} else {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if cfgFileFlag != "" {
				fmt.Fprintln(os.Stderr, "Error: Specified config file not found:", cfgFileFlag)
			}
		} else {
			fmt.Fprintln(os.Stderr, "Error reading config file:", viper.ConfigFileUsed(), "-", err)
		}
	}

	viper.SetDefault("data.dir", ".getsticky")

	viper.SetDefault("llm.provider", llm.ProviderOpenAI)
	viper.SetDefault("llm.embeddingModel", "")
	viper.SetDefault("llm.apiKey", "")
	viper.SetDefault("llm.baseURL", "")

	viper.SetDefault("notify.url", "")
	viper.SetDefault("notify.timeoutSeconds", 3)

	if err := viper.Unmarshal(&GlobalAppConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Error unmarshaling config: %s\n", err)
		os.Exit(1)
	}

	// Provider-standard env vars work without the GETSTICKY_ prefix.
	if GlobalAppConfig.LLM.APIKey == "" {
		switch GlobalAppConfig.LLM.Provider {
		case llm.ProviderOpenAI:
			GlobalAppConfig.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		case llm.ProviderGemini:
			GlobalAppConfig.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
		}
	}

	if err := store.ValidateStruct(&GlobalAppConfig.LLM); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration validation error: %s\n", err)
		os.Exit(1)
	}

	initLogging()
}

// initLogging routes slog to stderr so MCP stdio stays clean.
func initLogging() {
	level := slog.LevelInfo
	if GlobalAppConfig.Verbose || viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// GetConfig returns a pointer to the global types.AppConfig instance.
func GetConfig() *types.AppConfig {
	return &GlobalAppConfig
}
