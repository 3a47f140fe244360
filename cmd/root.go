package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/techfulness/getsticky/internal/graph"
	"github.com/techfulness/getsticky/internal/llm"
	"github.com/techfulness/getsticky/internal/notify"
	"github.com/techfulness/getsticky/internal/semantic"
	"github.com/techfulness/getsticky/internal/store"
)

var (
	// cfgFile is the path to the configuration file.
	cfgFile string
	// verbose enables verbose output.
	verbose bool
	// version is the application version.
	version = "0.1.0"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "getsticky",
	Short: "getsticky manages the context graph behind a visual canvas.",
	Long: `getsticky stores canvas nodes, their connections, and their free-text
context in a local sqlite database, with optional semantic search over
that context when an embedding provider is configured.

Start the MCP server with 'getsticky mcp' to let AI assistants read and
mutate the graph.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			_ = cmd.Help()
			os.Exit(0)
		}
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(InitConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./.getsticky.yaml or $HOME/.getsticky.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// GetStore opens the sqlite store at the configured data directory.
func GetStore() (*store.Store, error) {
	cfg := GetConfig()
	s, err := store.Open(cfg.Data.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open store at %s: %w", cfg.Data.Dir, err)
	}
	return s, nil
}

// GetManager wires the store, the semantic index, and the notifier into a
// graph manager. The caller owns the returned store and must close both.
func GetManager() (*graph.Manager, *store.Store, error) {
	s, err := GetStore()
	if err != nil {
		return nil, nil, err
	}

	cfg := GetConfig()
	idx, err := semantic.NewIndex(s.DB(), llm.Config{
		Provider:       cfg.LLM.Provider,
		EmbeddingModel: cfg.LLM.EmbeddingModel,
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
	})
	if err != nil {
		s.Close()
		return nil, nil, fmt.Errorf("failed to initialize semantic index: %w", err)
	}

	var notifier notify.Notifier = notify.Nop{}
	if cfg.Notify.URL != "" {
		notifier = notify.NewHTTP(cfg.Notify.URL, time.Duration(cfg.Notify.TimeoutSeconds)*time.Second)
	}

	return graph.New(s, idx, notifier), s, nil
}
