package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/earnings-cli/internal/ai"
	"github.com/KaramelBytes/earnings-cli/internal/assistant"
	cfgpkg "github.com/KaramelBytes/earnings-cli/internal/config"
	"github.com/KaramelBytes/earnings-cli/internal/dataset"
	"github.com/KaramelBytes/earnings-cli/internal/logger"
)

var (
	// Global flags
	cfgFile      string
	debug        bool
	flagDataPath string
	flagModel    string
	flagProvider string
	// Retry/HTTP flags (override config if set)
	flagHTTPTimeoutSec   int
	flagRetryMaxAttempts int
	flagRetryBaseDelayMs int
	flagRetryMaxDelayMs  int

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "earnings",
	Short: "Ask questions about freelancer earnings data",
	Long: `earnings answers natural-language questions about a freelancer earnings
dataset. Each question is routed by a language model to one of a fixed set of
aggregations; the aggregation runs locally and its result is handed back to
the model to phrase the answer. Questions that match no aggregation are
answered from a sample of raw rows.

Run without arguments for an interactive session; type exit or quit to leave.`,
	Args:          cobra.NoArgs,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		table, err := loadTable(c)
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(cmd.OutOrStdout(), "Data file not found: %s\n", c.DataPath)
			return nil
		}
		if err != nil {
			return err
		}
		log := newLogger(c)
		chat, err := newChat(c, log)
		if err != nil {
			return err
		}
		sess := assistant.NewSession(chat, table, assistant.SessionOptions{SampleRows: c.SampleRows, Log: log})
		return sess.Run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

// Execute is the entry point called by main.main()
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)

	// Persistent global flags available to all subcommands
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ~/.earnings/config.yaml)")
	pf.BoolVar(&debug, "debug", false, "enable debug logging")
	pf.StringVar(&flagDataPath, "data", "", "path to the earnings CSV, TSV or XLSX file (overrides config)")
	pf.StringVar(&flagModel, "model", "", "model identifier (overrides config)")
	pf.StringVar(&flagProvider, "provider", "", "LLM provider: openai, openrouter or ollama (overrides config)")
	pf.IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP client timeout in seconds (overrides config)")
	pf.IntVar(&flagRetryMaxAttempts, "retry-max", 0, "max attempts on 429/5xx, 1 disables retries (overrides config)")
	pf.IntVar(&flagRetryBaseDelayMs, "retry-base-ms", 0, "base retry backoff in ms (overrides config)")
	pf.IntVar(&flagRetryMaxDelayMs, "retry-max-ms", 0, "max retry backoff cap in ms (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands that need config report it through requireConfig
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
		return
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("data") && flagDataPath != "" {
		cfg.DataPath = flagDataPath
	}
	if f.Changed("model") && flagModel != "" {
		cfg.Model = flagModel
	}
	if f.Changed("provider") && flagProvider != "" {
		cfg.Provider = flagProvider
	}
	if f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
	if f.Changed("retry-max") && flagRetryMaxAttempts > 0 {
		cfg.RetryMaxAttempts = flagRetryMaxAttempts
	}
	if f.Changed("retry-base-ms") && flagRetryBaseDelayMs > 0 {
		cfg.RetryBaseDelayMs = flagRetryBaseDelayMs
	}
	if f.Changed("retry-max-ms") && flagRetryMaxDelayMs > 0 {
		cfg.RetryMaxDelayMs = flagRetryMaxDelayMs
	}
	if debug {
		cfg.LogLevel = "debug"
	}
}

func requireConfig() (*cfgpkg.Global, error) {
	if cfg == nil {
		return nil, errors.New("configuration not loaded")
	}
	return cfg, nil
}

func newLogger(c *cfgpkg.Global) logger.Logger {
	return logger.NewStructured(c.LogLevel, c.LogFormat)
}

func loadTable(c *cfgpkg.Global) (*dataset.Table, error) {
	return dataset.Load(c.DataPath, dataset.Options{Delimiter: c.DelimiterRune(), Sheet: c.Sheet})
}

// newChat builds the configured runtime and wraps it in a Chat.
func newChat(c *cfgpkg.Global, log logger.Logger) (*ai.Chat, error) {
	if c.Provider != ai.ProviderOllama && c.APIKey == "" {
		return nil, errors.New("OPENAI_API_KEY is missing: set it in the environment, a .env file, or with 'earnings config set api_key'")
	}
	rt, err := ai.MustRuntime(c.Provider, ai.RuntimeConfig{
		HTTPTimeout: time.Duration(c.HTTPTimeoutSec) * time.Second,
		RetryMax:    c.RetryMaxAttempts,
		BaseDelay:   time.Duration(c.RetryBaseDelayMs) * time.Millisecond,
		MaxDelay:    time.Duration(c.RetryMaxDelayMs) * time.Millisecond,
		APIKey:      c.APIKey,
		BaseURL:     c.BaseURL,
		Host:        c.OllamaHost,
	})
	if err != nil {
		return nil, err
	}
	log.Debug("runtime ready", map[string]interface{}{"provider": c.Provider, "model": c.Model})
	return ai.NewChat(rt, ai.ChatOptions{
		Model:       c.Model,
		Temperature: ai.Float64(c.Temperature),
		MaxTokens:   c.MaxTokens,
		Log:         log,
	}), nil
}
