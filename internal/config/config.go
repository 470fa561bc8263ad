package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/earnings-cli/internal/utils"
)

// EnvPrefix is prepended to every key when read from the environment.
const EnvPrefix = "EARNINGS"

// DataFileName is the dataset looked up next to the installation.
const DataFileName = "freelancer_earnings.csv"

// Global configuration structure.
type Global struct {
	APIKey      string  `mapstructure:"api_key" yaml:"api_key"`
	Provider    string  `mapstructure:"provider" yaml:"provider"`
	BaseURL     string  `mapstructure:"base_url" yaml:"base_url"`
	Model       string  `mapstructure:"model" yaml:"model"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens" yaml:"max_tokens"`

	// Dataset
	DataPath   string `mapstructure:"data_path" yaml:"data_path"`
	Delimiter  string `mapstructure:"delimiter" yaml:"delimiter"`
	Sheet      string `mapstructure:"sheet" yaml:"sheet"`
	SampleRows int    `mapstructure:"sample_rows" yaml:"sample_rows"`

	// HTTP/Retry configuration
	HTTPTimeoutSec   int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	RetryMaxAttempts int `mapstructure:"retry_max_attempts" yaml:"retry_max_attempts"`
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms"`
	RetryMaxDelayMs  int `mapstructure:"retry_max_delay_ms" yaml:"retry_max_delay_ms"`

	// Local runtimes (Ollama)
	OllamaHost string `mapstructure:"ollama_host" yaml:"ollama_host"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{
	"api_key", "provider", "base_url", "model", "temperature", "max_tokens",
	"data_path", "delimiter", "sheet", "sample_rows",
	"http_timeout_sec", "retry_max_attempts", "retry_base_delay_ms", "retry_max_delay_ms",
	"ollama_host", "log_level", "log_format",
}

// DefaultDir returns ~/.earnings.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".earnings"), nil
}

// DefaultPath returns the config file used when --config is not given.
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// installDir is the directory of the running executable, or "" when it
// cannot be resolved.
func installDir() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}

// DefaultDataPath resolves ../data/freelancer_earnings.csv relative to the
// installation directory, falling back to the working directory.
func DefaultDataPath() string {
	dir := installDir()
	if dir == "" {
		return filepath.Join("data", DataFileName)
	}
	return filepath.Clean(filepath.Join(dir, "..", "data", DataFileName))
}

// loadDotEnv reads .env from the working directory and the installation
// directory. Existing environment variables win; missing files are ignored.
func loadDotEnv() {
	candidates := []string{".env"}
	if dir := installDir(); dir != "" {
		candidates = append(candidates, filepath.Join(dir, ".env"))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

// SaveKey validates value for key and writes that single key to the
// config file at cfgFile (default ~/.earnings/config.yaml). Other keys
// already in the file are kept as they are. Values that only come from
// defaults, the environment or flags are never written.
func SaveKey(cfgFile, key, value string) error {
	var scratch Global
	if err := scratch.Set(key, value); err != nil {
		return err
	}
	typed, err := scratch.fieldValue(key)
	if err != nil {
		return err
	}

	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	doc := map[string]any{}
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(b, &doc); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
		if doc == nil {
			doc = map[string]any{}
		}
	}
	doc[key] = typed

	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, out); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// fieldValue returns the typed value of key as it marshals to yaml.
func (c *Global) fieldValue(key string) (any, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	var all map[string]any
	if err := yaml.Unmarshal(b, &all); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}
	v, ok := all[key]
	if !ok {
		return nil, fmt.Errorf("unknown key: %s", key)
	}
	return v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_key", "")
	v.SetDefault("provider", "openai")
	v.SetDefault("base_url", "https://api.openai.com/v1")
	v.SetDefault("model", "gpt-4.1")
	v.SetDefault("temperature", 0.7)
	v.SetDefault("max_tokens", 800)
	// Dataset defaults
	v.SetDefault("data_path", DefaultDataPath())
	v.SetDefault("delimiter", "")
	v.SetDefault("sheet", "")
	v.SetDefault("sample_rows", 40)
	// HTTP/retry defaults; a single attempt means no retries
	v.SetDefault("http_timeout_sec", 60)
	v.SetDefault("retry_max_attempts", 1)
	v.SetDefault("retry_base_delay_ms", 500)
	v.SetDefault("retry_max_delay_ms", 4000)
	// Ollama defaults
	v.SetDefault("ollama_host", "http://127.0.0.1:11434")
	// Logging defaults
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "console")
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (applied by the caller) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	loadDotEnv()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	// the plain OpenAI variable is honored as well
	if err := v.BindEnv("api_key", EnvPrefix+"_API_KEY", "OPENAI_API_KEY"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}
	setDefaults(v)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		// a missing file is fine, a broken one is not
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Set assigns key from its string form, converting to the field type.
func (c *Global) Set(key, value string) error {
	var err error
	switch key {
	case "api_key":
		c.APIKey = value
	case "provider":
		c.Provider = value
	case "base_url":
		c.BaseURL = value
	case "model":
		c.Model = value
	case "temperature":
		c.Temperature, err = cast.ToFloat64E(value)
		if err == nil && (c.Temperature < 0 || c.Temperature > 2) {
			err = fmt.Errorf("%g is outside [0, 2]", c.Temperature)
		}
	case "max_tokens":
		c.MaxTokens, err = cast.ToIntE(value)
	case "data_path":
		c.DataPath = value
	case "delimiter":
		c.Delimiter = value
	case "sheet":
		c.Sheet = value
	case "sample_rows":
		c.SampleRows, err = cast.ToIntE(value)
	case "http_timeout_sec":
		c.HTTPTimeoutSec, err = cast.ToIntE(value)
	case "retry_max_attempts":
		c.RetryMaxAttempts, err = cast.ToIntE(value)
	case "retry_base_delay_ms":
		c.RetryBaseDelayMs, err = cast.ToIntE(value)
	case "retry_max_delay_ms":
		c.RetryMaxDelayMs, err = cast.ToIntE(value)
	case "ollama_host":
		c.OllamaHost = value
	case "log_level":
		c.LogLevel = value
	case "log_format":
		c.LogFormat = value
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return nil
}

// Get returns the string form of key.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "api_key":
		return c.APIKey, nil
	case "provider":
		return c.Provider, nil
	case "base_url":
		return c.BaseURL, nil
	case "model":
		return c.Model, nil
	case "temperature":
		return fmt.Sprintf("%g", c.Temperature), nil
	case "max_tokens":
		return fmt.Sprintf("%d", c.MaxTokens), nil
	case "data_path":
		return c.DataPath, nil
	case "delimiter":
		return c.Delimiter, nil
	case "sheet":
		return c.Sheet, nil
	case "sample_rows":
		return fmt.Sprintf("%d", c.SampleRows), nil
	case "http_timeout_sec":
		return fmt.Sprintf("%d", c.HTTPTimeoutSec), nil
	case "retry_max_attempts":
		return fmt.Sprintf("%d", c.RetryMaxAttempts), nil
	case "retry_base_delay_ms":
		return fmt.Sprintf("%d", c.RetryBaseDelayMs), nil
	case "retry_max_delay_ms":
		return fmt.Sprintf("%d", c.RetryMaxDelayMs), nil
	case "ollama_host":
		return c.OllamaHost, nil
	case "log_level":
		return c.LogLevel, nil
	case "log_format":
		return c.LogFormat, nil
	}
	return "", fmt.Errorf("unknown key: %s", key)
}

// DelimiterRune returns the configured delimiter, or 0 to detect it from
// the file extension. "\t" and "tab" both mean tab.
func (c *Global) DelimiterRune() rune {
	switch c.Delimiter {
	case "":
		return 0
	case "\\t", "\t", "tab":
		return '\t'
	}
	return []rune(c.Delimiter)[0]
}
