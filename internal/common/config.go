package common

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Generation providers.
const (
	ProviderOpenAI = "openai"
	ProviderAzure  = "azure"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	LLM     LLMConfig     `yaml:"llm"`
	Cleaner CleanerConfig `yaml:"cleaner"`
	Jobs    JobsConfig    `yaml:"jobs"`
	Inbox   InboxConfig   `yaml:"inbox"`
	Notify  NotifyConfig  `yaml:"notify"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
	GRPCAddr string `yaml:"grpc_addr"`
}

// LLMConfig holds generation-capability configuration
type LLMConfig struct {
	Provider    string        `yaml:"provider"`
	APIKey      string        `yaml:"-"`
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
	JSONMode    bool          `yaml:"json_mode"`

	AzureEndpoint   string `yaml:"azure_endpoint"`
	AzureAPIKey     string `yaml:"-"`
	AzureDeployment string `yaml:"azure_deployment"`
	AzureAPIVersion string `yaml:"azure_api_version"`
}

// CleanerConfig holds text-normalization configuration. An empty URL selects
// the in-process cleaner.
type CleanerConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// JobsConfig holds job execution limits
type JobsConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	MaxTextChars int           `yaml:"max_text_chars"`
}

// InboxConfig holds directory-watch configuration. An empty Dir disables it.
type InboxConfig struct {
	Dir      string        `yaml:"dir"`
	Debounce time.Duration `yaml:"debounce"`
	Workers  int           `yaml:"workers"`
}

// NotifyConfig holds completion-event configuration. An empty NATSURL disables it.
type NotifyConfig struct {
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

var envBindings = map[string]string{
	"server.http_addr":      "HTTP_ADDR",
	"server.grpc_addr":      "GRPC_ADDR",
	"llm.provider":          "LLM_PROVIDER",
	"llm.api_key":           "OPENAI_API_KEY",
	"llm.base_url":          "OPENAI_BASE_URL",
	"llm.model":             "OPENAI_MODEL",
	"llm.temperature":       "OPENAI_TEMPERATURE",
	"llm.timeout":           "OPENAI_TIMEOUT",
	"llm.json_mode":         "OPENAI_JSON_MODE",
	"llm.azure_endpoint":    "AZURE_OPENAI_ENDPOINT",
	"llm.azure_api_key":     "AZURE_OPENAI_API_KEY",
	"llm.azure_deployment":  "AZURE_OPENAI_DEPLOYMENT_GPT5",
	"llm.azure_api_version": "AZURE_OPENAI_API_VERSION",
	"cleaner.url":           "CLEANER_SERVICE_URL",
	"cleaner.timeout":       "CLEANER_TIMEOUT",
	"jobs.timeout":          "JOB_TIMEOUT",
	"jobs.max_text_chars":   "JOB_MAX_TEXT_CHARS",
	"inbox.dir":             "INBOX_DIR",
	"inbox.debounce":        "INBOX_DEBOUNCE",
	"inbox.workers":         "INBOX_WORKERS",
	"notify.nats_url":       "NATS_URL",
	"notify.subject":        "NATS_SUBJECT",
	"log.level":             "LOG_LEVEL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_addr", ":5299")
	v.SetDefault("server.grpc_addr", ":8080")
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.temperature", 0.0)
	v.SetDefault("llm.timeout", 45*time.Second)
	v.SetDefault("llm.json_mode", true)
	v.SetDefault("llm.azure_api_version", "2024-10-21")
	v.SetDefault("cleaner.timeout", 15*time.Second)
	v.SetDefault("jobs.timeout", 2*time.Minute)
	v.SetDefault("jobs.max_text_chars", 0)
	v.SetDefault("inbox.debounce", 500*time.Millisecond)
	v.SetDefault("inbox.workers", 2)
	v.SetDefault("notify.subject", "summary.jobs.completed")
	v.SetDefault("log.level", "info")
}

// LoadConfig loads configuration from defaults, an optional YAML file and the
// environment (in increasing precedence). A .env.local file in the working
// directory is loaded into the environment first when present.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(".env.local"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env.local: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			HTTPAddr: v.GetString("server.http_addr"),
			GRPCAddr: v.GetString("server.grpc_addr"),
		},
		LLM: LLMConfig{
			Provider:        strings.ToLower(strings.TrimSpace(v.GetString("llm.provider"))),
			APIKey:          v.GetString("llm.api_key"),
			BaseURL:         v.GetString("llm.base_url"),
			Model:           v.GetString("llm.model"),
			Temperature:     float32(v.GetFloat64("llm.temperature")),
			Timeout:         v.GetDuration("llm.timeout"),
			JSONMode:        v.GetBool("llm.json_mode"),
			AzureEndpoint:   v.GetString("llm.azure_endpoint"),
			AzureAPIKey:     v.GetString("llm.azure_api_key"),
			AzureDeployment: v.GetString("llm.azure_deployment"),
			AzureAPIVersion: v.GetString("llm.azure_api_version"),
		},
		Cleaner: CleanerConfig{
			URL:     v.GetString("cleaner.url"),
			Timeout: v.GetDuration("cleaner.timeout"),
		},
		Jobs: JobsConfig{
			Timeout:      v.GetDuration("jobs.timeout"),
			MaxTextChars: v.GetInt("jobs.max_text_chars"),
		},
		Inbox: InboxConfig{
			Dir:      v.GetString("inbox.dir"),
			Debounce: v.GetDuration("inbox.debounce"),
			Workers:  v.GetInt("inbox.workers"),
		},
		Notify: NotifyConfig{
			NATSURL: v.GetString("notify.nats_url"),
			Subject: v.GetString("notify.subject"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
		},
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = ProviderOpenAI
		if cfg.LLM.AzureEndpoint != "" {
			cfg.LLM.Provider = ProviderAzure
		}
	}
	return cfg, nil
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderOpenAI:
		if c.LLM.APIKey == "" {
			return NewAppError(CodeConfig, "OPENAI_API_KEY is required", ErrInvalidInput)
		}
	case ProviderAzure:
		if c.LLM.AzureEndpoint == "" || c.LLM.AzureDeployment == "" || c.LLM.AzureAPIKey == "" {
			return NewAppError(CodeConfig, "AZURE_OPENAI_ENDPOINT, AZURE_OPENAI_DEPLOYMENT_GPT5 and AZURE_OPENAI_API_KEY are required", ErrInvalidInput)
		}
	default:
		return NewAppError(CodeConfig, fmt.Sprintf("unknown LLM_PROVIDER %q", c.LLM.Provider), ErrInvalidInput)
	}
	if c.Jobs.Timeout < 0 {
		return NewAppError(CodeConfig, "JOB_TIMEOUT must not be negative", ErrInvalidInput)
	}
	return nil
}
