package openai

import (
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joseph-ayodele/notes-summarizer/internal/common"
)

// Config for the chat/completions client. Provider selects between the public
// OpenAI endpoint and an Azure OpenAI deployment.
type Config struct {
	Provider    string        // "openai" (default) or "azure"
	APIKey      string        // if empty, falls back to env OPENAI_API_KEY
	BaseURL     string        // default https://api.openai.com/v1
	Model       string        // e.g., "gpt-4o-mini"
	Temperature float32       // 0 omits the field
	Timeout     time.Duration // http client timeout
	JSONMode    bool          // request response_format json_object

	AzureEndpoint   string
	AzureAPIKey     string
	AzureDeployment string
	AzureAPIVersion string
}

// ConfigFromApp maps the application LLM settings onto a client Config.
func ConfigFromApp(c common.LLMConfig) Config {
	return Config{
		Provider:        c.Provider,
		APIKey:          c.APIKey,
		BaseURL:         c.BaseURL,
		Model:           c.Model,
		Temperature:     c.Temperature,
		Timeout:         c.Timeout,
		JSONMode:        c.JSONMode,
		AzureEndpoint:   c.AzureEndpoint,
		AzureAPIKey:     c.AzureAPIKey,
		AzureDeployment: c.AzureDeployment,
		AzureAPIVersion: c.AzureAPIVersion,
	}
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.Provider == "" {
		cfg.Provider = common.ProviderOpenAI
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.AzureAPIVersion == "" {
		cfg.AzureAPIVersion = "2024-10-21"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}
