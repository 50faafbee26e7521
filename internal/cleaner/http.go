package cleaner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/joseph-ayodele/notes-summarizer/internal/utils"
)

// HTTPClient calls an external cleaner service exposing POST /clean.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

func NewHTTPClient(baseURL string, timeout time.Duration, logger *slog.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *HTTPClient) Clean(ctx context.Context, text string) (Result, error) {
	start := time.Now()
	raw, _, err := utils.SendJSON(ctx, c.http, c.baseURL+"/clean", map[string]string{"text": text}, nil, c.logger)
	if err != nil {
		c.logger.ErrorContext(ctx, "cleaner.http_error", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return Result{}, fmt.Errorf("cleaner request: %w", err)
	}

	var resp struct {
		CleanedText      *string  `json:"cleaned_text"`
		Sections         []string `json:"sections"`
		DetectedLanguage *string  `json:"detected_language"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Result{}, fmt.Errorf("decode cleaner response: %w", err)
	}

	out := Result{Sections: resp.Sections}
	if resp.CleanedText != nil {
		out.CleanedText = *resp.CleanedText
	}
	if resp.DetectedLanguage != nil {
		out.DetectedLanguage = *resp.DetectedLanguage
	}
	c.logger.DebugContext(ctx, "cleaner.ok",
		"sections", len(out.Sections),
		"language", out.DetectedLanguage,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}
