package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joseph-ayodele/notes-summarizer/internal/common"
	"github.com/joseph-ayodele/notes-summarizer/internal/llm"
	"github.com/joseph-ayodele/notes-summarizer/internal/utils"
)

var errNoChoices = errors.New("no choices in completion response")

// Complete implements llm.Completer with a single non-streaming chat/completions call.
func (c *Client) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.InfoContext(ctx, "llm.complete.start",
		"req_id", rid,
		"provider", c.cfg.Provider,
		"model", c.model(),
		"temp", c.cfg.Temperature,
		"system_len", len(req.System),
		"user_len", len(req.User),
	)

	body := map[string]any{
		"messages": []map[string]any{
			{"role": "system", "content": req.System},
			{"role": "user", "content": req.User},
		},
	}
	if c.cfg.Provider != common.ProviderAzure {
		body["model"] = c.cfg.Model
	}
	if c.cfg.Temperature > 0 {
		body["temperature"] = c.cfg.Temperature
	}
	if c.cfg.JSONMode {
		body["response_format"] = map[string]any{"type": "json_object"}
	}

	endpoint, headers := c.route()
	raw, _, err := utils.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if err != nil {
		c.logger.ErrorContext(ctx, "llm.complete.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		var se *utils.StatusError
		if errors.As(err, &se) {
			return "", fmt.Errorf("%s status %d: %s", c.cfg.Provider, se.StatusCode, strings.TrimSpace(string(se.Body)))
		}
		return "", fmt.Errorf("%s http error: %w", c.cfg.Provider, err)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.ErrorContext(ctx, "llm.complete.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if len(cc.Choices) == 0 {
		c.logger.ErrorContext(ctx, "llm.complete.no_choices",
			"req_id", rid, "raw", string(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", errNoChoices
	}

	content := cc.Choices[0].Message.Content
	c.logger.InfoContext(ctx, "llm.complete.ok",
		"req_id", rid,
		"content_len", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}

func (c *Client) model() string {
	if c.cfg.Provider == common.ProviderAzure {
		return c.cfg.AzureDeployment
	}
	return c.cfg.Model
}

// route returns the completion URL and auth headers for the configured provider.
func (c *Client) route() (string, map[string]string) {
	if c.cfg.Provider == common.ProviderAzure {
		u := strings.TrimRight(c.cfg.AzureEndpoint, "/") +
			"/openai/deployments/" + url.PathEscape(c.cfg.AzureDeployment) +
			"/chat/completions?api-version=" + url.QueryEscape(c.cfg.AzureAPIVersion)
		return u, map[string]string{"api-key": c.cfg.AzureAPIKey}
	}
	u := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	return u, map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
}
