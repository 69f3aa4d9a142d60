// Package genai implements the generative-language API client.
// The registry uses it for two best-effort features: a cohort insight
// summary and student avatar rendering. Calls are strictly single-attempt
// (no retry, no queueing); a circuit breaker provides fail-fast when the
// collaborator is down.
package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/eduflow/eduflow-registry/internal/domain/record"
	"github.com/eduflow/eduflow-registry/internal/domain/shared"
	"github.com/eduflow/eduflow-registry/internal/domain/stats"
	"github.com/eduflow/eduflow-registry/pkg/circuitbreaker"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config contains configuration for the generative-language API client.
type Config struct {
	// BaseURL is the API base URL.
	BaseURL string

	// APIKey authenticates requests (x-goog-api-key header).
	APIKey string

	// TextModel is the model used for insight summaries.
	TextModel string

	// ImageModel is the model used for avatar rendering.
	ImageModel string

	// Timeout is the HTTP request timeout.
	Timeout time.Duration

	// Logger for structured logging.
	Logger *slog.Logger

	// Debug enables request debug logging.
	Debug bool
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(baseURL, apiKey string) Config {
	return Config{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		TextModel:  "gemini-2.5-flash",
		ImageModel: "gemini-2.5-flash-image",
		Timeout:    30 * time.Second,
	}
}

// maxInsightRecords caps how many records are embedded in the insight prompt.
const maxInsightRecords = 15

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client is the generative-language API client.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
	breaker    *circuitbreaker.CircuitBreaker
}

// NewClient creates a new client.
func NewClient(config Config) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	c := &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: config.Logger,
	}

	c.breaker = circuitbreaker.GenAIBreaker(func(name string, from, to circuitbreaker.State) {
		c.logger.Warn("circuit breaker state change",
			"breaker", name, "from", from.String(), "to", to.String())
	})

	return c
}

// ══════════════════════════════════════════════════════════════════════════════
// INSIGHT SUMMARY
// ══════════════════════════════════════════════════════════════════════════════

// insightRow is the compact per-student view embedded in the prompt.
type insightRow struct {
	Name              string  `json:"name"`
	Score             float64 `json:"score"`
	AttendancePercent float64 `json:"attendance_percent"`
	FeesPaid          float64 `json:"fees_paid"`
	FeesTotal         float64 `json:"fees_total"`
	BacklogCount      int     `json:"backlog_count"`
}

// Summarize generates a cohort insight from the given records.
// At most the first maxInsightRecords records are included in the prompt.
func (c *Client) Summarize(ctx context.Context, records []record.Record) (string, error) {
	if len(records) > maxInsightRecords {
		records = records[:maxInsightRecords]
	}

	rows := make([]insightRow, 0, len(records))
	for i := range records {
		rows = append(rows, insightRow{
			Name:              records[i].Name,
			Score:             records[i].Score,
			AttendancePercent: stats.AttendancePercent(&records[i]),
			FeesPaid:          records[i].FeesPaid,
			FeesTotal:         records[i].FeesTotal,
			BacklogCount:      records[i].BacklogCount,
		})
	}

	data, err := json.Marshal(rows)
	if err != nil {
		return "", shared.WrapError("genai", "Summarize", shared.ErrExternalService, "encode prompt data", err)
	}

	prompt := fmt.Sprintf(
		"Analyze academic data: %s. Focus on financial health (fee collections) and student retention (attendance). Provide actionable advice in 120 words.",
		string(data),
	)

	resp, err := c.generate(ctx, c.config.TextModel, GenerateContentRequest{
		Contents: []ContentDTO{{Parts: []PartDTO{{Text: prompt}}}},
	})
	if err != nil {
		return "", shared.WrapError("genai", "Summarize", shared.ErrExternalService, "insight request failed", err)
	}

	text, ok := resp.FirstText()
	if !ok {
		return "", shared.ErrInsightUnavailable
	}
	return text, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// AVATAR RENDERING
// ══════════════════════════════════════════════════════════════════════════════

// RenderAvatar generates an avatar image for the named student.
// Returns the raw image bytes decoded from the inline response data.
func (c *Client) RenderAvatar(ctx context.Context, name string) ([]byte, error) {
	prompt := fmt.Sprintf(
		"A professional, 2D minimalist character avatar of a student named %s. Friendly, circle-framed style.",
		name,
	)

	resp, err := c.generate(ctx, c.config.ImageModel, GenerateContentRequest{
		Contents: []ContentDTO{{Parts: []PartDTO{{Text: prompt}}}},
		GenerationConfig: &GenerationConfigDTO{
			ResponseModalities: []string{"IMAGE"},
		},
	})
	if err != nil {
		return nil, shared.WrapError("genai", "RenderAvatar", shared.ErrExternalService, "avatar request failed", err)
	}

	inline, ok := resp.FirstInlineData()
	if !ok {
		return nil, shared.ErrAvatarUnavailable
	}

	img, err := base64.StdEncoding.DecodeString(inline.Data)
	if err != nil {
		return nil, shared.WrapError("genai", "RenderAvatar", shared.ErrExternalService, "decode inline image", err)
	}
	return img, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HTTP REQUEST HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// generate performs a single generateContent call behind the circuit breaker.
// There is deliberately no retry loop here.
func (c *Client) generate(ctx context.Context, model string, reqBody GenerateContentRequest) (*GenerateContentResponse, error) {
	var resp *GenerateContentResponse

	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		var reqErr error
		resp, reqErr = c.doSingleRequest(ctx, model, reqBody)
		return reqErr
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// doSingleRequest performs a single HTTP request to the model endpoint.
func (c *Client) doSingleRequest(ctx context.Context, model string, reqBody GenerateContentRequest) (*GenerateContentResponse, error) {
	fullURL := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.config.BaseURL, model)

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("x-goog-api-key", c.config.APIKey)
	}

	if c.config.Debug {
		c.logger.Debug("genai api request", "model", model, "url", fullURL)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		var envelope GenerateContentResponse
		if err := json.Unmarshal(respBody, &envelope); err == nil && envelope.Error != nil {
			return nil, envelope.Error
		}
		return nil, fmt.Errorf("api error: status %d", httpResp.StatusCode)
	}

	var result GenerateContentResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &result, nil
}

// IsHealthy reports whether the circuit currently admits requests.
func (c *Client) IsHealthy() bool {
	return !c.breaker.IsOpen()
}

// Reset resets the circuit breaker.
func (c *Client) Reset() {
	c.breaker.Reset()
}
