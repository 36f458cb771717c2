package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	APITypeOpenAI    = "openai"
	APITypeAnthropic = "anthropic"

	DefaultGroqBaseURL      = "https://api.groq.com/openai/v1"
	DefaultGroqModel        = "llama-3.3-70b-versatile"
	DefaultOpenAIBaseURL    = "https://api.openai.com/v1"
	DefaultOpenAIModel      = "gpt-4o-mini"
	DefaultAnthropicBaseURL = "https://api.anthropic.com/v1"
	DefaultAnthropicModel   = "claude-3-5-sonnet-20241022"

	defaultMaxTokens = 4096
)

const jsonOnlyInstruction = "You are a helpful assistant that MUST respond with valid JSON only. Your entire response must be a single JSON object with no additional text, markdown, or explanations."

// Client is an HTTP provider for OpenAI-compatible chat completion endpoints
// (Groq, OpenAI) and the Anthropic messages API. It makes exactly one
// request per call; retries belong to Agent.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	apiType    string
	maxTokens  int
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

type Option func(*Client)

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		transport := c.httpClient.Transport
		c.httpClient = &http.Client{
			Timeout:   timeout,
			Transport: transport,
		}
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRateLimit caps outgoing requests. A non-positive rate disables the cap.
func WithRateLimit(requestsPerMinute int, burst int) Option {
	return func(c *Client) {
		c.limiter = newLimiter(requestsPerMinute, burst)
	}
}

// newLimiter converts a per-minute rate into a token bucket. Bursts below
// one are raised to one so a limited client can still send.
func newLimiter(requestsPerMinute, burst int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), burst)
}

func WithAPIConfig(baseURL, model string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
		if model != "" {
			c.model = model
		}
	}
}

func WithAPIType(apiType string) Option {
	return func(c *Client) {
		c.apiType = apiType
	}
}

func WithMaxTokens(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger.With("component", "ai_client")
	}
}

// NewClient defaults to Groq's OpenAI-compatible endpoint.
func NewClient(apiKey string, opts ...Option) *Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     10,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	c := &Client{
		apiKey:    apiKey,
		baseURL:   DefaultGroqBaseURL,
		model:     DefaultGroqModel,
		apiType:   APITypeOpenAI,
		maxTokens: defaultMaxTokens,
		httpClient: &http.Client{
			Timeout:   120 * time.Second,
			Transport: transport,
		},
		limiter: rate.NewLimiter(rate.Inf, 0),
		logger:  slog.Default().With("component", "ai_client"),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.logger.Debug("AI client initialized",
		"api_type", c.apiType,
		"base_url", c.baseURL,
		"model", c.model,
		"rate_limit", fmt.Sprintf("%v req/s", c.limiter.Limit()))

	return c
}

func (c *Client) Model() string {
	return c.model
}

func (c *Client) Complete(ctx context.Context, prompt string, structured bool) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", &TransportError{Err: fmt.Errorf("rate limit wait: %w", err)}
	}

	if c.apiType == APITypeAnthropic {
		return c.doAnthropicRequest(ctx, prompt, structured)
	}
	return c.doOpenAIRequest(ctx, prompt, structured)
}

func (c *Client) doOpenAIRequest(ctx context.Context, prompt string, structured bool) (string, error) {
	messages := []map[string]string{
		{"role": "user", "content": prompt},
	}
	if structured {
		messages = append([]map[string]string{
			{"role": "system", "content": jsonOnlyInstruction},
		}, messages...)
	}

	requestBody := map[string]any{
		"model":      c.model,
		"messages":   messages,
		"max_tokens": c.maxTokens,
	}
	if structured {
		requestBody["response_format"] = map[string]string{"type": "json_object"}
	}

	headers := map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	}

	respBody, err := c.post(ctx, "/chat/completions", requestBody, headers)
	if err != nil {
		return "", err
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
		} `json:"usage"`
	}

	if err := json.Unmarshal(respBody, &response); err != nil {
		return "", &ServiceError{StatusCode: http.StatusOK, Body: string(respBody), Err: fmt.Errorf("parsing response: %w", err)}
	}
	if len(response.Choices) == 0 {
		return "", &ServiceError{StatusCode: http.StatusOK, Body: string(respBody), Err: errors.New("no choices in response")}
	}

	c.logger.Info("OpenAI request completed",
		"model", c.model,
		"prompt_tokens", response.Usage.PromptTokens,
		"completion_tokens", response.Usage.CompletionTokens,
		"total_tokens", response.Usage.TotalTokens)

	return response.Choices[0].Message.Content, nil
}

func (c *Client) doAnthropicRequest(ctx context.Context, prompt string, structured bool) (string, error) {
	requestBody := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"max_tokens": c.maxTokens,
	}
	if structured {
		requestBody["system"] = jsonOnlyInstruction
	}

	headers := map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": "2023-06-01",
	}

	respBody, err := c.post(ctx, "/messages", requestBody, headers)
	if err != nil {
		return "", err
	}

	var response struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
		Usage struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
		} `json:"usage"`
	}

	if err := json.Unmarshal(respBody, &response); err != nil {
		return "", &ServiceError{StatusCode: http.StatusOK, Body: string(respBody), Err: fmt.Errorf("parsing response: %w", err)}
	}
	if len(response.Content) == 0 {
		return "", &ServiceError{StatusCode: http.StatusOK, Body: string(respBody), Err: errors.New("no content in response")}
	}

	c.logger.Info("Anthropic request completed",
		"model", c.model,
		"input_tokens", response.Usage.InputTokens,
		"output_tokens", response.Usage.OutputTokens)

	return response.Content[0].Text, nil
}

// post sends body as JSON and classifies every failure into one of the
// adapter error kinds.
func (c *Client) post(ctx context.Context, endpoint string, body any, headers map[string]string) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	httpStart := time.Now()
	c.logger.Debug("sending HTTP request",
		"api_type", c.apiType,
		"endpoint", endpoint,
		"body_size_bytes", len(payload))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.Warn("HTTP request failed",
			"endpoint", endpoint,
			"duration_ms", time.Since(httpStart).Milliseconds(),
			"error", err)
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("reading response: %w", err)}
	}

	c.logger.Debug("HTTP response received",
		"endpoint", endpoint,
		"status_code", resp.StatusCode,
		"duration_ms", time.Since(httpStart).Milliseconds(),
		"body_size", len(respBody))

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &RateLimitError{
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Body:       string(respBody),
		}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &ServiceError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return respBody, nil
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
