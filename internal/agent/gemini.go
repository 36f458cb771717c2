package agent

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"golang.org/x/time/rate"
	genai "google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiClient is a thin provider around the official genai client.
type GeminiClient struct {
	cli     *genai.Client
	model   string
	limiter *rate.Limiter
	logger  *slog.Logger
}

func NewGeminiClient(ctx context.Context, apiKey, model string, limiter *rate.Limiter, logger *slog.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return newGeminiClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}, model, limiter, logger)
}

func newGeminiClient(ctx context.Context, cc *genai.ClientConfig, model string, limiter *rate.Limiter, logger *slog.Logger) (*GeminiClient, error) {
	cli, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GeminiClient{
		cli:     cli,
		model:   model,
		limiter: limiter,
		logger:  logger.With("component", "gemini_client"),
	}, nil
}

func (g *GeminiClient) Model() string { return g.model }

func (g *GeminiClient) Complete(ctx context.Context, prompt string, structured bool) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", &TransportError{Err: err}
	}

	var cfg *genai.GenerateContentConfig
	if structured {
		cfg = &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	}

	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		cfg,
	)
	if err != nil {
		return "", classifyGeminiError(ctx, err)
	}
	text, err := candidateText(resp)
	if err != nil {
		return "", err
	}

	g.logger.Info("Gemini request completed",
		"model", g.model,
		"response_length", len(text))

	return text, nil
}

// candidateText joins the text parts of the first candidate.
func candidateText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", &ServiceError{Err: errors.New("no candidates in response")}
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return b.String(), nil
}

// classifyGeminiError maps genai failures onto the retry taxonomy: HTTP 429
// is a rate limit, other API statuses are service errors, and network
// failures are transport errors.
func classifyGeminiError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests {
			return &RateLimitError{Body: apiErr.Message}
		}
		return &ServiceError{StatusCode: apiErr.Code, Body: apiErr.Message, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return &TransportError{Err: err}
	}
	return &ServiceError{Err: err}
}
