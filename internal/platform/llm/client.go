package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/MacMoment/coding/internal/observability"
	"github.com/MacMoment/coding/internal/platform/logger"
)

const (
	DefaultBaseURL = "https://api.megallm.com/v1"
	DefaultTimeout = 120 * time.Second
	temperature    = 0.7
)

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type GenerateRequest struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
}

// Gateway turns a (model, system prompt, user prompt) triple into generated files.
type Gateway interface {
	Generate(ctx context.Context, req GenerateRequest) (*GeneratedOutput, error)
}

type client struct {
	log        *logger.Logger
	apiKey     string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient builds the gateway. With an empty APIKey every call returns the
// deterministic mock output instead of reaching the network.
func NewClient(log *logger.Logger, cfg Config, httpClient *http.Client) Gateway {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &client{
		log:        log.With("service", "ModelGateway"),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		baseURL:    baseURL,
		timeout:    timeout,
		httpClient: httpClient,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage map[string]any `json:"usage"`
}

type httpStatusError struct {
	StatusCode int
	Status     string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Status)
}

func (c *client) Generate(ctx context.Context, req GenerateRequest) (*GeneratedOutput, error) {
	info, ok := Lookup(req.Model)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, req.Model)
	}
	if c.apiKey == "" {
		c.log.Warn("MEGALLM_API_KEY not configured, returning mock response", "model", req.Model)
		return MockOutput(req.UserPrompt), nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	ctx, span := otel.Tracer("forgecraft/llm").Start(ctx, "llm.generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", req.Model),
		attribute.String("llm.vendor_model", info.VendorModel),
		attribute.String("llm.provider", string(info.Provider)),
	)

	body := chatRequest{
		Model: info.VendorModel,
		Messages: []chatMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
		MaxTokens:      info.MaxOutputTokens,
		Temperature:    temperature,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	start := time.Now()
	resp, raw, err := c.doOnce(ctx, http.MethodPost, "/chat/completions", body)
	if err != nil {
		status := statusFromRespErr(resp, err)
		observability.Current().ObserveLLMRequest(req.Model, status, time.Since(start), 0)
		span.RecordError(err)
		span.SetStatus(codes.Error, status)
		c.log.Warn("model gateway call failed", "model", req.Model, "status", status, "error", err)
		return nil, classify(err)
	}

	var decoded chatResponse
	if err := json.Unmarshal(raw, &decoded); err != nil || len(decoded.Choices) == 0 {
		observability.Current().ObserveLLMRequest(req.Model, "malformed", time.Since(start), 0)
		span.SetStatus(codes.Error, "malformed")
		return nil, ErrMalformedResponse
	}

	out, err := ParseContent(decoded.Choices[0].Message.Content)
	if err != nil {
		observability.Current().ObserveLLMRequest(req.Model, "malformed", time.Since(start), 0)
		span.SetStatus(codes.Error, "malformed")
		c.log.Warn("model response could not be parsed",
			"model", req.Model,
			"content_bytes", len(decoded.Choices[0].Message.Content),
		)
		return nil, err
	}
	out.TokensUsed = totalTokens(decoded.Usage)
	if out.TokensUsed <= 0 {
		out.TokensUsed = FallbackTokenUsed
	}

	observability.Current().ObserveLLMRequest(req.Model, statusFromResp(resp), time.Since(start), out.TokensUsed)
	span.SetAttributes(attribute.Int("llm.tokens_used", out.TokensUsed), attribute.Int("llm.files", len(out.Files)))
	return out, nil
}

func (c *client) doOnce(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &httpStatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return resp, raw, nil
}

func classify(err error) error {
	var httpErr *httpStatusError
	if errors.As(err, &httpErr) {
		return &UpstreamError{
			Kind:       kindForStatus(httpErr.StatusCode),
			StatusCode: httpErr.StatusCode,
			Status:     httpErr.Status,
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &UpstreamError{Kind: ErrUpstream, Status: "request timed out"}
	}
	if errors.Is(err, context.Canceled) {
		return &UpstreamError{Kind: ErrUpstream, Status: "request canceled"}
	}
	return &UpstreamError{Kind: ErrUpstream, Status: err.Error()}
}

func totalTokens(usage map[string]any) int {
	if usage == nil {
		return 0
	}
	if total := intFromAny(usage["total_tokens"]); total > 0 {
		return total
	}
	return intFromAny(usage["prompt_tokens"]) + intFromAny(usage["completion_tokens"])
}

func intFromAny(v any) int {
	switch val := v.(type) {
	case nil:
		return 0
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		return int(val)
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return int(i)
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return i
		}
	}
	return 0
}

func statusFromResp(resp *http.Response) string {
	if resp == nil {
		return "unknown"
	}
	return strconv.Itoa(resp.StatusCode)
}

func statusFromRespErr(resp *http.Response, err error) string {
	if resp != nil {
		return strconv.Itoa(resp.StatusCode)
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return "error"
}
