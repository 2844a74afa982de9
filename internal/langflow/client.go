// Package langflow calls a hosted LangFlow chat flow.
package langflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/autodocx/relay-api/pkg/metrics"
	"github.com/autodocx/relay-api/pkg/tracing"
)

const maxResponseBytes = 4 << 20

var (
	// ErrTimeout is returned when the flow does not answer within the timeout.
	ErrTimeout = errors.New("langflow request timed out")
	// ErrUnavailable is returned when the request could not be completed.
	ErrUnavailable = errors.New("langflow request failed")
)

// StatusError reports a non-2xx response from the flow.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("langflow status %d: %s", e.StatusCode, e.Body)
}

// DefaultTweaks are the component overrides sent with every run. The flow
// uses each component's saved settings, so every entry is empty.
var DefaultTweaks = map[string]map[string]any{
	"ChatInput-Xilja":               {},
	"ChatOutput-M8bpL":              {},
	"Memory-Tj7pK":                  {},
	"Prompt-MXwhW":                  {},
	"GoogleGenerativeAIModel-TnXjz": {},
}

// Config holds LangFlow client configuration.
type Config struct {
	URL     string
	Token   string
	Secret  string
	Timeout time.Duration
	Tweaks  map[string]map[string]any
}

// Client is a LangFlow run-endpoint client.
type Client struct {
	url        string
	token      string
	secret     string
	timeout    time.Duration
	tweaks     map[string]map[string]any
	httpClient *http.Client
}

type runRequest struct {
	InputValue string                    `json:"input_value"`
	OutputType string                    `json:"output_type"`
	InputType  string                    `json:"input_type"`
	Tweaks     map[string]map[string]any `json:"tweaks"`
}

// New creates a LangFlow client. The timeout bounds each Run call.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	tweaks := cfg.Tweaks
	if tweaks == nil {
		tweaks = DefaultTweaks
	}
	return &Client{
		url:        cfg.URL,
		token:      cfg.Token,
		secret:     cfg.Secret,
		timeout:    timeout,
		tweaks:     tweaks,
		httpClient: &http.Client{},
	}
}

// Configured reports whether both credentials are set.
func (c *Client) Configured() bool {
	return c.token != "" && c.secret != ""
}

// Run sends one chat input to the flow and returns the normalized reply.
func (c *Client) Run(ctx context.Context, input string) (string, error) {
	ctx, span := tracing.Tracer("langflow").Start(ctx, "langflow.run")
	defer span.End()

	start := time.Now()
	reply, err := c.run(ctx, input)

	outcome := outcomeOf(err)
	metrics.RecordUpstream("langflow", outcome, time.Since(start).Seconds())
	span.SetAttributes(attribute.String("langflow.outcome", outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	return reply, err
}

func (c *Client) run(ctx context.Context, input string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(runRequest{
		InputValue: input,
		OutputType: "chat",
		InputType:  "chat",
		Tweaks:     c.tweaks,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: create request: %w", ErrUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.secret)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", classify(ctx, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return "", classify(ctx, err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", &StatusError{StatusCode: res.StatusCode, Body: string(body)}
	}

	return ExtractOutput(body), nil
}

// classify maps a transport error to ErrTimeout or ErrUnavailable.
func classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

func outcomeOf(err error) string {
	var statusErr *StatusError
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.As(err, &statusErr):
		return "status_error"
	default:
		return "unavailable"
	}
}
