package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

const (
	// DefaultTimeout bounds a single generation call.
	DefaultTimeout = 120 * time.Second

	// ensureTimeout bounds the availability check at construction. If the
	// model cannot be verified or pulled within this window we proceed
	// optimistically and let generation itself fail.
	ensureTimeout = 5 * time.Minute
)

// generateOptions pins the sampling policy: short bounded output, low
// temperature so repeated grading of the same pair stays close to
// deterministic, nucleus sampling, and a repetition penalty.
var generateOptions = map[string]any{
	"num_predict":    512,
	"temperature":    0.1,
	"top_p":          0.9,
	"repeat_penalty": 1.2,
}

// Options configures the Ollama-backed Client.
type Options struct {
	// Model is the Ollama model identifier, e.g. "llama3:8b".
	Model string
	// Timeout bounds each Generate call. Defaults to DefaultTimeout.
	Timeout time.Duration
	// BaseURL overrides the backend address. When empty the client is
	// built from the OLLAMA_HOST environment, like the ollama CLI.
	BaseURL string
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Client calls an Ollama backend to grade suggestions. It satisfies
// [Generator].
type Client struct {
	api     *api.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewClient builds a Client and lazily ensures the configured model is
// available on the backend, pulling it if missing. Availability problems
// are logged, never fatal: construction succeeds and a dead backend
// surfaces on the first Generate call instead.
func NewClient(opts Options) (*Client, error) {
	if opts.Model == "" {
		return nil, errors.New("model name is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	ac, err := apiClient(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	c := &Client{
		api:     ac,
		model:   opts.Model,
		timeout: opts.Timeout,
		logger:  opts.Logger,
	}
	c.ensureModel()
	return c, nil
}

func apiClient(baseURL string) (*api.Client, error) {
	if baseURL == "" {
		return api.ClientFromEnvironment()
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing backend URL %q: %w", baseURL, err)
	}
	return api.NewClient(u, http.DefaultClient), nil
}

// ensureModel checks that the model exists locally and pulls it if not.
// Every failure path degrades to a warning.
func (c *Client) ensureModel() {
	ctx, cancel := context.WithTimeout(context.Background(), ensureTimeout)
	defer cancel()

	list, err := c.api.List(ctx)
	if err != nil {
		c.logger.Warn("could not verify model availability, proceeding anyway",
			"model", c.model, "error", err)
		return
	}
	for _, m := range list.Models {
		if m.Name == c.model || m.Model == c.model {
			return
		}
	}

	c.logger.Info("model not found locally, pulling", "model", c.model)
	err = c.api.Pull(ctx, &api.PullRequest{Model: c.model}, func(p api.ProgressResponse) error {
		c.logger.Debug("pull progress", "model", c.model, "status", p.Status,
			"completed", p.Completed, "total", p.Total)
		return nil
	})
	if err != nil {
		c.logger.Warn("could not pull model, proceeding anyway", "model", c.model, "error", err)
	}
}

// Generate issues one non-streaming generation call bounded by the
// configured timeout.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := &api.GenerateRequest{
		Model:   c.model,
		Prompt:  prompt,
		Stream:  new(bool),
		Options: generateOptions,
	}

	var out strings.Builder
	err := c.api.Generate(ctx, req, func(resp api.GenerateResponse) error {
		out.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", classify(err), err)
	}
	return out.String(), nil
}

// classify maps transport-level failures to ErrModelUnavailable and
// everything else, timeouts included, to ErrGenerationFailed.
func classify(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && !urlErr.Timeout() {
		return ErrModelUnavailable
	}
	return ErrGenerationFailed
}

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.model }

// Heartbeat reports whether the backend is reachable.
func (c *Client) Heartbeat(ctx context.Context) error {
	if err := c.api.Heartbeat(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	return nil
}

// Pull downloads the configured model, reporting progress through fn.
func (c *Client) Pull(ctx context.Context, fn func(status string, completed, total int64)) error {
	err := c.api.Pull(ctx, &api.PullRequest{Model: c.model}, func(p api.ProgressResponse) error {
		if fn != nil {
			fn(p.Status, p.Completed, p.Total)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("pulling %s: %w", c.model, err)
	}
	return nil
}

var _ Generator = (*Client)(nil)
