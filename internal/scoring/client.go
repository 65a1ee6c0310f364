package scoring

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/trknhr/semantle/internal/config"
	"github.com/trknhr/semantle/internal/httpx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const maxBodyBytes = 1 << 20

type ScoreResponse struct {
	Score float64
}

//go:generate mockgen -destination=mock_client.go -package=scoring . Client
type Client interface {
	StartGame(ctx context.Context) error
	Score(ctx context.Context, guess string) (*ScoreResponse, error)
}

type HTTPClient struct {
	BaseURL   string
	GuessPath string
	StartPath string
	Timeout   time.Duration
	Client    *http.Client
}

func NewHTTPClient(cfg config.Server) *HTTPClient {
	return &HTTPClient{
		BaseURL:   cfg.BaseURL,
		GuessPath: cfg.GuessPath,
		StartPath: cfg.StartPath,
		Timeout:   cfg.Timeout,
		Client: &http.Client{
			Transport: httpx.NewLoggingRoundTripper(http.DefaultTransport, httpx.WithLogFieldMaxLen(2048)),
		},
	}
}

type guessRequest struct {
	Guess string `json:"guess"`
}

type guessResponse struct {
	Score *float64 `json:"score"`
}

func (c *HTTPClient) server() config.Server {
	return config.Server{BaseURL: c.BaseURL, GuessPath: c.GuessPath, StartPath: c.StartPath}
}

// StartGame asks the server to begin a round. Any 2xx is success and the
// body is ignored.
func (c *HTTPClient) StartGame(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.post(ctx, c.server().StartURL(), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	return nil
}

// Score sends the guess text unchanged and returns the score the server
// computed for it.
func (c *HTTPClient) Score(ctx context.Context, guess string) (*ScoreResponse, error) {
	reqBody, err := json.Marshal(guessRequest{Guess: guess})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal guess request: %w", err)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.post(ctx, c.server().GuessURL(), reqBody)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}

	var parsed guessResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %w (body=%s)", ErrMalformed, err, truncate(body))
	}
	if parsed.Score == nil {
		return nil, fmt.Errorf("%w: missing score (body=%s)", ErrMalformed, truncate(body))
	}

	return &ScoreResponse{Score: *parsed.Score}, nil
}

// post returns the response only for 2xx statuses; the caller closes the body.
func (c *HTTPClient) post(ctx context.Context, url string, body []byte) (*http.Response, error) {
	req, err := c.newRequest(ctx, url, body)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *HTTPClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout > 0 {
		return context.WithTimeout(ctx, c.Timeout)
	}
	return context.WithCancel(ctx)
}

func (c *HTTPClient) newRequest(ctx context.Context, url string, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *HTTPClient) do(req *http.Request) (*http.Response, error) {
	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Code: resp.StatusCode, Body: string(snippet)}
	}
	return resp, nil
}

func truncate(b []byte) string {
	if len(b) > 256 {
		return string(b[:256]) + "..."
	}
	return string(b)
}
