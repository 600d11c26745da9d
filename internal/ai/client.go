// Package ai is the boundary to the generative text-completion service.
// A Completer sends exactly one request per call: no retries, no streaming.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// Completer turns a prompt into the model's raw text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type sendFunc func(ctx context.Context, prompt string) (string, error)

type client struct {
	cfg      Config
	http     *http.Client
	observer Observer
	send     sendFunc
}

// New builds the Completer for cfg.Provider.
func New(cfg Config, observer Observer) (Completer, error) {
	if observer == nil {
		observer = NoopObserver{}
	}
	c := &client{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		observer: observer,
	}

	switch cfg.Provider {
	case ProviderGemini, "":
		if cfg.APIKey == "" {
			return nil, errors.New("ai: gemini provider requires GOOGLE_API_KEY")
		}
		c.send = c.sendGemini
	case ProviderOllama:
		c.send = c.sendOllama
	default:
		return nil, fmt.Errorf("ai: unknown provider %q", cfg.Provider)
	}
	return c, nil
}

func (c *client) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	if c.cfg.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	text, err := c.send(ctx, prompt)
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrEmptyResponse
	}
	if err != nil {
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			err = ErrTimeout
		case isConnectionError(err):
			err = fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}

	c.observer.OnCallComplete(CallEvent{
		Provider:  c.cfg.Provider,
		Model:     c.cfg.Model,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
		ErrorCode: errorCode(err),
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

func (c *client) postJSON(ctx context.Context, url string, body any, headers map[string]string, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, truncate(string(respBody), 512))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", ErrUpstream, err)
	}
	return nil
}

func isConnectionError(err error) bool {
	var netErr *net.OpError
	return errors.As(err, &netErr)
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrEmptyResponse):
		return "EMPTY"
	case errors.Is(err, ErrUpstream):
		return "UPSTREAM"
	default:
		return "UNKNOWN"
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
