package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/next-trace/scg-report/report"
)

// maxErrorBody bounds how much of a failed response is kept in the error.
const maxErrorBody = 1024

// HTTPConfig configures the generic JSON sink.
type HTTPConfig struct {
	Endpoint string
	Headers  map[string]string
	Timeout  time.Duration // default 10s; ignored when Client is set
	Client   *http.Client
}

// HTTP posts the wire payload as JSON to an arbitrary collector.
type HTTP struct {
	endpoint string
	headers  map[string]string
	client   *http.Client
}

// StatusError is returned when the collector answers with a non-2xx status.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http transport: unexpected status %d: %s", e.Status, e.Body)
}

func NewHTTP(cfg HTTPConfig) (*HTTP, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("http transport: endpoint is required")
	}

	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}

		client = &http.Client{Timeout: timeout}
	}

	headers := make(map[string]string, len(cfg.Headers))
	for k, v := range cfg.Headers {
		headers[k] = v
	}

	return &HTTP{endpoint: cfg.Endpoint, headers: headers, client: client}, nil
}

func (h *HTTP) SendError(ctx context.Context, r *report.Report) error {
	if r == nil {
		return ErrNilReport
	}

	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("http transport: encode report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("http transport: build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	for k, v := range h.headers {
		req.Header.Set(k, v)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("http transport: post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Status: resp.StatusCode, Body: string(b)}
	}

	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}
