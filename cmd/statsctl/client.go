package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"hwstats-agent/internal/monitoring"
)

// statsClient fetches snapshots from a running agent, retrying transport
// errors and 5xx responses.
type statsClient struct {
	baseURL string
	http    *http.Client
}

func newStatsClient(baseURL string, retries int, waitMin, waitMax time.Duration) *statsClient {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = retries
	retryClient.RetryWaitMin = waitMin
	retryClient.RetryWaitMax = waitMax
	retryClient.Logger = nil // suppress default logging

	return &statsClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    retryClient.StandardClient(),
	}
}

// Fetch returns the raw JSON body of the snapshot route for mode.
func (c *statsClient) Fetch(ctx context.Context, mode monitoring.Mode) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+string(mode), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", mode, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d: %s", mode, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("fetch %s: response is not JSON", mode)
	}
	return body, nil
}

func indentJSON(body []byte) ([]byte, error) {
	var out bytes.Buffer
	if err := json.Indent(&out, body, "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}
