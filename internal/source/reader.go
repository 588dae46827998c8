// Package source loads the bibliography database from a local path or an HTTP URL.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"bibnorm/internal/config"
	"bibnorm/pkg/utils"
)

// Reader errors.
var (
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	ErrInputTooLarge        = errors.New("input exceeds buffer limit")
)

// Result describes one completed read.
type Result struct {
	Content    string
	Location   string
	Size       int64
	StatusCode int
	Attempts   int
	Duration   time.Duration
}

// Reader reads input databases with config-driven retry logic for remote sources.
type Reader struct {
	client      *http.Client
	retryPolicy config.RetryPolicy
	maxBytes    int64
	headers     map[string]string
}

// NewReaderWithConfig creates a reader from the input section of the config.
func NewReaderWithConfig(input config.InputConfig) *Reader {
	return &Reader{
		client: &http.Client{
			Timeout: input.Retry.GetTimeout(),
		},
		retryPolicy: input.Retry,
		maxBytes:    input.MaxInputBytes(),
	}
}

// WithHeaders sets extra request headers for remote reads.
func (r *Reader) WithHeaders(headers map[string]string) *Reader {
	r.headers = headers

	return r
}

// Read returns the full content at location.
func (r *Reader) Read(ctx context.Context, location string) (string, error) {
	res, err := r.ReadWithMetrics(ctx, location)
	if err != nil {
		return "", err
	}

	return res.Content, nil
}

// ReadWithMetrics reads location and reports size, attempts and timing.
func (r *Reader) ReadWithMetrics(ctx context.Context, location string) (*Result, error) {
	if utils.IsRemote(location) {
		return r.fetch(ctx, location)
	}

	return r.readLocal(location)
}

func (r *Reader) readLocal(path string) (*Result, error) {
	start := time.Now()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input %s: %w", path, err)
	}
	defer f.Close()

	content, err := r.readLimited(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read input %s: %w", path, err)
	}

	return &Result{
		Content:  content,
		Location: path,
		Size:     int64(len(content)),
		Attempts: 1,
		Duration: time.Since(start),
	}, nil
}

func (r *Reader) fetch(ctx context.Context, url string) (*Result, error) {
	var lastErr error

	var lastStatusCode int

	start := time.Now()

	for attempt := 1; attempt <= r.retryPolicy.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, r.retryPolicy.GetRetryDelay(attempt)); err != nil {
				return nil, err
			}
		}

		content, status, err := r.fetchOnce(ctx, url)
		lastStatusCode = status

		if err == nil {
			return &Result{
				Content:    content,
				Location:   url,
				Size:       int64(len(content)),
				StatusCode: status,
				Attempts:   attempt,
				Duration:   time.Since(start),
			}, nil
		}

		lastErr = fmt.Errorf("request failed (attempt %d/%d): %w", attempt, r.retryPolicy.MaxAttempts, err)

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		// Only retry transport failures and temporary statuses.
		if status != 0 && !isRetryableStatus(status) {
			break
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("%w: no attempts made", ErrUnexpectedStatusCode)
	}

	return nil, fmt.Errorf("failed to fetch %s (last status %d): %w", url, lastStatusCode, lastErr)
}

func (r *Reader) fetchOnce(ctx context.Context, url string) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header = utils.BuildHeaders(r.headers)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

		return "", resp.StatusCode, fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)
	}

	body, err := r.readLimited(resp.Body)
	if err != nil {
		return "", resp.StatusCode, err
	}

	return body, resp.StatusCode, nil
}

// readLimited reads at most maxBytes and fails rather than truncating silently.
func (r *Reader) readLimited(src io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(src, r.maxBytes+1))
	if err != nil {
		return "", err
	}

	if int64(len(data)) > r.maxBytes {
		return "", fmt.Errorf("%w: more than %d bytes", ErrInputTooLarge, r.maxBytes)
	}

	return string(data), nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// isRetryableStatus determines if we should retry based on HTTP status code.
func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		http.StatusTooManyRequests,
		http.StatusRequestTimeout,
		http.StatusBadGateway:
		return true
	}

	return false
}
