package bench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPDriver measures goodput by downloading a URL through the shaped
// path for the drive window. The target should serve a payload large
// enough to outlast the window; hitting EOF early just ends the sample
// sooner.
type HTTPDriver struct {
	client    *http.Client
	targetURL string
}

// NewHTTPDriver creates a driver for the given target URL. client may be
// nil to use a dedicated default client.
func NewHTTPDriver(targetURL string, client *http.Client) *HTTPDriver {
	if client == nil {
		client = &http.Client{
			// The per-drive context carries the real deadline.
			Timeout: 0,
		}
	}
	return &HTTPDriver{client: client, targetURL: targetURL}
}

// Drive implements Driver.
func (d *HTTPDriver) Drive(ctx context.Context, window time.Duration) (Measurement, error) {
	driveCtx, cancel := context.WithTimeout(ctx, window)
	defer cancel()

	start := time.Now()

	req, err := http.NewRequestWithContext(driveCtx, http.MethodGet, d.targetURL, nil)
	if err != nil {
		return Measurement{}, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return Measurement{}, fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Measurement{}, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, d.targetURL)
	}

	n, err := io.Copy(io.Discard, resp.Body)
	elapsed := time.Since(start)

	// Deadline expiry is the normal way a drive ends.
	if err != nil && !errors.Is(err, context.DeadlineExceeded) && driveCtx.Err() == nil {
		return Measurement{}, fmt.Errorf("download interrupted after %d bytes: %w", n, err)
	}

	return Measurement{Bytes: n, Elapsed: elapsed}, nil
}
