package render

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client captures receipt pages through an HTTP capture service: one GET per
// render, page lifetime fully owned by the service call. Non-2xx responses
// surface as *Error so callers can distinguish a bad page from transport
// failure.
type Client struct {
	// ServiceURL is the capture endpoint, e.g. "http://renderer:7000/capture".
	ServiceURL string

	// HTTPClient is used for capture calls; http.DefaultClient when nil.
	HTTPClient *http.Client

	// Timeout bounds a single capture when the caller's context carries no
	// earlier deadline.
	Timeout time.Duration
}

// Render implements Renderer. The capture service receives the target page
// URL and desired format as query parameters and replies with the artifact
// bytes.
func (c *Client) Render(ctx context.Context, pageURL string, opts Options) ([]byte, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	q := url.Values{}
	q.Set("url", pageURL)
	q.Set("format", string(opts.Format))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ServiceURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("render: build request: %w", err)
	}

	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("render: capture call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, &Error{Status: resp.StatusCode, URL: pageURL}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("render: read artifact: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("render: empty artifact for %s", pageURL)
	}
	return data, nil
}
