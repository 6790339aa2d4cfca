// Package source fetches archive payloads from the configured remote source.
//
// The fetcher is a pure I/O boundary: it never writes to disk, and it fully
// buffers the payload in memory before reporting success, so a truncated
// stream can never masquerade as a short but valid archive.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Byteram/pget/internal/config"
	pgeterrors "github.com/Byteram/pget/internal/errors"
	"github.com/Byteram/pget/internal/placeholders"
)

// ProgressHook is called as the payload streams into memory, with bytes
// downloaded so far and total bytes. Total is -1 when the response does not
// declare a length.
type ProgressHook func(downloaded, total int64)

// Client fetches archive payloads over HTTP.
type Client struct {
	httpClient   *http.Client
	urlTemplate  string
	branch       string
	formats      []string
	userAgent    string
	progressHook ProgressHook
}

// knownTokens are the placeholder names the fetcher can expand in the
// configured URL template.
var knownTokens = map[string]bool{
	"name":   true,
	"branch": true,
	"format": true,
}

// NewClient creates a Client from the source configuration. The URL template
// is checked up front so a template referencing an unknown placeholder fails
// here rather than mid-fetch.
func NewClient(cfg config.SourceConfig, version string) (*Client, error) {
	for _, token := range placeholders.Extract(cfg.URL) {
		if !knownTokens[token] {
			return nil, &pgeterrors.ConfigError{
				Err: fmt.Errorf("source.url references unknown placeholder {%s}", token),
			}
		}
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		urlTemplate: cfg.URL,
		branch:      cfg.Branch,
		formats:     cfg.Formats,
		userAgent:   "pget/" + version,
	}, nil
}

// SetProgressHook sets the progress callback.
func (c *Client) SetProgressHook(hook ProgressHook) {
	c.progressHook = hook
}

// SetHTTPClient sets the HTTP client (useful for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Fetch retrieves the complete archive payload for an application.
//
// The configured format candidates are tried in order; a 404 moves on to the
// next candidate and exhausting all of them yields ErrNotFound. Any other
// failure aborts immediately with ErrTransport: a candidate is a different
// artifact encoding, never a retry of a failed transfer.
func (c *Client) Fetch(ctx context.Context, name string) ([]byte, error) {
	for _, format := range c.formats {
		url, err := placeholders.Substitute(c.urlTemplate, map[string]string{
			"name":   name,
			"branch": c.branch,
			"format": format,
		})
		if err != nil {
			return nil, fmt.Errorf("expanding source url: %w", err)
		}

		payload, found, err := c.fetchURL(ctx, url)
		if err != nil {
			return nil, err
		}
		if found {
			return payload, nil
		}
	}

	return nil, fmt.Errorf("%w: %q has no candidate at the remote source", pgeterrors.ErrNotFound, name)
}

// fetchURL performs one request. The second return value is false when the
// remote answered 404 for this candidate.
func (c *Client) fetchURL(ctx context.Context, url string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("%w: creating request: %v", pgeterrors.ErrTransport, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", pgeterrors.ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("%w: fetch failed with status %d", pgeterrors.ErrTransport, resp.StatusCode)
	}

	payload, err := c.readAll(resp)
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}

// readAll buffers the response body, reporting progress and verifying the
// byte count against the declared content length.
func (c *Client) readAll(resp *http.Response) ([]byte, error) {
	total := resp.ContentLength
	var payload []byte
	var downloaded int64

	if c.progressHook != nil {
		c.progressHook(0, total)
	}

	buf := make([]byte, 32*1024)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			payload = append(payload, buf[:n]...)
			downloaded += int64(n)
			if c.progressHook != nil {
				c.progressHook(downloaded, total)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: download interrupted: %v", pgeterrors.ErrTransport, err)
		}
	}

	if total >= 0 && downloaded != total {
		return nil, fmt.Errorf("%w: short read: got %d of %d bytes", pgeterrors.ErrTransport, downloaded, total)
	}

	return payload, nil
}
