// Package steamapi downloads the Steam app catalog.
package steamapi

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"

	"ssb-go/internal/ssb"
)

const userAgent = "ssb-go"

// Client fetches the app catalog from a single URL.
type Client struct {
	url  string
	http *http.Client
}

// NewClient creates a client for url. A zero timeout leaves the request
// bounded only by ctx.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url: url,
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        4,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
				// Encoding is negotiated by FetchCatalog so brotli can be offered.
				DisableCompression: true,
			},
		},
	}
}

// URL returns the catalog URL.
func (c *Client) URL() string {
	return c.url
}

// FetchCatalog downloads the catalog and writes the decoded body to w.
// Any status other than 200 is an error.
func (c *Client) FetchCatalog(ctx context.Context, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return fmt.Errorf("building catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "br, gzip")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetching catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("fetching catalog: unexpected status %s", resp.Status)
	}

	body, err := decodeBody(resp)
	if err != nil {
		return err
	}
	defer body.Close()

	if _, err := io.Copy(w, body); err != nil {
		return fmt.Errorf("reading catalog: %w", err)
	}
	return nil
}

func decodeBody(resp *http.Response) (io.ReadCloser, error) {
	switch enc := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))); enc {
	case "", "identity":
		return io.NopCloser(resp.Body), nil
	case "br":
		return io.NopCloser(brotli.NewReader(resp.Body)), nil
	case "gzip":
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("decoding gzip catalog: %w", err)
		}
		return zr, nil
	default:
		return nil, fmt.Errorf("unsupported catalog encoding %q", enc)
	}
}

// Compile-time check that Client implements ssb.CatalogSource interface
var _ ssb.CatalogSource = (*Client)(nil)
