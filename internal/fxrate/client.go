package fxrate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rezonia/invoice-utils/internal/model"
)

const (
	// DefaultBaseURL is the BNR site hosting the yearly feeds
	DefaultBaseURL = "https://bnr.ro"

	// DefaultTimeout bounds a single feed download
	DefaultTimeout = 10 * time.Second
)

// Client downloads yearly rate feeds
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithBaseURL overrides the feed host
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient sets the HTTP client used for downloads
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the download timeout of the default HTTP client
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient = &http.Client{Timeout: timeout}
	}
}

// NewClient creates a feed client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FeedURL returns the feed address for year
func (c *Client) FeedURL(year int) string {
	return fmt.Sprintf("%s/files/xml/years/nbrfxrates%d.xml", c.baseURL, year)
}

// FetchYear downloads and decodes the feed for year.
// Failures are *model.FeedError of kind ErrFeedTransport or ErrFeedMalformed.
func (c *Client) FetchYear(ctx context.Context, year int) (*Feed, error) {
	url := c.FeedURL(year)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, model.NewFeedError(model.ErrFeedTransport, url, "failed to build request", err)
	}
	req.Header.Set("Accept", "text/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, model.NewFeedError(model.ErrFeedTransport, url, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, model.NewFeedError(model.ErrFeedTransport, url, "unexpected status "+resp.Status, nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, model.NewFeedError(model.ErrFeedTransport, url, "failed to read body", err)
	}

	feed, err := ParseFeed(body)
	if err != nil {
		return nil, model.NewFeedError(model.ErrFeedMalformed, url, "invalid XML", err)
	}
	return feed, nil
}
