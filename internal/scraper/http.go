package scraper

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client fetches listing pages and images. It never follows redirects and
// never retries: the site answers a page index past the end with a
// redirect, which the crawl treats like any other non-200 status.
type Client struct {
	http *resty.Client
}

// NewClient constructs a Client with pooled connections and TLS >= 1.2.
//
// Parameters:
//   - timeout: per-request deadline; zero leaves requests without one.
//   - userAgent: value for the "User-Agent" header (empty string disables it).
func NewClient(timeout time.Duration, userAgent string) *Client {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
		Proxy:               http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
	}

	rc := resty.New().
		SetTransport(transport).
		SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}))
	if timeout > 0 {
		rc.SetTimeout(timeout)
	}
	if userAgent != "" {
		rc.SetHeader("User-Agent", userAgent)
	}
	return &Client{http: rc}
}

// Page is one fetched listing page.
type Page struct {
	URL        string
	StatusCode int
	Body       []byte
}

// OK reports whether the page can be parsed. Anything but 200 ends the crawl.
func (p *Page) OK() bool {
	return p.StatusCode == http.StatusOK
}

// Fetch performs a single GET. Non-200 responses are not errors; the caller
// inspects Page.StatusCode. Only transport failures are returned as errors.
func (c *Client) Fetch(ctx context.Context, pageURL string) (*Page, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(pageURL)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", pageURL, err)
	}
	return &Page{
		URL:        pageURL,
		StatusCode: res.StatusCode(),
		Body:       res.Body(),
	}, nil
}

// Download streams the body of a GET into w. A non-200 status is an error
// and nothing is written.
func (c *Client) Download(ctx context.Context, fileURL string, w io.Writer) (int64, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(fileURL)
	if err != nil {
		return 0, fmt.Errorf("get %s: %w", fileURL, err)
	}
	body := res.RawBody()
	defer body.Close()

	if res.StatusCode() != http.StatusOK {
		return 0, fmt.Errorf("get %s: %s", fileURL, res.Status())
	}
	n, err := io.Copy(w, body)
	if err != nil {
		return n, fmt.Errorf("read %s: %w", fileURL, err)
	}
	return n, nil
}

// PageURL returns the URL of listing page n. Page 1 is the source URL
// itself; later pages carry a "page" query parameter.
func PageURL(source string, n int) (string, error) {
	if n == 1 {
		return source, nil
	}
	u, err := url.Parse(source)
	if err != nil {
		return "", fmt.Errorf("parse source url: %w", err)
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(n))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// sleepCtx sleeps for the given duration or returns early if the context is canceled.
func sleepCtx(ctx context.Context, dur time.Duration) error {
	if dur <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(dur)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
