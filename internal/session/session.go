// Package session provides authenticated HTTP sessions against the
// upstream portals. A session keeps its cookies for the whole
// acquisition run and never follows redirects, since the portals answer
// successful logins with a 302.
package session

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/qst-do/qstreport/pkg/errors"
)

const (
	userAgent  = "Mozilla/5.0 (Windows NT 6.1; WOW64; rv:52.0) Gecko/20100101 Firefox/52.0"
	acceptAjax = "application/json, text/javascript, */*; q=0.01"
	acceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

	// Boundary expected by the portal login endpoint. It validates the
	// exact boundary string, so it cannot be randomized.
	multipartBoundary = "---------------------------195142331314649"

	defaultTimeout = 30 * time.Second
)

// Field is an ordered multipart form field. Order matters to the
// portal, which is why this is not a map.
type Field struct {
	Name  string
	Value string
}

// Client is a cookie-carrying HTTP client scoped to one portal.
type Client struct {
	hc      *http.Client
	baseURL string
	referer string
	log     *zap.Logger
}

// New creates a session client for the portal at baseURL.
func New(baseURL string, timeout time.Duration, log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "create cookie jar")
	}

	return &Client{
		hc: &http.Client{
			Jar:     jar,
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}, nil
}

// SetReferer sets the Referer header sent on subsequent requests.
func (c *Client) SetReferer(referer string) {
	c.referer = referer
}

// BaseURL returns the portal base URL of the session.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get fetches an HTML page.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", acceptHTML)

	return c.do(req)
}

// GetAjax fetches a path the way the portal frontend does, with the
// XMLHttpRequest marker set.
func (c *Client) GetAjax(ctx context.Context, path string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	c.ajaxHeaders(req)

	return c.do(req)
}

// PostForm posts a pre-encoded form body.
func (c *Client) PostForm(ctx context.Context, path, body string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodPost, path, strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	c.ajaxHeaders(req)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")

	return c.do(req)
}

// PostMultipart posts the given fields as a multipart form with the
// fixed portal boundary, preserving field order.
func (c *Client) PostMultipart(ctx context.Context, path string, fields []Field) ([]byte, error) {
	var sb strings.Builder
	for _, f := range fields {
		fmt.Fprintf(&sb, "--%s\r\nContent-Disposition: form-data; name=%q\r\n\r\n%s\r\n", multipartBoundary, f.Name, f.Value)
	}
	fmt.Fprintf(&sb, "--%s--", multipartBoundary)

	req, err := c.newRequest(ctx, http.MethodPost, path, strings.NewReader(sb.String()))
	if err != nil {
		return nil, err
	}
	c.ajaxHeaders(req)
	req.Header.Set("Content-Type", "multipart/form-data; boundary="+multipartBoundary)

	return c.do(req)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	url := path
	if strings.HasPrefix(path, "/") {
		url = c.baseURL + path
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrTransport.Code, apperrors.ErrTransport.Status, "build request")
	}

	req.Header.Set("User-Agent", userAgent)
	if c.referer != "" {
		req.Header.Set("Referer", c.referer)
	}

	return req, nil
}

func (c *Client) ajaxHeaders(req *http.Request) {
	req.Header.Set("Accept", acceptAjax)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrTransport.Code, apperrors.ErrTransport.Status,
			fmt.Sprintf("request %s", req.URL.Path))
	}
	defer resp.Body.Close()

	// the portals answer logins and some listings with 302
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, apperrors.New(apperrors.ErrTransport.Code, apperrors.ErrTransport.Status,
			fmt.Sprintf("request %s: status %d", req.URL.Path, resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrTransport.Code, apperrors.ErrTransport.Status, "read response body")
	}

	c.log.Debug("portal request",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)))

	return body, nil
}
