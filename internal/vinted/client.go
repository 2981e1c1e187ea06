// Package vinted wraps the marketplace's private web API behind a typed client
// that authenticates with cookies captured from a browser session.
package vinted

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/lukman83/relist/internal/httputil"
	"github.com/lukman83/relist/internal/models"
)

const DefaultBaseURL = "https://www.vinted.fr"

// ErrIdentityUnresolved means neither session cookie yields a numeric user id.
var ErrIdentityUnresolved = errors.New("could not determine user id from cookies (need v_uid or access_token_web)")

// HTTPError is returned for every non-2xx API response.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 512 {
		body = body[:512] + "..."
	}
	if body == "" {
		return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.URL, e.StatusCode, body)
}

// skipHeaders are captured headers the session must not replay: hop-by-hop
// and framing headers, and raw cookies, which live in the jar instead.
var skipHeaders = map[string]bool{
	"content-length":  true,
	"content-type":    true,
	"host":            true,
	"authority":       true,
	"cookie":          true,
	"cookies":         true,
	"accept-encoding": true,
	"connection":      true,
}

type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client holds one persistent session: a cookie jar seeded from the captured
// browser cookies plus the safe subset of captured headers.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	jar     http.CookieJar
	headers http.Header
	log     *slog.Logger
}

func NewClient(creds *models.Credentials, opts Options) (*Client, error) {
	if creds == nil {
		return nil, errors.New("vinted: credentials are nil")
	}
	rawBase := strings.TrimRight(opts.BaseURL, "/")
	if rawBase == "" {
		rawBase = DefaultBaseURL
	}
	base, err := url.Parse(rawBase)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("vinted: invalid base URL %q", rawBase)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	cookies := make([]*http.Cookie, 0, len(creds.Cookies))
	for name, value := range creds.Cookies {
		cookies = append(cookies, &http.Cookie{Name: name, Value: value, Path: "/"})
	}
	jar.SetCookies(base, cookies)

	var hc http.Client
	if opts.HTTPClient != nil {
		hc = *opts.HTTPClient
	} else {
		hc = *httputil.NewHTTPClient(nil, nil, 0)
	}
	hc.Jar = jar

	headers := http.Header{}
	headers.Set("Accept", "application/json, text/plain, */*")
	for k, v := range creds.Headers {
		lk := strings.ToLower(k)
		if skipHeaders[lk] || strings.HasPrefix(lk, ":") {
			continue
		}
		headers.Set(k, v)
	}

	return &Client{
		baseURL: base,
		http:    &hc,
		jar:     jar,
		headers: headers,
		log:     opts.Logger,
	}, nil
}

// BaseURL returns the marketplace origin, without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Cookie returns the current session value of a cookie, or "".
func (c *Client) Cookie(name string) string {
	for _, ck := range c.jar.Cookies(c.baseURL) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

// Cookies returns a snapshot of the session cookies for the base URL.
func (c *Client) Cookies() map[string]string {
	out := make(map[string]string)
	for _, ck := range c.jar.Cookies(c.baseURL) {
		out[ck.Name] = ck.Value
	}
	return out
}

func (c *Client) url(path string, query url.Values) string {
	u := c.baseURL.String() + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) newRequest(ctx context.Context, method, rawURL string, body io.Reader, extra http.Header) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header[k] = append([]string(nil), v...)
	}
	for k, v := range extra {
		req.Header[k] = v
	}
	return req, nil
}

// send performs the request and returns the decoded body; non-2xx responses
// become *HTTPError.
func (c *Client) send(req *http.Request) ([]byte, http.Header, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := httputil.ReadBody(resp)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s: read body: %w", req.Method, req.URL.Path, err)
	}
	c.log.Debug("api call", "method", req.Method, "path", req.URL.Path, "status", resp.StatusCode, "bytes", len(body))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.Header, &HTTPError{
			Method:     req.Method,
			URL:        req.URL.String(),
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}
	return body, resp.Header, nil
}

// doJSON sends an optional JSON payload and decodes a JSON object response.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, payload any, extra http.Header) (models.Raw, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
		if extra == nil {
			extra = http.Header{}
		}
		extra.Set("Content-Type", "application/json")
	}

	req, err := c.newRequest(ctx, method, c.url(path, query), body, extra)
	if err != nil {
		return nil, err
	}
	respBody, _, err := c.send(req)
	if err != nil {
		return nil, err
	}
	out, err := decodeObject(respBody)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return out, nil
}

func decodeObject(b []byte) (models.Raw, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out models.Raw
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if out == nil {
		out = models.Raw{}
	}
	return out, nil
}

// writeHeaders builds the headers the web app attaches to item_upload calls.
func (c *Client) writeHeaders(csrfToken, referer string) http.Header {
	h := httputil.APIHeaders(c.BaseURL(), c.BaseURL()+referer, csrfToken)
	h.Set("X-Enable-Multiple-Size-Groups", "true")
	if anon := c.Cookie("anon_id"); anon != "" {
		h.Set("X-Anon-Id", anon)
	}
	return h
}
