package stealth

import (
	"net/http"
	"net/url"
	"sync"
	"time"
)

// ProxyProvider abstracts a proxy backend.
type ProxyProvider interface {
	Transport() http.RoundTripper
	Name() string
}

// HTTPProxyProvider wraps a generic HTTP/SOCKS5 proxy URL. Keep-alives stay
// on: the marketplace ties a session to its exit IP, so a sticky proxy is
// the only kind that works here.
type HTTPProxyProvider struct {
	RawURL    string
	transport http.RoundTripper
	once      sync.Once
	parseErr  error
}

// NewHTTPProxyProvider returns nil for an empty URL.
func NewHTTPProxyProvider(rawURL string) *HTTPProxyProvider {
	if rawURL == "" {
		return nil
	}
	return &HTTPProxyProvider{RawURL: rawURL}
}

func (h *HTTPProxyProvider) Name() string {
	u, err := url.Parse(h.RawURL)
	if err != nil {
		return "proxy"
	}
	return u.Scheme + "://" + u.Host
}

func (h *HTTPProxyProvider) Transport() http.RoundTripper {
	h.once.Do(func() {
		proxyURL, err := url.Parse(h.RawURL)
		if err != nil {
			h.parseErr = err
			h.transport = http.DefaultTransport
			return
		}
		h.transport = &http.Transport{
			Proxy:           http.ProxyURL(proxyURL),
			MaxIdleConns:    10,
			IdleConnTimeout: 90 * time.Second,
		}
	})
	return h.transport
}

// Err returns any error from parsing the proxy URL.
func (h *HTTPProxyProvider) Err() error {
	h.Transport()
	return h.parseErr
}
