package stealth

import (
	"net/http"
)

// Transport is an http.RoundTripper that gives every request a browser
// identity and optionally routes it through a proxy:
// Fingerprint → Proxy → Send
type Transport struct {
	Base        http.RoundTripper
	Fingerprint *FingerprintPool
	Proxy       ProxyProvider
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	// The session cookies are bound to one browser; keep its UA stable and
	// only fill in what the caller left empty.
	if t.Fingerprint != nil && req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		fp := t.Fingerprint.Primary()
		req.Header.Set("User-Agent", fp.UserAgent)
		for key, vals := range fp.Headers {
			if req.Header.Get(key) == "" {
				for _, v := range vals {
					req.Header.Add(key, v)
				}
			}
		}
	}

	transport := t.Base
	if t.Proxy != nil {
		transport = t.Proxy.Transport()
	}
	if transport == nil {
		transport = http.DefaultTransport
	}

	return transport.RoundTrip(req)
}
