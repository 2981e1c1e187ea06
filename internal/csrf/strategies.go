package csrf

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/lukman83/relist/internal/browser"
	"github.com/lukman83/relist/internal/httputil"
	"github.com/lukman83/relist/internal/stealth"
)

var errNoToken = errors.New("no csrf token in page")

// HTTPStrategy loads the item editor page with a plain HTTP request.
type HTTPStrategy struct {
	BaseURL      string
	Client       *http.Client
	Fingerprints *stealth.FingerprintPool
}

func (s *HTTPStrategy) Name() string { return "http" }

func (s *HTTPStrategy) Fetch(ctx context.Context, cookies map[string]string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", s.BaseURL+"/items/new", nil)
	if err != nil {
		return "", err
	}
	req.Header = httputil.BrowserHeaders()
	req.Header.Set("Referer", s.BaseURL+"/")
	if s.Fingerprints != nil {
		// The session cookies belong to the captured browser identity.
		fp := s.Fingerprints.Primary()
		req.Header.Set("User-Agent", fp.UserAgent)
		for k, v := range fp.Headers {
			req.Header[k] = v
		}
	}
	for name, value := range cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	client := s.Client
	if client == nil {
		client = httputil.NewHTTPClient(nil, nil, 0)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch editor page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch editor page: HTTP %d", resp.StatusCode)
	}

	body, err := httputil.ReadBody(resp)
	if err != nil {
		return "", fmt.Errorf("read editor page: %w", err)
	}
	token, ok := FindToken(string(body))
	if !ok {
		return "", errNoToken
	}
	return token, nil
}

// BrowserStrategy renders the editor page in a headless browser, which gets
// past bot checks that reject the plain HTTP request.
type BrowserStrategy struct {
	BaseURL string
	Launch  browser.LaunchFunc
	Options browser.Options
}

func (s *BrowserStrategy) Name() string { return "browser" }

func (s *BrowserStrategy) Fetch(ctx context.Context, cookies map[string]string) (string, error) {
	launch := s.Launch
	if launch == nil {
		launch = browser.Launch
	}
	opts := s.Options
	opts.Headless = true
	d, err := launch(ctx, opts)
	if err != nil {
		return "", err
	}
	defer d.Close()

	if err := d.Navigate(ctx, s.BaseURL+"/"); err != nil {
		return "", err
	}
	if err := d.SetCookies(cookies, browser.CookieDomain(s.BaseURL)); err != nil {
		return "", err
	}
	if err := d.Navigate(ctx, s.BaseURL+"/items/new"); err != nil {
		return "", err
	}
	page, err := d.PageSource()
	if err != nil {
		return "", fmt.Errorf("read page source: %w", err)
	}
	token, ok := FindToken(page)
	if !ok {
		return "", errNoToken
	}
	return token, nil
}
