// Package browser drives a real Chrome instance for the steps the JSON API
// cannot cover: interactive login, CSRF scraping, and filling the web form.
package browser

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Driver is the page-level surface the rest of the program needs. Selector
// helpers report false, nil when no element matched.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	SetCookies(cookies map[string]string, domain string) error
	CurrentURL() (string, error)
	PageSource() (string, error)
	Cookies() (map[string]string, error)
	Type(selectors []string, text string) (bool, error)
	UploadFiles(selectors []string, paths []string) (bool, error)
	Click(selector string) (bool, error)
	ClickText(selector, pattern string) (bool, error)
	Close() error
}

// LaunchFunc opens a fresh driver. Production code uses Launch; tests swap in fakes.
type LaunchFunc func(ctx context.Context, opts Options) (Driver, error)

type Options struct {
	Headless bool
	// Bin overrides the browser binary; ROD_BROWSER_BIN is used when empty.
	Bin string
	// Detach leaves the browser running after this process exits.
	Detach bool
}

// Rod is the go-rod implementation of Driver.
type Rod struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
}

var _ Driver = (*Rod)(nil)

// Launch starts a browser and opens one stealth page in it.
func Launch(ctx context.Context, opts Options) (Driver, error) {
	l := launcher.New().
		Context(ctx).
		Headless(opts.Headless).
		Leakless(!opts.Detach).
		Logger(io.Discard)
	bin := opts.Bin
	if bin == "" {
		bin = os.Getenv("ROD_BROWSER_BIN")
	}
	if bin != "" {
		l = l.Bin(bin)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	page, err := stealth.Page(b)
	if err != nil {
		_ = b.Close()
		l.Kill()
		return nil, fmt.Errorf("open page: %w", err)
	}
	err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  1440,
		Height: 900,
	})
	if err != nil {
		_ = b.Close()
		l.Kill()
		return nil, fmt.Errorf("set viewport: %w", err)
	}

	return &Rod{launcher: l, browser: b, page: page}, nil
}

func (r *Rod) Navigate(ctx context.Context, pageURL string) error {
	p := r.page.Context(ctx)
	if err := p.Navigate(pageURL); err != nil {
		return fmt.Errorf("navigate %s: %w", pageURL, err)
	}
	timed := p.Timeout(20 * time.Second)
	if err := timed.WaitLoad(); err == nil {
		_ = timed.WaitDOMStable(time.Second, 0.1)
	}
	return ctx.Err()
}

func (r *Rod) SetCookies(cookies map[string]string, domain string) error {
	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for name, value := range cookies {
		params = append(params, &proto.NetworkCookieParam{
			Name:   name,
			Value:  value,
			Domain: domain,
			Path:   "/",
		})
	}
	if err := r.page.SetCookies(params); err != nil {
		return fmt.Errorf("set cookies: %w", err)
	}
	return nil
}

func (r *Rod) CurrentURL() (string, error) {
	info, err := r.page.Info()
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

func (r *Rod) PageSource() (string, error) {
	return r.page.HTML()
}

func (r *Rod) Cookies() (map[string]string, error) {
	cs, err := r.page.Cookies(nil)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(cs))
	for _, c := range cs {
		if c.Name != "" {
			out[c.Name] = c.Value
		}
	}
	return out, nil
}

func (r *Rod) first(selectors []string) (*rod.Element, error) {
	for _, sel := range selectors {
		has, el, err := r.page.Has(sel)
		if err != nil {
			return nil, fmt.Errorf("query %q: %w", sel, err)
		}
		if has {
			return el, nil
		}
	}
	return nil, nil
}

func (r *Rod) Type(selectors []string, text string) (bool, error) {
	el, err := r.first(selectors)
	if err != nil || el == nil {
		return false, err
	}
	_ = el.SelectAllText()
	if err := el.Input(text); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Rod) UploadFiles(selectors []string, paths []string) (bool, error) {
	if len(paths) == 0 {
		return false, nil
	}
	el, err := r.first(selectors)
	if err != nil || el == nil {
		return false, err
	}
	if err := el.SetFiles(paths); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Rod) Click(selector string) (bool, error) {
	el, err := r.first([]string{selector})
	if err != nil || el == nil {
		return false, err
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return false, err
	}
	return true, nil
}

// ClickText clicks the first element matching selector whose text matches
// pattern, a JavaScript regex literal such as "/brouillon/".
func (r *Rod) ClickText(selector, pattern string) (bool, error) {
	has, el, err := r.page.HasR(selector, pattern)
	if err != nil || !has {
		return false, err
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Rod) Close() error {
	_ = r.page.Close()
	err := r.browser.Close()
	r.launcher.Cleanup()
	return err
}

// CookieDomain returns the domain cookies are scoped to for a site, e.g.
// ".vinted.fr" for https://www.vinted.fr.
func CookieDomain(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	host := u.Hostname()
	if strings.Count(host, ".") >= 2 && strings.HasPrefix(host, "www.") {
		return "." + strings.TrimPrefix(host, "www.")
	}
	return host
}
