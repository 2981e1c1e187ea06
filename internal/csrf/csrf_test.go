package csrf

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lukman83/relist/internal/browser"
	"github.com/lukman83/relist/internal/stealth"
)

const token = "0f1e2d3c-4b5a-6978-8796-a5b4c3d2e1f0"

func TestFindToken(t *testing.T) {
	tests := []struct {
		name string
		page string
		want string
	}{
		{"escaped app state", `<script>window.x="{\"CSRF_TOKEN\":\"` + token + `\"}"</script>`, token},
		{"plain json", `{"CSRF_TOKEN":"` + token + `"}`, token},
		{"case insensitive", `{"csrf_token":"` + "0F1E2D3C-4B5A-6978-8796-A5B4C3D2E1F0" + `"}`, "0F1E2D3C-4B5A-6978-8796-A5B4C3D2E1F0"},
		{"meta tag", `<html><head><meta name="csrf-token" content="` + token + `"></head></html>`, token},
		{"meta tag not uuid", `<html><head><meta name="csrf-token" content="abc"></head></html>`, ""},
		{"absent", `<html><body>nothing</body></html>`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindToken(tt.page)
			if got != tt.want || ok != (tt.want != "") {
				t.Fatalf("got %q ok=%v", got, ok)
			}
		})
	}
}

type stubStrategy struct {
	name  string
	token string
	err   error
	calls int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Fetch(context.Context, map[string]string) (string, error) {
	s.calls++
	return s.token, s.err
}

func TestExtractorFallsThrough(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	first := &stubStrategy{name: "browser", err: errors.New("no chrome")}
	second := &stubStrategy{name: "http", token: token}
	third := &stubStrategy{name: "never", token: "other"}

	got, ok := NewExtractor(log, first, second, third).Extract(t.Context(), nil)
	if !ok || got != token {
		t.Fatalf("got %q ok=%v", got, ok)
	}
	if first.calls != 1 || third.calls != 0 {
		t.Fatalf("calls first=%d third=%d", first.calls, third.calls)
	}

	_, ok = NewExtractor(log, &stubStrategy{name: "a", err: errNoToken}).Extract(t.Context(), nil)
	if ok {
		t.Fatalf("expected no token")
	}
}

func TestHTTPStrategy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/items/new" {
			t.Errorf("path=%s", r.URL.Path)
		}
		if c, err := r.Cookie("access_token_web"); err != nil || c.Value != "jwt" {
			t.Errorf("cookie missing: %v", err)
		}
		if r.Header.Get("User-Agent") != "UA/test" {
			t.Errorf("ua=%q", r.Header.Get("User-Agent"))
		}
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		_, _ = gz.Write([]byte(`<script>{\"CSRF_TOKEN\":\"` + token + `\"}</script>`))
		_ = gz.Close()
		w.Header().Set("Content-Encoding", "gzip")
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	s := &HTTPStrategy{BaseURL: srv.URL, Fingerprints: stealth.NewFingerprintPool("UA/test")}
	got, err := s.Fetch(t.Context(), map[string]string{"access_token_web": "jwt"})
	if err != nil || got != token {
		t.Fatalf("got %q err=%v", got, err)
	}
}

func TestHTTPStrategyKeepsCapturedUserAgent(t *testing.T) {
	var agents []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agents = append(agents, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`<meta name="csrf-token" content="` + token + `">`))
	}))
	defer srv.Close()

	s := &HTTPStrategy{BaseURL: srv.URL, Fingerprints: stealth.NewFingerprintPool("Captured/1.0")}
	for range 2 {
		if _, err := s.Fetch(t.Context(), map[string]string{"v_uid": "42"}); err != nil {
			t.Fatal(err)
		}
	}
	if len(agents) != 2 || agents[0] != "Captured/1.0" || agents[1] != "Captured/1.0" {
		t.Fatalf("user agents = %q, want the captured one twice", agents)
	}
}

func TestHTTPStrategyRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	s := &HTTPStrategy{BaseURL: srv.URL}
	if _, err := s.Fetch(t.Context(), nil); err == nil {
		t.Fatalf("expected error")
	}
}

type pageDriver struct {
	browser.Driver
	source  string
	visited []string
	domain  string
	closed  bool
}

func (p *pageDriver) Navigate(_ context.Context, u string) error {
	p.visited = append(p.visited, u)
	return nil
}

func (p *pageDriver) SetCookies(_ map[string]string, domain string) error {
	p.domain = domain
	return nil
}

func (p *pageDriver) PageSource() (string, error) { return p.source, nil }

func (p *pageDriver) Close() error {
	p.closed = true
	return nil
}

func TestBrowserStrategy(t *testing.T) {
	d := &pageDriver{source: `{"CSRF_TOKEN":"` + token + `"}`}
	var gotOpts browser.Options
	s := &BrowserStrategy{
		BaseURL: "https://www.vinted.fr",
		Launch: func(_ context.Context, opts browser.Options) (browser.Driver, error) {
			gotOpts = opts
			return d, nil
		},
	}

	got, err := s.Fetch(t.Context(), map[string]string{"v_uid": "1"})
	if err != nil || got != token {
		t.Fatalf("got %q err=%v", got, err)
	}
	if !gotOpts.Headless || !d.closed || d.domain != ".vinted.fr" {
		t.Fatalf("opts=%+v closed=%v domain=%q", gotOpts, d.closed, d.domain)
	}
	if len(d.visited) != 2 || d.visited[1] != "https://www.vinted.fr/items/new" {
		t.Fatalf("visited=%v", d.visited)
	}
}
