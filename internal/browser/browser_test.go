package browser

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

type fakeDriver struct {
	urls     []string
	cookies  map[string]string
	injected map[string]string
	domain   string
	present  map[string]bool
	typed    map[string]string
	uploaded []string
	clicked  []string

	// onCookies lets a test change state as the login wait polls.
	onCookies func(f *fakeDriver)
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{cookies: map[string]string{}, present: map[string]bool{}, typed: map[string]string{}}
}

func (f *fakeDriver) Navigate(_ context.Context, u string) error {
	f.urls = append(f.urls, u)
	return nil
}

func (f *fakeDriver) SetCookies(c map[string]string, domain string) error {
	f.injected, f.domain = c, domain
	return nil
}

func (f *fakeDriver) CurrentURL() (string, error) {
	if len(f.urls) == 0 {
		return "", nil
	}
	return f.urls[len(f.urls)-1], nil
}

func (f *fakeDriver) PageSource() (string, error) { return "", nil }

func (f *fakeDriver) Cookies() (map[string]string, error) {
	if f.onCookies != nil {
		f.onCookies(f)
	}
	return f.cookies, nil
}

func (f *fakeDriver) Type(selectors []string, text string) (bool, error) {
	for _, s := range selectors {
		if f.present[s] {
			f.typed[s] = text
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDriver) UploadFiles(selectors []string, paths []string) (bool, error) {
	for _, s := range selectors {
		if f.present[s] && len(paths) > 0 {
			f.uploaded = paths
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDriver) Click(selector string) (bool, error) {
	if f.present[selector] {
		f.clicked = append(f.clicked, selector)
		return true, nil
	}
	return false, nil
}

func (f *fakeDriver) ClickText(selector, pattern string) (bool, error) {
	key := selector + " " + pattern
	if f.present[key] {
		f.clicked = append(f.clicked, key)
		return true, nil
	}
	return false, nil
}

func (f *fakeDriver) Close() error { return nil }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCookieDomain(t *testing.T) {
	tests := map[string]string{
		"https://www.vinted.fr":  ".vinted.fr",
		"https://www.vinted.com": ".vinted.com",
		"http://127.0.0.1:8080":  "127.0.0.1",
		"https://vinted.de":      "vinted.de",
	}
	for in, want := range tests {
		if got := CookieDomain(in); got != want {
			t.Errorf("CookieDomain(%q)=%q want %q", in, got, want)
		}
	}
}

func TestStartURL(t *testing.T) {
	want := "https://www.vinted.fr/member/signup/select_type?ref_url=https%3A%2F%2Fwww.vinted.fr%2Fmember%2F42"
	for _, base := range []string{"https://www.vinted.fr", "https://www.vinted.fr/"} {
		if got := StartURL(base, "42"); got != want {
			t.Fatalf("StartURL(%q) = %s", base, got)
		}
	}
}

func TestWaitForLoginNeedsCookieAndProfileURL(t *testing.T) {
	old := pollInterval
	pollInterval = time.Millisecond
	t.Cleanup(func() { pollInterval = old })

	tests := []struct {
		name    string
		baseURL string
	}{
		{"plain base", "https://www.vinted.fr"},
		{"trailing slash", "https://www.vinted.fr/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newFakeDriver()
			d.urls = []string{"https://www.vinted.fr/member/signup/select_type"}
			polls := 0
			d.onCookies = func(f *fakeDriver) {
				polls++
				switch polls {
				case 2:
					f.cookies["v_uid"] = "42"
				case 4:
					f.urls = append(f.urls, "https://www.vinted.fr/member/42-jeanne")
				}
			}

			cookies, err := WaitForLogin(t.Context(), d, tt.baseURL, time.Minute, quietLogger())
			if err != nil {
				t.Fatalf("WaitForLogin: %v", err)
			}
			if cookies["v_uid"] != "42" || polls < 4 {
				t.Fatalf("cookies=%v polls=%d", cookies, polls)
			}
		})
	}
}

func TestWaitForLoginTimeoutReturnsCookies(t *testing.T) {
	old := pollInterval
	pollInterval = time.Millisecond
	t.Cleanup(func() { pollInterval = old })

	d := newFakeDriver()
	d.urls = []string{"https://www.vinted.fr/"}
	d.cookies["anon_id"] = "a"

	cookies, err := WaitForLogin(t.Context(), d, "https://www.vinted.fr", 20*time.Millisecond, quietLogger())
	if !errors.Is(err, ErrLoginTimeout) {
		t.Fatalf("err=%v", err)
	}
	if cookies["anon_id"] != "a" {
		t.Fatalf("cookies=%v", cookies)
	}
}

func TestWaitForLoginHonorsCancel(t *testing.T) {
	d := newFakeDriver()
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	if _, err := WaitForLogin(ctx, d, "https://www.vinted.fr", 0, quietLogger()); !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v", err)
	}
}

func TestFillDraft(t *testing.T) {
	old := settleDelay
	settleDelay = 0
	t.Cleanup(func() { settleDelay = old })

	d := newFakeDriver()
	d.present["input[type='file']"] = true
	d.present["input[id*='title']"] = true
	d.present["textarea[name='description']"] = true
	d.present["input[name='price']"] = true
	d.present["button /brouillon/"] = true

	price := 12.5
	res, err := FillDraft(t.Context(), d, "https://www.vinted.fr", map[string]string{"v_uid": "42"}, DraftData{
		Title:       "Veste",
		Description: "Bon état",
		Price:       &price,
		PhotoPaths:  []string{"/tmp/a.jpg", "/tmp/b.jpg"},
	}, nil)
	if err != nil {
		t.Fatalf("FillDraft: %v", err)
	}

	if !res.OK || !res.Saved || res.Photos != 2 || !strings.HasSuffix(res.CurrentURL, "/items/new") {
		t.Fatalf("res=%+v", res)
	}
	if d.domain != ".vinted.fr" || d.injected["v_uid"] != "42" {
		t.Fatalf("cookies not injected: %q %v", d.domain, d.injected)
	}
	if d.typed["input[id*='title']"] != "Veste" || d.typed["input[name='price']"] != "12.5" {
		t.Fatalf("typed=%v", d.typed)
	}
	if len(d.clicked) != 1 || d.clicked[0] != "button /brouillon/" {
		t.Fatalf("clicked=%v", d.clicked)
	}
}

func TestFillDraftFallsBackToSubmitAndSkipsMissingPrice(t *testing.T) {
	old := settleDelay
	settleDelay = 0
	t.Cleanup(func() { settleDelay = old })

	d := newFakeDriver()
	d.present["input[name='price']"] = true

	res, err := FillDraft(t.Context(), d, "https://www.vinted.fr", nil, DraftData{Title: "x"}, nil)
	if err != nil {
		t.Fatalf("FillDraft: %v", err)
	}
	if res.Saved || res.Photos != 0 {
		t.Fatalf("res=%+v", res)
	}
	if _, ok := d.typed["input[name='price']"]; ok {
		t.Fatalf("price typed without a value")
	}

	d.present["button[type='submit']"] = true
	res, _ = FillDraft(t.Context(), d, "https://www.vinted.fr", nil, DraftData{Title: "x"}, nil)
	if !res.Saved {
		t.Fatalf("expected submit fallback to save")
	}
}
