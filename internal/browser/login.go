package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// ErrLoginTimeout is returned, together with whatever cookies the browser
// holds, when the operator did not finish logging in before the deadline.
var ErrLoginTimeout = errors.New("timed out waiting for browser login")

var pollInterval = time.Second

// Probe is the subset of Driver the login wait polls.
type Probe interface {
	CurrentURL() (string, error)
	Cookies() (map[string]string, error)
}

// StartURL is the page the login browser opens on. After login the site
// redirects to ref_url, which is the member profile page.
func StartURL(baseURL, userID string) string {
	baseURL = strings.TrimRight(baseURL, "/")
	return fmt.Sprintf("%s/member/signup/select_type?ref_url=%s",
		baseURL, url.QueryEscape(baseURL+"/member/"+userID))
}

// WaitForLogin polls p until a persistent login cookie (v_uid or
// access_token_web) exists and the page sits on a member profile URL.
// A non-positive timeout waits until ctx is done.
func WaitForLogin(ctx context.Context, p Probe, baseURL string, timeout time.Duration, log *slog.Logger) (map[string]string, error) {
	if log == nil {
		log = slog.Default()
	}
	baseURL = strings.TrimRight(baseURL, "/")
	profile := regexp.MustCompile(`^` + regexp.QuoteMeta(baseURL) + `/member/\d+`)
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	lastURL := ""
	for {
		cur, err := p.CurrentURL()
		if err == nil && cur != lastURL {
			log.Debug("login browser moved", "url", cur)
			lastURL = cur
		}
		cookies, cerr := p.Cookies()
		if err == nil && cerr == nil && loggedIn(cookies) && profile.MatchString(cur) {
			return cookies, nil
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			last, _ := p.Cookies()
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return last, ErrLoginTimeout
			}
			return last, ctx.Err()
		}
	}
}

func loggedIn(cookies map[string]string) bool {
	_, uid := cookies["v_uid"]
	_, tok := cookies["access_token_web"]
	return uid || tok
}

// Login opens the start page in d and waits for the operator to sign in.
func Login(ctx context.Context, d Driver, baseURL, userID string, timeout time.Duration, log *slog.Logger) (map[string]string, error) {
	if err := d.Navigate(ctx, StartURL(baseURL, userID)); err != nil {
		return nil, err
	}
	return WaitForLogin(ctx, d, baseURL, timeout, log)
}
