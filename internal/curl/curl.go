package curl

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/lukman83/relist/internal/models"
)

// ParseError reports a curl command whose target URL could not be located.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "parse curl: " + e.Reason
}

var (
	continuationRe = regexp.MustCompile(`[ \t]*[\\^]\r?\n[ \t]*`)
	urlRe          = regexp.MustCompile(`curl\s+(?:'([^']+)'|"([^"]+)"|(\S+))`)
	quotedArgRe    = regexp.MustCompile(`(?:^|\s)(?:'(https?://[^']+)'|"(https?://[^"]+)")`)
	bareArgRe      = regexp.MustCompile(`(?:^|\s)(https?://[^\s'"]+)`)
	headerRe       = regexp.MustCompile(`(?:-H|--header)\s+(?:'([^':]+):\s*([^']*)'|"([^":]+):\s*([^"]*)")`)
	cookieFlagRe   = regexp.MustCompile(`(?:-b|--cookie)\s+(?:'([^']+)'|"([^"]+)")`)
)

// Parse extracts the target URL, headers and cookie jar from a curl command
// copied out of a browser's network tab.
func Parse(text string) (*models.Credentials, error) {
	text = continuationRe.ReplaceAllString(strings.TrimSpace(text), " ")

	rawURL, err := findURL(text)
	if err != nil {
		return nil, err
	}

	headers := make(map[string]string)
	for _, m := range headerRe.FindAllStringSubmatch(text, -1) {
		k, v := m[1], m[2]
		if k == "" {
			k, v = m[3], m[4]
		}
		headers[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}

	cookies := make(map[string]string)
	if m := cookieFlagRe.FindStringSubmatch(text); m != nil {
		jar := m[1]
		if jar == "" {
			jar = m[2]
		}
		splitCookies(jar, func(name, value string) {
			cookies[name] = value
		})
	}
	if hdr, ok := headers["cookie"]; ok {
		splitCookies(hdr, func(name, value string) {
			if _, exists := cookies[name]; !exists {
				cookies[name] = value
			}
		})
	}

	return &models.Credentials{
		URL:       rawURL,
		Headers:   headers,
		Cookies:   cookies,
		UserAgent: headers["user-agent"],
	}, nil
}

func findURL(text string) (string, error) {
	m := urlRe.FindStringSubmatch(text)
	if m == nil {
		return "", &ParseError{Reason: "could not find URL in curl text"}
	}
	candidate := firstNonEmpty(m[1:]...)

	// Flags may precede the URL, e.g. `curl -X POST 'https://...'`.
	if strings.HasPrefix(candidate, "-") {
		args := cookieFlagRe.ReplaceAllString(headerRe.ReplaceAllString(text, " "), " ")
		hm := quotedArgRe.FindStringSubmatch(args)
		if hm == nil {
			hm = bareArgRe.FindStringSubmatch(args)
		}
		if hm == nil {
			return "", &ParseError{Reason: "could not find URL in curl text"}
		}
		candidate = firstNonEmpty(hm[1:]...)
	}

	u, err := url.Parse(candidate)
	if err != nil {
		return "", &ParseError{Reason: fmt.Sprintf("invalid URL %q: %v", candidate, err)}
	}
	if u.Scheme == "" || u.Host == "" {
		return "", &ParseError{Reason: fmt.Sprintf("invalid URL %q", candidate)}
	}
	return candidate, nil
}

// splitCookies walks "a=b; c=d" pairs, skipping fragments without '='.
func splitCookies(raw string, fn func(name, value string)) {
	for _, part := range strings.Split(raw, ";") {
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		fn(name, strings.TrimSpace(value))
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
