// Package csrf recovers the anti-forgery token the web app embeds in its
// item editor page. The API rejects write calls without it.
package csrf

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	tokenRe = regexp.MustCompile(`(?i)\\?"CSRF_TOKEN\\?":\\?"([0-9a-f-]{36})\\?"`)
	uuidRe  = regexp.MustCompile(`(?i)^[0-9a-f-]{36}$`)
)

// Strategy is one way of obtaining a token.
type Strategy interface {
	Name() string
	Fetch(ctx context.Context, cookies map[string]string) (string, error)
}

// Extractor tries its strategies in order until one yields a token.
type Extractor struct {
	strategies []Strategy
	log        *slog.Logger
}

func NewExtractor(log *slog.Logger, strategies ...Strategy) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{strategies: strategies, log: log}
}

// Extract never fails loudly: every strategy error is logged at debug level
// and ok is false when all of them came up empty.
func (e *Extractor) Extract(ctx context.Context, cookies map[string]string) (string, bool) {
	for _, s := range e.strategies {
		if ctx.Err() != nil {
			return "", false
		}
		token, err := s.Fetch(ctx, cookies)
		if err != nil {
			e.log.Debug("csrf strategy failed", "strategy", s.Name(), "err", err)
			continue
		}
		if token != "" {
			e.log.Debug("csrf token found", "strategy", s.Name())
			return token, true
		}
	}
	return "", false
}

// FindToken looks for the token in an HTML page, first in the serialized app
// state and then in a csrf-token meta tag.
func FindToken(page string) (string, bool) {
	if m := tokenRe.FindStringSubmatch(page); m != nil {
		return m[1], true
	}
	return metaToken(page)
}

func metaToken(page string) (string, bool) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return "", false
	}
	var found string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "meta" {
			var name, content string
			for _, a := range n.Attr {
				switch strings.ToLower(a.Key) {
				case "name":
					name = strings.ToLower(a.Val)
				case "content":
					content = strings.TrimSpace(a.Val)
				}
			}
			if name == "csrf-token" && uuidRe.MatchString(content) {
				found = content
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return found, found != ""
}
