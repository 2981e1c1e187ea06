package httputil

import "net/http"

// BrowserHeaders returns common browser-like headers for HTML page loads.
func BrowserHeaders() http.Header {
	h := http.Header{}
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	h.Set("Accept-Language", "fr-FR,fr;q=0.9,en-US;q=0.8,en;q=0.7")
	h.Set("Accept-Encoding", "gzip, deflate, br")
	h.Set("Upgrade-Insecure-Requests", "1")
	h.Set("Sec-Fetch-Dest", "document")
	h.Set("Sec-Fetch-Mode", "navigate")
	h.Set("Sec-Fetch-Site", "same-origin")
	h.Set("Sec-Fetch-User", "?1")
	return h
}

// APIHeaders returns the headers the web app sends on write calls to its JSON API.
func APIHeaders(baseURL, referer, csrfToken string) http.Header {
	h := http.Header{}
	h.Set("Accept", "application/json, text/plain, */*")
	h.Set("Origin", baseURL)
	if referer != "" {
		h.Set("Referer", referer)
	}
	if csrfToken != "" {
		h.Set("X-Csrf-Token", csrfToken)
	}
	return h
}
