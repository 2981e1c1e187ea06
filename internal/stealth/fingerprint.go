package stealth

import (
	"net/http"
	"sync"
)

// Fingerprint represents a browser identity with matching UA and headers.
type Fingerprint struct {
	UserAgent string
	Headers   http.Header
}

// FingerprintPool rotates through a set of browser fingerprints.
type FingerprintPool struct {
	fingerprints []Fingerprint
	mu           sync.Mutex
	idx          int
}

// NewFingerprintPool creates a pool of desktop browser fingerprints.
// A non-empty preferred UA (usually the one from the captured curl command)
// is served first so the session keeps the identity it was issued to.
func NewFingerprintPool(preferred string) *FingerprintPool {
	fps := defaultFingerprints()
	if preferred != "" {
		fps = append([]Fingerprint{{UserAgent: preferred, Headers: chromeHeaders()}}, fps...)
	}
	return &FingerprintPool{fingerprints: fps}
}

// Next returns the next fingerprint in round-robin order.
func (fp *FingerprintPool) Next() Fingerprint {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	f := fp.fingerprints[fp.idx%len(fp.fingerprints)]
	fp.idx++
	return f
}

// Primary returns the first fingerprint without advancing the rotation.
func (fp *FingerprintPool) Primary() Fingerprint {
	return fp.fingerprints[0]
}

func defaultFingerprints() []Fingerprint {
	return []Fingerprint{
		{
			UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/140.0.0.0 Safari/537.36",
			Headers:   chromeHeaders(),
		},
		{
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/140.0.0.0 Safari/537.36",
			Headers:   chromeHeaders(),
		},
		{
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:143.0) Gecko/20100101 Firefox/143.0",
			Headers:   firefoxHeaders(),
		},
	}
}

func chromeHeaders() http.Header {
	h := http.Header{}
	h.Set("Sec-Ch-Ua", `"Chromium";v="140", "Not=A?Brand";v="24", "Google Chrome";v="140"`)
	h.Set("Sec-Ch-Ua-Mobile", "?0")
	return h
}

func firefoxHeaders() http.Header {
	h := http.Header{}
	h.Set("Te", "trailers")
	return h
}
