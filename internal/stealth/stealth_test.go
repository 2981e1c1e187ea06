package stealth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTransportFillsMissingUserAgent(t *testing.T) {
	var gotUA, gotHint string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotHint = r.Header.Get("Sec-Ch-Ua-Mobile")
	}))
	defer srv.Close()

	client := &http.Client{Transport: &Transport{Fingerprint: NewFingerprintPool("captured-ua/1.0")}}
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()

	if gotUA != "captured-ua/1.0" {
		t.Fatalf("ua=%q", gotUA)
	}
	if gotHint != "?0" {
		t.Fatalf("client hint=%q", gotHint)
	}
}

func TestTransportKeepsExplicitUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	client := &http.Client{Transport: &Transport{Fingerprint: NewFingerprintPool("")}}
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	req.Header.Set("User-Agent", "explicit")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	resp.Body.Close()
	if gotUA != "explicit" {
		t.Fatalf("ua=%q", gotUA)
	}
}

func TestFingerprintPoolRotates(t *testing.T) {
	pool := NewFingerprintPool("")
	first := pool.Next()
	second := pool.Next()
	if first.UserAgent == second.UserAgent {
		t.Fatalf("expected rotation, got %q twice", first.UserAgent)
	}
	if pool.Primary().UserAgent != first.UserAgent {
		t.Fatalf("primary should be the first fingerprint")
	}
}

func TestHTTPProxyProvider(t *testing.T) {
	if NewHTTPProxyProvider("") != nil {
		t.Fatalf("empty proxy URL should yield nil provider")
	}
	p := NewHTTPProxyProvider("http://user:pw@proxy.local:8080")
	if p.Err() != nil {
		t.Fatalf("Err: %v", p.Err())
	}
	if p.Name() != "http://proxy.local:8080" {
		t.Fatalf("name=%s", p.Name())
	}
}

func TestHumanDelayRespectsContext(t *testing.T) {
	d := &HumanDelay{MinDelay: time.Hour, MaxDelay: 2 * time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := d.Wait(ctx); err == nil {
		t.Fatalf("expected context error")
	}
	if err := NewHumanDelay(ProfileNone).Wait(context.Background()); err != nil {
		t.Fatalf("none profile: %v", err)
	}
}
