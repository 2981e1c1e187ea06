package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lukman83/relist/internal/models"
	"github.com/lukman83/relist/internal/repost"
	"github.com/lukman83/relist/internal/vinted"
)

// fakeMarket implements the read side of repost.Marketplace; write calls panic.
type fakeMarket struct {
	repost.Marketplace

	items  []models.Raw
	detail map[int64]models.Raw
	editor map[int64]models.Raw
	opts   vinted.ListOptions
}

func (m *fakeMarket) Cookies() map[string]string      { return map[string]string{"v_uid": "42"} }
func (m *fakeMarket) ResolveIdentity() (int64, error) { return 42, nil }

func (m *fakeMarket) ListAll(_ context.Context, _ int64, opts vinted.ListOptions) ([]models.Raw, error) {
	m.opts = opts
	return m.items, nil
}

func (m *fakeMarket) GetItem(_ context.Context, id int64) (models.Raw, error) {
	if d, ok := m.detail[id]; ok {
		return d, nil
	}
	return nil, &vinted.HTTPError{Method: "GET", StatusCode: 404}
}

func (m *fakeMarket) GetUploadEditorDetails(_ context.Context, id int64, _ string) (models.Raw, error) {
	if d, ok := m.editor[id]; ok {
		return d, nil
	}
	return nil, &vinted.HTTPError{Method: "GET", StatusCode: 403}
}

type staticToken struct {
	token string
}

func (s staticToken) Extract(context.Context, map[string]string) (string, bool) {
	return s.token, s.token != ""
}

func newService(m *fakeMarket, token string) *Service {
	return &Service{
		Market: m,
		Tokens: staticToken{token: token},
		List:   vinted.ListOptions{PerPage: 20},
		Log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:    func() time.Time { return time.Unix(1_700_000_000, 0).Add(10 * 24 * time.Hour) },
	}
}

func callTool(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content = %T, want TextContent", res.Content[0])
	}
	return text.Text
}

func TestListListings(t *testing.T) {
	m := &fakeMarket{
		items: []models.Raw{
			{"id": json.Number("2"), "title": "newer", "created_at_ts": json.Number("1700000000"), "favourite_count": json.Number("3"), "view_count": json.Number("9")},
			{"id": json.Number("1"), "title": "older", "created_at_ts": json.Number("1690000000"), "favourite_count": json.Number("0"), "view_count": json.Number("1")},
		},
	}
	svc := newService(m, "")

	res, err := svc.handleListListings(t.Context(), callTool("list_listings", map[string]any{"per_page": float64(5), "max_pages": float64(2)}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}
	if m.opts.PerPage != 5 || m.opts.MaxPages != 2 {
		t.Errorf("list options = %+v, want per_page 5 max_pages 2", m.opts)
	}

	var got []struct {
		ID        int64  `json:"id"`
		Title     string `json:"title"`
		DaysSince string `json:"days_since"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 2 {
		t.Fatalf("listings = %+v, want oldest first", got)
	}
	if got[1].DaysSince != "10" {
		t.Errorf("days_since = %q, want 10", got[1].DaysSince)
	}
}

func TestGetListingMergesEditor(t *testing.T) {
	m := &fakeMarket{
		detail: map[int64]models.Raw{7: {"id": json.Number("7"), "title": "public", "price": "12,50"}},
		editor: map[int64]models.Raw{7: {"item": map[string]any{"id": json.Number("7"), "title": "editor", "brand_id": json.Number("55")}}},
	}
	svc := newService(m, "tok")

	res, err := svc.handleGetListing(t.Context(), callTool("get_listing", map[string]any{"id": float64(7)}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}
	var got struct {
		Title   string `json:"title"`
		BrandID int64  `json:"brand_id"`
		Price   struct {
			Amount float64 `json:"amount"`
		} `json:"price"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatal(err)
	}
	if got.Title != "editor" || got.BrandID != 55 || got.Price.Amount != 12.5 {
		t.Errorf("listing = %+v", got)
	}
}

func TestGetListingErrors(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing id", map[string]any{}},
		{"unknown id", map[string]any{"id": float64(404)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(&fakeMarket{}, "")
			res, err := svc.handleGetListing(t.Context(), callTool("get_listing", tt.args))
			if err != nil {
				t.Fatal(err)
			}
			if !res.IsError {
				t.Errorf("expected tool error, got %s", resultText(t, res))
			}
		})
	}
}

func TestBearerAuth(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	h := bearerAuth("secret", next)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic secret", http.StatusUnauthorized},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"ok", "Bearer secret", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusUnauthorized && rec.Header().Get("WWW-Authenticate") == "" {
				t.Error("missing WWW-Authenticate header")
			}
		})
	}
}

func TestHealthz(t *testing.T) {
	srv := httptest.NewServer(newHTTPHandler("secret", newService(&fakeMarket{}, "")))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"ok"`) {
		t.Errorf("healthz = %d %s", resp.StatusCode, body)
	}

	resp, err = http.Post(srv.URL+"/mcp", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unauthenticated /mcp = %d, want 401", resp.StatusCode)
	}
}
