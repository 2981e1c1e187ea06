package ui

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/lukman83/relist/internal/models"
)

func TestRenderListings(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := created.Add(10 * 24 * time.Hour)
	listings := []models.Listing{
		{ID: 11, Title: "Veste en jean", Price: &models.Price{Amount: 12.5, Currency: "EUR"}, CreatedAt: &created, Favorites: 4, Views: 90},
		{ID: 12, Brand: "Zara"},
	}

	var buf bytes.Buffer
	RenderListings(&buf, listings, now)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %q", buf.String())
	}
	for _, want := range []string{"Veste en jean", "12.5 EUR", "10", "90"} {
		if !strings.Contains(lines[1], want) {
			t.Fatalf("row 1 missing %q: %q", want, lines[1])
		}
	}
	if !strings.Contains(lines[2], "Zara") || !strings.Contains(lines[2], "?") {
		t.Fatalf("row 2 should fall back to brand and unknown days: %q", lines[2])
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdefgh", 5); got != "ab..." {
		t.Fatalf("got %q", got)
	}
	if got := truncate("ééé", 5); got != "ééé" {
		t.Fatalf("got %q", got)
	}
}

func TestReportProgress(t *testing.T) {
	var got string
	ctx := WithProgress(context.Background(), func(msg string) { got = msg })
	ReportProgress(ctx, "page 2")
	if got != "page 2" {
		t.Fatalf("got %q", got)
	}
	ReportProgress(context.Background(), "ignored")
}
