package ui

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/lukman83/relist/internal/listing"
	"github.com/lukman83/relist/internal/models"
)

const maxTitleWidth = 48

// RenderListings prints listings as a numbered table. Row numbers are 1-based
// and match what the operator types at the selection prompt.
func RenderListings(w io.Writer, listings []models.Listing, now time.Time) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tID\tTitle\tPrice\tDays\tFavs\tViews\t")
	for i, l := range listings {
		title := l.Title
		if title == "" {
			title = l.Brand
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%d\t%d\t\n",
			i+1, l.ID, truncate(title, maxTitleWidth), FormatPrice(l.Price),
			listing.DaysSince(l, now), l.Favorites, l.Views)
	}
	tw.Flush()
}

// FormatPrice renders "12.5 EUR", or "" for an absent price.
func FormatPrice(p *models.Price) string {
	if p == nil {
		return ""
	}
	s := strconv.FormatFloat(p.Amount, 'f', -1, 64)
	if p.Currency != "" {
		s += " " + p.Currency
	}
	return s
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
