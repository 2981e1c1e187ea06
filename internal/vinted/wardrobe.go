package vinted

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/lukman83/relist/internal/listing"
	"github.com/lukman83/relist/internal/models"
	"github.com/lukman83/relist/internal/ui"
)

const (
	DefaultPerPage = 20
	DefaultOrder   = "relevance"
)

type ListOptions struct {
	PerPage int
	Order   string
	// MaxPages stops pagination after that many pages; 0 means unbounded.
	MaxPages int
}

func (o ListOptions) withDefaults() ListOptions {
	if o.PerPage <= 0 {
		o.PerPage = DefaultPerPage
	}
	if o.Order == "" {
		o.Order = DefaultOrder
	}
	return o
}

// ListPage fetches one page of a user's wardrobe.
func (c *Client) ListPage(ctx context.Context, userID int64, page int, opts ListOptions) ([]models.Raw, models.Pagination, error) {
	opts = opts.withDefaults()
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(opts.PerPage))
	q.Set("order", opts.Order)

	data, err := c.doJSON(ctx, "GET", fmt.Sprintf("/api/v2/wardrobe/%d/items", userID), q, nil, nil)
	if err != nil {
		return nil, models.Pagination{}, err
	}

	items := rawList(data["items"])
	if len(items) == 0 {
		items = rawList(data["catalog_items"])
	}
	return items, parsePagination(listing.Object(data, "pagination")), nil
}

// ListAll walks wardrobe pages until the reported total is reached, a short
// page arrives when no total is reported, or MaxPages is hit.
func (c *Client) ListAll(ctx context.Context, userID int64, opts ListOptions) ([]models.Raw, error) {
	opts = opts.withDefaults()
	var all []models.Raw
	for page := 1; ; page++ {
		items, pag, err := c.ListPage(ctx, userID, page, opts)
		if err != nil {
			return all, fmt.Errorf("list page %d: %w", page, err)
		}
		all = append(all, items...)
		ui.ReportProgress(ctx, fmt.Sprintf("page %d: %d listings so far", page, len(all)))

		if opts.MaxPages > 0 && page >= opts.MaxPages {
			break
		}
		if !pag.HasTotal {
			if len(items) < opts.PerPage {
				break
			}
			continue
		}
		current := pag.CurrentPage
		if current <= 0 {
			current = page
		}
		if current >= pag.TotalPages {
			break
		}
	}
	return all, nil
}

func parsePagination(p models.Raw) models.Pagination {
	var out models.Pagination
	if p == nil {
		return out
	}
	if v, ok := listing.Int(p, "current_page"); ok {
		out.CurrentPage = int(v)
	}
	if v, ok := listing.Int(p, "per_page"); ok {
		out.PerPage = int(v)
	}
	if v, ok := listing.Int(p, "total_entries"); ok {
		out.TotalEntries = int(v)
	}
	if v, ok := listing.Int(p, "total_pages"); ok {
		out.TotalPages = int(v)
		out.HasTotal = true
	}
	return out
}

func rawList(v any) []models.Raw {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]models.Raw, 0, len(list))
	for _, e := range list {
		switch m := e.(type) {
		case map[string]any:
			out = append(out, models.Raw(m))
		case models.Raw:
			out = append(out, m)
		}
	}
	return out
}
