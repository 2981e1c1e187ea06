package repost

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lukman83/relist/internal/listing"
	"github.com/lukman83/relist/internal/models"
	"github.com/lukman83/relist/internal/ui"
	"github.com/lukman83/relist/internal/vinted"
)

var detailKeys = []string{"favorite_count", "favourite_count", "view_count", "views", "created_at", "created_at_ts"}

// Inventory is the operator's wardrobe, enriched and sorted oldest first.
type Inventory struct {
	UserID   int64
	Listings []models.Listing
}

// Find returns the listing with the given id.
func (inv *Inventory) Find(id int64) (models.Listing, bool) {
	for _, l := range inv.Listings {
		if l.ID == id {
			return l, true
		}
	}
	return models.Listing{}, false
}

// lazyToken fetches a CSRF token on first use and remembers the outcome,
// success or not, for the rest of the run.
type lazyToken struct {
	src     TokenSource
	cookies func() map[string]string
	fetched bool
	token   string
	ok      bool
}

func (l *lazyToken) get(ctx context.Context) (string, bool) {
	if !l.fetched && l.src != nil {
		l.fetched = true
		l.token, l.ok = l.src.Extract(ctx, l.cookies())
	}
	return l.token, l.ok
}

// LoadInventory resolves the user, lists every wardrobe page, fills in missing
// stats and creation dates, and sorts the result oldest first. An empty
// wardrobe is not an error.
func LoadInventory(ctx context.Context, m Marketplace, tokens TokenSource, opts vinted.ListOptions, log *slog.Logger) (*Inventory, error) {
	if log == nil {
		log = slog.Default()
	}
	userID, err := m.ResolveIdentity()
	if err != nil {
		return nil, err
	}
	log.Info("resolved identity", "user_id", userID)

	items, err := m.ListAll(ctx, userID, opts)
	if err != nil {
		return nil, fmt.Errorf("list wardrobe: %w", err)
	}
	inv := &Inventory{UserID: userID}
	if len(items) == 0 {
		return inv, nil
	}

	token := &lazyToken{src: tokens, cookies: m.Cookies}
	for i, item := range items {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		ui.ReportProgress(ctx, fmt.Sprintf("enriching %d/%d", i+1, len(items)))
		items[i] = enrich(ctx, m, item, token, log)
	}

	for _, item := range items {
		l, err := listing.Build(item)
		if err != nil {
			log.Warn("skipping listing", "err", err)
			continue
		}
		inv.Listings = append(inv.Listings, l)
	}
	listing.SortOldestFirst(inv.Listings)
	return inv, nil
}

// enrich runs two independent best-effort passes: the public detail view for
// counters and dates, then the editor view when the date is still missing.
func enrich(ctx context.Context, m Marketplace, item models.Raw, token *lazyToken, log *slog.Logger) models.Raw {
	id, ok := listing.Int(item, "id")
	if !ok {
		return item
	}

	if !listing.HasStats(item) || !listing.HasCreated(item) {
		det, err := m.GetItem(ctx, id)
		if err != nil {
			log.Warn("item detail failed", "item_id", id, "err", err)
		} else {
			for _, k := range detailKeys {
				if v, ok := det[k]; ok && v != nil {
					item[k] = v
				}
			}
		}
	}

	if listing.HasCreated(item) {
		return item
	}
	csrf, ok := token.get(ctx)
	if !ok {
		return item
	}
	ed, err := m.GetUploadEditorDetails(ctx, id, csrf)
	if err != nil {
		log.Warn("editor details failed", "item_id", id, "err", err)
		return item
	}
	if nested := listing.Object(ed, "item"); nested != nil {
		if v, ok := nested["created_at"]; ok && v != nil {
			if _, exists := item["created_at"]; !exists {
				item["created_at"] = v
			}
		}
	}
	if v, ok := ed["created_at_ts"]; ok && v != nil {
		item["created_at_ts"] = v
	}
	return item
}
