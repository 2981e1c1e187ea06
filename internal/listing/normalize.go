// Package listing maps the summary, detail and editor item payloads onto one
// canonical models.Listing.
package listing

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/lukman83/relist/internal/models"
)

// msThreshold separates second from millisecond timestamps.
const msThreshold = 10_000_000_000

var photoURLKeys = []string{"full_size_url", "url", "image_url", "original_url", "original"}

var photoFormatKeys = []string{"xxl", "xl", "l", "m", "original"}

// Merge overlays sources left to right; a key present in a later source
// replaces the earlier value even when it is null.
func Merge(sources ...models.Raw) models.Raw {
	out := make(models.Raw)
	for _, s := range sources {
		for k, v := range s {
			out[k] = v
		}
	}
	return out
}

// EditorSource flattens an editor payload so the nested "item" object wins.
func EditorSource(raw models.Raw) models.Raw {
	if raw == nil {
		return nil
	}
	return Merge(raw, Object(raw, "item"))
}

// Normalize merges sources and builds the canonical record.
func Normalize(sources ...models.Raw) (models.Listing, error) {
	return Build(Merge(sources...))
}

// Build converts a merged payload into a Listing. It fails when "id" is not an integer.
func Build(src models.Raw) (models.Listing, error) {
	id, ok := Int(src, "id")
	if !ok {
		return models.Listing{}, fmt.Errorf("listing id %v is not an integer", src["id"])
	}

	l := models.Listing{
		ID:          id,
		Title:       String(src, "title"),
		Description: String(src, "description"),
		Price:       ResolvePrice(src),
		Brand:       brand(src),
		BrandID:     IntPtr(src, "brand_id"),
		SizeID:      IntPtr(src, "size_id"),
		CatalogID:   IntPtr(src, "catalog_id"),
		StatusID:    IntPtr(src, "status_id"),
		ColorIDs:    intList(src["color_ids"]),
		PhotoURLs:   PhotoURLs(src),
		Favorites:   firstCount(src, "favorite_count", "favourite_count", "favorites_count", "favourites_count"),
		Views:       firstCount(src, "view_count", "views"),
		Source:      src,
	}
	if t, ok := CreatedAt(src); ok {
		l.CreatedAt = &t
	}
	return l, nil
}

// ResolvePrice returns nil when no usable amount exists; it never defaults to zero.
func ResolvePrice(src models.Raw) *models.Price {
	amount := src["price_numeric"]
	currency := String(src, "price_currency")
	if currency == "" {
		currency = String(src, "currency")
	}

	if amount == nil {
		switch p := src["price"].(type) {
		case models.Raw, map[string]any:
			obj := Object(src, "price")
			amount = obj["amount"]
			if currency == "" {
				currency = String(obj, "currency_code")
			}
		default:
			amount = p
		}
	}

	f, ok := toAmount(amount)
	if !ok {
		return nil
	}
	return &models.Price{Amount: f, Currency: currency}
}

// PhotoURLs returns one URL per photo entry, in order, skipping entries with none.
func PhotoURLs(src models.Raw) []string {
	photos, ok := src["photos"].([]any)
	if !ok || len(photos) == 0 {
		photos, _ = src["item_photos"].([]any)
	}

	var urls []string
	for _, p := range photos {
		entry := asRaw(p)
		if entry == nil {
			continue
		}
		if u := photoURL(entry); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

func photoURL(entry models.Raw) string {
	for _, k := range photoURLKeys {
		if s := String(entry, k); s != "" {
			return s
		}
	}
	formats := Object(entry, "formats")
	for _, k := range photoFormatKeys {
		if f := Object(formats, k); f != nil {
			if s := String(f, "url"); s != "" {
				return s
			}
		}
	}
	return ""
}

// CreatedAt resolves the creation instant in UTC from, in order, created_at_ts,
// an ISO-8601 created_at (top level or nested under "item"), or the earliest
// photo high_resolution timestamp.
func CreatedAt(src models.Raw) (time.Time, bool) {
	if t, ok := fromTimestamp(src["created_at_ts"]); ok {
		return t, true
	}

	created := String(src, "created_at")
	if created == "" {
		created = String(Object(src, "item"), "created_at")
	}
	if created != "" {
		if t, ok := parseISO(created); ok {
			return t, true
		}
	}

	photos, _ := src["photos"].([]any)
	var best float64
	found := false
	for _, p := range photos {
		hr := Object(asRaw(p), "high_resolution")
		ts, ok := toNumber(hr["timestamp"])
		if !ok {
			continue
		}
		if !found || ts < best {
			best, found = ts, true
		}
	}
	if found {
		return unixFloat(best), true
	}
	return time.Time{}, false
}

func fromTimestamp(v any) (time.Time, bool) {
	if _, isString := v.(string); isString {
		return time.Time{}, false
	}
	if i, ok := toInt(v); ok {
		if i > msThreshold {
			return time.UnixMilli(i).UTC(), true
		}
		return time.Unix(i, 0).UTC(), true
	}
	f, ok := toNumber(v)
	if !ok {
		return time.Time{}, false
	}
	if f > msThreshold {
		f /= 1000
	}
	return unixFloat(f), true
}

func unixFloat(sec float64) time.Time {
	whole := int64(sec)
	frac := sec - float64(whole)
	return time.Unix(whole, int64(frac*float64(time.Second))).UTC()
}

var isoLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseISO(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse("2006-01-02 15:04:05.999999999Z07:00", s); err == nil {
		return t.UTC(), true
	}
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SortOldestFirst orders listings by creation date; unknown dates go last and
// keep their relative order.
func SortOldestFirst(listings []models.Listing) {
	sort.SliceStable(listings, func(i, j int) bool {
		a, b := listings[i].CreatedAt, listings[j].CreatedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
}

// DaysSince renders whole days elapsed since creation, or "?" when unknown.
func DaysSince(l models.Listing, now time.Time) string {
	if l.CreatedAt == nil {
		return "?"
	}
	days := int64(now.Sub(*l.CreatedAt) / (24 * time.Hour))
	if days < 0 {
		days = 0
	}
	return strconv.FormatInt(days, 10)
}

// HasStats reports whether the payload carries any favourite or view counter.
func HasStats(src models.Raw) bool {
	for _, k := range []string{"favorite_count", "favourite_count", "view_count", "views"} {
		if present(src, k) {
			return true
		}
	}
	return false
}

// HasCreated reports whether the payload carries a creation field.
func HasCreated(src models.Raw) bool {
	return present(src, "created_at") || present(src, "created_at_ts")
}

func brand(src models.Raw) string {
	if s := String(src, "brand_title"); s != "" {
		return s
	}
	if s := String(src, "brand"); s != "" {
		return s
	}
	return String(Object(src, "brand"), "title")
}

func firstCount(src models.Raw, keys ...string) int64 {
	for _, k := range keys {
		if n, ok := toInt(src[k]); ok && n != 0 {
			return n
		}
	}
	return 0
}

// intList reads a list of ids, dropping repeats but keeping first-seen order.
func intList(v any) []int64 {
	vals, _ := v.([]any)
	var out []int64
	seen := make(map[int64]bool, len(vals))
	for _, x := range vals {
		if n, ok := toInt(x); ok && !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

func asRaw(v any) models.Raw {
	switch m := v.(type) {
	case models.Raw:
		return m
	case map[string]any:
		return models.Raw(m)
	}
	return nil
}
