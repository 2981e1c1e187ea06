package models

import "time"

// Raw is an API payload decoded with json.Number preservation.
type Raw map[string]any

// Credentials is the bundle recovered from a copied curl command.
type Credentials struct {
	URL       string            `json:"url"`
	Headers   map[string]string `json:"headers"`
	Cookies   map[string]string `json:"cookies"`
	UserAgent string            `json:"user_agent,omitempty"`
}

// MergeCookies overlays cookies onto the bundle; incoming values win.
func (c *Credentials) MergeCookies(cookies map[string]string) {
	if c.Cookies == nil {
		c.Cookies = make(map[string]string, len(cookies))
	}
	for k, v := range cookies {
		c.Cookies[k] = v
	}
}

type Price struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency,omitempty"`
}

// Listing is the canonical record built from summary, detail and editor payloads.
type Listing struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Price       *Price     `json:"price,omitempty"`
	Brand       string     `json:"brand,omitempty"`
	BrandID     *int64     `json:"brand_id,omitempty"`
	SizeID      *int64     `json:"size_id,omitempty"`
	CatalogID   *int64     `json:"catalog_id,omitempty"`
	StatusID    *int64     `json:"status_id,omitempty"`
	ColorIDs    []int64    `json:"color_ids,omitempty"`
	PhotoURLs   []string   `json:"photo_urls,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	Favorites   int64      `json:"favorites"`
	Views       int64      `json:"views"`

	Source Raw `json:"-"`
}

type Pagination struct {
	CurrentPage  int `json:"current_page"`
	TotalPages   int `json:"total_pages"`
	PerPage      int `json:"per_page"`
	TotalEntries int `json:"total_entries"`

	// HasTotal is false when the response did not report total_pages.
	HasTotal bool `json:"-"`
}

type PhotoAssignment struct {
	ID          int64 `json:"id"`
	Orientation int   `json:"orientation"`
}

type ShipmentPrices struct {
	Domestic      *float64 `json:"domestic"`
	International *float64 `json:"international"`
}

// ItemPayload is the item body accepted by the item_upload endpoints.
type ItemPayload struct {
	ID                    *int64            `json:"id"`
	Currency              string            `json:"currency"`
	TempUUID              string            `json:"temp_uuid"`
	Title                 string            `json:"title"`
	Description           string            `json:"description"`
	BrandID               *int64            `json:"brand_id"`
	Brand                 *string           `json:"brand"`
	SizeID                *int64            `json:"size_id"`
	CatalogID             *int64            `json:"catalog_id"`
	ISBN                  *string           `json:"isbn"`
	IsUnisex              bool              `json:"is_unisex"`
	StatusID              *int64            `json:"status_id"`
	VideoGameRatingID     *int64            `json:"video_game_rating_id"`
	Price                 float64           `json:"price"`
	PackageSizeID         int64             `json:"package_size_id"`
	ShipmentPrices        ShipmentPrices    `json:"shipment_prices"`
	ColorIDs              []int64           `json:"color_ids"`
	AssignedPhotos        []PhotoAssignment `json:"assigned_photos"`
	MeasurementLength     any               `json:"measurement_length"`
	MeasurementWidth      any               `json:"measurement_width"`
	ItemAttributes        []any             `json:"item_attributes"`
	Manufacturer          any               `json:"manufacturer"`
	ManufacturerLabelling any               `json:"manufacturer_labelling"`
}

// CreatePayload wraps an ItemPayload under "item" for direct creation or
// under "draft" for the two-phase draft flow.
type CreatePayload struct {
	Item            *ItemPayload `json:"item,omitempty"`
	Draft           *ItemPayload `json:"draft,omitempty"`
	FeedbackID      *int64       `json:"feedback_id"`
	PushUp          bool         `json:"push_up"`
	Parcel          any          `json:"parcel"`
	UploadSessionID string       `json:"upload_session_id"`
}

// Body returns whichever of Item or Draft is set.
func (p *CreatePayload) Body() *ItemPayload {
	if p.Item != nil {
		return p.Item
	}
	return p.Draft
}
