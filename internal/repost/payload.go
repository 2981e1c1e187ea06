package repost

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/lukman83/relist/internal/listing"
	"github.com/lukman83/relist/internal/models"
)

const (
	defaultCurrency      = "EUR"
	defaultStatusID      = 1
	defaultPackageSizeID = 1
)

// BuildPayload assembles the creation body for a repost of rec. src is the
// merged raw record rec was built from; it supplies fields the canonical
// listing does not model. draft selects the "draft" envelope.
func BuildPayload(src models.Raw, rec models.Listing, photos []models.PhotoAssignment, sessionID string, draft bool) *models.CreatePayload {
	item := &models.ItemPayload{
		Currency:              defaultCurrency,
		TempUUID:              sessionID,
		Title:                 rec.Title,
		Description:           rec.Description,
		BrandID:               rec.BrandID,
		SizeID:                rec.SizeID,
		CatalogID:             rec.CatalogID,
		StatusID:              rec.StatusID,
		IsUnisex:              truthy(src["is_unisex"]),
		PackageSizeID:         defaultPackageSizeID,
		ColorIDs:              rec.ColorIDs,
		AssignedPhotos:        photos,
		MeasurementLength:     src["measurement_length"],
		MeasurementWidth:      src["measurement_width"],
		Manufacturer:          src["manufacturer"],
		ManufacturerLabelling: src["manufacturer_labelling"],
	}
	if rec.Brand != "" {
		b := rec.Brand
		item.Brand = &b
	}
	if rec.Price != nil {
		item.Price = rec.Price.Amount
		if rec.Price.Currency != "" {
			item.Currency = rec.Price.Currency
		}
	}
	if n, ok := listing.Int(src, "package_size_id"); ok && n > 0 {
		item.PackageSizeID = n
	}
	if attrs, ok := src["item_attributes"].([]any); ok {
		item.ItemAttributes = attrs
	}
	if item.ColorIDs == nil {
		item.ColorIDs = []int64{}
	}
	if item.AssignedPhotos == nil {
		item.AssignedPhotos = []models.PhotoAssignment{}
	}
	if item.ItemAttributes == nil {
		item.ItemAttributes = []any{}
	}

	p := &models.CreatePayload{UploadSessionID: sessionID}
	if draft {
		p.Draft = item
	} else {
		p.Item = item
	}
	return p
}

type missingField struct {
	name   string
	prompt string
	field  func(*models.ItemPayload) **int64
}

var missingFields = []missingField{
	{"brand_id", "Enter brand_id (numeric) or leave blank: ", func(p *models.ItemPayload) **int64 { return &p.BrandID }},
	{"size_id", "Enter size_id (numeric) or leave blank: ", func(p *models.ItemPayload) **int64 { return &p.SizeID }},
	{"catalog_id", "Enter catalog_id (numeric) or leave blank: ", func(p *models.ItemPayload) **int64 { return &p.CatalogID }},
	{"status_id", "Enter status_id (1=new with tag, 2=new without tag, 3=very good, 4=good, 5=satisfactory) or leave blank: ", func(p *models.ItemPayload) **int64 { return &p.StatusID }},
}

// fillMissing asks the operator for identifiers the API requires but the
// source listing lacked. status_id falls back to 1 when still unset.
func (f *Flow) fillMissing(item *models.ItemPayload) error {
	for _, mf := range missingFields {
		dst := mf.field(item)
		if *dst != nil {
			continue
		}
		ans, err := f.Prompt.Line(mf.prompt)
		if err != nil {
			return err
		}
		if ans == "" {
			continue
		}
		n, err := strconv.ParseInt(ans, 10, 64)
		if err != nil {
			f.Log.Warn("ignored invalid value", "field", mf.name, "value", ans)
			fmt.Fprintf(f.Out, "Ignored invalid %s value\n", mf.name)
			continue
		}
		*dst = &n
	}
	if item.StatusID == nil {
		s := int64(defaultStatusID)
		item.StatusID = &s
	}
	return nil
}

func truthy(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case json.Number:
		f, err := b.Float64()
		return err == nil && f != 0
	case float64:
		return b != 0
	case string:
		return b != ""
	}
	return false
}
