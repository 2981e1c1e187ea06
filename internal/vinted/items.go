package vinted

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/lukman83/relist/internal/httputil"
	"github.com/lukman83/relist/internal/listing"
	"github.com/lukman83/relist/internal/models"
)

// GetItem returns the "item" object of the public item detail endpoint.
func (c *Client) GetItem(ctx context.Context, itemID int64) (models.Raw, error) {
	data, err := c.doJSON(ctx, "GET", fmt.Sprintf("/api/v2/items/%d", itemID), nil, nil, nil)
	if err != nil {
		return nil, err
	}
	item := listing.Object(data, "item")
	if item == nil {
		item = models.Raw{}
	}
	return item, nil
}

// GetUploadEditorDetails returns the full response of the edit-form endpoint,
// which carries the complete attribute set of an owned listing.
func (c *Client) GetUploadEditorDetails(ctx context.Context, itemID int64, csrfToken string) (models.Raw, error) {
	h := http.Header{}
	h.Set("X-Enable-Multiple-Size-Groups", "true")
	h.Set("Referer", fmt.Sprintf("%s/items/%d/edit", c.BaseURL(), itemID))
	if csrfToken != "" {
		h.Set("X-Csrf-Token", csrfToken)
	}
	return c.doJSON(ctx, "GET", fmt.Sprintf("/api/v2/item_upload/items/%d", itemID), nil, nil, h)
}

// CreateItem submits a new listing and returns the server response.
func (c *Client) CreateItem(ctx context.Context, payload *models.CreatePayload, csrfToken string) (models.Raw, error) {
	h := c.writeHeaders(csrfToken, "/items/new")
	h.Set("X-Upload-Form", "true")
	return c.doJSON(ctx, "POST", "/api/v2/item_upload/items", nil, payload, h)
}

// DeleteItem deletes a listing. Success with an empty or non-JSON body
// reports {"ok": true}.
func (c *Client) DeleteItem(ctx context.Context, itemID int64, csrfToken string) (models.Raw, error) {
	h := httputil.APIHeaders(c.BaseURL(), fmt.Sprintf("%s/items/%d", c.BaseURL(), itemID), csrfToken)
	req, err := c.newRequest(ctx, "POST", c.url(fmt.Sprintf("/api/v2/items/%d/delete", itemID), nil), nil, h)
	if err != nil {
		return nil, err
	}
	body, _, err := c.send(req)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return models.Raw{"ok": true}, nil
	}
	out, err := decodeObject(body)
	if err != nil {
		return models.Raw{"ok": true}, nil
	}
	return out, nil
}

// CreateDraft stores the payload as a draft listing.
func (c *Client) CreateDraft(ctx context.Context, payload *models.CreatePayload, csrfToken string) (models.Raw, error) {
	h := c.writeHeaders(csrfToken, "/items/new")
	h.Set("X-Upload-Form", "true")
	return c.doJSON(ctx, "POST", "/api/v2/item_upload/drafts", nil, payload, h)
}

// PublishDraft completes a draft created by CreateDraft, making it live.
func (c *Client) PublishDraft(ctx context.Context, draftID int64, payload *models.CreatePayload, csrfToken string) (models.Raw, error) {
	h := c.writeHeaders(csrfToken, fmt.Sprintf("/items/%d/edit", draftID))
	h.Set("X-Upload-Form", "true")
	return c.doJSON(ctx, "POST", fmt.Sprintf("/api/v2/item_upload/drafts/%d/completion", draftID), nil, payload, h)
}

// Download fetches an arbitrary URL through the session, typically a photo.
func (c *Client) Download(ctx context.Context, rawURL string) ([]byte, string, error) {
	h := http.Header{}
	h.Set("Accept", "image/avif,image/webp,image/apng,image/*,*/*;q=0.8")
	req, err := c.newRequest(ctx, "GET", rawURL, nil, h)
	if err != nil {
		return nil, "", err
	}
	body, header, err := c.send(req)
	if err != nil {
		return nil, "", err
	}
	return body, header.Get("Content-Type"), nil
}
