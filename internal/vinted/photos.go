package vinted

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"

	"github.com/lukman83/relist/internal/listing"
	"github.com/lukman83/relist/internal/models"
)

// UploadPhoto uploads a local image file into the upload session identified
// by tempUUID and returns the photo assignment to reference from the item.
func (c *Client) UploadPhoto(ctx context.Context, path, tempUUID, csrfToken string) (models.PhotoAssignment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.PhotoAssignment{}, fmt.Errorf("read photo: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("photo[type]", "item"); err != nil {
		return models.PhotoAssignment{}, err
	}
	if err := w.WriteField("photo[temp_uuid]", tempUUID); err != nil {
		return models.PhotoAssignment{}, err
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	part := textproto.MIMEHeader{}
	part.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photo[file]"; filename=%q`, filepath.Base(path)))
	part.Set("Content-Type", contentType)
	pw, err := w.CreatePart(part)
	if err != nil {
		return models.PhotoAssignment{}, err
	}
	if _, err := pw.Write(data); err != nil {
		return models.PhotoAssignment{}, err
	}
	if err := w.Close(); err != nil {
		return models.PhotoAssignment{}, err
	}

	h := c.writeHeaders(csrfToken, "/items/new")
	h.Set("Content-Type", w.FormDataContentType())
	req, err := c.newRequest(ctx, "POST", c.url("/api/v2/photos", nil), &buf, h)
	if err != nil {
		return models.PhotoAssignment{}, err
	}
	body, _, err := c.send(req)
	if err != nil {
		return models.PhotoAssignment{}, err
	}
	resp, err := decodeObject(body)
	if err != nil {
		return models.PhotoAssignment{}, fmt.Errorf("upload photo: %w", err)
	}

	id, ok := listing.Int(resp, "id")
	if !ok {
		return models.PhotoAssignment{}, errors.New("upload photo: response carried no photo id")
	}
	orientation, _ := listing.Int(resp, "orientation")
	return models.PhotoAssignment{ID: id, Orientation: int(orientation)}, nil
}
