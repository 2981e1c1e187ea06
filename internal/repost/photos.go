package repost

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lukman83/relist/internal/models"
)

// downloadPhotos saves each URL into dir and returns the local paths in the
// original order. Failed downloads are logged and skipped.
func (f *Flow) downloadPhotos(ctx context.Context, dir string, urls []string) []string {
	var paths []string
	for i, u := range urls {
		if ctx.Err() != nil {
			break
		}
		body, contentType, err := f.Market.Download(ctx, u)
		if err != nil {
			f.Log.Warn("photo download failed", "url", u, "err", err)
			continue
		}
		path := filepath.Join(dir, fmt.Sprintf("photo_%02d%s", i+1, extensionFor(contentType)))
		if err := os.WriteFile(path, body, 0o600); err != nil {
			f.Log.Warn("photo write failed", "path", path, "err", err)
			continue
		}
		paths = append(paths, path)
	}
	return paths
}

// uploadPhotos binds every local file to the upload session and returns the
// assignments that succeeded.
func (f *Flow) uploadPhotos(ctx context.Context, paths []string, sessionID, csrf string) []models.PhotoAssignment {
	var out []models.PhotoAssignment
	for _, p := range paths {
		if ctx.Err() != nil {
			break
		}
		a, err := f.Market.UploadPhoto(ctx, p, sessionID, csrf)
		if err != nil {
			f.Log.Warn("photo upload failed", "file", filepath.Base(p), "err", err)
			continue
		}
		out = append(out, a)
	}
	return out
}

func extensionFor(contentType string) string {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "png"):
		return ".png"
	case strings.Contains(ct, "webp"):
		return ".webp"
	default:
		return ".jpg"
	}
}
