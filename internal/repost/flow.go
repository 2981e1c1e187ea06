// Package repost runs the interactive repost: list the wardrobe, let the
// operator pick a listing, and recreate it as a fresh one.
package repost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/lukman83/relist/internal/browser"
	"github.com/lukman83/relist/internal/listing"
	"github.com/lukman83/relist/internal/models"
	"github.com/lukman83/relist/internal/ui"
	"github.com/lukman83/relist/internal/vinted"
)

var (
	ErrCSRFUnavailable = errors.New("failed to obtain a CSRF token from /items/new")
	ErrCreateFailed    = errors.New("item creation failed")
)

// Marketplace is the slice of vinted.Client the flow drives.
type Marketplace interface {
	BaseURL() string
	Cookies() map[string]string
	ResolveIdentity() (int64, error)
	ListAll(ctx context.Context, userID int64, opts vinted.ListOptions) ([]models.Raw, error)
	GetItem(ctx context.Context, itemID int64) (models.Raw, error)
	GetUploadEditorDetails(ctx context.Context, itemID int64, csrfToken string) (models.Raw, error)
	UploadPhoto(ctx context.Context, path, tempUUID, csrfToken string) (models.PhotoAssignment, error)
	CreateItem(ctx context.Context, payload *models.CreatePayload, csrfToken string) (models.Raw, error)
	DeleteItem(ctx context.Context, itemID int64, csrfToken string) (models.Raw, error)
	CreateDraft(ctx context.Context, payload *models.CreatePayload, csrfToken string) (models.Raw, error)
	PublishDraft(ctx context.Context, draftID int64, payload *models.CreatePayload, csrfToken string) (models.Raw, error)
	Download(ctx context.Context, rawURL string) ([]byte, string, error)
}

var _ Marketplace = (*vinted.Client)(nil)

// TokenSource yields a CSRF token, or false when none could be found.
type TokenSource interface {
	Extract(ctx context.Context, cookies map[string]string) (string, bool)
}

type Prompter interface {
	Line(msg string) (string, error)
	Confirm(msg string) (bool, error)
}

// DraftFiller saves a listing through the web form in a real browser.
type DraftFiller func(ctx context.Context, cookies map[string]string, data browser.DraftData) (browser.DraftResult, error)

// Progress shows activity while the wardrobe loads; ui.Spinner implements it.
type Progress interface {
	Start(msg string)
	Update(msg string)
	Stop()
}

// Printer writes an API result for the operator.
type Printer func(w io.Writer, v any) error

type Options struct {
	List vinted.ListOptions
	// Browser tries the form-fill path before the API path.
	Browser bool
	// Draft creates through the draft and completion endpoints.
	Draft bool
}

type Flow struct {
	Market    Marketplace
	Tokens    TokenSource
	Prompt    Prompter
	FillDraft DraftFiller
	Print     Printer
	Progress  Progress
	Out       io.Writer
	Log       *slog.Logger
	Now       func() time.Time
	Opts      Options
}

func (f *Flow) defaults() {
	if f.Out == nil {
		f.Out = os.Stdout
	}
	if f.Log == nil {
		f.Log = slog.Default()
	}
	if f.Now == nil {
		f.Now = time.Now
	}
	if f.Print == nil {
		f.Print = printJSON
	}
}

// Run executes the whole interactive flow. Operator cancellations and an
// empty wardrobe return nil.
func (f *Flow) Run(ctx context.Context) error {
	f.defaults()

	loadCtx := ctx
	if f.Progress != nil {
		f.Progress.Start("Loading wardrobe...")
		loadCtx = ui.WithProgress(ctx, f.Progress.Update)
	}
	inv, err := LoadInventory(loadCtx, f.Market, f.Tokens, f.Opts.List, f.Log)
	if f.Progress != nil {
		f.Progress.Stop()
	}
	if err != nil {
		return err
	}
	if len(inv.Listings) == 0 {
		fmt.Fprintln(f.Out, "No items found or request blocked.")
		return nil
	}
	ui.RenderListings(f.Out, inv.Listings, f.Now())

	chosen, ok, err := f.selectListing(inv.Listings)
	if err != nil || !ok {
		return err
	}
	fmt.Fprintf(f.Out, "Selected: %s (ID %d) price=%s\n", chosen.Title, chosen.ID, ui.FormatPrice(chosen.Price))
	yes, err := f.Prompt.Confirm("Repost this item as a new listing?")
	if err != nil || !yes {
		return err
	}

	return f.repost(ctx, chosen)
}

func (f *Flow) selectListing(listings []models.Listing) (models.Listing, bool, error) {
	ans, err := f.Prompt.Line("Select an item number to repost (or blank to exit): ")
	if err != nil || ans == "" {
		return models.Listing{}, false, err
	}
	idx, err := strconv.Atoi(ans)
	if err != nil {
		fmt.Fprintln(f.Out, "Invalid selection")
		return models.Listing{}, false, nil
	}
	if idx < 1 || idx > len(listings) {
		fmt.Fprintln(f.Out, "Out of range")
		return models.Listing{}, false, nil
	}
	return listings[idx-1], true, nil
}

func (f *Flow) repost(ctx context.Context, chosen models.Listing) error {
	csrf, ok := f.Tokens.Extract(ctx, f.Market.Cookies())
	if !ok {
		return ErrCSRFUnavailable
	}

	details, err := f.Market.GetUploadEditorDetails(ctx, chosen.ID, csrf)
	if err != nil {
		f.Log.Warn("editor details unavailable, using listing data", "item_id", chosen.ID, "err", err)
	}
	src := listing.Merge(chosen.Source, listing.EditorSource(details))
	rec, err := listing.Build(src)
	if err != nil {
		f.Log.Warn("merged record unusable, using listing data", "err", err)
		src, rec = chosen.Source, chosen
	}

	dir, err := os.MkdirTemp("", "relist-photos-")
	if err != nil {
		return fmt.Errorf("create photo dir: %w", err)
	}
	defer os.RemoveAll(dir)

	paths := f.downloadPhotos(ctx, dir, rec.PhotoURLs)
	f.Log.Info("photos downloaded", "count", len(paths), "of", len(rec.PhotoURLs))

	if f.Opts.Browser && f.FillDraft != nil {
		done, err := f.tryBrowser(ctx, rec, paths)
		if err != nil || done {
			return err
		}
	}

	sessionID := uuid.NewString()
	photos := f.uploadPhotos(ctx, paths, sessionID, csrf)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	payload := BuildPayload(src, rec, photos, sessionID, f.Opts.Draft)
	if err := f.fillMissing(payload.Body()); err != nil {
		return err
	}

	if len(photos) > 0 {
		if err := f.offerDelete(ctx, chosen.ID, csrf); err != nil {
			return err
		}
	}

	created, err := f.submit(ctx, payload, csrf)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCreateFailed, err)
	}
	fmt.Fprintln(f.Out, "Item created")
	return f.Print(f.Out, created)
}

// tryBrowser reports done when the browser saved the draft. Browser failures
// are not returned; the caller falls back to the API path.
func (f *Flow) tryBrowser(ctx context.Context, rec models.Listing, paths []string) (bool, error) {
	data := browser.DraftData{
		Title:       rec.Title,
		Description: rec.Description,
		PhotoPaths:  paths,
	}
	if rec.Price != nil {
		amount := rec.Price.Amount
		data.Price = &amount
	}

	res, err := f.FillDraft(ctx, f.Market.Cookies(), data)
	switch {
	case ctx.Err() != nil:
		return false, ctx.Err()
	case err != nil:
		f.Log.Warn("browser mode failed, falling back to API path", "err", err)
		return false, nil
	case !res.OK:
		f.Log.Warn("browser automation did not confirm save, falling back to API path", "url", res.CurrentURL)
		return false, nil
	}
	fmt.Fprintln(f.Out, "Draft saved via browser automation.")
	return true, f.Print(f.Out, res)
}

func (f *Flow) offerDelete(ctx context.Context, itemID int64, csrf string) error {
	yes, err := f.Prompt.Confirm("Delete the original item before creating the repost? This cannot be undone.")
	if err != nil || !yes {
		return err
	}
	res, err := f.Market.DeleteItem(ctx, itemID, csrf)
	if err != nil {
		f.Log.Error("failed to delete original item", "item_id", itemID, "err", err)
		fmt.Fprintf(f.Out, "Failed to delete original item: %v\n", err)
		return nil
	}
	fmt.Fprintln(f.Out, "Original item deleted")
	return f.Print(f.Out, res)
}

func (f *Flow) submit(ctx context.Context, payload *models.CreatePayload, csrf string) (models.Raw, error) {
	if payload.Draft == nil {
		return f.Market.CreateItem(ctx, payload, csrf)
	}

	draft, err := f.Market.CreateDraft(ctx, payload, csrf)
	if err != nil {
		return nil, fmt.Errorf("create draft: %w", err)
	}
	id, ok := draftID(draft)
	if !ok {
		return nil, errors.New("create draft: response carried no draft id")
	}
	f.Log.Info("draft created", "draft_id", id)
	out, err := f.Market.PublishDraft(ctx, id, payload, csrf)
	if err != nil {
		return nil, fmt.Errorf("publish draft %d: %w", id, err)
	}
	return out, nil
}

func draftID(resp models.Raw) (int64, bool) {
	for _, key := range []string{"draft", "item"} {
		if obj := listing.Object(resp, key); obj != nil {
			if id, ok := listing.Int(obj, "id"); ok {
				return id, true
			}
		}
	}
	return listing.Int(resp, "id")
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
