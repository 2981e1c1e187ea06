package browser

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/lukman83/relist/internal/stealth"
)

var (
	photoInputs = []string{
		"input[type='file'][multiple]",
		"input[type='file'][accept*='image']",
		"input[type='file']",
	}
	titleInputs = []string{
		"input[name='title']",
		"input[id*='title']",
		"textarea[name='title']",
		"input[placeholder*='Titre']",
		"input[placeholder*='title' i]",
	}
	descriptionInputs = []string{
		"textarea[name='description']",
		"textarea[id*='description']",
		"textarea[placeholder*='Description' i]",
	}
	priceInputs = []string{
		"input[name='price']",
		"input[id*='price']",
		"input[placeholder*='Prix' i]",
		"input[aria-label*='Prix' i]",
	}
	saveDraftTexts = []string{
		"/Sauvegarder le brouillon/",
		"/brouillon/",
		"/Save draft/",
	}
)

// settleDelay gives the form time to persist the draft after the click.
var settleDelay = 3 * time.Second

type DraftData struct {
	Title       string
	Description string
	Price       *float64
	PhotoPaths  []string
}

type DraftResult struct {
	OK         bool   `json:"ok"`
	Saved      bool   `json:"saved"`
	CurrentURL string `json:"current_url"`
	Photos     int    `json:"photos"`
}

// FillDraft opens the new-listing form with the session cookies, fills it
// from data and clicks the save-draft button.
func FillDraft(ctx context.Context, d Driver, baseURL string, cookies map[string]string, data DraftData, delay *stealth.HumanDelay) (DraftResult, error) {
	if err := d.Navigate(ctx, baseURL+"/"); err != nil {
		return DraftResult{}, err
	}
	if err := d.SetCookies(cookies, CookieDomain(baseURL)); err != nil {
		return DraftResult{}, err
	}
	if err := d.Navigate(ctx, baseURL+"/items/new"); err != nil {
		return DraftResult{}, err
	}

	photos := 0
	if ok, err := d.UploadFiles(photoInputs, data.PhotoPaths); err != nil {
		return DraftResult{}, fmt.Errorf("attach photos: %w", err)
	} else if ok {
		photos = len(data.PhotoPaths)
	}

	fields := []struct {
		name      string
		selectors []string
		value     string
		skip      bool
	}{
		{"title", titleInputs, data.Title, false},
		{"description", descriptionInputs, data.Description, false},
		{"price", priceInputs, formatPrice(data.Price), data.Price == nil},
	}
	for _, f := range fields {
		if f.skip {
			continue
		}
		if err := delay.Wait(ctx); err != nil {
			return DraftResult{}, err
		}
		if _, err := d.Type(f.selectors, f.value); err != nil {
			return DraftResult{}, fmt.Errorf("fill %s: %w", f.name, err)
		}
	}

	if err := delay.Wait(ctx); err != nil {
		return DraftResult{}, err
	}
	saved, err := clickSaveDraft(d)
	if err != nil {
		return DraftResult{}, err
	}
	if err := sleep(ctx, settleDelay); err != nil {
		return DraftResult{}, err
	}

	cur, _ := d.CurrentURL()
	return DraftResult{OK: saved, Saved: saved, CurrentURL: cur, Photos: photos}, nil
}

func clickSaveDraft(d Driver) (bool, error) {
	for _, pattern := range saveDraftTexts {
		ok, err := d.ClickText("button", pattern)
		if err != nil {
			return false, fmt.Errorf("click save draft: %w", err)
		}
		if ok {
			return true, nil
		}
	}
	return d.Click("button[type='submit']")
}

func formatPrice(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
