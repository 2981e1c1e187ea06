package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lukman83/relist/internal/browser"
	"github.com/lukman83/relist/internal/curl"
	"github.com/lukman83/relist/internal/models"
	"github.com/lukman83/relist/internal/prompt"
	"github.com/lukman83/relist/internal/repost"
	"github.com/lukman83/relist/internal/stealth"
	"github.com/lukman83/relist/internal/ui"
	"github.com/lukman83/relist/internal/vinted"
)

func init() {
	rootCmd.Flags().Int("per-page", 0, "Listings per wardrobe page (default 20)")
	rootCmd.Flags().Int("max-pages", 0, "Stop after this many wardrobe pages (0 = all)")
	rootCmd.Flags().Bool("browser", false, "Fill the new-listing form in a real browser and save a draft")
	rootCmd.Flags().Bool("login-browser", false, "Open a browser to log in and reuse its cookies")
	rootCmd.Flags().Int("login-timeout", -1, "Seconds to wait for the browser login (0 = no timeout, default 180)")
	rootCmd.Flags().Bool("keep-login-browser", false, "Leave the login browser open after cookies are captured")
	rootCmd.Flags().Bool("draft", false, "Create through the draft endpoints, then publish")
	rootCmd.Flags().String("format", "json", "Result output format: json, yaml")
}

func runRepost(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	perPage, _ := cmd.Flags().GetInt("per-page")
	maxPages, _ := cmd.Flags().GetInt("max-pages")
	useBrowser, _ := cmd.Flags().GetBool("browser")
	loginBrowser, _ := cmd.Flags().GetBool("login-browser")
	loginTimeout, _ := cmd.Flags().GetInt("login-timeout")
	keepLogin, _ := cmd.Flags().GetBool("keep-login-browser")
	draft, _ := cmd.Flags().GetBool("draft")
	format, _ := cmd.Flags().GetString("format")

	if perPage > 0 {
		cfg.PerPage = perPage
	}
	if maxPages > 0 {
		cfg.MaxPages = maxPages
	}
	if loginTimeout >= 0 {
		cfg.LoginTimeout = time.Duration(loginTimeout) * time.Second
	}
	printer, err := resultPrinter(format)
	if err != nil {
		return err
	}

	text, err := readCurl(cmd, args)
	if err != nil {
		return err
	}
	creds, err := curl.Parse(text)
	if err != nil {
		return err
	}
	log.Debug("parsed curl command", "url", creds.URL, "headers", len(creds.Headers), "cookies", len(creds.Cookies))

	if loginBrowser {
		if err := captureLogin(ctx, cmd.ErrOrStderr(), creds, keepLogin); err != nil {
			return err
		}
	}

	sess, err := newSession(creds)
	if err != nil {
		return err
	}

	flow := &repost.Flow{
		Market:   sess.client,
		Tokens:   sess.tokens,
		Prompt:   prompt.New(cmd.InOrStdin(), cmd.OutOrStdout()),
		Print:    printer,
		Progress: ui.NewSpinner(),
		Out:      cmd.OutOrStdout(),
		Log:      log,
		Opts: repost.Options{
			List: vinted.ListOptions{
				PerPage:  cfg.PerPage,
				Order:    cfg.Order,
				MaxPages: cfg.MaxPages,
			},
			Browser: useBrowser,
			Draft:   draft,
		},
	}
	if useBrowser {
		flow.FillDraft = fillDraftInBrowser(sess.client.BaseURL())
	}
	return flow.Run(ctx)
}

// readCurl returns the curl text from the file argument, or from stdin.
func readCurl(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		b, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("read curl file: %w", err)
		}
		return string(b), nil
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "Paste your cURL command, then Ctrl-D (Linux/macOS) or Ctrl-Z Enter (Windows):")
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read curl from stdin: %w", err)
	}
	return string(b), nil
}

// captureLogin lets the operator log in through a visible browser and merges
// the resulting cookies over the captured ones. A browser that cannot start
// is not fatal; the captured cookies are used as they are.
func captureLogin(ctx context.Context, stderr io.Writer, creds *models.Credentials, keepOpen bool) error {
	d, err := browser.Launch(ctx, browser.Options{Bin: cfg.BrowserBin, Detach: keepOpen})
	if err != nil {
		log.Warn("browser login unavailable, continuing with provided cookies", "err", err)
		return nil
	}
	if !keepOpen {
		defer d.Close()
	}

	fmt.Fprintln(stderr, "Log in to your account in the browser window; waiting for your profile page...")
	cookies, err := browser.Login(ctx, d, cfg.BaseURL, creds.Cookies["v_uid"], cfg.LoginTimeout, log)
	switch {
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, browser.ErrLoginTimeout):
		log.Warn("login not confirmed before timeout, using the cookies the browser has")
	case err != nil:
		log.Warn("browser login failed, continuing with provided cookies", "err", err)
	}
	creds.MergeCookies(cookies)
	log.Info("merged browser cookies", "count", len(cookies))
	return nil
}

func fillDraftInBrowser(baseURL string) repost.DraftFiller {
	return func(ctx context.Context, cookies map[string]string, data browser.DraftData) (browser.DraftResult, error) {
		d, err := browser.Launch(ctx, browser.Options{Headless: cfg.Headless, Bin: cfg.BrowserBin})
		if err != nil {
			return browser.DraftResult{}, err
		}
		defer d.Close()
		delay := stealth.NewHumanDelay(stealth.DelayProfile(cfg.DelayProfile))
		return browser.FillDraft(ctx, d, baseURL, cookies, data, delay)
	}
}
