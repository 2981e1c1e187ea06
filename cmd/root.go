package cmd

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lukman83/relist/config"
	"github.com/lukman83/relist/internal/browser"
	"github.com/lukman83/relist/internal/csrf"
	"github.com/lukman83/relist/internal/httputil"
	"github.com/lukman83/relist/internal/logger"
	"github.com/lukman83/relist/internal/models"
	"github.com/lukman83/relist/internal/repost"
	"github.com/lukman83/relist/internal/stealth"
	"github.com/lukman83/relist/internal/vinted"
)

var (
	cfg *config.Config
	log *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "relist [curl-file]",
	Short: "Repost old marketplace listings from a copied curl command",
	Long: `relist lists every listing in your wardrobe, oldest first, and recreates
the one you pick as a fresh listing with the same photos and attributes.

Authentication comes from a curl command copied from the browser's network
tab while logged in. Pass the file holding it, or paste it on stdin.`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runRepost,
}

// Root returns the command tree for main to execute.
func Root() *cobra.Command {
	return rootCmd
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("base-url", "", "Marketplace origin (default https://www.vinted.fr)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text, json")
	rootCmd.PersistentFlags().String("delay-profile", "", "Browser typing pace: cautious, normal, aggressive, none")
	rootCmd.PersistentFlags().String("proxy", "", "HTTP or SOCKS5 proxy URL for API calls")
}

func initConfig() {
	cfg = config.DefaultConfig()
	cfg.LoadFromEnv()

	// Override from flags
	if v, _ := rootCmd.PersistentFlags().GetString("base-url"); v != "" {
		cfg.BaseURL = v
	}
	if v, _ := rootCmd.PersistentFlags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v, _ := rootCmd.PersistentFlags().GetString("log-format"); v != "" {
		cfg.LogFormat = v
	}
	if v, _ := rootCmd.PersistentFlags().GetString("delay-profile"); v != "" {
		cfg.DelayProfile = v
	}
	if v, _ := rootCmd.PersistentFlags().GetString("proxy"); v != "" {
		cfg.ProxyURL = v
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	log = logger.New(logger.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	slog.SetDefault(log)
}

// ExitCode maps a command error onto the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, repost.ErrCreateFailed):
		return 2
	default:
		return 1
	}
}

// buildHTTPClient creates the stealth-wrapped HTTP client from config. The
// captured user agent leads the fingerprint pool so the session keeps it.
func buildHTTPClient(userAgent string) (*http.Client, *stealth.FingerprintPool) {
	fpPool := stealth.NewFingerprintPool(userAgent)

	baseTransport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	transport := &stealth.Transport{
		Base:        baseTransport,
		Fingerprint: fpPool,
	}
	if p := stealth.NewHTTPProxyProvider(cfg.ProxyURL); p != nil {
		if err := p.Err(); err != nil {
			log.Warn("ignoring invalid proxy URL", "err", err)
		} else {
			log.Debug("routing API calls through proxy", "proxy", p.Name())
			transport.Proxy = p
		}
	}

	return httputil.NewHTTPClient(transport, nil, cfg.HTTPTimeout), fpPool
}

// session bundles the API client and CSRF extractor for one set of credentials.
type session struct {
	client *vinted.Client
	tokens *csrf.Extractor
}

func newSession(creds *models.Credentials) (*session, error) {
	httpClient, fpPool := buildHTTPClient(creds.UserAgent)

	client, err := vinted.NewClient(creds, vinted.Options{
		BaseURL:    cfg.BaseURL,
		HTTPClient: httpClient,
		Logger:     log,
	})
	if err != nil {
		return nil, err
	}

	tokens := csrf.NewExtractor(log,
		&csrf.BrowserStrategy{
			BaseURL: client.BaseURL(),
			Options: browser.Options{Bin: cfg.BrowserBin},
		},
		&csrf.HTTPStrategy{
			BaseURL:      client.BaseURL(),
			Client:       httpClient,
			Fingerprints: fpPool,
		},
	)
	return &session{client: client, tokens: tokens}, nil
}
