// Package cli wires the scraper's commands: a human-facing run command
// and a JSON invoke command for schedulers.
package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"pmctrack/internal/browser"
	"pmctrack/internal/config"
	"pmctrack/internal/portal"
	"pmctrack/internal/scrape"
	"pmctrack/internal/storage"
	"pmctrack/internal/telegram"
)

var rootCmd = &cobra.Command{
	Use:   "pmctrack",
	Short: "Track PMC complaint tokens through the citizen portal",
	Long: `pmctrack searches complaint tokens on the PMC citizen portal,
extracts the complaint details and tracking history, and persists them
to a local SQLite file or a shared MySQL database.

Tokens look like T60137. Each run processes its tokens strictly one at
a time with a fixed delay between portal visits.`,
	SilenceUsage: true,
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(invokeCmd)
}

// runtimeDeps is everything a batch needs beyond the token list.
type runtimeDeps struct {
	cfg      *config.Config
	session  *browser.Session
	store    *storage.Store
	pipeline *scrape.Pipeline
	notifier *telegram.Client
}

// setup loads configuration, starts the browser session and opens the
// storage backend. Any error here is fatal to the run; a failed session
// start additionally fires the critical alert.
func setup(ctx context.Context) (*runtimeDeps, error) {
	log.Println("🚀 Starting pmctrack...")

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	notifier := telegram.NewClient(cfg.TelegramBotToken, cfg.TelegramChatID)

	log.Println("📋 Starting browser session...")
	session, err := browser.Acquire(ctx, cfg)
	if err != nil {
		if alertErr := notifier.SendCriticalAlert(ctx, fmt.Sprintf("Browser session failed to start: %v", err)); alertErr != nil {
			log.Println("⚠️  Failed to send Telegram alert:", alertErr)
		}
		return nil, err
	}
	log.Println("✓ Browser session ready")

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		session.Release()
		return nil, err
	}
	if err := store.InitSchema(ctx); err != nil {
		store.Close()
		session.Release()
		return nil, err
	}

	page := portal.NewPMC(cfg.PortalURL)
	pipeline := scrape.New(page, store, scrape.Options{
		SearchTimeout:  cfg.SearchTimeout,
		OverlayTimeout: cfg.OverlayTimeout,
		PollInterval:   cfg.PollInterval,
		TokenDelay:     cfg.TokenDelay,
	})

	return &runtimeDeps{
		cfg:      cfg,
		session:  session,
		store:    store,
		pipeline: pipeline,
		notifier: notifier,
	}, nil
}

// close releases the browser and storage in reverse acquisition order.
func (d *runtimeDeps) close() {
	if err := d.store.Close(); err != nil {
		log.Println("⚠️  Failed to close storage:", err)
	}
	d.session.Release()
}

// sessionRunner binds the pipeline to the browser session's context so
// every chromedp action targets the live tab.
type sessionRunner struct {
	deps *runtimeDeps
}

func (r *sessionRunner) Run(ctx context.Context, rawTokens []string) *scrape.BatchReport {
	return r.deps.pipeline.Run(r.deps.session.Context(), rawTokens)
}

// readTokensFile reads one token per line, skipping blanks and
// #-comments.
func readTokensFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var tokens []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tokens = append(tokens, line)
	}
	return tokens, nil
}
