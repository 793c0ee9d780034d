// Package browser owns the headless Chrome session used to drive the
// complaint portal.
//
// A session is an explicitly owned handle: acquired once per batch,
// passed by reference through the pipeline, and released on every exit
// path. Each session gets its own uniquely named profile directory so
// concurrent process invocations never collide on browser state.
package browser

import (
	"context"
	"log"
	"os"
	"sync"

	"github.com/chromedp/chromedp"

	"pmctrack/internal/config"
	"pmctrack/internal/errors"
)

// Session is the exclusive handle to one running browser instance.
type Session struct {
	ctx           context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
	profileDir    string
	releaseOnce   sync.Once
}

// Acquire starts a headless browser with an isolated profile directory
// and the configured identity string.
//
// The browser process is launched eagerly so that a startup failure
// surfaces here, before any token is processed. That failure is fatal
// for the whole batch.
func Acquire(parent context.Context, cfg *config.Config) (*Session, error) {
	log.Println("  → Creating browser session...")

	profileDir, err := os.MkdirTemp("", "pmctrack-profile-")
	if err != nil {
		return nil, errors.NewSessionStartError("failed to create profile directory", err)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.UserDataDir(profileDir),
	)
	if cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ChromePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)
	ctx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(log.Printf))

	s := &Session{
		ctx:           ctx,
		cancelBrowser: cancelBrowser,
		cancelAlloc:   cancelAlloc,
		profileDir:    profileDir,
	}

	// Running an empty task forces the browser process to start now.
	if err := chromedp.Run(ctx); err != nil {
		s.Release()
		return nil, errors.NewSessionStartError("failed to start browser", err)
	}

	log.Println("  ✓ Browser session ready (profile:", profileDir+")")
	return s, nil
}

// Context returns the chromedp context for portal operations. The
// session remains the owner; callers must not cancel it directly.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Release shuts the browser down and deletes the profile directory and
// any temporary artifacts. Safe to call more than once; the pipeline
// defers it so it runs on success, error and timeout paths alike.
func (s *Session) Release() {
	s.releaseOnce.Do(func() {
		log.Println("  → Releasing browser session...")
		if s.cancelBrowser != nil {
			s.cancelBrowser()
		}
		if s.cancelAlloc != nil {
			s.cancelAlloc()
		}
		if s.profileDir != "" {
			if err := os.RemoveAll(s.profileDir); err != nil {
				log.Println("  ⚠️  Failed to remove profile directory:", err)
			}
		}
		log.Println("  ✓ Browser session released")
	})
}
