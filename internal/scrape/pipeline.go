package scrape

import (
	"context"
	"fmt"
	"log"
	"time"

	"pmctrack/internal/errors"
	"pmctrack/internal/portal"
	"pmctrack/internal/token"
)

// Repository is the persistence boundary the pipeline depends on. The
// concrete backend (SQLite, MySQL) is chosen once at startup; the
// pipeline never branches on it.
type Repository interface {
	UpsertComplaint(ctx context.Context, rec *ComplaintRecord) error
	AppendTrackingHistory(ctx context.Context, tok string, entries []TrackingEntry) error
}

// Options bounds the pipeline's three suspension points: the search
// wait, the overlay wait and the inter-token delay.
type Options struct {
	SearchTimeout  time.Duration
	OverlayTimeout time.Duration
	PollInterval   time.Duration
	TokenDelay     time.Duration
}

// Pipeline sequences validation, search, detail extraction, history
// extraction and persistence for each token — strictly one token at a
// time, inside a per-token error boundary. A failure at any stage is
// converted into a failed ScrapeOutcome; only session startup (handled
// by the caller) can abort a batch.
type Pipeline struct {
	page    portal.Page
	repo    Repository
	limiter *Limiter
	search  *Searcher
	history *HistoryExtractor
}

// New creates a pipeline over a page adapter and a repository.
func New(page portal.Page, repo Repository, opts Options) *Pipeline {
	return &Pipeline{
		page:    page,
		repo:    repo,
		limiter: NewLimiter(opts.TokenDelay),
		search:  NewSearcher(page, opts.SearchTimeout, opts.PollInterval),
		history: NewHistoryExtractor(page, opts.OverlayTimeout, opts.PollInterval),
	}
}

// Run processes every raw token in order and returns one outcome per
// input token, format-invalid ones included, preserving input order.
func (p *Pipeline) Run(ctx context.Context, rawTokens []string) *BatchReport {
	report := &BatchReport{StartedAt: time.Now()}

	browserUsed := false
	for i, raw := range rawTokens {
		tok, err := token.Normalize(raw)
		if err != nil {
			// No browser interaction for format-invalid tokens.
			log.Printf("✗ [%d/%d] %v", i+1, len(rawTokens), err)
			report.Outcomes = append(report.Outcomes, ScrapeOutcome{
				Token:        raw,
				ErrorKind:    ErrInvalidFormat,
				ErrorMessage: err.Error(),
			})
			continue
		}

		// Fixed spacing between consecutive portal visits.
		if browserUsed {
			log.Printf("⏳ Waiting before next token...")
			if waitErr := p.limiter.Wait(ctx); waitErr != nil {
				log.Println("⚠️  Inter-token delay interrupted:", waitErr)
			}
		}
		browserUsed = true

		log.Printf("🔍 [%d/%d] Processing token %s...", i+1, len(rawTokens), tok)
		outcome := p.processToken(ctx, tok)
		if outcome.Success {
			log.Printf("✓ [%d/%d] %s: %s (%d history entries)", i+1, len(rawTokens), tok, outcome.Record.Status, len(outcome.History))
		} else {
			log.Printf("✗ [%d/%d] %s failed: %s", i+1, len(rawTokens), tok, outcome.ErrorMessage)
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	report.FinishedAt = time.Now()
	log.Printf("🎉 Batch complete: %d succeeded, %d failed", report.Succeeded(), report.Failed())
	return report
}

// processToken runs one normalized token through search, extraction and
// persistence. This is the per-token error boundary: every failure,
// panics included, comes back as a failed outcome.
func (p *Pipeline) processToken(ctx context.Context, tok string) (outcome ScrapeOutcome) {
	outcome.Token = tok

	defer func() {
		if r := recover(); r != nil {
			log.Printf("⚠️  Recovered while processing %s: %v", tok, r)
			outcome.Success = false
			outcome.ErrorKind = ErrInternal
			outcome.ErrorMessage = fmt.Sprintf("panic: %v", r)
		}
	}()

	p.search.Reset()
	if err := p.search.Run(ctx, tok); err != nil {
		outcome.ErrorKind, outcome.ErrorMessage = classify(err)
		return outcome
	}

	rec, hasTrack, err := ExtractDetail(ctx, p.page, tok)
	if err != nil {
		outcome.ErrorKind, outcome.ErrorMessage = classify(err)
		return outcome
	}
	outcome.Record = rec

	// A row without a track control has no history overlay; the
	// complaint still counts and persists with empty history.
	if hasTrack {
		hist, err := p.history.Run(ctx, tok)
		if err != nil {
			// Partial outcome: the detail record survives, the token fails.
			outcome.ErrorKind, outcome.ErrorMessage = classify(err)
			return outcome
		}
		MergeOverlayInfo(rec, hist.Info)
		outcome.History = hist.Entries
	} else {
		log.Printf("  → No tracking control for %s, skipping history", tok)
	}

	if err := p.persist(ctx, tok, rec, outcome.History); err != nil {
		log.Printf("⚠️  Failed to persist %s: %v", tok, err)
		outcome.ErrorKind = ErrPersist
		outcome.ErrorMessage = err.Error()
		return outcome
	}

	outcome.Success = true
	return outcome
}

// persist writes the record before its history so no tracking entry can
// ever reference a token without a complaint row.
func (p *Pipeline) persist(ctx context.Context, tok string, rec *ComplaintRecord, entries []TrackingEntry) error {
	if p.repo == nil {
		return nil
	}
	if err := p.repo.UpsertComplaint(ctx, rec); err != nil {
		return errors.NewPersistError(tok, err)
	}
	if len(entries) == 0 {
		return nil
	}
	if err := p.repo.AppendTrackingHistory(ctx, tok, entries); err != nil {
		return errors.NewPersistError(tok, err)
	}
	return nil
}

// classify maps a typed pipeline error to its report classification.
func classify(err error) (kind, message string) {
	switch {
	case errors.IsNoData(err):
		return ErrNoData, err.Error()
	case errors.IsSearchTimeout(err):
		return ErrSearchTimeout, err.Error()
	case errors.IsPersist(err):
		return ErrPersist, err.Error()
	case errors.IsInvalidToken(err):
		return ErrInvalidFormat, err.Error()
	default:
		return ErrPortal, err.Error()
	}
}
