package scrape

import (
	"context"
	"log"
	"time"

	"pmctrack/internal/portal"
)

// HistoryState tracks the history extractor through one token.
type HistoryState int

const (
	HistoryClosed HistoryState = iota
	HistoryOpening
	HistoryWaiting
	HistoryExtracting
	HistoryClosing
)

func (s HistoryState) String() string {
	switch s {
	case HistoryClosed:
		return "closed"
	case HistoryOpening:
		return "opening"
	case HistoryWaiting:
		return "waiting"
	case HistoryExtracting:
		return "extracting"
	case HistoryClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// HistoryResult carries everything the overlay yielded for one token.
// TimedOut marks the soft case where the overlay never appeared: the
// history is empty but the complaint detail remains usable.
type HistoryResult struct {
	Info     *portal.OverlayInfo
	Entries  []TrackingEntry
	TimedOut bool
}

// HistoryExtractor opens the tracking overlay, waits for it within its
// own bounded timeout (distinct from the search timeout), extracts the
// history rows in rendering order, and always closes the overlay before
// the pipeline advances — a stuck overlay would corrupt the next
// token's navigation.
type HistoryExtractor struct {
	page    portal.Page
	timeout time.Duration
	poll    time.Duration
	state   HistoryState
}

// NewHistoryExtractor creates a history extractor bound to a page adapter.
func NewHistoryExtractor(page portal.Page, timeout, poll time.Duration) *HistoryExtractor {
	return &HistoryExtractor{
		page:    page,
		timeout: timeout,
		poll:    poll,
		state:   HistoryClosed,
	}
}

// State returns the extractor's current state.
func (h *HistoryExtractor) State() HistoryState {
	return h.state
}

// Run extracts the tracking history for one token. The overlay close in
// the deferred block runs on every path, including extraction errors.
//
// Opening and extracting share one bounded context so a stalled overlay
// interaction expires instead of hanging the batch; the close gets its
// own budget off the caller's context, since the extraction budget may
// already be spent by the time it runs.
func (h *HistoryExtractor) Run(ctx context.Context, tok string) (result *HistoryResult, err error) {
	result = &HistoryResult{}

	exCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	h.state = HistoryOpening
	if openErr := h.page.OpenOverlay(exCtx); openErr != nil {
		h.state = HistoryClosed
		return nil, openErr
	}

	defer func() {
		h.state = HistoryClosing
		h.close(ctx, tok)
		h.state = HistoryClosed
	}()

	h.state = HistoryWaiting
	appeared, waitErr := h.awaitOverlay(exCtx)
	if waitErr != nil {
		return nil, waitErr
	}
	if !appeared {
		// Soft failure: the detail record stands on its own.
		log.Printf("  ⚠️  History overlay for %s did not appear within %v, treating history as empty", tok, h.timeout)
		result.TimedOut = true
		return result, nil
	}

	h.state = HistoryExtracting
	info, infoErr := h.page.OverlayInfo(exCtx)
	if infoErr != nil {
		return nil, infoErr
	}
	result.Info = info

	rows, rowsErr := h.page.HistoryRows(exCtx)
	if rowsErr != nil {
		return nil, rowsErr
	}

	for _, row := range rows {
		result.Entries = append(result.Entries, TrackingEntry{
			Token:      tok,
			ActionDate: row.ActionDate,
			FromUser:   row.FromUser,
			ToUser:     row.ToUser,
			Status:     row.Status,
			Remark:     row.Remark,
		})
	}

	return result, nil
}

// awaitOverlay polls until the overlay renders or the bounded wait
// elapses. Returns false (not an error) on timeout.
func (h *HistoryExtractor) awaitOverlay(ctx context.Context) (bool, error) {
	deadline := time.Now().Add(h.timeout)
	for {
		visible, err := h.page.OverlayVisible(ctx)
		if err != nil {
			return false, err
		}
		if visible {
			return true, nil
		}
		if time.Now().After(deadline) {
			return false, nil
		}
		select {
		case <-ctx.Done():
			return false, nil
		case <-time.After(h.poll):
		}
	}
}

// close dismisses the overlay and confirms it is gone, on its own
// bounded context. Failures are logged, not returned: by this point the
// token's data is already in hand and the next token gets a fresh
// navigation anyway.
func (h *HistoryExtractor) close(parent context.Context, tok string) {
	ctx, cancel := context.WithTimeout(parent, h.timeout)
	defer cancel()

	if err := h.page.CloseOverlay(ctx); err != nil {
		log.Printf("  ⚠️  Failed to close history overlay for %s: %v", tok, err)
	}

	for {
		closed, err := h.page.OverlayClosed(ctx)
		if err != nil {
			log.Printf("  ⚠️  Could not confirm overlay closure for %s: %v", tok, err)
			return
		}
		if closed {
			return
		}
		select {
		case <-ctx.Done():
			log.Printf("  ⚠️  Overlay for %s still visible after close", tok)
			return
		case <-time.After(h.poll):
		}
	}
}
