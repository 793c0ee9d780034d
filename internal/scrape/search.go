package scrape

import (
	"context"
	"log"
	"time"

	"pmctrack/internal/errors"
	"pmctrack/internal/portal"
)

// SearchState tracks the search executor through one token.
type SearchState int

const (
	SearchIdle SearchState = iota
	SearchNavigating
	SearchSubmitting
	SearchWaiting
	SearchFound
	SearchNotFound
	SearchTimedOut
	SearchErrored
)

func (s SearchState) String() string {
	switch s {
	case SearchIdle:
		return "idle"
	case SearchNavigating:
		return "navigating"
	case SearchSubmitting:
		return "submitting"
	case SearchWaiting:
		return "waiting"
	case SearchFound:
		return "found"
	case SearchNotFound:
		return "not_found"
	case SearchTimedOut:
		return "timed_out"
	case SearchErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Searcher drives one token search: navigate, submit, then poll until a
// populated result panel or an explicit no-data indicator appears, or
// the timeout elapses. All three terminal failures are per-token.
type Searcher struct {
	page    portal.Page
	timeout time.Duration
	poll    time.Duration
	state   SearchState
}

// NewSearcher creates a search executor bound to a page adapter.
func NewSearcher(page portal.Page, timeout, poll time.Duration) *Searcher {
	return &Searcher{
		page:    page,
		timeout: timeout,
		poll:    poll,
		state:   SearchIdle,
	}
}

// State returns the executor's current state.
func (s *Searcher) State() SearchState {
	return s.state
}

// Reset returns the executor to idle. The pipeline calls this before
// every token regardless of the previous outcome.
func (s *Searcher) Reset() {
	s.state = SearchIdle
}

// Run searches one normalized token. A nil return means a populated
// result panel is on screen. NoData, timeout and portal errors are
// reported through the typed errors of the errors package.
//
// The whole search shares one bounded context, so a navigation or
// submit that stalls inside the browser expires like an unanswered
// result poll and cannot hang the batch.
func (s *Searcher) Run(ctx context.Context, tok string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	s.state = SearchNavigating
	if err := s.page.Open(ctx); err != nil {
		return s.fail(ctx, tok, err)
	}

	s.state = SearchSubmitting
	if err := s.page.Submit(ctx, tok); err != nil {
		return s.fail(ctx, tok, err)
	}

	s.state = SearchWaiting
	for {
		state, err := s.page.ResultState(ctx)
		if err != nil {
			return s.fail(ctx, tok, err)
		}

		// Populated wins over the no-data indicator: the adapter checks
		// data rows first, so a page showing both resolves to Found.
		switch state {
		case portal.ResultPopulated:
			s.state = SearchFound
			return nil
		case portal.ResultEmpty:
			s.state = SearchNotFound
			return errors.NewNoDataError(tok)
		case portal.ResultError:
			s.state = SearchErrored
			return errors.NewPortalError("portal reported an error for token "+tok, nil)
		}

		select {
		case <-ctx.Done():
			s.state = SearchTimedOut
			log.Printf("  ⚠️  No result for %s after %v", tok, s.timeout)
			return errors.NewSearchTimeoutError(tok, ctx.Err())
		case <-time.After(s.poll):
		}
	}
}

// fail classifies a portal interaction error: an expired search context
// is a timeout, anything else an errored search.
func (s *Searcher) fail(ctx context.Context, tok string, err error) error {
	if ctx.Err() != nil {
		s.state = SearchTimedOut
		log.Printf("  ⚠️  Portal stalled for %s after %v", tok, s.timeout)
		return errors.NewSearchTimeoutError(tok, err)
	}
	s.state = SearchErrored
	return err
}
