package scrape

import (
	"context"

	"pmctrack/internal/portal"
)

// fakePage is an in-memory portal.Page for exercising the state
// machines without a browser.
type fakePage struct {
	openErr   error
	submitErr error

	// blockOpen/blockSubmit make the call hang until its context
	// expires, like a page that loads but never renders the form.
	blockOpen   bool
	blockSubmit bool

	// resultSeq is consumed one state per ResultState call; the last
	// entry repeats once the sequence is exhausted.
	resultSeq []portal.ResultState
	resultIdx int

	detail    *portal.DetailFields
	detailErr error

	overlayOpenErr error
	// overlayAfter is how many OverlayVisible calls return false before
	// the overlay appears; -1 means it never appears.
	overlayAfter int
	visCalls     int

	info    *portal.OverlayInfo
	infoErr error
	rows    []portal.HistoryRow
	rowsErr error

	closeErr error

	openCalls    int
	submitCalls  int
	submitted    []string
	overlayOpens int
	closeCalls   int
	closedChecks int
}

func (f *fakePage) Open(ctx context.Context) error {
	f.openCalls++
	if f.blockOpen {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.openErr
}

func (f *fakePage) Submit(ctx context.Context, tok string) error {
	f.submitCalls++
	f.submitted = append(f.submitted, tok)
	if f.blockSubmit {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.submitErr
}

func (f *fakePage) ResultState(ctx context.Context) (portal.ResultState, error) {
	if len(f.resultSeq) == 0 {
		return portal.ResultPending, nil
	}
	state := f.resultSeq[f.resultIdx]
	if f.resultIdx < len(f.resultSeq)-1 {
		f.resultIdx++
	}
	return state, nil
}

func (f *fakePage) DetailFields(ctx context.Context) (*portal.DetailFields, error) {
	if f.detailErr != nil {
		return nil, f.detailErr
	}
	if f.detail == nil {
		return &portal.DetailFields{}, nil
	}
	return f.detail, nil
}

func (f *fakePage) OpenOverlay(ctx context.Context) error {
	f.overlayOpens++
	return f.overlayOpenErr
}

func (f *fakePage) OverlayVisible(ctx context.Context) (bool, error) {
	f.visCalls++
	if f.overlayAfter < 0 {
		return false, nil
	}
	return f.visCalls > f.overlayAfter, nil
}

func (f *fakePage) OverlayInfo(ctx context.Context) (*portal.OverlayInfo, error) {
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	if f.info == nil {
		return &portal.OverlayInfo{}, nil
	}
	return f.info, nil
}

func (f *fakePage) HistoryRows(ctx context.Context) ([]portal.HistoryRow, error) {
	if f.rowsErr != nil {
		return nil, f.rowsErr
	}
	return f.rows, nil
}

func (f *fakePage) CloseOverlay(ctx context.Context) error {
	f.closeCalls++
	return f.closeErr
}

func (f *fakePage) OverlayClosed(ctx context.Context) (bool, error) {
	f.closedChecks++
	return f.closeCalls > 0, nil
}

// browserInteractions totals every call that would have touched the
// portal.
func (f *fakePage) browserInteractions() int {
	return f.openCalls + f.submitCalls + f.overlayOpens + f.closeCalls
}

// populatedPage returns a fake page that renders a full result for one
// token, with an overlay carrying the given history rows.
func populatedPage(rows []portal.HistoryRow) *fakePage {
	return &fakePage{
		resultSeq: []portal.ResultState{portal.ResultPopulated},
		detail: &portal.DetailFields{
			Token:         "T60137",
			Date:          "01/02/2024",
			Description:   "Street light not working",
			Location:      "Shivajinagar",
			ComplaintType: "Electrical",
			Status:        "Assigned",
			HasTrack:      true,
		},
		info: &portal.OverlayInfo{
			Token:                "T60137",
			Status:               "Assigned",
			ComplaintCategory:    "Street Light",
			ExpectedResolvedDate: "15/02/2024",
		},
		rows: rows,
	}
}
