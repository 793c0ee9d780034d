package portal

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"pmctrack/internal/errors"
)

// Selectors for the PMC citizen token search page. Everything the pipeline
// knows about the portal's markup is listed here.
const (
	selTokenInput   = "#tokenNo"
	selSearchButton = "#btnSearch"
	selResultBody   = "#table-data"
	selOverlay      = "#modalComplaintTrack"
)

// PMC drives the Pune Municipal Corporation citizen complaint portal
// through a chromedp browser context.
type PMC struct {
	url string
}

// NewPMC creates a page adapter for the given search page URL.
func NewPMC(url string) *PMC {
	return &PMC{url: url}
}

// Open navigates to the token search page and waits for the search form.
func (p *PMC) Open(ctx context.Context) error {
	err := chromedp.Run(ctx,
		chromedp.Navigate(p.url),
		chromedp.WaitVisible(selTokenInput, chromedp.ByID),
	)
	if err != nil {
		return errors.NewPortalError("failed to open search page", err)
	}
	return nil
}

// Submit clears the token input, types the token and clicks search.
func (p *PMC) Submit(ctx context.Context, tok string) error {
	err := chromedp.Run(ctx,
		chromedp.Clear(selTokenInput, chromedp.ByID),
		chromedp.SendKeys(selTokenInput, tok, chromedp.ByID),
		chromedp.Click(selSearchButton, chromedp.ByID, chromedp.NodeVisible),
	)
	if err != nil {
		return errors.NewPortalError("failed to submit token search", err)
	}
	return nil
}

// ResultState samples the result table. Check order is fixed: data rows
// win over the no-data indicator when both are present.
func (p *PMC) ResultState(ctx context.Context) (ResultState, error) {
	var state int
	err := chromedp.Run(ctx,
		chromedp.Evaluate(`
			(function() {
				if (document.querySelector('.alert-danger, #errorMsg')) return 3;
				const body = document.querySelector('#table-data');
				if (!body) return 0;
				const rows = Array.from(body.querySelectorAll('tr'));
				const dataRows = rows.filter(r =>
					!r.querySelector('td.dataTables_empty') && r.innerText.trim() !== '');
				if (dataRows.length > 0) return 1;
				if (rows.some(r => r.querySelector('td.dataTables_empty'))) return 2;
				return 0;
			})()
		`, &state),
	)
	if err != nil {
		return ResultPending, errors.NewPortalError("failed to inspect result table", err)
	}
	if state < 0 || state > 3 {
		return ResultPending, errors.NewPortalError(fmt.Sprintf("unexpected result state %d", state), nil)
	}
	return ResultState(state), nil
}

// DetailFields reads the first data row of the result table. Column order
// on the portal: sr_no, token, date, description, location, complaint
// type, status, and an optional track button cell.
func (p *PMC) DetailFields(ctx context.Context) (*DetailFields, error) {
	var fields DetailFields
	err := chromedp.Run(ctx,
		chromedp.Evaluate(`
			(function() {
				const cell = (cols, i) => cols.length > i ? cols[i].innerText.trim() : '';
				const row = document.querySelector('#calander-dataTables tbody#table-data tr');
				if (!row) return {token:'', date:'', description:'', location:'', complaint_type:'', status:'', has_track:false};
				const cols = Array.from(row.querySelectorAll('td'));
				return {
					token: cell(cols, 1),
					date: cell(cols, 2),
					description: cell(cols, 3),
					location: cell(cols, 4),
					complaint_type: cell(cols, 5),
					status: cell(cols, 6),
					has_track: cols.length > 7 && cols[7].querySelector('button') !== null
				};
			})()
		`, &fields),
	)
	if err != nil {
		return nil, errors.NewPortalError("failed to extract result row", err)
	}
	return &fields, nil
}

// OpenOverlay clicks the track button of the first result row. The click
// goes through script, matching how the portal wires the button itself.
func (p *PMC) OpenOverlay(ctx context.Context) error {
	var clicked bool
	err := chromedp.Run(ctx,
		chromedp.Evaluate(`
			(function() {
				const btn = document.querySelector('#table-data tr td button');
				if (!btn) return false;
				btn.click();
				return true;
			})()
		`, &clicked),
	)
	if err != nil {
		return errors.NewPortalError("failed to click track button", err)
	}
	if !clicked {
		return errors.NewPortalError("track button not present", nil)
	}
	return nil
}

// OverlayVisible reports whether the tracking overlay has rendered.
func (p *PMC) OverlayVisible(ctx context.Context) (bool, error) {
	var visible bool
	err := chromedp.Run(ctx,
		chromedp.Evaluate(`
			(function() {
				const m = document.querySelector('#modalComplaintTrack');
				return !!m && window.getComputedStyle(m).display !== 'none';
			})()
		`, &visible),
	)
	if err != nil {
		return false, errors.NewPortalError("failed to inspect overlay", err)
	}
	return visible, nil
}

// OverlayInfo reads the overlay header fields.
func (p *PMC) OverlayInfo(ctx context.Context) (*OverlayInfo, error) {
	var info OverlayInfo
	err := chromedp.Run(ctx,
		chromedp.Evaluate(`
			(function() {
				const text = sel => {
					const el = document.querySelector(sel);
					return el ? el.innerText.trim() : '';
				};
				return {
					token: text('#track_tokenNo'),
					status: text('#track_status'),
					complaint_category: text('#track_complaintcategory'),
					expected_resolved_date: text('#track_expected_date')
				};
			})()
		`, &info),
	)
	if err != nil {
		return nil, errors.NewPortalError("failed to extract overlay header", err)
	}
	return &info, nil
}

// HistoryRows reads the overlay's history table in rendering order.
//
// The portal renders wide rows: sr, ticket_date, status, previous_status,
// type, office, department, user, remark, action_date, advice,
// current_action. The acting user maps to from_user; a forwarding target
// column only exists on some layouts and defaults to empty otherwise.
func (p *PMC) HistoryRows(ctx context.Context) ([]HistoryRow, error) {
	rows := []HistoryRow{}
	err := chromedp.Run(ctx,
		chromedp.Evaluate(`
			Array.from(document.querySelectorAll('tbody#track tr')).map(row => {
				const cols = Array.from(row.querySelectorAll('td'));
				const cell = i => cols.length > i ? cols[i].innerText.trim() : '';
				return {
					action_date: cell(9),
					from_user: cell(7),
					to_user: cell(12),
					status: cell(11),
					remark: cell(8)
				};
			}).filter(r => r.action_date !== '' || r.status !== '' || r.remark !== '')
		`, &rows),
	)
	if err != nil {
		return nil, errors.NewPortalError("failed to extract history rows", err)
	}
	return rows, nil
}

// CloseOverlay dismisses the overlay and waits in-page for it to hide.
// The awaited promise resolves once the computed display goes to none, or
// after forcing it hidden as a fallback.
func (p *PMC) CloseOverlay(ctx context.Context) error {
	var closed bool
	err := chromedp.Run(ctx,
		chromedp.Evaluate(`
			(async function() {
				const modal = document.querySelector('#modalComplaintTrack');
				if (!modal) return true;
				const dismiss = modal.querySelector('[data-dismiss="modal"], .close');
				if (dismiss) dismiss.click();
				for (let i = 0; i < 20; i++) {
					if (window.getComputedStyle(modal).display === 'none') return true;
					await new Promise(r => setTimeout(r, 100));
				}
				modal.style.display = 'none';
				document.body.classList.remove('modal-open');
				document.querySelectorAll('.modal-backdrop').forEach(b => b.remove());
				return window.getComputedStyle(modal).display === 'none';
			})()
		`, &closed, func(ep *runtime.EvaluateParams) *runtime.EvaluateParams {
			return ep.WithAwaitPromise(true)
		}),
	)
	if err != nil {
		return errors.NewPortalError("failed to close overlay", err)
	}
	if !closed {
		return errors.NewPortalError("overlay still visible after close", nil)
	}
	return nil
}

// OverlayClosed reports whether the overlay is fully dismissed.
func (p *PMC) OverlayClosed(ctx context.Context) (bool, error) {
	visible, err := p.OverlayVisible(ctx)
	if err != nil {
		return false, err
	}
	return !visible, nil
}
