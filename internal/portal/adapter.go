// Package portal isolates all knowledge of the complaint portal's DOM:
// URLs, selectors, column layouts and overlay mechanics. The pipeline
// drives the portal exclusively through the Page interface, so a site
// layout change touches this package and nothing else.
package portal

import "context"

// ResultState describes what the result area currently shows.
type ResultState int

const (
	// ResultPending means neither data nor an empty indicator has rendered yet.
	ResultPending ResultState = iota
	// ResultPopulated means the result panel holds at least one data row.
	ResultPopulated
	// ResultEmpty means the portal explicitly rendered a no-data indicator.
	ResultEmpty
	// ResultError means the portal rendered an explicit error indicator.
	ResultError
)

func (s ResultState) String() string {
	switch s {
	case ResultPending:
		return "pending"
	case ResultPopulated:
		return "populated"
	case ResultEmpty:
		return "empty"
	case ResultError:
		return "error"
	default:
		return "unknown"
	}
}

// DetailFields carries the raw labeled fields of the first result row,
// exactly as rendered. Missing cells come through as empty strings.
type DetailFields struct {
	Token         string `json:"token"`
	Date          string `json:"date"`
	Description   string `json:"description"`
	Location      string `json:"location"`
	ComplaintType string `json:"complaint_type"`
	Status        string `json:"status"`
	HasTrack      bool   `json:"has_track"`
}

// Empty reports whether every field of the result row is blank.
func (d *DetailFields) Empty() bool {
	return d.Token == "" && d.Date == "" && d.Description == "" &&
		d.Location == "" && d.ComplaintType == "" && d.Status == ""
}

// OverlayInfo carries the header fields of the tracking overlay.
type OverlayInfo struct {
	Token                string `json:"token"`
	Status               string `json:"status"`
	ComplaintCategory    string `json:"complaint_category"`
	ExpectedResolvedDate string `json:"expected_resolved_date"`
}

// HistoryRow is one raw row of the tracking overlay's history table, in
// rendering order. FromUser and ToUser default to empty when the portal
// omits those columns.
type HistoryRow struct {
	ActionDate string `json:"action_date"`
	FromUser   string `json:"from_user"`
	ToUser     string `json:"to_user"`
	Status     string `json:"status"`
	Remark     string `json:"remark"`
}

// Page is the portal-facing surface the pipeline depends on. A real
// implementation drives a browser; tests substitute a fake.
type Page interface {
	// Open navigates to the token search surface.
	Open(ctx context.Context) error

	// Submit enters a normalized token into the search control and
	// triggers the search.
	Submit(ctx context.Context, token string) error

	// ResultState samples the current state of the result area. The
	// populated check runs before the no-data check, so a page showing
	// both resolves to ResultPopulated.
	ResultState(ctx context.Context) (ResultState, error)

	// DetailFields extracts the first result row.
	DetailFields(ctx context.Context) (*DetailFields, error)

	// OpenOverlay triggers the control that reveals the history overlay.
	OpenOverlay(ctx context.Context) error

	// OverlayVisible reports whether the history overlay has rendered.
	OverlayVisible(ctx context.Context) (bool, error)

	// OverlayInfo extracts the overlay's header fields.
	OverlayInfo(ctx context.Context) (*OverlayInfo, error)

	// HistoryRows extracts the overlay's history rows in rendering order.
	HistoryRows(ctx context.Context) ([]HistoryRow, error)

	// CloseOverlay dismisses the history overlay.
	CloseOverlay(ctx context.Context) error

	// OverlayClosed reports whether the overlay is fully dismissed.
	OverlayClosed(ctx context.Context) (bool, error)
}
