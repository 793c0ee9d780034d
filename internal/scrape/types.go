// Package scrape implements the token extraction pipeline: search,
// detail extraction, history extraction and sequential batch
// orchestration with per-token failure isolation.
package scrape

import "time"

// Error classifications recorded on failed outcomes.
const (
	ErrInvalidFormat = "invalid_format"
	ErrNoData        = "no_data"
	ErrSearchTimeout = "search_timeout"
	ErrPortal        = "portal_error"
	ErrPersist       = "persist_failed"
	ErrInternal      = "internal_error"
)

// ComplaintRecord is the structured snapshot of one complaint's current
// state, keyed by token. Field values are kept exactly as the portal
// rendered them; no date parsing or reformatting.
type ComplaintRecord struct {
	Token                string `json:"token"`
	Status               string `json:"status"`
	Description          string `json:"description"`
	Location             string `json:"location"`
	ComplaintType        string `json:"complaint_type"`
	ComplaintCategory    string `json:"complaint_category"`
	ExpectedResolvedDate string `json:"expected_resolved_date"`
}

// TrackingEntry is one row of a complaint's action history, in the order
// the portal rendered it.
type TrackingEntry struct {
	Token      string `json:"token"`
	ActionDate string `json:"action_date"`
	FromUser   string `json:"from_user"`
	ToUser     string `json:"to_user"`
	Status     string `json:"status"`
	Remark     string `json:"remark"`
}

// ScrapeOutcome is the result of one token's trip through the pipeline.
// Failed outcomes carry an error classification instead of (or, for
// persistence failures, alongside) the extracted data.
type ScrapeOutcome struct {
	Token        string          `json:"token"`
	Success      bool            `json:"success"`
	Record       *ComplaintRecord `json:"record,omitempty"`
	History      []TrackingEntry `json:"history,omitempty"`
	ErrorKind    string          `json:"error_kind,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
}

// BatchReport aggregates one outcome per input token, preserving input
// order. Format-invalid tokens are included.
type BatchReport struct {
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Outcomes   []ScrapeOutcome `json:"outcomes"`
}

// Succeeded returns the number of successful outcomes.
func (r *BatchReport) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Success {
			n++
		}
	}
	return n
}

// Failed returns the number of failed outcomes.
func (r *BatchReport) Failed() int {
	return len(r.Outcomes) - r.Succeeded()
}
