package scrape

import (
	"context"

	"pmctrack/internal/errors"
	"pmctrack/internal/portal"
)

// ExtractDetail reads the primary complaint fields from the rendered
// result panel into a ComplaintRecord keyed by the normalized token.
// The boolean reports whether the row carries a track control; rows
// without one have no history overlay to open.
//
// A missing individual field yields an empty value without failing the
// extraction; an entirely blank result row yields a NoDataError. Values
// are carried exactly as rendered.
func ExtractDetail(ctx context.Context, page portal.Page, tok string) (*ComplaintRecord, bool, error) {
	fields, err := page.DetailFields(ctx)
	if err != nil {
		return nil, false, err
	}
	if fields.Empty() {
		return nil, false, errors.NewNoDataError(tok)
	}

	rec := &ComplaintRecord{
		Token:         tok,
		Status:        fields.Status,
		Description:   fields.Description,
		Location:      fields.Location,
		ComplaintType: fields.ComplaintType,
	}
	return rec, fields.HasTrack, nil
}

// MergeOverlayInfo folds the overlay header fields into a record. The
// category and expected date only exist on the overlay; the overlay
// status fills in when the result row left it blank.
func MergeOverlayInfo(rec *ComplaintRecord, info *portal.OverlayInfo) {
	if info == nil {
		return
	}
	rec.ComplaintCategory = info.ComplaintCategory
	rec.ExpectedResolvedDate = info.ExpectedResolvedDate
	if rec.Status == "" {
		rec.Status = info.Status
	}
}
