package summary

import (
	"testing"

	"pmctrack/internal/report"
	"pmctrack/internal/scrape"
)

func TestRowsFromReport(t *testing.T) {
	rep := &report.Report{
		Entries: []report.Entry{
			{
				Token:  "T60137",
				Status: "ok",
				Record: &scrape.ComplaintRecord{
					Token:             "T60137",
					Status:            "Assigned",
					ComplaintCategory: "Street Light",
					Location:          "Shivajinagar",
				},
				History: []scrape.TrackingEntry{
					{ActionDate: "02/02/2024", Status: "Forwarded"},
					{ActionDate: "05/02/2024", Status: "Assigned"},
				},
			},
			{
				Token:  "INVALID",
				Status: "error",
				Error:  &report.Error{Kind: scrape.ErrInvalidFormat, Message: "invalid token format"},
			},
		},
	}

	rows := RowsFromReport(rep)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows but got %d", len(rows))
	}
	if rows[0].Result != "OK" || rows[0].Status != "Assigned" {
		t.Errorf("expected successful row but got %+v", rows[0])
	}
	if rows[0].LastAction != "Assigned (05/02/2024)" {
		t.Errorf("expected latest history action but got %q", rows[0].LastAction)
	}
	if rows[1].Result != scrape.ErrInvalidFormat {
		t.Errorf("expected error kind in result column but got %q", rows[1].Result)
	}
}
