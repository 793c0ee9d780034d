package report

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"testing"
	"time"
	"unicode/utf8"

	"pmctrack/internal/scrape"
)

func sampleBatch() *scrape.BatchReport {
	start := time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC)
	return &scrape.BatchReport{
		StartedAt:  start,
		FinishedAt: start.Add(12 * time.Second),
		Outcomes: []scrape.ScrapeOutcome{
			{
				Token:   "T60137",
				Success: true,
				Record: &scrape.ComplaintRecord{
					Token:             "T60137",
					Status:            "Assigned",
					Description:       "Street light not working",
					Location:          "Shivajinagar",
					ComplaintType:     "Electrical",
					ComplaintCategory: "Street Light",
				},
				History: []scrape.TrackingEntry{
					{Token: "T60137", ActionDate: "02/02/2024", Status: "Forwarded", Remark: "Sent to dept"},
					{Token: "T60137", ActionDate: "05/02/2024", Status: "Assigned", Remark: "Crew scheduled"},
				},
			},
			{
				Token:        "INVALID",
				ErrorKind:    scrape.ErrInvalidFormat,
				ErrorMessage: "invalid token format: INVALID",
			},
		},
	}
}

func TestBuildPreservesOrderAndStatus(t *testing.T) {
	r := Build(sampleBatch())

	if len(r.Entries) != 2 {
		t.Fatalf("expected 2 entries but got %d", len(r.Entries))
	}
	if r.Entries[0].Token != "T60137" || r.Entries[0].Status != "ok" {
		t.Errorf("expected first entry ok for T60137 but got %+v", r.Entries[0])
	}
	if r.Entries[1].Status != "error" || r.Entries[1].Error.Kind != scrape.ErrInvalidFormat {
		t.Errorf("expected second entry error with invalid_format but got %+v", r.Entries[1])
	}
	if r.Succeeded != 1 || r.Failed != 1 {
		t.Errorf("expected 1 succeeded / 1 failed but got %d / %d", r.Succeeded, r.Failed)
	}
}

func TestWriteJSONRoundTrips(t *testing.T) {
	r := Build(sampleBatch())

	path, err := r.WriteJSON(t.TempDir())
	if err != nil {
		t.Fatalf("failed to write json: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read report back: %v", err)
	}

	var decoded Report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("report is not valid json: %v", err)
	}
	if len(decoded.Entries) != 2 {
		t.Errorf("expected 2 entries after round trip but got %d", len(decoded.Entries))
	}
	if decoded.Entries[0].Record == nil || decoded.Entries[0].Record.Status != "Assigned" {
		t.Errorf("expected record preserved but got %+v", decoded.Entries[0].Record)
	}
	if decoded.Entries[1].Record != nil {
		t.Error("expected failed entry to omit record")
	}
}

func TestTruncateKeepsRunesIntact(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short ascii unchanged", "Street light broken", 60, "Street light broken"},
		{"long ascii cut", "abcdefghij", 5, "abcde…"},
		{"devanagari cut on rune boundary", "रस्त्यावरील दिवा बंद आहे", 10, "रस्त्यावरी…"},
		{"whitespace trimmed", "  पाणी गळती  ", 60, "पाणी गळती"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.input, tt.maxLen)
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncate produced invalid UTF-8: %q", got)
			}
		})
	}
}

func TestWriteCSVFlattensLatestAction(t *testing.T) {
	r := Build(sampleBatch())

	path, err := r.WriteCSV(t.TempDir())
	if err != nil {
		t.Fatalf("failed to write csv: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open csv: %v", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse csv: %v", err)
	}
	if len(rows) != 3 { // header + 2 tokens
		t.Fatalf("expected 3 csv rows but got %d", len(rows))
	}

	ok := rows[1]
	if ok[0] != "T60137" || ok[1] != "Assigned" {
		t.Errorf("expected token and status columns but got %v", ok[:2])
	}
	if ok[7] != "05/02/2024" || ok[8] != "Crew scheduled" {
		t.Errorf("expected latest history flattened but got date=%q remark=%q", ok[7], ok[8])
	}

	failed := rows[2]
	if failed[0] != "INVALID" || failed[9] == "" {
		t.Errorf("expected error column populated for failed token but got %v", failed)
	}
}
