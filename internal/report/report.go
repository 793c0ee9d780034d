// Package report turns a batch of scrape outcomes into the artifacts a
// run leaves behind: a JSON report, a flattened CSV and a console
// summary.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"pmctrack/internal/scrape"
)

// Entry is one token's result in the report, in input order.
type Entry struct {
	Token   string                  `json:"token"`
	Status  string                  `json:"status"` // "ok" or "error"
	Record  *scrape.ComplaintRecord `json:"record,omitempty"`
	History []scrape.TrackingEntry  `json:"history,omitempty"`
	Error   *Error                  `json:"error,omitempty"`
}

// Error describes why a token failed.
type Error struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Report is the full batch result.
type Report struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	Entries    []Entry   `json:"entries"`
}

// Build converts a batch into report entries, preserving outcome order.
func Build(batch *scrape.BatchReport) *Report {
	r := &Report{
		StartedAt:  batch.StartedAt,
		FinishedAt: batch.FinishedAt,
		Succeeded:  batch.Succeeded(),
		Failed:     batch.Failed(),
	}

	for _, o := range batch.Outcomes {
		e := Entry{
			Token:   o.Token,
			Record:  o.Record,
			History: o.History,
		}
		if o.Success {
			e.Status = "ok"
		} else {
			e.Status = "error"
			e.Error = &Error{Kind: o.ErrorKind, Message: o.ErrorMessage}
		}
		r.Entries = append(r.Entries, e)
	}

	return r
}

// WriteJSON writes the report as indented JSON and returns the path.
func (r *Report) WriteJSON(dir string) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("pmctrack_report_%s.json", r.StartedAt.Format("20060102_150405")))

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

// csvHeader is the flattened column set, one row per token.
var csvHeader = []string{
	"token", "status", "description", "location", "complaint_type",
	"complaint_category", "expected_resolved_date",
	"last_action_date", "last_remark", "error",
}

// WriteCSV writes one flattened row per token and returns the path. The
// last history entry supplies the latest action date and remark.
func (r *Report) WriteCSV(dir string) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("pmctrack_report_%s.csv", r.StartedAt.Format("20060102_150405")))

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create csv: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(csvHeader); err != nil {
		return "", err
	}

	for _, e := range r.Entries {
		row := make([]string, len(csvHeader))
		row[0] = e.Token
		if e.Record != nil {
			row[1] = e.Record.Status
			row[2] = e.Record.Description
			row[3] = e.Record.Location
			row[4] = e.Record.ComplaintType
			row[5] = e.Record.ComplaintCategory
			row[6] = e.Record.ExpectedResolvedDate
		}
		if n := len(e.History); n > 0 {
			row[7] = e.History[n-1].ActionDate
			row[8] = e.History[n-1].Remark
		}
		if e.Error != nil {
			row[9] = fmt.Sprintf("%s: %s", e.Error.Kind, e.Error.Message)
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to write csv: %w", err)
	}
	return path, nil
}

// PrintSummary logs a per-token summary block plus batch totals.
func (r *Report) PrintSummary() {
	log.Println("═══════════════════════════════════════════")
	log.Println("📋 Batch summary")
	log.Println("═══════════════════════════════════════════")

	for _, e := range r.Entries {
		if e.Status == "ok" {
			log.Printf("✓ %s  %s", e.Token, e.Record.Status)
			if e.Record.Description != "" {
				log.Printf("    %s", truncate(e.Record.Description, 60))
			}
			if len(e.History) > 0 {
				last := e.History[len(e.History)-1]
				log.Printf("    Last action: %s (%s)", last.Status, last.ActionDate)
			}
		} else {
			log.Printf("✗ %s  %s", e.Token, e.Error.Message)
		}
	}

	log.Println("═══════════════════════════════════════════")
	log.Printf("🎯 %d succeeded, %d failed (took %s)",
		r.Succeeded, r.Failed, r.FinishedAt.Sub(r.StartedAt).Round(time.Second))
	log.Println("═══════════════════════════════════════════")
}

func truncate(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > maxLen {
		runes := []rune(s)
		return string(runes[:maxLen]) + "…"
	}
	return s
}
