package scrape

import (
	"context"
	"fmt"
	"testing"
	"time"

	"pmctrack/internal/portal"
)

func TestHistoryExtract(t *testing.T) {
	rows := []portal.HistoryRow{
		{ActionDate: "02/02/2024", FromUser: "Ward Office", Status: "Forwarded", Remark: "Sent to dept"},
		{ActionDate: "05/02/2024", FromUser: "Electrical Dept", Status: "Assigned", Remark: "Crew scheduled"},
	}
	page := populatedPage(rows)
	h := NewHistoryExtractor(page, testTimeout, testPoll)

	result, err := h.Run(context.Background(), "T60137")
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}
	if result.TimedOut {
		t.Error("expected overlay to appear")
	}
	if len(result.Entries) != 2 {
		t.Fatalf("expected 2 entries but got %d", len(result.Entries))
	}

	// Rendering order is preserved, never re-sorted
	if result.Entries[0].ActionDate != "02/02/2024" || result.Entries[1].ActionDate != "05/02/2024" {
		t.Errorf("expected entries in rendering order but got %v", result.Entries)
	}
	for _, e := range result.Entries {
		if e.Token != "T60137" {
			t.Errorf("expected token T60137 on entry but got %q", e.Token)
		}
	}
	if page.closeCalls != 1 {
		t.Errorf("expected overlay closed once but got %d", page.closeCalls)
	}
}

func TestHistoryEmptyOverlayIsNotAnError(t *testing.T) {
	page := populatedPage(nil)
	h := NewHistoryExtractor(page, testTimeout, testPoll)

	result, err := h.Run(context.Background(), "T60137")
	if err != nil {
		t.Fatalf("expected no error for empty history but got: %v", err)
	}
	if len(result.Entries) != 0 {
		t.Errorf("expected empty history but got %d entries", len(result.Entries))
	}
	if page.closeCalls == 0 {
		t.Error("expected overlay to be closed before the next token")
	}
}

func TestHistoryOverlayTimeoutIsSoft(t *testing.T) {
	page := populatedPage(nil)
	page.overlayAfter = -1 // overlay never appears
	h := NewHistoryExtractor(page, 30*time.Millisecond, testPoll)

	result, err := h.Run(context.Background(), "T60137")
	if err != nil {
		t.Fatalf("expected soft timeout but got error: %v", err)
	}
	if !result.TimedOut {
		t.Error("expected TimedOut to be set")
	}
	if len(result.Entries) != 0 {
		t.Errorf("expected empty history on timeout but got %d entries", len(result.Entries))
	}
}

func TestHistoryClosesOverlayAfterExtractionError(t *testing.T) {
	page := populatedPage(nil)
	page.rowsErr = fmt.Errorf("row parse failed")
	h := NewHistoryExtractor(page, testTimeout, testPoll)

	_, err := h.Run(context.Background(), "T60137")
	if err == nil {
		t.Fatal("expected error but got nil")
	}
	if page.closeCalls != 1 {
		t.Errorf("expected overlay closed after extraction error but close calls = %d", page.closeCalls)
	}
	if h.State() != HistoryClosed {
		t.Errorf("expected state closed but got %v", h.State())
	}
}

func TestHistoryOptionalUsersDefaultEmpty(t *testing.T) {
	rows := []portal.HistoryRow{
		{ActionDate: "02/02/2024", Status: "Registered", Remark: "New complaint"},
	}
	page := populatedPage(rows)
	h := NewHistoryExtractor(page, testTimeout, testPoll)

	result, err := h.Run(context.Background(), "T60137")
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}
	if result.Entries[0].FromUser != "" || result.Entries[0].ToUser != "" {
		t.Errorf("expected empty from/to users but got %+v", result.Entries[0])
	}
}
