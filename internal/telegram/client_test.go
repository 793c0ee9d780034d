package telegram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pmctrack/internal/report"
	"pmctrack/internal/scrape"
)

func TestNewClientReturnsNilWhenUnconfigured(t *testing.T) {
	if c := NewClient("", "123"); c != nil {
		t.Error("expected nil client without bot token")
	}
	if c := NewClient("token", ""); c != nil {
		t.Error("expected nil client without chat id")
	}
}

func TestNilClientSendsAreNoops(t *testing.T) {
	var c *Client

	if err := c.SendBatchSummary(context.Background(), &report.Report{}); err != nil {
		t.Errorf("expected nil error from nil client but got: %v", err)
	}
	if err := c.SendCriticalAlert(context.Background(), "boom"); err != nil {
		t.Errorf("expected nil error from nil client but got: %v", err)
	}
}

func TestSendBatchSummary(t *testing.T) {
	var captured Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/sendMessage") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Errorf("request body is not valid json: %v", err)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient("test-token", "42")
	c.apiBase = srv.URL

	rep := &report.Report{
		Succeeded: 1,
		Failed:    1,
		Entries: []report.Entry{
			{Token: "T60137", Status: "ok", Record: &scrape.ComplaintRecord{Status: "Assigned"}},
			{Token: "INVALID", Status: "error", Error: &report.Error{Kind: scrape.ErrInvalidFormat}},
		},
	}
	if err := c.SendBatchSummary(context.Background(), rep); err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}

	if captured.ChatID != "42" {
		t.Errorf("expected chat id 42 but got %q", captured.ChatID)
	}
	if !strings.Contains(captured.Text, "T60137") || !strings.Contains(captured.Text, "INVALID") {
		t.Errorf("expected both tokens in summary but got: %s", captured.Text)
	}
}

func TestAPIErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	defer srv.Close()

	c := NewClient("test-token", "42")
	c.apiBase = srv.URL

	err := c.SendCriticalAlert(context.Background(), "session failed")
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Errorf("expected API error description but got: %v", err)
	}
}
