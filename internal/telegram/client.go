// Package telegram sends run notifications through the Telegram Bot API.
//
// This is a one-shot notifier: the scraper sends a batch summary (and
// optionally the rendered summary image) when a run finishes, plus a
// critical alert if the browser session could not start. There is no
// update polling and no interactive surface.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"pmctrack/internal/report"
)

// Client represents a Telegram bot client. A nil *Client is valid and
// turns every send into a no-op, so callers never branch on whether
// notifications are configured.
type Client struct {
	BotToken string
	ChatID   string

	apiBase    string
	httpClient *http.Client
}

// Message represents a Telegram message for sending.
type Message struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// NewClient creates a Telegram client, or nil when either credential is
// missing.
func NewClient(botToken, chatID string) *Client {
	if botToken == "" || chatID == "" {
		log.Println("⚠️  Telegram not configured, notifications disabled")
		return nil
	}

	log.Println("✓ Telegram configured successfully")
	return &Client{
		BotToken: botToken,
		ChatID:   chatID,
		apiBase:  "https://api.telegram.org",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// doRequest posts a JSON payload to a Telegram API method and checks
// the API-level ok flag.
func (c *Client) doRequest(ctx context.Context, method string, payload interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	apiURL := fmt.Sprintf("%s/bot%s/%s", c.apiBase, c.BotToken, method)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	return checkResponse(resp)
}

func checkResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if !result.OK {
		return fmt.Errorf("Telegram API error: %s", result.Description)
	}
	return nil
}

// SendBatchSummary sends the run's outcome counts and per-token lines.
func (c *Client) SendBatchSummary(ctx context.Context, rep *report.Report) error {
	if c == nil {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<b>📋 PMC complaint scrape finished</b>\n")
	fmt.Fprintf(&b, "✓ %d succeeded, ✗ %d failed\n\n", rep.Succeeded, rep.Failed)

	for _, e := range rep.Entries {
		if e.Status == "ok" {
			fmt.Fprintf(&b, "✓ <code>%s</code> — %s\n", e.Token, e.Record.Status)
		} else {
			fmt.Fprintf(&b, "✗ <code>%s</code> — %s\n", e.Token, e.Error.Kind)
		}
	}

	msg := Message{
		ChatID:                c.ChatID,
		Text:                  b.String(),
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	}
	return c.doRequest(ctx, "sendMessage", msg)
}

// SendCriticalAlert reports a run-aborting failure, e.g. the browser
// session never starting.
func (c *Client) SendCriticalAlert(ctx context.Context, message string) error {
	if c == nil {
		return nil
	}

	msg := Message{
		ChatID:    c.ChatID,
		Text:      fmt.Sprintf("🚨 <b>pmctrack run failed</b>\n\n%s", message),
		ParseMode: "HTML",
	}
	return c.doRequest(ctx, "sendMessage", msg)
}

// SendSummaryImage attaches the rendered PNG table as a photo.
func (c *Client) SendSummaryImage(ctx context.Context, png []byte, caption string) error {
	if c == nil {
		return nil
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	if err := w.WriteField("chat_id", c.ChatID); err != nil {
		return err
	}
	if caption != "" {
		if err := w.WriteField("caption", caption); err != nil {
			return err
		}
	}
	part, err := w.CreateFormFile("photo", "summary.png")
	if err != nil {
		return err
	}
	if _, err := part.Write(png); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	apiURL := fmt.Sprintf("%s/bot%s/sendPhoto", c.apiBase, c.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, &body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send photo: %w", err)
	}
	defer resp.Body.Close()

	return checkResponse(resp)
}
