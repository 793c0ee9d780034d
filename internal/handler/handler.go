// Package handler exposes the scrape pipeline behind a JSON request and
// response pair, so a scheduler or wrapper process can invoke a batch
// without caring about CLI flags.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"pmctrack/internal/report"
	"pmctrack/internal/scrape"
)

// Request is the JSON invocation payload.
type Request struct {
	Tokens []string `json:"tokens"`
}

// Response wraps the batch report for the caller.
type Response struct {
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Entries   []report.Entry `json:"entries"`
}

// BatchRunner runs one batch of raw tokens. The scrape pipeline is the
// production implementation.
type BatchRunner interface {
	Run(ctx context.Context, rawTokens []string) *scrape.BatchReport
}

// Handler decodes a request, runs the batch and encodes the response.
type Handler struct {
	runner BatchRunner
}

// New creates a handler over a batch runner.
func New(runner BatchRunner) *Handler {
	return &Handler{runner: runner}
}

// Handle reads a Request from r, runs the batch and writes a Response
// to w. An empty token list is rejected before any browser work.
func (h *Handler) Handle(ctx context.Context, r io.Reader, w io.Writer) error {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return fmt.Errorf("failed to decode request: %w", err)
	}
	if len(req.Tokens) == 0 {
		return fmt.Errorf("request contains no tokens")
	}

	batch := h.runner.Run(ctx, req.Tokens)
	rep := report.Build(batch)

	resp := Response{
		Succeeded: rep.Succeeded,
		Failed:    rep.Failed,
		Entries:   rep.Entries,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	return nil
}
