package core

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// DigestItem is one subject/sender/summary triple handed to the
// summarizer for a cross-item digest.
type DigestItem struct {
	Subject string
	From    string
	Summary string
}

// DigestSummarizer asks the LLM for a short per-platform digest across
// a handful of social items. Callers treat it as best-effort.
type DigestSummarizer struct {
	llm    LLMClient
	logger *zap.Logger
}

// NewDigestSummarizer creates a new digest summarizer
func NewDigestSummarizer(llm LLMClient, logger *zap.Logger) *DigestSummarizer {
	return &DigestSummarizer{llm: llm, logger: logger}
}

// Summarize returns a 1-2 sentence digest of the given items
func (s *DigestSummarizer) Summarize(ctx context.Context, platform string, items []DigestItem) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Summarize these %d %s notifications in one or two sentences. Plain text only, no preamble.\n\n", len(items), platform)
	for _, item := range items {
		fmt.Fprintf(&b, "- From: %s | Subject: %s | %s\n", item.From, item.Subject, item.Summary)
	}

	response, err := s.llm.Complete(ctx, b.String())
	if err != nil {
		return "", fmt.Errorf("summarize %s digest: %w", platform, err)
	}

	digest := strings.TrimSpace(response)
	if digest == "" {
		return "", fmt.Errorf("empty %s digest from summarizer", platform)
	}
	return digest, nil
}
