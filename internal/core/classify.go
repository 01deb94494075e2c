package core

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mikey/llm-mail-triage/internal/utils"
	"go.uber.org/zap"
)

// fallbackConfidence is used when the verdict carries no usable confidence
const fallbackConfidence = 0.0

// ClassificationGateway builds classification requests, invokes the
// LLM and validates its verdict into a canonical Classification. It
// never returns an error: any failure degrades to a misc/zero-confidence
// fallback so one bad verdict cannot stall the batch.
type ClassificationGateway struct {
	llm           LLMClient
	textProcessor *utils.TextProcessor
	maxBodySize   int
	logger        *zap.Logger
}

// NewClassificationGateway creates a new classification gateway
func NewClassificationGateway(
	llm LLMClient,
	textProcessor *utils.TextProcessor,
	maxBodySize int,
	logger *zap.Logger,
) *ClassificationGateway {
	return &ClassificationGateway{
		llm:           llm,
		textProcessor: textProcessor,
		maxBodySize:   maxBodySize,
		logger:        logger,
	}
}

// rawVerdict is the loosely-typed shape decoded from the LLM response.
// Every field is revalidated before it reaches the policy engine.
type rawVerdict struct {
	Category   string          `json:"category"`
	Confidence json.RawMessage `json:"confidence"`
	Summary    string          `json:"summary"`
	Reasoning  string          `json:"reasoning"`
	Details    map[string]any  `json:"details"`
}

// Classify classifies one message. On any failure (network, malformed
// response, verdict outside the taxonomy) it returns the safe fallback.
func (g *ClassificationGateway) Classify(ctx context.Context, email *Email) Classification {
	prompt := g.buildPrompt(email)

	response, err := g.llm.Complete(ctx, prompt)
	if err != nil {
		g.logger.Warn("Classifier call failed",
			zap.String("sender", email.From),
			zap.Error(err))
		return fallbackClassification(fmt.Sprintf("classifier call failed: %v", err))
	}

	verdict, err := parseVerdict(response)
	if err != nil {
		g.logger.Warn("Classifier response unparseable",
			zap.String("sender", email.From),
			zap.Error(err))
		return fallbackClassification(fmt.Sprintf("unparseable verdict: %v", err))
	}

	return validateVerdict(verdict)
}

// buildPrompt assembles the classification request: the taxonomy with
// one-line definitions, per-category output-depth rules and the message
// excerpt, body capped to bound request size.
func (g *ClassificationGateway) buildPrompt(email *Email) string {
	var b strings.Builder

	b.WriteString("You are an email triage assistant. Classify the email below into exactly one category.\n\n")
	b.WriteString("Categories:\n")
	for _, c := range AllCategories {
		fmt.Fprintf(&b, "- %s: %s\n", c, c.Definition())
	}

	b.WriteString(`
Summary depth rules:
- creator_newsletters: a long-form summary of the newsletter's content.
- social_community: one short highlight, and set details.platform to the platform name (e.g. Reddit, LinkedIn).
- every other category: a single sentence under 110 characters.

Respond with a JSON object containing:
- category: string (one of the category names above)
- confidence: number between 0 and 1
- summary: string (following the depth rules)
- reasoning: string (brief explanation)
- details: object (category-specific fields, may be empty)

Email:
From: `)
	b.WriteString(email.From)
	b.WriteString("\nSubject: ")
	b.WriteString(email.Subject)
	b.WriteString("\nBody:\n")
	b.WriteString(g.textProcessor.ProcessText(email.Snippet, g.maxBodySize))
	b.WriteString("\n\nRespond only with the JSON object and nothing else.\n")

	return b.String()
}

// parseVerdict extracts the structured verdict from the raw LLM text.
// Order of preference: the whole response is JSON, a fenced code block
// contains JSON, the first balanced brace span contains JSON.
func parseVerdict(response string) (*rawVerdict, error) {
	trimmed := strings.TrimSpace(response)

	var verdict rawVerdict
	if err := json.Unmarshal([]byte(trimmed), &verdict); err == nil {
		return &verdict, nil
	}

	if fenced, ok := extractFencedBlock(trimmed); ok {
		if err := json.Unmarshal([]byte(fenced), &verdict); err == nil {
			return &verdict, nil
		}
	}

	if span, ok := extractBraceSpan(trimmed); ok {
		if err := json.Unmarshal([]byte(span), &verdict); err == nil {
			return &verdict, nil
		}
	}

	return nil, fmt.Errorf("no JSON object found in %d-byte response", len(response))
}

// extractFencedBlock returns the contents of the first ``` fenced block
func extractFencedBlock(s string) (string, bool) {
	start := strings.Index(s, "```")
	if start < 0 {
		return "", false
	}
	rest := s[start+3:]
	// Skip an optional language tag on the fence line
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[nl+1:]
	}
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

// extractBraceSpan returns the first balanced brace-delimited span,
// tracking string literals so braces inside values do not miscount.
func extractBraceSpan(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
	}
	return "", false
}

// validateVerdict coerces the loose verdict into a canonical
// Classification: unknown categories become misc, confidence is clamped
// into [0,1], detail values are flattened to strings.
func validateVerdict(v *rawVerdict) Classification {
	details := make(map[string]string, len(v.Details))
	for k, val := range v.Details {
		switch t := val.(type) {
		case string:
			details[k] = t
		case float64:
			details[k] = strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			details[k] = strconv.FormatBool(t)
		}
	}

	return Classification{
		Category:   ParseCategory(strings.ToLower(strings.TrimSpace(v.Category))),
		Confidence: clampConfidence(v.Confidence),
		Summary:    strings.TrimSpace(v.Summary),
		Reasoning:  strings.TrimSpace(v.Reasoning),
		Details:    details,
	}
}

// clampConfidence parses a raw confidence value and clamps it into
// [0,1]. Absent or non-numeric values yield the fallback.
func clampConfidence(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return fallbackConfidence
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		// Some models quote the number
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return fallbackConfidence
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fallbackConfidence
		}
		f = parsed
	}

	// ParseFloat accepts "NaN", which every range check lets through
	if math.IsNaN(f) {
		return fallbackConfidence
	}
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// fallbackClassification is returned whenever classification fails
func fallbackClassification(cause string) Classification {
	return Classification{
		Category:   CategoryMisc,
		Confidence: fallbackConfidence,
		Summary:    "classification failed",
		Reasoning:  cause,
		Details:    map[string]string{},
	}
}
