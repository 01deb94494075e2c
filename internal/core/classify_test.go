package core

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mikey/llm-mail-triage/internal/utils"
	"go.uber.org/zap"
)

func testEmail() *Email {
	return &Email{
		ID:         "m1",
		ThreadID:   "t1",
		Subject:    "Your statement is ready",
		From:       "billing@example.com",
		Snippet:    "Your monthly statement is attached.",
		ReceivedAt: time.Now(),
	}
}

func newTestGateway(llm LLMClient) *ClassificationGateway {
	return NewClassificationGateway(llm, utils.NewTextProcessor(zap.NewNop()), 4096, zap.NewNop())
}

func TestParseVerdictVariants(t *testing.T) {
	inner := `{"category": "financial", "confidence": 0.92, "summary": "Monthly statement.", "reasoning": "bank sender", "details": {}}`

	tests := []struct {
		name     string
		response string
	}{
		{
			name:     "raw-json",
			response: inner,
		},
		{
			name:     "fenced-block",
			response: "Here is the verdict:\n```json\n" + inner + "\n```\nDone.",
		},
		{
			name:     "prose-with-brace-span",
			response: "I believe this is financial mail. " + inner + " Let me know if you need more.",
		},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			verdict, err := parseVerdict(tc.response)
			if err != nil {
				t.Fatalf("parseVerdict: %v", err)
			}
			got := validateVerdict(verdict)
			if got.Category != CategoryFinancial {
				t.Errorf("category = %s, want financial", got.Category)
			}
			if got.Confidence != 0.92 {
				t.Errorf("confidence = %v, want 0.92", got.Confidence)
			}
			if got.Summary != "Monthly statement." {
				t.Errorf("summary = %q", got.Summary)
			}
		})
	}
}

func TestClassifyCoercesUnknownCategory(t *testing.T) {
	llm := &fakeLLM{response: `{"category": "lottery_winnings", "confidence": 0.8, "summary": "s", "reasoning": "r"}`}
	got := newTestGateway(llm).Classify(context.Background(), testEmail())

	if got.Category != CategoryMisc {
		t.Errorf("category = %s, want misc", got.Category)
	}
	if got.Confidence != 0.8 {
		t.Errorf("confidence = %v, want 0.8", got.Confidence)
	}
}

func TestClampConfidence(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{name: "absent", raw: "", want: 0},
		{name: "negative", raw: "-0.3", want: 0},
		{name: "above-one", raw: "4.2", want: 1},
		{name: "in-range", raw: "0.55", want: 0.55},
		{name: "quoted-number", raw: `"0.7"`, want: 0.7},
		{name: "non-numeric", raw: `"very sure"`, want: 0},
		{name: "quoted-nan", raw: `"NaN"`, want: 0},
		{name: "null", raw: "null", want: 0},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			got := clampConfidence(json.RawMessage(tc.raw))
			if got != tc.want {
				t.Errorf("clampConfidence(%q) = %v, want %v", tc.raw, got, tc.want)
			}
			if got < 0 || got > 1 {
				t.Errorf("clampConfidence(%q) = %v outside [0,1]", tc.raw, got)
			}
		})
	}
}

func TestClassifyFallbackOnError(t *testing.T) {
	llm := &fakeLLM{err: errors.New("connection refused")}
	got := newTestGateway(llm).Classify(context.Background(), testEmail())

	if got.Category != CategoryMisc {
		t.Errorf("category = %s, want misc", got.Category)
	}
	if got.Confidence != 0 {
		t.Errorf("confidence = %v, want 0", got.Confidence)
	}
	if got.Summary != "classification failed" {
		t.Errorf("summary = %q", got.Summary)
	}
	if !strings.Contains(got.Reasoning, "connection refused") {
		t.Errorf("reasoning %q does not carry the cause", got.Reasoning)
	}
}

func TestClassifyFallbackOnGarbage(t *testing.T) {
	llm := &fakeLLM{response: "I cannot classify this email, sorry."}
	got := newTestGateway(llm).Classify(context.Background(), testEmail())

	if got.Category != CategoryMisc {
		t.Errorf("category = %s, want misc", got.Category)
	}
	if got.Summary != "classification failed" {
		t.Errorf("summary = %q", got.Summary)
	}
}

func TestPromptCarriesTaxonomyAndMessage(t *testing.T) {
	llm := &fakeLLM{response: `{"category": "misc", "confidence": 0.5}`}
	gateway := newTestGateway(llm)
	gateway.Classify(context.Background(), testEmail())

	if len(llm.prompts) != 1 {
		t.Fatalf("expected one prompt, got %d", len(llm.prompts))
	}
	prompt := llm.prompts[0]
	for _, c := range AllCategories {
		if !strings.Contains(prompt, c.String()) {
			t.Errorf("prompt missing category %s", c)
		}
	}
	if !strings.Contains(prompt, "Your statement is ready") {
		t.Errorf("prompt missing subject")
	}
	if !strings.Contains(prompt, "billing@example.com") {
		t.Errorf("prompt missing sender")
	}
	if !strings.Contains(prompt, "110") {
		t.Errorf("prompt missing depth rule")
	}
}

func TestClassifyDetailsFlattened(t *testing.T) {
	llm := &fakeLLM{response: `{"category": "social_community", "confidence": 0.9, "summary": "s", "details": {"platform": "Reddit", "count": 3}}`}
	got := newTestGateway(llm).Classify(context.Background(), testEmail())

	if got.Details["platform"] != "Reddit" {
		t.Errorf("platform = %q, want Reddit", got.Details["platform"])
	}
	if got.Details["count"] != "3" {
		t.Errorf("count = %q, want 3", got.Details["count"])
	}
}
