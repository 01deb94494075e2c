package report

import (
	"strings"
	"testing"
	"time"

	"github.com/mikey/llm-mail-triage/internal/core"
	"go.uber.org/zap"
)

func sampleResult() *core.RunResult {
	result := core.NewRunResult(core.ModeFull)
	result.StartedAt = time.Date(2026, time.March, 14, 8, 0, 0, 0, time.UTC)
	result.Processed = 4

	result.Buckets[core.CategoryUrgent] = []core.TriageItem{{
		Email:          &core.Email{Subject: "Server down", From: "ops@example.com"},
		Classification: core.Classification{Category: core.CategoryUrgent, Summary: "Production outage"},
	}}
	result.Buckets[core.CategoryFinancial] = []core.TriageItem{{
		Email:          &core.Email{Subject: "Invoice due", From: "billing@example.com"},
		Classification: core.Classification{Category: core.CategoryFinancial, Summary: "Invoice for March"},
		AgingWarning:   "6 days old, auto-archives after 7 days",
	}}
	result.AutoArchived[core.CategoryPromotions] = 3
	result.AgedArchived[core.CategoryFinancial] = 1
	result.SocialDigests["GitHub"] = "Two PRs were merged."
	result.Errors = []core.RunError{{Subject: "weird message", From: "x@example.com", Err: "store unavailable"}}
	return result
}

func TestRenderSubjectCarriesMarkerAndDate(t *testing.T) {
	r, err := NewHTMLRenderer("Inbox Triage Digest", zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	subject, _, err := r.Render(sampleResult())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(subject, "Inbox Triage Digest") {
		t.Errorf("subject %q missing marker", subject)
	}
	if !strings.Contains(subject, "14 Mar 2026") {
		t.Errorf("subject %q missing run date", subject)
	}
}

func TestRenderBodyListsItemsAndErrors(t *testing.T) {
	r, err := NewHTMLRenderer("Inbox Triage Digest", zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	_, body, err := r.Render(sampleResult())
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"Server down",
		"Production outage",
		"Invoice due",
		"6 days old, auto-archives after 7 days",
		"3 auto-archived",
		"GitHub",
		"Two PRs were merged.",
		"1 archived after aging out",
		"weird message",
		"store unavailable",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestRenderOmitsEmptySections(t *testing.T) {
	r, err := NewHTMLRenderer("Inbox Triage Digest", zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	_, body, err := r.Render(core.NewRunResult(core.ModePreview))
	if err != nil {
		t.Fatal(err)
	}
	for _, absent := range []string{"Errors", "Platform digests", "Aged out", "<h3>"} {
		if strings.Contains(body, absent) {
			t.Errorf("body contains %q for an empty run", absent)
		}
	}
}
