package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func classified(category Category, summary string, details map[string]string) Classification {
	if details == nil {
		details = map[string]string{}
	}
	return Classification{Category: category, Confidence: 0.9, Summary: summary, Details: details}
}

func TestRecordKeepsProcessingOrder(t *testing.T) {
	aggregator := NewAggregator(NewRunResult(ModeFull), nil, zap.NewNop())

	first := &Email{ID: "m1", Subject: "first"}
	second := &Email{ID: "m2", Subject: "second"}
	aggregator.Record(first, classified(CategoryTodo, "", nil), RetentionOutcome{})
	aggregator.Record(second, classified(CategoryTodo, "", nil), RetentionOutcome{})

	items := aggregator.Result().Buckets[CategoryTodo]
	if len(items) != 2 {
		t.Fatalf("bucket size = %d, want 2", len(items))
	}
	if items[0].Email.Subject != "first" || items[1].Email.Subject != "second" {
		t.Errorf("bucket order broken: %s, %s", items[0].Email.Subject, items[1].Email.Subject)
	}
}

func TestRecordAgedArchiveOnlyCounts(t *testing.T) {
	aggregator := NewAggregator(NewRunResult(ModeFull), nil, zap.NewNop())

	email := &Email{ID: "m1", Subject: "old statement"}
	aggregator.Record(email, classified(CategoryFinancial, "", nil), RetentionOutcome{
		Aging:       AgingDecision{Action: AgingArchive, DaysOld: 9},
		AgedArchive: true,
	})

	result := aggregator.Result()
	if len(result.Buckets[CategoryFinancial]) != 0 {
		t.Errorf("aged-archived item was listed")
	}
	if result.AgedArchived[CategoryFinancial] != 1 {
		t.Errorf("aged counter = %d, want 1", result.AgedArchived[CategoryFinancial])
	}
	if result.Processed != 1 {
		t.Errorf("processed = %d, want 1", result.Processed)
	}
}

func TestRecordAutoArchiveCountsAndLists(t *testing.T) {
	aggregator := NewAggregator(NewRunResult(ModeFull), nil, zap.NewNop())

	email := &Email{ID: "m1", Subject: "50% off"}
	aggregator.Record(email, classified(CategoryPromotions, "", nil), RetentionOutcome{ArchivedNow: true})

	result := aggregator.Result()
	if len(result.Buckets[CategoryPromotions]) != 1 {
		t.Errorf("auto-archived item missing from bucket")
	}
	if result.AutoArchived[CategoryPromotions] != 1 {
		t.Errorf("auto-archive counter = %d, want 1", result.AutoArchived[CategoryPromotions])
	}
}

func TestRecordCarriesAgingWarning(t *testing.T) {
	aggregator := NewAggregator(NewRunResult(ModeFull), nil, zap.NewNop())

	email := &Email{ID: "m1", Subject: "invoice", ReceivedAt: time.Now()}
	aggregator.Record(email, classified(CategoryFinancial, "", nil), RetentionOutcome{
		Aging: AgingDecision{Action: AgingWarn, DaysOld: 6, Warning: "6 days old, auto-archives after 7 days"},
	})

	items := aggregator.Result().Buckets[CategoryFinancial]
	if len(items) != 1 || items[0].AgingWarning == "" {
		t.Errorf("aging warning not carried onto the reported item")
	}
}

func TestSocialDigestsGroupByPlatform(t *testing.T) {
	llm := &fakeLLM{response: "Two threads you follow got replies."}
	aggregator := NewAggregator(NewRunResult(ModeFull), NewDigestSummarizer(llm, zap.NewNop()), zap.NewNop())

	aggregator.Record(&Email{ID: "m1", Subject: "reply"}, classified(CategorySocialCommunity, "a reply", map[string]string{"platform": "Reddit"}), RetentionOutcome{ArchivedNow: true})
	aggregator.Record(&Email{ID: "m2", Subject: "mention"}, classified(CategorySocialCommunity, "a mention", map[string]string{"platform": "Reddit"}), RetentionOutcome{ArchivedNow: true})
	aggregator.Record(&Email{ID: "m3", Subject: "invite"}, classified(CategorySocialCommunity, "an invite", nil), RetentionOutcome{ArchivedNow: true})

	aggregator.BuildSocialDigests(context.Background())

	digests := aggregator.Result().SocialDigests
	if digests["Reddit"] != "Two threads you follow got replies." {
		t.Errorf("Reddit digest = %q", digests["Reddit"])
	}
	if digests["Other"] == "" {
		t.Errorf("items without a platform should group under Other")
	}
}

func TestSocialDigestDegradesOnSummarizerFailure(t *testing.T) {
	llm := &fakeLLM{err: errors.New("rate limited")}
	aggregator := NewAggregator(NewRunResult(ModeFull), NewDigestSummarizer(llm, zap.NewNop()), zap.NewNop())

	aggregator.Record(&Email{ID: "m1", Subject: "reply"}, classified(CategorySocialCommunity, "a reply", map[string]string{"platform": "LinkedIn"}), RetentionOutcome{ArchivedNow: true})
	aggregator.Record(&Email{ID: "m2", Subject: "mention"}, classified(CategorySocialCommunity, "a mention", map[string]string{"platform": "LinkedIn"}), RetentionOutcome{ArchivedNow: true})

	aggregator.BuildSocialDigests(context.Background())

	if got := aggregator.Result().SocialDigests["LinkedIn"]; got != "2 updates" {
		t.Errorf("digest = %q, want the generic fallback", got)
	}
}

func TestSocialDigestSkippedWithoutSummarizer(t *testing.T) {
	aggregator := NewAggregator(NewRunResult(ModeFull), nil, zap.NewNop())
	aggregator.Record(&Email{ID: "m1", Subject: "reply"}, classified(CategorySocialCommunity, "a reply", map[string]string{"platform": "Reddit"}), RetentionOutcome{})

	aggregator.BuildSocialDigests(context.Background())

	if got := aggregator.Result().SocialDigests["Reddit"]; got != "1 updates" {
		t.Errorf("digest = %q, want generic count", got)
	}
}
