package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// platformFallback groups social items whose verdict carried no platform
const platformFallback = "Other"

// Aggregator folds per-message outcomes into the shared RunResult.
// It is the only writer; the orchestrator calls it once per message.
type Aggregator struct {
	result     *RunResult
	summarizer *DigestSummarizer
	logger     *zap.Logger
}

// NewAggregator creates an aggregator over a fresh RunResult.
// summarizer may be nil, in which case social digests use the generic
// fallback text.
func NewAggregator(result *RunResult, summarizer *DigestSummarizer, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		result:     result,
		summarizer: summarizer,
		logger:     logger,
	}
}

// Result returns the aggregate, finalized once the run completes
func (a *Aggregator) Result() *RunResult {
	return a.result
}

// Record folds one processed message into the aggregate. Aged
// auto-archived items only increment a counter so the report stays
// focused on actionable mail; everything else is appended to its
// category bucket in processing order.
func (a *Aggregator) Record(email *Email, classification Classification, outcome RetentionOutcome) {
	a.result.Processed++

	category := classification.Category

	if outcome.AgedArchive {
		a.result.AgedArchived[category]++
		return
	}

	if outcome.ArchivedNow {
		a.result.AutoArchived[category]++
	}

	item := TriageItem{
		Email:          email,
		Classification: classification,
		AgingWarning:   outcome.Aging.Warning,
	}
	a.result.Buckets[category] = append(a.result.Buckets[category], item)
}

// RecordError notes a per-message failure without aborting the batch
func (a *Aggregator) RecordError(email *Email, err error) {
	a.result.Errors = append(a.result.Errors, RunError{
		Subject: email.Subject,
		From:    email.From,
		Err:     err.Error(),
	})
}

// RecordSkip counts a message excluded from classification entirely
func (a *Aggregator) RecordSkip() {
	a.result.Skipped++
}

// BuildSocialDigests groups the social bucket by platform and asks the
// summarizer for a short cross-item digest per platform. Best-effort:
// a summarizer failure degrades to a generic "N updates" string.
func (a *Aggregator) BuildSocialDigests(ctx context.Context) {
	social := a.result.Buckets[CategorySocialCommunity]
	if len(social) == 0 {
		return
	}

	platforms := make(map[string][]DigestItem)
	order := []string{}
	for _, item := range social {
		platform := item.Classification.Details["platform"]
		if platform == "" {
			platform = platformFallback
		}
		if _, seen := platforms[platform]; !seen {
			order = append(order, platform)
		}
		platforms[platform] = append(platforms[platform], DigestItem{
			Subject: item.Email.Subject,
			From:    item.Email.From,
			Summary: item.Classification.Summary,
		})
	}

	for _, platform := range order {
		items := platforms[platform]
		digest := fmt.Sprintf("%d updates", len(items))
		if a.summarizer != nil {
			if text, err := a.summarizer.Summarize(ctx, platform, items); err != nil {
				a.logger.Warn("Social digest degraded to fallback",
					zap.String("platform", platform),
					zap.Error(err))
			} else {
				digest = text
			}
		}
		a.result.SocialDigests[platform] = digest
	}
}
