package core

import (
	"context"
	"fmt"
	"time"

	"github.com/mikey/llm-mail-triage/internal/whitelist"
	"go.uber.org/zap"
)

const millisPerDay = 24 * 60 * 60 * 1000

// AgingThresholds configures age-based archival for one category
type AgingThresholds struct {
	WarningDays int
	ArchiveDays int
}

// PolicyConfig carries the configured retention thresholds.
// PurchasesAging switches purchases from immediate archival to the same
// age-based policy as financial; both variants are supported.
type PolicyConfig struct {
	Financial      AgingThresholds
	Purchases      AgingThresholds
	PurchasesAging bool
}

// categoryPolicy is one row of the retention table
type categoryPolicy struct {
	star          bool
	markImportant bool
	markUnread    bool
	archiveNow    bool
	aged          bool
}

// retentionTable is the single per-category policy table consulted by
// the generic dispatch below. Adding a category means adding one row
// here plus one label mapping.
var retentionTable = map[Category]categoryPolicy{
	CategoryUrgent:             {markImportant: true, markUnread: true},
	CategoryTodo:               {markUnread: true},
	CategoryWaiting:            {markUnread: true},
	CategorySecurityAlert:      {star: true, markImportant: true, markUnread: true},
	CategoryCreatorNewsletters: {archiveNow: true},
	CategorySocialCommunity:    {archiveNow: true},
	CategoryPromotions:         {archiveNow: true},
	CategoryFinancial:          {aged: true},
	CategoryPurchases:          {archiveNow: true},
	CategoryMisc:               {},
}

// RetentionOutcome is the retention engine's verdict for one message
type RetentionOutcome struct {
	Aging       AgingDecision
	ArchivedNow bool
	AgedArchive bool
}

// RetentionEngine decides and applies per-category retention policy.
// The decision itself is pure; mutations are gated on the run mode.
type RetentionEngine struct {
	store     MailStore
	mode      RunMode
	cfg       PolicyConfig
	protected *whitelist.Checker
	now       func() time.Time
	logger    *zap.Logger
}

// NewRetentionEngine creates a new retention engine
func NewRetentionEngine(store MailStore, mode RunMode, cfg PolicyConfig, protected *whitelist.Checker, logger *zap.Logger) *RetentionEngine {
	return &RetentionEngine{
		store:     store,
		mode:      mode,
		cfg:       cfg,
		protected: protected,
		now:       time.Now,
		logger:    logger,
	}
}

// AgeInDays returns whole days elapsed between receivedAt and now,
// by floor division of elapsed milliseconds.
func AgeInDays(receivedAt, now time.Time) int {
	elapsed := now.UnixMilli() - receivedAt.UnixMilli()
	if elapsed < 0 {
		return 0
	}
	return int(elapsed / millisPerDay)
}

// policyRow resolves the effective table row for a category, honoring
// the purchases aging variant.
func (e *RetentionEngine) policyRow(category Category) categoryPolicy {
	row := retentionTable[category]
	if category == CategoryPurchases && e.cfg.PurchasesAging {
		return categoryPolicy{aged: true}
	}
	return row
}

// thresholds returns the aging thresholds for an age-governed category
func (e *RetentionEngine) thresholds(category Category) AgingThresholds {
	if category == CategoryPurchases {
		return e.cfg.Purchases
	}
	return e.cfg.Financial
}

// Decide computes the aging decision for a message. Pure: no mutations.
func (e *RetentionEngine) Decide(category Category, receivedAt time.Time) AgingDecision {
	days := AgeInDays(receivedAt, e.now())
	row := e.policyRow(category)
	if !row.aged {
		return AgingDecision{Action: AgingKeep, DaysOld: days}
	}

	t := e.thresholds(category)
	switch {
	case days > t.ArchiveDays:
		return AgingDecision{Action: AgingArchive, DaysOld: days}
	case days >= t.WarningDays:
		return AgingDecision{
			Action:  AgingWarn,
			DaysOld: days,
			Warning: fmt.Sprintf("%d days old, auto-archives after %d days", days, t.ArchiveDays),
		}
	default:
		return AgingDecision{Action: AgingKeep, DaysOld: days}
	}
}

// Apply decides retention for one classified message and performs the
// resulting mutations. Every mutation is a no-op in preview mode.
func (e *RetentionEngine) Apply(ctx context.Context, email *Email, category Category) (RetentionOutcome, error) {
	row := e.policyRow(category)
	aging := e.Decide(category, email.ReceivedAt)

	outcome := RetentionOutcome{
		Aging:       aging,
		ArchivedNow: row.archiveNow,
		AgedArchive: row.aged && aging.Action == AgingArchive,
	}

	// Protected senders are never auto-archived
	if (outcome.ArchivedNow || outcome.AgedArchive) && e.protected != nil && e.protected.IsProtected(email.From) {
		outcome.ArchivedNow = false
		outcome.AgedArchive = false
	}

	if !e.mode.AllowMutations() {
		return outcome, nil
	}

	if row.star {
		if err := e.store.Star(ctx, email.ID); err != nil {
			return outcome, fmt.Errorf("star message: %w", err)
		}
	}
	if row.markImportant {
		if err := e.store.MarkImportant(ctx, email.ThreadID); err != nil {
			return outcome, fmt.Errorf("mark important: %w", err)
		}
	}
	if row.markUnread {
		if err := e.store.MarkUnread(ctx, email.ID); err != nil {
			return outcome, fmt.Errorf("mark unread: %w", err)
		}
	}
	if outcome.ArchivedNow || outcome.AgedArchive {
		if err := e.store.Archive(ctx, email.ThreadID); err != nil {
			return outcome, fmt.Errorf("archive thread: %w", err)
		}
		e.logger.Debug("Archived conversation",
			zap.String("thread_id", email.ThreadID),
			zap.String("category", category.String()),
			zap.Bool("aged", outcome.AgedArchive))
	}

	return outcome, nil
}
