package core

import (
	"time"
)

// Email is a read/write handle onto one message in the mail store.
// The store owns the underlying state; the engine never copies it.
type Email struct {
	ID         string
	ThreadID   string
	Subject    string
	From       string
	Snippet    string
	ReceivedAt time.Time
	Unread     bool
	Starred    bool
}

// Classification is the validated verdict for one message
type Classification struct {
	Category   Category
	Confidence float64
	Summary    string
	Reasoning  string
	// Details carries category-specific payload, e.g. "platform" for
	// social_community verdicts.
	Details map[string]string
}

// AgingAction is the retention decision for an aged message
type AgingAction string

const (
	AgingKeep    AgingAction = "keep"
	AgingWarn    AgingAction = "warn"
	AgingArchive AgingAction = "archive"
)

// AgingDecision is derived purely from category, message age and
// configured thresholds.
type AgingDecision struct {
	Action  AgingAction
	DaysOld int
	Warning string
}

// TriageItem is one processed message as it appears in the report
type TriageItem struct {
	Email          *Email
	Classification Classification
	AgingWarning   string
}

// RunError records one per-message failure without aborting the batch
type RunError struct {
	Subject string
	From    string
	Err     string
}

// RunResult is the aggregate handed to the report renderer. It is
// created empty at run start, mutated once per processed message by the
// orchestrator, and read-only after that.
type RunResult struct {
	StartedAt time.Time
	Mode      RunMode

	Buckets      map[Category][]TriageItem
	Errors       []RunError
	AutoArchived map[Category]int
	AgedArchived map[Category]int

	// SocialDigests holds the optional per-platform cross-item digest,
	// keyed by platform name.
	SocialDigests map[string]string

	Processed int
	Skipped   int
}

// NewRunResult creates an empty aggregate for one run
func NewRunResult(mode RunMode) *RunResult {
	return &RunResult{
		StartedAt:     time.Now(),
		Mode:          mode,
		Buckets:       make(map[Category][]TriageItem),
		AutoArchived:  make(map[Category]int),
		AgedArchived:  make(map[Category]int),
		SocialDigests: make(map[string]string),
	}
}

// TotalListed returns the number of items listed across all buckets
func (r *RunResult) TotalListed() int {
	n := 0
	for _, items := range r.Buckets {
		n += len(items)
	}
	return n
}

// RunMode is the mutation-permission and batch-size policy for one run
type RunMode string

const (
	// ModePreview processes the full fetched set with zero mutations
	ModePreview RunMode = "preview"
	// ModeLimited allows mutations but caps the batch
	ModeLimited RunMode = "limited"
	// ModeFull allows mutations over the whole fetched set
	ModeFull RunMode = "full"
)

// AllowMutations reports whether the mode permits writes to the mail store
func (m RunMode) AllowMutations() bool {
	return m == ModeLimited || m == ModeFull
}

// ParseRunMode parses a configured mode string, defaulting to preview
func ParseRunMode(s string) RunMode {
	switch RunMode(s) {
	case ModeLimited:
		return ModeLimited
	case ModeFull:
		return ModeFull
	default:
		return ModePreview
	}
}

// RunState tracks the orchestrator through one run
type RunState string

const (
	StateIdle       RunState = "idle"
	StateFetching   RunState = "fetching"
	StateProcessing RunState = "processing"
	StateReporting  RunState = "reporting"
	StateDone       RunState = "done"
	StateFailed     RunState = "failed"
)
