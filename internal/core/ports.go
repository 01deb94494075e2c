package core

import (
	"context"
)

// LLMClient defines the narrow surface for one round trip to an LLM
// service: send a prompt, get the raw completion text back. The caller
// owns prompt construction and response validation.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// MailStore defines the interface to the mailbox the engine triages.
// All mutating operations are idempotent: label replacement converges,
// archive is a one-way transition.
type MailStore interface {
	// FetchRecent returns the most recent messages matching the
	// configured mailbox view, newest first, at most max.
	FetchRecent(ctx context.Context, max int64) ([]*Email, error)

	// ThreadLabels returns the label names currently on a conversation
	ThreadLabels(ctx context.Context, threadID string) ([]string, error)

	// EnsureLabel resolves a label by name, creating it if missing,
	// and returns its store-side identifier.
	EnsureLabel(ctx context.Context, name string) (string, error)

	AddLabel(ctx context.Context, threadID, labelID string) error
	RemoveLabel(ctx context.Context, threadID, labelID string) error

	Archive(ctx context.Context, threadID string) error
	Star(ctx context.Context, messageID string) error
	MarkImportant(ctx context.Context, threadID string) error
	MarkUnread(ctx context.Context, messageID string) error

	// SendMessage sends a new message with an HTML body
	SendMessage(ctx context.Context, to, subject, htmlBody string) error
}

// HistoryStore defines the optional namespaced per-sender bookkeeping.
// It is never consulted during classification or policy decisions.
type HistoryStore interface {
	// Record notes that a sender's latest message landed in category
	Record(ctx context.Context, sender string, category Category) error

	// List returns every recorded sender with its last category
	List(ctx context.Context) (map[string]string, error)

	// Clear drops all recorded history
	Clear(ctx context.Context) error
}

// Renderer turns a finalized run aggregate into a deliverable document
type Renderer interface {
	Render(result *RunResult) (subject string, htmlBody string, err error)
}
