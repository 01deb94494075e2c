package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// LabelManager keeps the single-label invariant: at most one managed
// label on a conversation at any time, matching the latest category.
// Label resolution is cached by name for the lifetime of one run.
type LabelManager struct {
	store   MailStore
	mode    RunMode
	logger  *zap.Logger
	managed map[string]Category
	ids     map[string]string
}

// NewLabelManager creates a new label manager for one run
func NewLabelManager(store MailStore, mode RunMode, logger *zap.Logger) *LabelManager {
	return &LabelManager{
		store:   store,
		mode:    mode,
		logger:  logger,
		managed: ManagedLabels(),
		ids:     make(map[string]string),
	}
}

// resolve returns the store-side id for a label name, creating the
// label on first use and caching the id for the rest of the run.
func (m *LabelManager) resolve(ctx context.Context, name string) (string, error) {
	if id, ok := m.ids[name]; ok {
		return id, nil
	}
	id, err := m.store.EnsureLabel(ctx, name)
	if err != nil {
		return "", fmt.Errorf("ensure label %q: %w", name, err)
	}
	m.ids[name] = id
	return id, nil
}

// ApplyCategory converges the conversation to exactly one managed
// label reflecting category. Labels outside the managed set are left
// untouched. Failures are logged and swallowed: the message still
// proceeds through retention and aggregation unlabeled.
func (m *LabelManager) ApplyCategory(ctx context.Context, email *Email, category Category) {
	if !m.mode.AllowMutations() {
		return
	}

	target := category.Label()

	current, err := m.store.ThreadLabels(ctx, email.ThreadID)
	if err != nil {
		m.logger.Warn("Failed to enumerate thread labels",
			zap.String("thread_id", email.ThreadID),
			zap.Error(err))
		return
	}

	hasTarget := false
	for _, name := range current {
		if _, ok := m.managed[name]; !ok {
			continue
		}
		if name == target {
			hasTarget = true
			continue
		}
		id, err := m.resolve(ctx, name)
		if err != nil {
			m.logger.Warn("Failed to resolve stale label", zap.String("label", name), zap.Error(err))
			continue
		}
		if err := m.store.RemoveLabel(ctx, email.ThreadID, id); err != nil {
			m.logger.Warn("Failed to remove stale label",
				zap.String("thread_id", email.ThreadID),
				zap.String("label", name),
				zap.Error(err))
		}
	}

	if hasTarget {
		return
	}

	id, err := m.resolve(ctx, target)
	if err != nil {
		m.logger.Warn("Failed to resolve label",
			zap.String("label", target),
			zap.Error(err))
		return
	}
	if err := m.store.AddLabel(ctx, email.ThreadID, id); err != nil {
		m.logger.Warn("Failed to attach label",
			zap.String("thread_id", email.ThreadID),
			zap.String("label", target),
			zap.Error(err))
	}
}
