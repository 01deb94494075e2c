package core

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func labelEmail() *Email {
	return &Email{ID: "m1", ThreadID: "t1", From: "a@b.c", ReceivedAt: time.Now()}
}

func TestApplyCategoryConvergesToSingleLabel(t *testing.T) {
	store := newFakeStore()
	manager := NewLabelManager(store, ModeFull, zap.NewNop())
	ctx := context.Background()
	email := labelEmail()

	manager.ApplyCategory(ctx, email, CategoryPromotions)
	manager.ApplyCategory(ctx, email, CategoryFinancial)

	got := store.managedLabelsOn("t1")
	if len(got) != 1 {
		t.Fatalf("managed labels = %v, want exactly one", got)
	}
	if got[0] != CategoryFinancial.Label() {
		t.Errorf("label = %s, want %s", got[0], CategoryFinancial.Label())
	}
}

func TestApplyCategoryIsIdempotent(t *testing.T) {
	store := newFakeStore()
	manager := NewLabelManager(store, ModeFull, zap.NewNop())
	ctx := context.Background()
	email := labelEmail()

	manager.ApplyCategory(ctx, email, CategoryTodo)
	mutationsAfterFirst := store.mutations
	manager.ApplyCategory(ctx, email, CategoryTodo)

	if store.mutations != mutationsAfterFirst {
		t.Errorf("second identical apply produced %d extra mutations", store.mutations-mutationsAfterFirst)
	}
	got := store.managedLabelsOn("t1")
	if len(got) != 1 || got[0] != CategoryTodo.Label() {
		t.Errorf("managed labels = %v", got)
	}
}

func TestApplyCategoryLeavesForeignLabelsAlone(t *testing.T) {
	store := newFakeStore()
	// A user-applied label outside the managed set
	store.labelIDs["Receipts/2025"] = "id-user"
	store.labelNames["id-user"] = "Receipts/2025"
	store.labels["t1"] = map[string]bool{"Receipts/2025": true, CategoryMisc.Label(): true}

	manager := NewLabelManager(store, ModeFull, zap.NewNop())
	manager.ApplyCategory(context.Background(), labelEmail(), CategoryUrgent)

	if !store.labels["t1"]["Receipts/2025"] {
		t.Errorf("user label was removed")
	}
	got := store.managedLabelsOn("t1")
	if len(got) != 1 || got[0] != CategoryUrgent.Label() {
		t.Errorf("managed labels = %v, want only %s", got, CategoryUrgent.Label())
	}
}

func TestLabelResolutionCachedPerRun(t *testing.T) {
	store := newFakeStore()
	manager := NewLabelManager(store, ModeFull, zap.NewNop())
	ctx := context.Background()

	first := &Email{ID: "m1", ThreadID: "t1"}
	second := &Email{ID: "m2", ThreadID: "t2"}
	manager.ApplyCategory(ctx, first, CategoryWaiting)
	manager.ApplyCategory(ctx, second, CategoryWaiting)

	if store.ensureCalls != 1 {
		t.Errorf("EnsureLabel called %d times, want 1", store.ensureCalls)
	}
}

func TestApplyCategoryNoopInPreview(t *testing.T) {
	store := newFakeStore()
	manager := NewLabelManager(store, ModePreview, zap.NewNop())
	manager.ApplyCategory(context.Background(), labelEmail(), CategoryUrgent)

	if store.mutations != 0 || store.ensureCalls != 0 {
		t.Errorf("preview mode touched the store")
	}
}
