package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// fakeLLM returns canned responses keyed by a substring of the prompt,
// falling back to a default response.
type fakeLLM struct {
	responses map[string]string
	response  string
	err       error
	prompts   []string
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string) (string, error) {
	_ = ctx
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	for marker, response := range f.responses {
		if marker != "" && strings.Contains(prompt, marker) {
			return response, nil
		}
	}
	return f.response, nil
}

type sentMessage struct {
	To      string
	Subject string
	Body    string
}

// fakeStore is an in-memory MailStore tracking every mutation
type fakeStore struct {
	emails   []*Email
	fetchErr error

	labels      map[string]map[string]bool // threadID -> label names
	labelIDs    map[string]string          // name -> id
	labelNames  map[string]string          // id -> name
	ensureCalls int

	starred   map[string]bool
	important map[string]bool
	unread    map[string]bool
	archived  map[string]int

	sent    []sentMessage
	sendErr error
	starErr error

	mutations int
}

func newFakeStore(emails ...*Email) *fakeStore {
	return &fakeStore{
		emails:     emails,
		labels:     make(map[string]map[string]bool),
		labelIDs:   make(map[string]string),
		labelNames: make(map[string]string),
		starred:    make(map[string]bool),
		important:  make(map[string]bool),
		unread:     make(map[string]bool),
		archived:   make(map[string]int),
	}
}

func (f *fakeStore) FetchRecent(ctx context.Context, max int64) ([]*Email, error) {
	_ = ctx
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if max > 0 && int64(len(f.emails)) > max {
		return f.emails[:max], nil
	}
	return f.emails, nil
}

func (f *fakeStore) ThreadLabels(ctx context.Context, threadID string) ([]string, error) {
	_ = ctx
	names := []string{}
	for name := range f.labels[threadID] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (f *fakeStore) EnsureLabel(ctx context.Context, name string) (string, error) {
	_ = ctx
	f.ensureCalls++
	if id, ok := f.labelIDs[name]; ok {
		return id, nil
	}
	id := "id-" + name
	f.labelIDs[name] = id
	f.labelNames[id] = name
	return id, nil
}

func (f *fakeStore) AddLabel(ctx context.Context, threadID, labelID string) error {
	_ = ctx
	f.mutations++
	name, ok := f.labelNames[labelID]
	if !ok {
		return fmt.Errorf("unknown label id %q", labelID)
	}
	if f.labels[threadID] == nil {
		f.labels[threadID] = make(map[string]bool)
	}
	f.labels[threadID][name] = true
	return nil
}

func (f *fakeStore) RemoveLabel(ctx context.Context, threadID, labelID string) error {
	_ = ctx
	f.mutations++
	name, ok := f.labelNames[labelID]
	if !ok {
		return fmt.Errorf("unknown label id %q", labelID)
	}
	delete(f.labels[threadID], name)
	return nil
}

func (f *fakeStore) Archive(ctx context.Context, threadID string) error {
	_ = ctx
	f.mutations++
	f.archived[threadID]++
	return nil
}

func (f *fakeStore) Star(ctx context.Context, messageID string) error {
	_ = ctx
	if f.starErr != nil {
		return f.starErr
	}
	f.mutations++
	f.starred[messageID] = true
	return nil
}

func (f *fakeStore) MarkImportant(ctx context.Context, threadID string) error {
	_ = ctx
	f.mutations++
	f.important[threadID] = true
	return nil
}

func (f *fakeStore) MarkUnread(ctx context.Context, messageID string) error {
	_ = ctx
	f.mutations++
	f.unread[messageID] = true
	return nil
}

func (f *fakeStore) SendMessage(ctx context.Context, to, subject, htmlBody string) error {
	_ = ctx
	if f.sendErr != nil {
		return f.sendErr
	}
	f.mutations++
	f.sent = append(f.sent, sentMessage{To: to, Subject: subject, Body: htmlBody})
	return nil
}

// managedLabelsOn returns the managed labels currently on a thread
func (f *fakeStore) managedLabelsOn(threadID string) []string {
	managed := ManagedLabels()
	out := []string{}
	for name := range f.labels[threadID] {
		if _, ok := managed[name]; ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// fakeRenderer is a minimal Renderer for orchestrator tests
type fakeRenderer struct {
	err      error
	rendered *RunResult
}

func (f *fakeRenderer) Render(result *RunResult) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	f.rendered = result
	return "Inbox Triage Digest — test", "<html></html>", nil
}
