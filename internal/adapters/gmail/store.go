package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mikey/llm-mail-triage/internal/core"
	"go.uber.org/zap"
	gm "google.golang.org/api/gmail/v1"
)

// System label ids used by the Gmail API
const (
	labelInbox     = "INBOX"
	labelUnread    = "UNREAD"
	labelStarred   = "STARRED"
	labelImportant = "IMPORTANT"
)

// Store is a core.MailStore implementation backed by the Gmail API
type Store struct {
	svc    *gm.Service
	user   string
	query  string
	logger *zap.Logger

	mu          sync.Mutex
	labelByName map[string]string
	labelByID   map[string]string
}

// NewStore creates a new Gmail-backed mail store
func NewStore(svc *gm.Service, user, query string, logger *zap.Logger) *Store {
	return &Store{
		svc:         svc,
		user:        user,
		query:       query,
		logger:      logger,
		labelByName: make(map[string]string),
		labelByID:   make(map[string]string),
	}
}

// FetchRecent returns the most recent messages in the configured view
func (s *Store) FetchRecent(ctx context.Context, max int64) ([]*core.Email, error) {
	resp, err := s.svc.Users.Messages.List(s.user).
		Q(s.query).
		MaxResults(max).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	emails := make([]*core.Email, 0, len(resp.Messages))
	for _, ref := range resp.Messages {
		msg, err := s.svc.Users.Messages.Get(s.user, ref.Id).
			Format("full").
			Context(ctx).
			Do()
		if err != nil {
			// One unreadable message should not sink the fetch
			s.logger.Warn("Failed to fetch message", zap.String("id", ref.Id), zap.Error(err))
			continue
		}
		emails = append(emails, s.toEmail(msg))
	}
	return emails, nil
}

// toEmail converts an API message into the engine's message handle
func (s *Store) toEmail(msg *gm.Message) *core.Email {
	headers := headerMap(msg.Payload)
	snippet := extractBody(msg.Payload)
	if strings.TrimSpace(snippet) == "" {
		snippet = msg.Snippet
	}
	return &core.Email{
		ID:         msg.Id,
		ThreadID:   msg.ThreadId,
		Subject:    headers["Subject"],
		From:       headers["From"],
		Snippet:    snippet,
		ReceivedAt: time.UnixMilli(msg.InternalDate),
		Unread:     hasLabel(msg.LabelIds, labelUnread),
		Starred:    hasLabel(msg.LabelIds, labelStarred),
	}
}

func hasLabel(ids []string, id string) bool {
	for _, l := range ids {
		if l == id {
			return true
		}
	}
	return false
}

func headerMap(payload *gm.MessagePart) map[string]string {
	out := make(map[string]string)
	if payload == nil {
		return out
	}
	for _, h := range payload.Headers {
		out[h.Name] = h.Value
	}
	return out
}

// loadLabels fills the name/id caches from the API, once per process
func (s *Store) loadLabels(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.labelByID) > 0 {
		return nil
	}
	resp, err := s.svc.Users.Labels.List(s.user).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("list labels: %w", err)
	}
	for _, label := range resp.Labels {
		s.labelByName[label.Name] = label.Id
		s.labelByID[label.Id] = label.Name
	}
	return nil
}

// ThreadLabels returns the label names currently on a conversation
func (s *Store) ThreadLabels(ctx context.Context, threadID string) ([]string, error) {
	if err := s.loadLabels(ctx); err != nil {
		return nil, err
	}

	thread, err := s.svc.Users.Threads.Get(s.user, threadID).
		Format("minimal").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("get thread %s: %w", threadID, err)
	}

	seen := make(map[string]bool)
	names := []string{}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, msg := range thread.Messages {
		for _, id := range msg.LabelIds {
			name, ok := s.labelByID[id]
			if !ok || seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	return names, nil
}

// EnsureLabel resolves a label by name, creating it if missing
func (s *Store) EnsureLabel(ctx context.Context, name string) (string, error) {
	if err := s.loadLabels(ctx); err != nil {
		return "", err
	}

	s.mu.Lock()
	id, ok := s.labelByName[name]
	s.mu.Unlock()
	if ok {
		return id, nil
	}

	label, err := s.svc.Users.Labels.Create(s.user, &gm.Label{
		Name:                  name,
		LabelListVisibility:   "labelShow",
		MessageListVisibility: "show",
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create label %q: %w", name, err)
	}

	s.mu.Lock()
	s.labelByName[label.Name] = label.Id
	s.labelByID[label.Id] = label.Name
	s.mu.Unlock()
	return label.Id, nil
}

func (s *Store) modifyThread(ctx context.Context, threadID string, add, remove []string) error {
	_, err := s.svc.Users.Threads.Modify(s.user, threadID, &gm.ModifyThreadRequest{
		AddLabelIds:    add,
		RemoveLabelIds: remove,
	}).Context(ctx).Do()
	return err
}

func (s *Store) modifyMessage(ctx context.Context, messageID string, add, remove []string) error {
	_, err := s.svc.Users.Messages.Modify(s.user, messageID, &gm.ModifyMessageRequest{
		AddLabelIds:    add,
		RemoveLabelIds: remove,
	}).Context(ctx).Do()
	return err
}

// AddLabel attaches a label to a conversation
func (s *Store) AddLabel(ctx context.Context, threadID, labelID string) error {
	if err := s.modifyThread(ctx, threadID, []string{labelID}, nil); err != nil {
		return fmt.Errorf("add label to thread %s: %w", threadID, err)
	}
	return nil
}

// RemoveLabel detaches a label from a conversation
func (s *Store) RemoveLabel(ctx context.Context, threadID, labelID string) error {
	if err := s.modifyThread(ctx, threadID, nil, []string{labelID}); err != nil {
		return fmt.Errorf("remove label from thread %s: %w", threadID, err)
	}
	return nil
}

// Archive removes a conversation from the inbox
func (s *Store) Archive(ctx context.Context, threadID string) error {
	if err := s.modifyThread(ctx, threadID, nil, []string{labelInbox}); err != nil {
		return fmt.Errorf("archive thread %s: %w", threadID, err)
	}
	return nil
}

// Star stars a message
func (s *Store) Star(ctx context.Context, messageID string) error {
	if err := s.modifyMessage(ctx, messageID, []string{labelStarred}, nil); err != nil {
		return fmt.Errorf("star message %s: %w", messageID, err)
	}
	return nil
}

// MarkImportant marks a conversation important
func (s *Store) MarkImportant(ctx context.Context, threadID string) error {
	if err := s.modifyThread(ctx, threadID, []string{labelImportant}, nil); err != nil {
		return fmt.Errorf("mark thread %s important: %w", threadID, err)
	}
	return nil
}

// MarkUnread marks a message unread
func (s *Store) MarkUnread(ctx context.Context, messageID string) error {
	if err := s.modifyMessage(ctx, messageID, []string{labelUnread}, nil); err != nil {
		return fmt.Errorf("mark message %s unread: %w", messageID, err)
	}
	return nil
}

// SendMessage sends a new message with an HTML body
func (s *Store) SendMessage(ctx context.Context, to, subject, htmlBody string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)

	raw := base64.URLEncoding.EncodeToString([]byte(b.String()))
	_, err := s.svc.Users.Messages.Send(s.user, &gm.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}
