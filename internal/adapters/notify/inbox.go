package notify

import (
	"context"
	"slices"
	"sync"
)

// Inbox persists notifications per recipient.
type Inbox interface {
	Store(ctx context.Context, n Notification) error
	// List returns up to limit notifications for recipientID, newest first.
	// A non-positive limit means DefaultListLimit.
	List(ctx context.Context, recipientID string, limit int) ([]Notification, error)
	// MarkRead flags one notification as read. It fails with ErrNotFound for
	// unknown ids and ErrNotAuthorized when recipientID does not own it.
	MarkRead(ctx context.Context, recipientID, id string) (Notification, error)
	// MarkAllRead flags every unread notification of recipientID and returns
	// how many changed.
	MarkAllRead(ctx context.Context, recipientID string) (int, error)
	Delete(ctx context.Context, recipientID, id string) error
}

// MemoryInbox implements Inbox in process memory.
type MemoryInbox struct {
	mu    sync.RWMutex
	byID  map[string]Notification
	byRcp map[string][]string // insertion order, oldest first
}

var _ Inbox = (*MemoryInbox)(nil)

// NewMemoryInbox returns an empty MemoryInbox.
func NewMemoryInbox() *MemoryInbox {
	return &MemoryInbox{
		byID:  make(map[string]Notification),
		byRcp: make(map[string][]string),
	}
}

func (m *MemoryInbox) Store(_ context.Context, n Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[n.ID]; !ok {
		m.byRcp[n.RecipientID] = append(m.byRcp[n.RecipientID], n.ID)
	}
	m.byID[n.ID] = n
	return nil
}

func (m *MemoryInbox) List(_ context.Context, recipientID string, limit int) ([]Notification, error) {
	limit = limitOrDefault(limit)

	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.byRcp[recipientID]
	out := make([]Notification, 0, min(limit, len(ids)))
	for i := len(ids) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.byID[ids[i]])
	}
	return out, nil
}

func (m *MemoryInbox) MarkRead(_ context.Context, recipientID, id string) (Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, err := m.owned(recipientID, id)
	if err != nil {
		return Notification{}, err
	}
	n.Read = true
	m.byID[id] = n
	return n, nil
}

func (m *MemoryInbox) MarkAllRead(_ context.Context, recipientID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	changed := 0
	for _, id := range m.byRcp[recipientID] {
		n := m.byID[id]
		if n.Read {
			continue
		}
		n.Read = true
		m.byID[id] = n
		changed++
	}
	return changed, nil
}

func (m *MemoryInbox) Delete(_ context.Context, recipientID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.owned(recipientID, id); err != nil {
		return err
	}
	delete(m.byID, id)
	m.byRcp[recipientID] = slices.DeleteFunc(m.byRcp[recipientID], func(x string) bool { return x == id })
	if len(m.byRcp[recipientID]) == 0 {
		delete(m.byRcp, recipientID)
	}
	return nil
}

func (m *MemoryInbox) owned(recipientID, id string) (Notification, error) {
	n, ok := m.byID[id]
	if !ok {
		return Notification{}, ErrNotFound
	}
	if n.RecipientID != recipientID {
		return Notification{}, ErrNotAuthorized
	}
	return n, nil
}
