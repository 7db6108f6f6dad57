package testutil

import (
	"context"

	"github.com/spec-kit/social-services/internal/domain"
	"github.com/spec-kit/social-services/internal/repository"
)

// Notifications returns an in-memory NotificationStore, newest first like the Redis lists.
func (s *Store) Notifications() repository.NotificationStore { return inboxStore{s} }

type inboxStore struct{ s *Store }

func (r inboxStore) Push(_ context.Context, n domain.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.inbox[n.RecipientID] = append([]domain.Notification{n}, r.s.inbox[n.RecipientID]...)
	return nil
}

func (r inboxStore) List(_ context.Context, recipientID string, limit int) ([]domain.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	items := r.s.inbox[recipientID]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return append([]domain.Notification(nil), items...), nil
}

func (r inboxStore) Clear(_ context.Context, recipientID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.inbox, recipientID)
	return nil
}
