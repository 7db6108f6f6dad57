package domain

import "time"

// Notification is an inbox entry delivered to a single recipient.
type Notification struct {
	ID          string         `json:"id"`
	RecipientID string         `json:"recipient_id"`
	ActorID     *string        `json:"actor_id,omitempty"`
	Verb        string         `json:"verb"`
	Context     map[string]any `json:"context,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}
