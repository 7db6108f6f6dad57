package domain

import "time"

// CV references a document kept in the external file store.
type CV struct {
	ID          string
	UserID      string
	Name        string
	DocumentURL string
	CreatedAt   time.Time
}

// OwnerID returns the account that owns the CV.
func (c *CV) OwnerID() (string, bool) {
	if c == nil || c.UserID == "" {
		return "", false
	}
	return c.UserID, true
}
