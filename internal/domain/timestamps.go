package domain

import "time"

// Timestamps provides common fields for persisted entities.
// Embedded in every domain type that lives in the store.
type Timestamps struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
}

// Touch updates the UpdatedAt timestamp to the current time.
// Call this whenever the underlying entity changes.
func (t *Timestamps) Touch() {
	t.UpdatedAt = time.Now()
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
// Call this when creating a new entity.
func (t *Timestamps) InitTimestamps() {
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
}
