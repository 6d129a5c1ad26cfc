package entity

import (
	"strings"
	"time"
)

// Collection is a named, user-created grouping of clips. Only active
// collections participate in scheduling.
type Collection struct {
	ID        string
	Name      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Normalize ensures defaults & constraints before persistence.
func (c *Collection) Normalize(now time.Time) {
	c.Name = strings.TrimSpace(c.Name)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
}

// Clone returns a copy of the collection.
func (c *Collection) Clone() *Collection {
	if c == nil {
		return nil
	}
	out := *c
	return &out
}

// CollectionStats pairs a collection with membership totals derived from the
// video set on read; nothing here is stored.
type CollectionStats struct {
	Collection
	TotalVideos     int
	CompletedVideos int
}
