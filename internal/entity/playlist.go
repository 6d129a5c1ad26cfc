package entity

import "time"

// PlaylistItem is one scheduled appearance of a video inside a session.
type PlaylistItem struct {
	VideoID    string
	ReviewType ReviewType
	// ReviewNumber is 1 for a new item, reviewCount+1 for a review item.
	ReviewNumber       int
	DaysSinceFirstPlay int
	RecommendVideo     bool
}

// Playlist is one day's ordered batch of items of a single review type,
// played sequentially with a persisted resume cursor.
type Playlist struct {
	ID   string
	Date time.Time
	Type ReviewType
	// Extra marks a voluntary additional new-session beyond the daily quota.
	Extra bool
	Items []PlaylistItem
	// LastPlayedIndex is a 0-based cursor, monotonic while the session is open.
	LastPlayedIndex int
	Completed       bool
	CreatedAt       time.Time
}

// Normalize ensures defaults & constraints before persistence.
func (p *Playlist) Normalize(now time.Time) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.Date.IsZero() {
		p.Date = DayStart(now)
	}
	if p.Items == nil {
		p.Items = []PlaylistItem{}
	}
}

// Clone returns a deep copy of the playlist.
func (p *Playlist) Clone() *Playlist {
	if p == nil {
		return nil
	}
	out := *p
	out.Items = append([]PlaylistItem(nil), p.Items...)
	return &out
}

// MatchesKey reports whether this playlist is the session for the given
// (day, type, extra) tuple. The tuple is the idempotency key for creation.
func (p *Playlist) MatchesKey(day time.Time, typ ReviewType, extra bool) bool {
	return p.Type == typ && p.Extra == extra && SameDay(p.Date, day)
}

// RemoveVideo drops every item referencing videoID and pulls the cursor back
// by the number of removed items that sat before it. Returns the number of
// removed items.
func (p *Playlist) RemoveVideo(videoID string) int {
	removed := 0
	kept := p.Items[:0]
	for i, item := range p.Items {
		if item.VideoID == videoID {
			removed++
			if i < p.LastPlayedIndex {
				p.LastPlayedIndex--
			}
			continue
		}
		kept = append(kept, item)
	}
	p.Items = kept
	if p.LastPlayedIndex > len(p.Items) {
		p.LastPlayedIndex = len(p.Items)
	}
	return removed
}

// SessionPreview is a read-only view of what a session would contain.
type SessionPreview struct {
	NewItems    []PlaylistItem
	ReviewItems []PlaylistItem
	TotalCount  int
	Extra       bool
}

// Stats aggregates the learner-facing counters.
type Stats struct {
	TotalVideos     int
	CompletedVideos int
	NewToday        int
	DueReviews      int
	ExtraAvailable  bool
}
