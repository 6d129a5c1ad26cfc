package entity

import (
	"strings"
	"time"
)

// ReviewIntervals holds the forgetting-curve schedule: days until the next
// review, counted from the playthrough that advanced the clip. A clip is
// mastered after the initial play plus len(ReviewIntervals)-1 reviews.
var ReviewIntervals = []int{1, 4, 7, 15, 30, 90}

const (
	// DefaultMaxNewPerDay caps how many unseen clips a normal day introduces.
	DefaultMaxNewPerDay = 4

	// ExtraSessionBonus is added to the cap for a voluntary extra session.
	ExtraSessionBonus = 2

	// DefaultDailyReviewCap bounds due reviews per day; 0 means unbounded.
	// Catching up on reviews is always allowed, only new-item pacing is gated.
	DefaultDailyReviewCap = 0
)

// VideoStatus tracks where a clip sits in the spaced-repetition ladder.
type VideoStatus string

const (
	VideoStatusNew       VideoStatus = "new"
	VideoStatusLearning  VideoStatus = "learning"
	VideoStatusCompleted VideoStatus = "completed"
)

// Video is a single media item owned by a collection.
type Video struct {
	ID           string
	CollectionID string
	Filename     string
	MediaType    MediaType
	MimeType     string
	SizeBytes    int64
	Status       VideoStatus
	ReviewCount  int
	DateAdded    time.Time
	// FirstPlayDate is set once, on the first successful playthrough.
	FirstPlayDate *time.Time
	// NextReviewDate is the local-midnight boundary when the clip is next due.
	// Nil before the first play and once the clip is completed.
	NextReviewDate *time.Time
}

// Normalize ensures defaults & constraints before persistence.
func (v *Video) Normalize(now time.Time) {
	v.Filename = strings.TrimSpace(v.Filename)
	if v.Status == "" {
		v.Status = VideoStatusNew
	}
	if v.DateAdded.IsZero() {
		v.DateAdded = now
	}
	if v.MediaType == MediaTypeUnspecified {
		v.MediaType = MediaTypeForMime(v.MimeType)
	}
}

// Clone returns a deep copy. Pointer fields are copied by value.
func (v *Video) Clone() *Video {
	if v == nil {
		return nil
	}
	out := *v
	if v.FirstPlayDate != nil {
		d := *v.FirstPlayDate
		out.FirstPlayDate = &d
	}
	if v.NextReviewDate != nil {
		d := *v.NextReviewDate
		out.NextReviewDate = &d
	}
	return &out
}

// Played applies one successful playthrough at the given time and returns the
// updated clip. The receiver is not mutated. Completed clips are terminal and
// come back unchanged.
func (v Video) Played(now time.Time) Video {
	out := *v.Clone()
	switch out.Status {
	case VideoStatusCompleted:
		return out
	case VideoStatusNew:
		first := now
		out.FirstPlayDate = &first
		out.ReviewCount = 1
		out.Status = VideoStatusLearning
		next := DayStart(now).AddDate(0, 0, ReviewIntervals[0])
		out.NextReviewDate = &next
		return out
	default:
		out.ReviewCount++
		if out.ReviewCount < len(ReviewIntervals) {
			next := DayStart(now).AddDate(0, 0, ReviewIntervals[out.ReviewCount-1])
			out.NextReviewDate = &next
			return out
		}
		out.Status = VideoStatusCompleted
		out.NextReviewDate = nil
		return out
	}
}

// DueAt reports whether the clip's next review day has been reached.
func (v *Video) DueAt(now time.Time) bool {
	if v.Status == VideoStatusCompleted || v.NextReviewDate == nil {
		return false
	}
	return !DayStart(*v.NextReviewDate).After(DayStart(now))
}

// StartedOn reports whether the clip's first playthrough happened on day's date.
func (v *Video) StartedOn(day time.Time) bool {
	return v.FirstPlayDate != nil && SameDay(*v.FirstPlayDate, day)
}

// RecommendVideo hints the player to prefer the video track over audio-only
// presentation for the 15/30/90-day milestone reviews.
func (v *Video) RecommendVideo() bool {
	return v.ReviewCount >= 3 && v.ReviewCount <= 5
}
