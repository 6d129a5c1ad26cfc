package entity

import (
	"strings"
	"time"
)

// MediaType distinguishes audio-only clips from ones carrying a video track.
type MediaType string

const (
	MediaTypeUnspecified MediaType = ""
	MediaTypeAudio       MediaType = "audio"
	MediaTypeVideo       MediaType = "video"
)

// ParseMediaType converts an arbitrary string into a supported MediaType value.
func ParseMediaType(raw string) MediaType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "audio":
		return MediaTypeAudio
	case "video":
		return MediaTypeVideo
	default:
		return MediaTypeUnspecified
	}
}

// MediaTypeForMime derives the media type from a MIME type prefix.
func MediaTypeForMime(mime string) MediaType {
	switch {
	case strings.HasPrefix(mime, "audio/"):
		return MediaTypeAudio
	case strings.HasPrefix(mime, "video/"):
		return MediaTypeVideo
	default:
		return MediaTypeUnspecified
	}
}

// ReviewType tells whether a session (or one of its items) introduces new clips
// or resurfaces previously played ones.
type ReviewType string

const (
	ReviewTypeNew    ReviewType = "new"
	ReviewTypeReview ReviewType = "review"
)

// ParseReviewType converts an arbitrary string into a ReviewType.
func ParseReviewType(raw string) (ReviewType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "new":
		return ReviewTypeNew, nil
	case "review":
		return ReviewTypeReview, nil
	default:
		return "", ErrInvalidReviewType
	}
}

// DayStart truncates t to local midnight. All due-date comparisons happen on
// day boundaries, never on raw timestamps.
func DayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return DayStart(a).Equal(DayStart(b))
}

// DaysBetween counts whole calendar days from a to b (negative when b precedes a).
func DaysBetween(a, b time.Time) int {
	return int(DayStart(b).Sub(DayStart(a)).Hours() / 24)
}
