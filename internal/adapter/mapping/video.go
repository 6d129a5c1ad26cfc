// Package mapping converts between domain entities and the JSON DTOs of the
// HTTP API. Entities never leak wire tags; DTOs never leak into usecases.
package mapping

import (
	"time"

	"github.com/samber/lo"

	"github.com/eslsoft/cliploop/internal/entity"
)

// Video is the wire shape of a clip record.
type Video struct {
	ID             string     `json:"id"`
	CollectionID   string     `json:"collection_id"`
	Filename       string     `json:"filename"`
	MediaType      string     `json:"media_type"`
	MimeType       string     `json:"mime_type"`
	SizeBytes      int64      `json:"size_bytes"`
	Status         string     `json:"status"`
	ReviewCount    int        `json:"review_count"`
	DateAdded      time.Time  `json:"date_added"`
	FirstPlayDate  *time.Time `json:"first_play_date,omitempty"`
	NextReviewDate *time.Time `json:"next_review_date,omitempty"`
}

func ToVideo(in *entity.Video) *Video {
	return &Video{
		ID:             in.ID,
		CollectionID:   in.CollectionID,
		Filename:       in.Filename,
		MediaType:      string(in.MediaType),
		MimeType:       in.MimeType,
		SizeBytes:      in.SizeBytes,
		Status:         string(in.Status),
		ReviewCount:    in.ReviewCount,
		DateAdded:      in.DateAdded,
		FirstPlayDate:  in.FirstPlayDate,
		NextReviewDate: in.NextReviewDate,
	}
}

func ToVideos(in []entity.Video) []Video {
	return lo.Map(in, func(v entity.Video, _ int) Video { return *ToVideo(&v) })
}

// ResumePoint is the wire shape of a saved playback offset.
type ResumePoint struct {
	VideoID     string    `json:"video_id"`
	Position    float64   `json:"position"`
	Duration    float64   `json:"duration"`
	OfferResume bool      `json:"offer_resume"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func ToResumePoint(in *entity.ResumePoint, offer bool) *ResumePoint {
	if in == nil {
		return nil
	}
	return &ResumePoint{
		VideoID:     in.VideoID,
		Position:    in.Position,
		Duration:    in.Duration,
		OfferResume: offer,
		UpdatedAt:   in.UpdatedAt,
	}
}
