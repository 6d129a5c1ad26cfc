package mapping

import (
	"time"

	"github.com/samber/lo"

	"github.com/eslsoft/cliploop/internal/entity"
)

// Collection is the wire shape of a clip collection, including the totals
// derived on read.
type Collection struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	IsActive        bool      `json:"is_active"`
	TotalVideos     int       `json:"total_videos"`
	CompletedVideos int       `json:"completed_videos"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func ToCollection(in *entity.Collection) *Collection {
	return &Collection{
		ID:        in.ID,
		Name:      in.Name,
		IsActive:  in.IsActive,
		CreatedAt: in.CreatedAt,
		UpdatedAt: in.UpdatedAt,
	}
}

func ToCollectionStats(in entity.CollectionStats) Collection {
	out := ToCollection(&in.Collection)
	out.TotalVideos = in.TotalVideos
	out.CompletedVideos = in.CompletedVideos
	return *out
}

func ToCollections(in []entity.CollectionStats) []Collection {
	return lo.Map(in, func(c entity.CollectionStats, _ int) Collection { return ToCollectionStats(c) })
}
