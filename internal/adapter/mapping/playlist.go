package mapping

import (
	"time"

	"github.com/samber/lo"

	"github.com/eslsoft/cliploop/internal/entity"
)

// PlaylistItem is the wire shape of one scheduled clip inside a session.
type PlaylistItem struct {
	VideoID            string `json:"video_id"`
	ReviewType         string `json:"review_type"`
	ReviewNumber       int    `json:"review_number"`
	DaysSinceFirstPlay int    `json:"days_since_first_play"`
	RecommendVideo     bool   `json:"recommend_video"`
}

// Playlist is the wire shape of a play session.
type Playlist struct {
	ID              string         `json:"id"`
	Date            time.Time      `json:"date"`
	Type            string         `json:"type"`
	Extra           bool           `json:"extra"`
	Items           []PlaylistItem `json:"items"`
	LastPlayedIndex int            `json:"last_played_index"`
	Completed       bool           `json:"completed"`
	CreatedAt       time.Time      `json:"created_at"`
}

func toPlaylistItem(in entity.PlaylistItem) PlaylistItem {
	return PlaylistItem{
		VideoID:            in.VideoID,
		ReviewType:         string(in.ReviewType),
		ReviewNumber:       in.ReviewNumber,
		DaysSinceFirstPlay: in.DaysSinceFirstPlay,
		RecommendVideo:     in.RecommendVideo,
	}
}

func ToPlaylist(in *entity.Playlist) *Playlist {
	return &Playlist{
		ID:              in.ID,
		Date:            in.Date,
		Type:            string(in.Type),
		Extra:           in.Extra,
		Items:           lo.Map(in.Items, func(item entity.PlaylistItem, _ int) PlaylistItem { return toPlaylistItem(item) }),
		LastPlayedIndex: in.LastPlayedIndex,
		Completed:       in.Completed,
		CreatedAt:       in.CreatedAt,
	}
}

func ToPlaylists(in []entity.Playlist) []Playlist {
	return lo.Map(in, func(p entity.Playlist, _ int) Playlist { return *ToPlaylist(&p) })
}

// SessionPreview is the wire shape of the dry-run session view.
type SessionPreview struct {
	NewItems    []PlaylistItem `json:"new_items"`
	ReviewItems []PlaylistItem `json:"review_items"`
	TotalCount  int            `json:"total_count"`
	Extra       bool           `json:"extra"`
}

func ToSessionPreview(in *entity.SessionPreview) *SessionPreview {
	return &SessionPreview{
		NewItems:    lo.Map(in.NewItems, func(item entity.PlaylistItem, _ int) PlaylistItem { return toPlaylistItem(item) }),
		ReviewItems: lo.Map(in.ReviewItems, func(item entity.PlaylistItem, _ int) PlaylistItem { return toPlaylistItem(item) }),
		TotalCount:  in.TotalCount,
		Extra:       in.Extra,
	}
}

// Stats is the wire shape of the learner-facing counters.
type Stats struct {
	TotalVideos     int  `json:"total_videos"`
	CompletedVideos int  `json:"completed_videos"`
	NewToday        int  `json:"new_today"`
	DueReviews      int  `json:"due_reviews"`
	ExtraAvailable  bool `json:"extra_available"`
}

func ToStats(in *entity.Stats) *Stats {
	return &Stats{
		TotalVideos:     in.TotalVideos,
		CompletedVideos: in.CompletedVideos,
		NewToday:        in.NewToday,
		DueReviews:      in.DueReviews,
		ExtraAvailable:  in.ExtraAvailable,
	}
}
