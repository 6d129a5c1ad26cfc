// Package backup streams the persisted collections as NDJSON for export and
// restores them on import. The format is storage agnostic: one header line,
// then one envelope per record, so a sqlite library can be restored into
// postgres and back.
package backup

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/cliploop/internal/entity"
	"github.com/eslsoft/cliploop/internal/repository"
)

const formatVersion = 1

const (
	collectionVideos      = "videos"
	collectionPlaylists   = "playlists"
	collectionCollections = "collections"
)

var (
	errBadHeader = errors.New("backup: missing or malformed header line")
)

// Service exports and imports library state through the repositories, so it
// never needs to know which database backs them.
type Service struct {
	videos      repository.VideoRepository
	playlists   repository.PlaylistRepository
	collections repository.CollectionRepository
	logger      *logrus.Logger
}

func NewService(
	videos repository.VideoRepository,
	playlists repository.PlaylistRepository,
	collections repository.CollectionRepository,
	logger *logrus.Logger,
) *Service {
	return &Service{videos: videos, playlists: playlists, collections: collections, logger: logger}
}

type header struct {
	FormatVersion int       `json:"format_version"`
	ExportedAt    time.Time `json:"exported_at"`
}

type envelope struct {
	Collection string          `json:"collection"`
	Record     json.RawMessage `json:"record"`
}

type videoRecord struct {
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

type playlistItemRecord struct {
	VideoID            string `json:"video_id"`
	ReviewType         string `json:"review_type"`
	ReviewNumber       int    `json:"review_number"`
	DaysSinceFirstPlay int    `json:"days_since_first_play"`
	RecommendVideo     bool   `json:"recommend_video"`
}

type playlistRecord struct {
	ID              string               `json:"id"`
	Date            time.Time            `json:"date"`
	Type            string               `json:"type"`
	Extra           bool                 `json:"extra"`
	Items           []playlistItemRecord `json:"items"`
	LastPlayedIndex int                  `json:"last_played_index"`
	Completed       bool                 `json:"completed"`
	CreatedAt       time.Time            `json:"created_at"`
}

type collectionRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Summary counts the records moved by an export or import.
type Summary struct {
	Videos      int
	Playlists   int
	Collections int
}

// Export writes the header followed by every collection, video and playlist.
func (s *Service) Export(ctx context.Context, w io.Writer) (Summary, error) {
	var summary Summary
	enc := json.NewEncoder(w)

	if err := enc.Encode(header{FormatVersion: formatVersion, ExportedAt: time.Now().UTC()}); err != nil {
		return summary, fmt.Errorf("backup: write header: %w", err)
	}

	collections, err := s.collections.List(ctx)
	if err != nil {
		return summary, err
	}
	for i := range collections {
		if err := writeEnvelope(enc, collectionCollections, toCollectionRecord(&collections[i])); err != nil {
			return summary, err
		}
		summary.Collections++
	}

	videos, err := s.videos.Snapshot(ctx)
	if err != nil {
		return summary, err
	}
	for i := range videos {
		if err := writeEnvelope(enc, collectionVideos, toVideoRecord(&videos[i])); err != nil {
			return summary, err
		}
		summary.Videos++
	}

	playlists, _, err := s.playlists.List(ctx, &repository.ListPlaylistQuery{})
	if err != nil {
		return summary, err
	}
	for i := range playlists {
		if err := writeEnvelope(enc, collectionPlaylists, toPlaylistRecord(&playlists[i])); err != nil {
			return summary, err
		}
		summary.Playlists++
	}

	s.logger.WithFields(logrus.Fields{
		"collections": summary.Collections,
		"videos":      summary.Videos,
		"playlists":   summary.Playlists,
	}).Info("export complete")
	return summary, nil
}

// Import restores records from an export stream. Records are created through
// the repositories, so importing over existing ids overwrites them.
func (s *Service) Import(ctx context.Context, r io.Reader) (Summary, error) {
	var summary Summary
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)

	if !scanner.Scan() {
		return summary, errBadHeader
	}
	var head header
	if err := json.Unmarshal(scanner.Bytes(), &head); err != nil || head.FormatVersion == 0 {
		return summary, errBadHeader
	}
	if head.FormatVersion > formatVersion {
		return summary, fmt.Errorf("backup: unsupported format version %d", head.FormatVersion)
	}

	line := 1
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return summary, fmt.Errorf("backup: line %d: %w", line, err)
		}
		if err := s.restore(ctx, &env, &summary); err != nil {
			return summary, fmt.Errorf("backup: line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return summary, fmt.Errorf("backup: read stream: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"collections": summary.Collections,
		"videos":      summary.Videos,
		"playlists":   summary.Playlists,
	}).Info("import complete")
	return summary, nil
}

func (s *Service) restore(ctx context.Context, env *envelope, summary *Summary) error {
	switch env.Collection {
	case collectionCollections:
		var record collectionRecord
		if err := json.Unmarshal(env.Record, &record); err != nil {
			return err
		}
		if _, err := s.collections.Create(ctx, fromCollectionRecord(&record)); err != nil {
			return err
		}
		summary.Collections++
	case collectionVideos:
		var record videoRecord
		if err := json.Unmarshal(env.Record, &record); err != nil {
			return err
		}
		if _, err := s.videos.Create(ctx, fromVideoRecord(&record)); err != nil {
			return err
		}
		summary.Videos++
	case collectionPlaylists:
		var record playlistRecord
		if err := json.Unmarshal(env.Record, &record); err != nil {
			return err
		}
		if _, err := s.playlists.Create(ctx, fromPlaylistRecord(&record)); err != nil {
			return err
		}
		summary.Playlists++
	default:
		return fmt.Errorf("unknown collection %q", env.Collection)
	}
	return nil
}

func writeEnvelope(enc *json.Encoder, collection string, record any) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("backup: marshal %s record: %w", collection, err)
	}
	if err := enc.Encode(envelope{Collection: collection, Record: raw}); err != nil {
		return fmt.Errorf("backup: write %s record: %w", collection, err)
	}
	return nil
}

func toVideoRecord(in *entity.Video) *videoRecord {
	return &videoRecord{
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

func fromVideoRecord(in *videoRecord) *entity.Video {
	return &entity.Video{
		ID:             in.ID,
		CollectionID:   in.CollectionID,
		Filename:       in.Filename,
		MediaType:      entity.MediaType(in.MediaType),
		MimeType:       in.MimeType,
		SizeBytes:      in.SizeBytes,
		Status:         entity.VideoStatus(in.Status),
		ReviewCount:    in.ReviewCount,
		DateAdded:      in.DateAdded,
		FirstPlayDate:  in.FirstPlayDate,
		NextReviewDate: in.NextReviewDate,
	}
}

func toPlaylistRecord(in *entity.Playlist) *playlistRecord {
	items := make([]playlistItemRecord, len(in.Items))
	for i, item := range in.Items {
		items[i] = playlistItemRecord{
			VideoID:            item.VideoID,
			ReviewType:         string(item.ReviewType),
			ReviewNumber:       item.ReviewNumber,
			DaysSinceFirstPlay: item.DaysSinceFirstPlay,
			RecommendVideo:     item.RecommendVideo,
		}
	}
	return &playlistRecord{
		ID:              in.ID,
		Date:            in.Date,
		Type:            string(in.Type),
		Extra:           in.Extra,
		Items:           items,
		LastPlayedIndex: in.LastPlayedIndex,
		Completed:       in.Completed,
		CreatedAt:       in.CreatedAt,
	}
}

func fromPlaylistRecord(in *playlistRecord) *entity.Playlist {
	items := make([]entity.PlaylistItem, len(in.Items))
	for i, item := range in.Items {
		items[i] = entity.PlaylistItem{
			VideoID:            item.VideoID,
			ReviewType:         entity.ReviewType(item.ReviewType),
			ReviewNumber:       item.ReviewNumber,
			DaysSinceFirstPlay: item.DaysSinceFirstPlay,
			RecommendVideo:     item.RecommendVideo,
		}
	}
	return &entity.Playlist{
		ID:              in.ID,
		Date:            in.Date,
		Type:            entity.ReviewType(in.Type),
		Extra:           in.Extra,
		Items:           items,
		LastPlayedIndex: in.LastPlayedIndex,
		Completed:       in.Completed,
		CreatedAt:       in.CreatedAt,
	}
}

func toCollectionRecord(in *entity.Collection) *collectionRecord {
	return &collectionRecord{
		ID:        in.ID,
		Name:      in.Name,
		IsActive:  in.IsActive,
		CreatedAt: in.CreatedAt,
		UpdatedAt: in.UpdatedAt,
	}
}

func fromCollectionRecord(in *collectionRecord) *entity.Collection {
	return &entity.Collection{
		ID:        in.ID,
		Name:      in.Name,
		IsActive:  in.IsActive,
		CreatedAt: in.CreatedAt,
		UpdatedAt: in.UpdatedAt,
	}
}
