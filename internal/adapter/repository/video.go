package repository

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/eslsoft/cliploop/internal/entity"
	"github.com/eslsoft/cliploop/internal/repository"
	"github.com/eslsoft/cliploop/pkg/filterexpr"
)

var videoFilterSchema = filterexpr.Schema{
	"status":        filterexpr.KindString,
	"media_type":    filterexpr.KindString,
	"filename":      filterexpr.KindString,
	"collection_id": filterexpr.KindString,
	"review_count":  filterexpr.KindNumber,
}

var videoOrderSchema = filterexpr.OrderSchema{
	Default:     "date_added",
	DefaultDesc: true,
	Keys:        []string{"date_added", "filename", "status", "review_count"},
}

type videoRepository struct {
	store *Store
}

// NewVideoRepository exposes the store's video collection.
func NewVideoRepository(store *Store) repository.VideoRepository {
	return &videoRepository{store: store}
}

func (s *Store) loadVideos(ctx context.Context) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, collection_id, filename, media_type, mime_type, size_bytes,
		status, review_count, date_added, first_play_date, next_review_date, position
		FROM videos ORDER BY position`)
	if err != nil {
		s.logger.WithError(err).Warn("load videos, starting empty")
		return
	}
	defer rows.Close()

	for rows.Next() {
		var (
			v          entity.Video
			mediaType  string
			status     string
			dateAdded  string
			firstPlay  sql.NullString
			nextReview sql.NullString
			position   int64
		)
		if err := rows.Scan(&v.ID, &v.CollectionID, &v.Filename, &mediaType, &v.MimeType, &v.SizeBytes,
			&status, &v.ReviewCount, &dateAdded, &firstPlay, &nextReview, &position); err != nil {
			s.logger.WithError(err).Warn("skipping unreadable video row")
			continue
		}
		v.MediaType = entity.MediaType(mediaType)
		v.Status = entity.VideoStatus(status)
		if v.DateAdded, err = parseTime(dateAdded); err != nil {
			s.logger.WithError(err).WithField("video_id", v.ID).Warn("skipping video row with bad date_added")
			continue
		}
		if v.FirstPlayDate, err = parseTimePtr(firstPlay); err != nil {
			s.logger.WithError(err).WithField("video_id", v.ID).Warn("skipping video row with bad first_play_date")
			continue
		}
		if v.NextReviewDate, err = parseTimePtr(nextReview); err != nil {
			s.logger.WithError(err).WithField("video_id", v.ID).Warn("skipping video row with bad next_review_date")
			continue
		}
		s.videos[v.ID] = &v
		s.videoOrder = append(s.videoOrder, v.ID)
		if position >= s.videoSeq {
			s.videoSeq = position + 1
		}
	}
	if err := rows.Err(); err != nil {
		s.logger.WithError(err).Warn("video load ended early")
	}
	s.logger.WithField("count", len(s.videoOrder)).Debug("videos loaded")
}

func (s *Store) mirrorVideo(video *entity.Video, position int64) {
	v := video.Clone()
	s.enqueue("save video", func(db *sql.DB) error {
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback() //nolint:errcheck
		if _, err := tx.Exec(s.q(`DELETE FROM videos WHERE id = ?`), v.ID); err != nil {
			return err
		}
		_, err = tx.Exec(s.q(`INSERT INTO videos (id, collection_id, filename, media_type, mime_type, size_bytes,
			status, review_count, date_added, first_play_date, next_review_date, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			v.ID, v.CollectionID, v.Filename, string(v.MediaType), v.MimeType, v.SizeBytes,
			string(v.Status), v.ReviewCount, fmtTime(v.DateAdded), fmtTimePtr(v.FirstPlayDate), fmtTimePtr(v.NextReviewDate), position)
		if err != nil {
			return err
		}
		return tx.Commit()
	})
}

func (r *videoRepository) Create(ctx context.Context, video *entity.Video) (*entity.Video, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := video.Clone()
	position := s.videoSeq
	s.videoSeq++
	s.videos[stored.ID] = stored
	s.videoOrder = append(s.videoOrder, stored.ID)
	s.mirrorVideo(stored, position)
	return stored.Clone(), nil
}

func (r *videoRepository) Update(ctx context.Context, video *entity.Video) (*entity.Video, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.videos[video.ID]; !ok {
		return nil, entity.ErrVideoNotFound
	}
	stored := video.Clone()
	s.videos[stored.ID] = stored
	s.mirrorVideo(stored, s.videoPosition(stored.ID))
	return stored.Clone(), nil
}

// videoPosition recovers the insertion sequence for an existing id so an
// update keeps its slot in store order. Caller holds s.mu.
func (s *Store) videoPosition(id string) int64 {
	for i, existing := range s.videoOrder {
		if existing == id {
			return int64(i)
		}
	}
	return s.videoSeq
}

func (r *videoRepository) GetByID(ctx context.Context, id string) (*entity.Video, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	video, ok := s.videos[id]
	if !ok {
		return nil, entity.ErrVideoNotFound
	}
	return video.Clone(), nil
}

func (r *videoRepository) Snapshot(ctx context.Context) ([]entity.Video, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entity.Video, 0, len(s.videoOrder))
	for _, id := range s.videoOrder {
		out = append(out, *s.videos[id].Clone())
	}
	return out, nil
}

func (r *videoRepository) List(ctx context.Context, query *repository.ListVideoQuery) ([]entity.Video, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	filter, err := filterexpr.Compile(query.GetFilter(), videoFilterSchema)
	if err != nil {
		return nil, 0, err
	}
	ord, err := filterexpr.ParseOrderBy(query.GetOrderBy(), videoOrderSchema)
	if err != nil {
		return nil, 0, err
	}

	s := r.store
	s.mu.RLock()
	matched := make([]entity.Video, 0, len(s.videoOrder))
	for _, id := range s.videoOrder {
		video := s.videos[id]
		if query.CollectionID != "" && video.CollectionID != query.CollectionID {
			continue
		}
		ok, err := filter.Match(videoActivation(video))
		if err != nil {
			s.mu.RUnlock()
			return nil, 0, err
		}
		if ok {
			matched = append(matched, *video.Clone())
		}
	}
	s.mu.RUnlock()

	sortVideos(matched, ord)
	total := int64(len(matched))
	return paginate(matched, query.Pagination), total, nil
}

func (r *videoRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.videos[id]; !ok {
		return entity.ErrVideoNotFound
	}
	delete(s.videos, id)
	for i, existing := range s.videoOrder {
		if existing == id {
			s.videoOrder = append(s.videoOrder[:i], s.videoOrder[i+1:]...)
			break
		}
	}
	s.enqueue("delete video", func(db *sql.DB) error {
		_, err := db.Exec(s.q(`DELETE FROM videos WHERE id = ?`), id)
		return err
	})
	return nil
}

func videoActivation(v *entity.Video) map[string]any {
	return map[string]any{
		"status":        string(v.Status),
		"media_type":    string(v.MediaType),
		"filename":      v.Filename,
		"collection_id": v.CollectionID,
		"review_count":  float64(v.ReviewCount),
	}
}

func sortVideos(videos []entity.Video, ord filterexpr.Order) {
	sort.SliceStable(videos, func(i, j int) bool {
		a, b := videos[i], videos[j]
		if ord.Desc {
			a, b = b, a
		}
		switch ord.Key {
		case "filename":
			return strings.ToLower(a.Filename) < strings.ToLower(b.Filename)
		case "status":
			return a.Status < b.Status
		case "review_count":
			return a.ReviewCount < b.ReviewCount
		default:
			return a.DateAdded.Before(b.DateAdded)
		}
	})
}

func paginate[T any](items []T, p repository.Pagination) []T {
	if p.PageSize <= 0 {
		return items
	}
	offset := int(p.Offset())
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	end := offset + int(p.PageSize)
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
