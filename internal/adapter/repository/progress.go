package repository

import (
	"context"
	"database/sql"

	"github.com/eslsoft/cliploop/internal/entity"
	"github.com/eslsoft/cliploop/internal/repository"
)

type progressRepository struct {
	store *Store
}

// NewProgressRepository exposes the store's resume offsets. Saves are
// coalesced before they reach the database; reads always see the latest
// in-memory value.
func NewProgressRepository(store *Store) repository.ProgressRepository {
	return &progressRepository{store: store}
}

func (s *Store) loadResume(ctx context.Context) {
	rows, err := s.db.QueryContext(ctx, `SELECT video_id, pos_seconds, duration_seconds, updated_at FROM resume_points`)
	if err != nil {
		s.logger.WithError(err).Warn("load resume points, starting empty")
		return
	}
	defer rows.Close()

	for rows.Next() {
		var (
			point     entity.ResumePoint
			updatedAt string
		)
		if err := rows.Scan(&point.VideoID, &point.Position, &point.Duration, &updatedAt); err != nil {
			s.logger.WithError(err).Warn("skipping unreadable resume row")
			continue
		}
		if point.UpdatedAt, err = parseTime(updatedAt); err != nil {
			s.logger.WithError(err).WithField("video_id", point.VideoID).Warn("skipping resume row with bad updated_at")
			continue
		}
		s.resume[point.VideoID] = &point
	}
	if err := rows.Err(); err != nil {
		s.logger.WithError(err).Warn("resume load ended early")
	}
	s.logger.WithField("count", len(s.resume)).Debug("resume points loaded")
}

func (r *progressRepository) Save(ctx context.Context, point *entity.ResumePoint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := r.store
	s.mu.Lock()
	stored := point.Clone()
	s.resume[stored.VideoID] = stored
	s.mu.Unlock()

	s.markResumeDirty(stored)
	return nil
}

func (r *progressRepository) Get(ctx context.Context, videoID string) (*entity.ResumePoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	point, ok := s.resume[videoID]
	if !ok {
		return nil, nil
	}
	return point.Clone(), nil
}

func (r *progressRepository) Delete(ctx context.Context, videoID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := r.store
	s.mu.Lock()
	delete(s.resume, videoID)
	s.mu.Unlock()

	s.resumeMu.Lock()
	delete(s.resumeDirty, videoID)
	s.resumeMu.Unlock()

	s.enqueue("delete resume point", func(db *sql.DB) error {
		_, err := db.Exec(s.q(`DELETE FROM resume_points WHERE video_id = ?`), videoID)
		return err
	})
	return nil
}
