package usecase

import (
	"context"
	"time"

	"github.com/eslsoft/cliploop/internal/entity"
	"github.com/eslsoft/cliploop/internal/repository"
)

// ProgressUsecase tracks in-progress resume offsets (seconds into a clip),
// independent of the session cursor. Offsets are cleared when a clip ends
// naturally, is skipped, or the learner starts over.
type ProgressUsecase interface {
	SaveProgress(ctx context.Context, videoID string, position, duration float64) error
	ResumePosition(ctx context.Context, videoID string) (*entity.ResumePoint, bool, error)
	ClearProgress(ctx context.Context, videoID string) error
}

// NewProgressUsecase wires the repositories with default behaviour.
func NewProgressUsecase(videos repository.VideoRepository, progress repository.ProgressRepository) ProgressUsecase {
	return &progressUsecase{
		videos:   videos,
		progress: progress,
		clock:    time.Now,
	}
}

type progressUsecase struct {
	videos   repository.VideoRepository
	progress repository.ProgressRepository
	clock    func() time.Time
}

func (u *progressUsecase) SaveProgress(ctx context.Context, videoID string, position, duration float64) error {
	if videoID == "" {
		return entity.ErrInvalidVideoID
	}
	if position < 0 || duration < 0 || (duration > 0 && position > duration) {
		return entity.ErrInvalidProgress
	}
	if _, err := u.videos.GetByID(ctx, videoID); err != nil {
		return err
	}
	return u.progress.Save(ctx, &entity.ResumePoint{
		VideoID:   videoID,
		Position:  position,
		Duration:  duration,
		UpdatedAt: u.clock(),
	})
}

// ResumePosition returns the saved offset and whether it is worth offering:
// offsets inside the lead-in or the final seconds report false, the player
// should just start from the beginning.
func (u *progressUsecase) ResumePosition(ctx context.Context, videoID string) (*entity.ResumePoint, bool, error) {
	if videoID == "" {
		return nil, false, entity.ErrInvalidVideoID
	}
	point, err := u.progress.Get(ctx, videoID)
	if err != nil {
		return nil, false, err
	}
	if point == nil {
		return nil, false, nil
	}
	return point, point.Resumable(), nil
}

func (u *progressUsecase) ClearProgress(ctx context.Context, videoID string) error {
	if videoID == "" {
		return entity.ErrInvalidVideoID
	}
	return u.progress.Delete(ctx, videoID)
}
