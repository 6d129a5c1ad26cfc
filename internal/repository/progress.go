package repository

import (
	"context"

	"github.com/eslsoft/cliploop/internal/entity"
)

// ProgressRepository stores per-clip resume offsets. Get returns nil when no
// offset is saved. Implementations may coalesce Save calls before mirroring
// them to disk; the in-memory value is always current.
type ProgressRepository interface {
	Save(ctx context.Context, point *entity.ResumePoint) error
	Get(ctx context.Context, videoID string) (*entity.ResumePoint, error)
	Delete(ctx context.Context, videoID string) error
}
