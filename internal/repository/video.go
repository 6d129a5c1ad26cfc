package repository

import (
	"context"

	"github.com/eslsoft/cliploop/internal/entity"
)

// ListVideoQuery holds parameters for listing videos.
type ListVideoQuery struct {
	Pagination
	FilterOrder

	CollectionID string
}

// VideoRepository abstracts persistence for clips to keep usecases storage
// agnostic. Snapshot returns every video in stable store (insertion) order;
// the scheduler depends on that ordering.
type VideoRepository interface {
	Create(ctx context.Context, video *entity.Video) (*entity.Video, error)
	Update(ctx context.Context, video *entity.Video) (*entity.Video, error)
	GetByID(ctx context.Context, id string) (*entity.Video, error)
	List(ctx context.Context, query *ListVideoQuery) ([]entity.Video, int64, error)
	Snapshot(ctx context.Context) ([]entity.Video, error)
	Delete(ctx context.Context, id string) error
}
