package repository

import (
	"context"
	"time"

	"github.com/eslsoft/cliploop/internal/entity"
)

// ListPlaylistQuery holds parameters for listing session history.
type ListPlaylistQuery struct {
	Pagination

	Type entity.ReviewType // empty matches both types
}

// PlaylistRepository abstracts persistence for play sessions. List returns
// most-recent-first; FindOpen resolves the single incomplete session for the
// (day, type, extra) idempotency key, nil when absent.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist *entity.Playlist) (*entity.Playlist, error)
	Update(ctx context.Context, playlist *entity.Playlist) (*entity.Playlist, error)
	GetByID(ctx context.Context, id string) (*entity.Playlist, error)
	FindOpen(ctx context.Context, day time.Time, typ entity.ReviewType, extra bool) (*entity.Playlist, error)
	ListOpen(ctx context.Context) ([]entity.Playlist, error)
	List(ctx context.Context, query *ListPlaylistQuery) ([]entity.Playlist, int64, error)
	Delete(ctx context.Context, id string) error
}
