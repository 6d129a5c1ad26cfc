package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eslsoft/cliploop/internal/entity"
	"github.com/eslsoft/cliploop/internal/repository"
)

// AddVideoInput carries everything needed to ingest a clip.
type AddVideoInput struct {
	CollectionID string
	Filename     string
	MimeType     string
	MediaType    entity.MediaType
	SizeBytes    int64
	Content      io.Reader
}

// LibraryUsecase manages collections and clip ingestion. It never touches
// review state; that belongs to the session usecase.
type LibraryUsecase interface {
	CreateCollection(ctx context.Context, name string) (*entity.Collection, error)
	RenameCollection(ctx context.Context, id, name string) (*entity.Collection, error)
	SetCollectionActive(ctx context.Context, id string, active bool) (*entity.Collection, error)
	GetCollection(ctx context.Context, id string) (*entity.Collection, error)
	ListCollections(ctx context.Context) ([]entity.CollectionStats, error)
	DeleteCollection(ctx context.Context, id string) error

	AddVideo(ctx context.Context, input *AddVideoInput) (*entity.Video, error)
	GetVideo(ctx context.Context, id string) (*entity.Video, error)
	ListVideos(ctx context.Context, query *repository.ListVideoQuery) ([]entity.Video, int64, error)
	DeleteVideo(ctx context.Context, id string) error
	MediaPath(ctx context.Context, id string) (string, error)
}

// NewLibraryUsecase wires the repositories with default behaviour.
func NewLibraryUsecase(
	videos repository.VideoRepository,
	collections repository.CollectionRepository,
	playlists repository.PlaylistRepository,
	progress repository.ProgressRepository,
	media repository.MediaRepository,
) LibraryUsecase {
	return &libraryUsecase{
		videos:      videos,
		collections: collections,
		playlists:   playlists,
		progress:    progress,
		media:       media,
		clock:       time.Now,
	}
}

type libraryUsecase struct {
	videos      repository.VideoRepository
	collections repository.CollectionRepository
	playlists   repository.PlaylistRepository
	progress    repository.ProgressRepository
	media       repository.MediaRepository
	clock       func() time.Time
}

func (u *libraryUsecase) CreateCollection(ctx context.Context, name string) (*entity.Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, entity.ErrInvalidCollectionName
	}
	collection := &entity.Collection{
		ID:       uuid.NewString(),
		Name:     name,
		IsActive: true,
	}
	collection.Normalize(u.clock())
	return u.collections.Create(ctx, collection)
}

func (u *libraryUsecase) RenameCollection(ctx context.Context, id, name string) (*entity.Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, entity.ErrInvalidCollectionName
	}
	existing, err := u.collections.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	existing.Name = name
	existing.Normalize(u.clock())
	return u.collections.Update(ctx, existing)
}

func (u *libraryUsecase) SetCollectionActive(ctx context.Context, id string, active bool) (*entity.Collection, error) {
	existing, err := u.collections.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.IsActive == active {
		return existing, nil
	}
	existing.IsActive = active
	existing.Normalize(u.clock())
	return u.collections.Update(ctx, existing)
}

func (u *libraryUsecase) GetCollection(ctx context.Context, id string) (*entity.Collection, error) {
	return u.collections.GetByID(ctx, id)
}

// ListCollections derives membership totals from the video set on read
// instead of maintaining stored counters.
func (u *libraryUsecase) ListCollections(ctx context.Context) ([]entity.CollectionStats, error) {
	collections, err := u.collections.List(ctx)
	if err != nil {
		return nil, err
	}
	videos, err := u.videos.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]*entity.CollectionStats, len(collections))
	out := make([]entity.CollectionStats, len(collections))
	for i, c := range collections {
		out[i] = entity.CollectionStats{Collection: c}
		totals[c.ID] = &out[i]
	}
	for _, v := range videos {
		stats, ok := totals[v.CollectionID]
		if !ok {
			continue
		}
		stats.TotalVideos++
		if v.Status == entity.VideoStatusCompleted {
			stats.CompletedVideos++
		}
	}
	return out, nil
}

func (u *libraryUsecase) DeleteCollection(ctx context.Context, id string) error {
	if _, err := u.collections.GetByID(ctx, id); err != nil {
		return err
	}
	videos, err := u.videos.Snapshot(ctx)
	if err != nil {
		return err
	}
	for _, v := range videos {
		if v.CollectionID == id {
			return entity.ErrCollectionNotEmpty
		}
	}
	return u.collections.Delete(ctx, id)
}

func (u *libraryUsecase) AddVideo(ctx context.Context, input *AddVideoInput) (*entity.Video, error) {
	if input == nil || input.Content == nil {
		return nil, entity.ErrEmptyMedia
	}
	if _, err := u.collections.GetByID(ctx, input.CollectionID); err != nil {
		return nil, err
	}

	video := &entity.Video{
		ID:           uuid.NewString(),
		CollectionID: input.CollectionID,
		Filename:     input.Filename,
		MimeType:     input.MimeType,
		MediaType:    input.MediaType,
		SizeBytes:    input.SizeBytes,
		Status:       entity.VideoStatusNew,
	}
	video.Normalize(u.clock())

	if _, err := u.media.Put(ctx, video.ID, input.Content); err != nil {
		return nil, err
	}
	created, err := u.videos.Create(ctx, video)
	if err != nil {
		// Roll the blob back so the store and the blob dir stay in step.
		_ = u.media.Delete(ctx, video.ID)
		return nil, err
	}
	return created, nil
}

func (u *libraryUsecase) GetVideo(ctx context.Context, id string) (*entity.Video, error) {
	if id == "" {
		return nil, entity.ErrInvalidVideoID
	}
	return u.videos.GetByID(ctx, id)
}

func (u *libraryUsecase) ListVideos(ctx context.Context, query *repository.ListVideoQuery) ([]entity.Video, int64, error) {
	return u.videos.List(ctx, query)
}

// DeleteVideo removes a clip entirely: the record, its blob, its resume
// offset, and every reference in open sessions. Completed sessions keep
// their history.
func (u *libraryUsecase) DeleteVideo(ctx context.Context, id string) error {
	if _, err := u.videos.GetByID(ctx, id); err != nil {
		return err
	}
	if err := u.videos.Delete(ctx, id); err != nil {
		return err
	}
	if err := dropVideoFromOpenPlaylists(ctx, u.playlists, id); err != nil {
		return err
	}
	if err := u.media.Delete(ctx, id); err != nil && !errors.Is(err, entity.ErrMediaNotFound) {
		return err
	}
	return u.progress.Delete(ctx, id)
}

func (u *libraryUsecase) MediaPath(ctx context.Context, id string) (string, error) {
	if _, err := u.videos.GetByID(ctx, id); err != nil {
		return "", err
	}
	return u.media.Get(ctx, id)
}
