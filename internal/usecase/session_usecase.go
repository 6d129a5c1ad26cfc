package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eslsoft/cliploop/internal/entity"
	"github.com/eslsoft/cliploop/internal/repository"
)

// SessionUsecase owns creation, resumption and completion of play sessions.
// It is the only component allowed to mutate review state. Entry points are
// serialized by a single mutex so Advance/Complete apply in submission order
// regardless of how the playback collaborator's callbacks arrive.
type SessionUsecase interface {
	Preview(ctx context.Context, extra bool) (*entity.SessionPreview, error)
	ObtainSession(ctx context.Context, typ entity.ReviewType, extra bool) (*entity.Playlist, error)
	Advance(ctx context.Context, sessionID string, index int) (*entity.Playlist, error)
	Complete(ctx context.Context, sessionID string) (*entity.Playlist, error)
	ReportMissing(ctx context.Context, videoID string) error
	History(ctx context.Context, query *repository.ListPlaylistQuery) ([]entity.Playlist, int64, error)
	Stats(ctx context.Context) (*entity.Stats, error)
}

// NewSessionUsecase wires the repositories with the default schedule policy.
func NewSessionUsecase(videos repository.VideoRepository, playlists repository.PlaylistRepository, collections repository.CollectionRepository) SessionUsecase {
	return &sessionUsecase{
		videos:      videos,
		playlists:   playlists,
		collections: collections,
		policy:      DefaultSchedulePolicy(),
		clock:       time.Now,
	}
}

type sessionUsecase struct {
	mu          sync.Mutex
	videos      repository.VideoRepository
	playlists   repository.PlaylistRepository
	collections repository.CollectionRepository
	policy      SchedulePolicy
	clock       func() time.Time
}

// snapshot loads the scheduling inputs: all videos in store order plus the
// set of active collection IDs.
func (u *sessionUsecase) snapshot(ctx context.Context) ([]entity.Video, map[string]bool, error) {
	videos, err := u.videos.Snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}
	collections, err := u.collections.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	return videos, activeSet(collections), nil
}

func (u *sessionUsecase) Preview(ctx context.Context, extra bool) (*entity.SessionPreview, error) {
	videos, active, err := u.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	now := u.clock()
	preview := &entity.SessionPreview{
		NewItems:    newCandidates(videos, active, now, u.policy, extra),
		ReviewItems: dueReviews(videos, active, now, u.policy),
		Extra:       extra,
	}
	preview.TotalCount = len(preview.NewItems) + len(preview.ReviewItems)
	return preview, nil
}

// ObtainSession returns today's open session for (type, extra), creating it
// when none exists. Extra applies to new-sessions only and is ignored for
// review sessions.
func (u *sessionUsecase) ObtainSession(ctx context.Context, typ entity.ReviewType, extra bool) (*entity.Playlist, error) {
	if typ != entity.ReviewTypeNew && typ != entity.ReviewTypeReview {
		return nil, entity.ErrInvalidReviewType
	}
	if typ == entity.ReviewTypeReview {
		extra = false
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	now := u.clock()
	today := entity.DayStart(now)

	existing, err := u.playlists.FindOpen(ctx, today, typ, extra)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		reconciled, purged, err := u.reconcile(ctx, existing)
		if err != nil {
			return nil, err
		}
		if !purged {
			return reconciled, nil
		}
		// An emptied-out new session must not be resurrected; fall through
		// and materialize a fresh one from the current candidates.
	}

	videos, active, err := u.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	var items []entity.PlaylistItem
	if typ == entity.ReviewTypeNew {
		items = newCandidates(videos, active, now, u.policy, extra)
	} else {
		items = dueReviews(videos, active, now, u.policy)
	}

	playlist := &entity.Playlist{
		ID:    uuid.NewString(),
		Date:  today,
		Type:  typ,
		Extra: extra,
		Items: items,
	}
	playlist.Normalize(now)
	return u.playlists.Create(ctx, playlist)
}

// reconcile drops items whose video no longer exists from an open session.
// A new-session that held items but resolves to none is purged (purged=true);
// the caller decides what replaces it.
func (u *sessionUsecase) reconcile(ctx context.Context, playlist *entity.Playlist) (*entity.Playlist, bool, error) {
	kept := make([]entity.PlaylistItem, 0, len(playlist.Items))
	cursor := playlist.LastPlayedIndex
	for i, item := range playlist.Items {
		_, err := u.videos.GetByID(ctx, item.VideoID)
		switch {
		case err == nil:
			kept = append(kept, item)
		case errors.Is(err, entity.ErrVideoNotFound):
			if i < playlist.LastPlayedIndex {
				cursor--
			}
		default:
			return nil, false, err
		}
	}
	if len(kept) == len(playlist.Items) {
		return playlist, false, nil
	}

	if playlist.Type == entity.ReviewTypeNew && len(kept) == 0 {
		if err := u.playlists.Delete(ctx, playlist.ID); err != nil {
			return nil, false, err
		}
		return nil, true, nil
	}

	playlist.Items = kept
	if cursor > len(kept) {
		cursor = len(kept)
	}
	playlist.LastPlayedIndex = cursor
	updated, err := u.playlists.Update(ctx, playlist)
	return updated, false, err
}

// Advance moves the session cursor forward. Equal or smaller indexes are
// no-ops (no write), unknown sessions fail loudly and the cursor never
// decreases.
func (u *sessionUsecase) Advance(ctx context.Context, sessionID string, index int) (*entity.Playlist, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	playlist, err := u.playlists.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if playlist.Completed {
		return playlist, nil
	}
	if index < 0 || index > len(playlist.Items) {
		return nil, entity.ErrInvalidPlayIndex
	}
	if index <= playlist.LastPlayedIndex {
		return playlist, nil
	}
	playlist.LastPlayedIndex = index
	return u.playlists.Update(ctx, playlist)
}

// Complete finalizes a session and applies the review transition to every
// item exactly once. The stored completed flag makes the second call a no-op,
// so a duplicated "ended" callback cannot double-advance review counts.
// Items whose video has been deleted are skipped, never failed on.
func (u *sessionUsecase) Complete(ctx context.Context, sessionID string) (*entity.Playlist, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	playlist, err := u.playlists.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if playlist.Completed {
		return playlist, nil
	}

	now := u.clock()
	for _, item := range playlist.Items {
		video, err := u.videos.GetByID(ctx, item.VideoID)
		if errors.Is(err, entity.ErrVideoNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		played := video.Played(now)
		if _, err := u.videos.Update(ctx, &played); err != nil {
			return nil, err
		}
	}

	playlist.LastPlayedIndex = len(playlist.Items)
	playlist.Completed = true
	return u.playlists.Update(ctx, playlist)
}

// ReportMissing handles a clip whose media cannot be loaded: references are
// dropped from open sessions and the clip is not marked as reviewed. Emptied
// new-sessions are purged so the continue-last-session affordance cannot
// resurrect them.
func (u *sessionUsecase) ReportMissing(ctx context.Context, videoID string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	return dropVideoFromOpenPlaylists(ctx, u.playlists, videoID)
}

// dropVideoFromOpenPlaylists removes every reference to videoID from
// incomplete sessions, clamping cursors and purging new-sessions that end up
// empty. Completed sessions are history and stay untouched.
func dropVideoFromOpenPlaylists(ctx context.Context, playlists repository.PlaylistRepository, videoID string) error {
	open, err := playlists.ListOpen(ctx)
	if err != nil {
		return err
	}
	for i := range open {
		playlist := &open[i]
		if playlist.RemoveVideo(videoID) == 0 {
			continue
		}
		if playlist.Type == entity.ReviewTypeNew && len(playlist.Items) == 0 {
			if err := playlists.Delete(ctx, playlist.ID); err != nil {
				return err
			}
			continue
		}
		if _, err := playlists.Update(ctx, playlist); err != nil {
			return err
		}
	}
	return nil
}

func (u *sessionUsecase) History(ctx context.Context, query *repository.ListPlaylistQuery) ([]entity.Playlist, int64, error) {
	return u.playlists.List(ctx, query)
}

func (u *sessionUsecase) Stats(ctx context.Context) (*entity.Stats, error) {
	videos, active, err := u.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	now := u.clock()

	stats := &entity.Stats{
		TotalVideos:    len(videos),
		NewToday:       len(newCandidates(videos, active, now, u.policy, false)),
		DueReviews:     len(dueReviews(videos, active, now, u.policy)),
		ExtraAvailable: canOfferExtra(videos, active, now, u.policy),
	}
	for _, v := range videos {
		if v.Status == entity.VideoStatusCompleted {
			stats.CompletedVideos++
		}
	}
	return stats, nil
}
