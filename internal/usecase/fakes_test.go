package usecase

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/eslsoft/cliploop/internal/entity"
	"github.com/eslsoft/cliploop/internal/repository"
)

type fakeVideoRepo struct {
	mu      sync.RWMutex
	order   []string
	items   map[string]*entity.Video
	updates int
}

func newFakeVideoRepo() *fakeVideoRepo {
	return &fakeVideoRepo{items: make(map[string]*entity.Video)}
}

func (r *fakeVideoRepo) Create(ctx context.Context, v *entity.Video) (*entity.Video, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[v.ID]; !ok {
		r.order = append(r.order, v.ID)
	}
	r.items[v.ID] = v.Clone()
	return v.Clone(), nil
}

func (r *fakeVideoRepo) Update(ctx context.Context, v *entity.Video) (*entity.Video, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[v.ID]; !ok {
		return nil, entity.ErrVideoNotFound
	}
	r.updates++
	r.items[v.ID] = v.Clone()
	return v.Clone(), nil
}

func (r *fakeVideoRepo) GetByID(ctx context.Context, id string) (*entity.Video, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, entity.ErrVideoNotFound
	}
	return item.Clone(), nil
}

func (r *fakeVideoRepo) List(ctx context.Context, query *repository.ListVideoQuery) ([]entity.Video, int64, error) {
	videos, err := r.Snapshot(ctx)
	if err != nil {
		return nil, 0, err
	}
	if query != nil && query.CollectionID != "" {
		filtered := videos[:0]
		for _, v := range videos {
			if v.CollectionID == query.CollectionID {
				filtered = append(filtered, v)
			}
		}
		videos = filtered
	}
	return videos, int64(len(videos)), nil
}

func (r *fakeVideoRepo) Snapshot(ctx context.Context) ([]entity.Video, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entity.Video, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.items[id].Clone())
	}
	return out, nil
}

func (r *fakeVideoRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return entity.ErrVideoNotFound
	}
	delete(r.items, id)
	for i, other := range r.order {
		if other == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

type fakePlaylistRepo struct {
	mu      sync.RWMutex
	order   []string // newest first
	items   map[string]*entity.Playlist
	updates int
}

func newFakePlaylistRepo() *fakePlaylistRepo {
	return &fakePlaylistRepo{items: make(map[string]*entity.Playlist)}
}

func (r *fakePlaylistRepo) Create(ctx context.Context, p *entity.Playlist) (*entity.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[p.ID]; !ok {
		r.order = append([]string{p.ID}, r.order...)
	}
	r.items[p.ID] = p.Clone()
	return p.Clone(), nil
}

func (r *fakePlaylistRepo) Update(ctx context.Context, p *entity.Playlist) (*entity.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[p.ID]; !ok {
		return nil, entity.ErrPlaylistNotFound
	}
	r.updates++
	r.items[p.ID] = p.Clone()
	return p.Clone(), nil
}

func (r *fakePlaylistRepo) GetByID(ctx context.Context, id string) (*entity.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, entity.ErrPlaylistNotFound
	}
	return item.Clone(), nil
}

func (r *fakePlaylistRepo) FindOpen(ctx context.Context, day time.Time, typ entity.ReviewType, extra bool) (*entity.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.order {
		p := r.items[id]
		if !p.Completed && p.MatchesKey(day, typ, extra) {
			return p.Clone(), nil
		}
	}
	return nil, nil
}

func (r *fakePlaylistRepo) ListOpen(ctx context.Context) ([]entity.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entity.Playlist, 0)
	for _, id := range r.order {
		if p := r.items[id]; !p.Completed {
			out = append(out, *p.Clone())
		}
	}
	return out, nil
}

func (r *fakePlaylistRepo) List(ctx context.Context, query *repository.ListPlaylistQuery) ([]entity.Playlist, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entity.Playlist, 0, len(r.order))
	for _, id := range r.order {
		p := r.items[id]
		if query != nil && query.Type != "" && p.Type != query.Type {
			continue
		}
		out = append(out, *p.Clone())
	}
	return out, int64(len(out)), nil
}

func (r *fakePlaylistRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return entity.ErrPlaylistNotFound
	}
	delete(r.items, id)
	for i, other := range r.order {
		if other == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

type fakeCollectionRepo struct {
	mu      sync.RWMutex
	order   []string
	items   map[string]*entity.Collection
	updates int
}

func newFakeCollectionRepo() *fakeCollectionRepo {
	return &fakeCollectionRepo{items: make(map[string]*entity.Collection)}
}

func (r *fakeCollectionRepo) Create(ctx context.Context, c *entity.Collection) (*entity.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[c.ID]; !ok {
		r.order = append(r.order, c.ID)
	}
	r.items[c.ID] = c.Clone()
	return c.Clone(), nil
}

func (r *fakeCollectionRepo) Update(ctx context.Context, c *entity.Collection) (*entity.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[c.ID]; !ok {
		return nil, entity.ErrCollectionNotFound
	}
	r.updates++
	r.items[c.ID] = c.Clone()
	return c.Clone(), nil
}

func (r *fakeCollectionRepo) GetByID(ctx context.Context, id string) (*entity.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, entity.ErrCollectionNotFound
	}
	return item.Clone(), nil
}

func (r *fakeCollectionRepo) List(ctx context.Context) ([]entity.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entity.Collection, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.items[id].Clone())
	}
	return out, nil
}

func (r *fakeCollectionRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return entity.ErrCollectionNotFound
	}
	delete(r.items, id)
	for i, other := range r.order {
		if other == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

type fakeProgressRepo struct {
	mu    sync.RWMutex
	items map[string]*entity.ResumePoint
	saves int
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{items: make(map[string]*entity.ResumePoint)}
}

func (r *fakeProgressRepo) Save(ctx context.Context, point *entity.ResumePoint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	r.items[point.VideoID] = point.Clone()
	return nil
}

func (r *fakeProgressRepo) Get(ctx context.Context, videoID string) (*entity.ResumePoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.items[videoID].Clone(), nil
}

func (r *fakeProgressRepo) Delete(ctx context.Context, videoID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, videoID)
	return nil
}

type fakeMediaRepo struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func newFakeMediaRepo() *fakeMediaRepo {
	return &fakeMediaRepo{blobs: make(map[string][]byte)}
}

func (r *fakeMediaRepo) Put(ctx context.Context, id string, content io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blobs[id] = bytes.Clone(data)
	return "/blobs/" + id, nil
}

func (r *fakeMediaRepo) Get(ctx context.Context, id string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.blobs[id]; !ok {
		return "", entity.ErrMediaNotFound
	}
	return "/blobs/" + id, nil
}

func (r *fakeMediaRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.blobs[id]; !ok {
		return entity.ErrMediaNotFound
	}
	delete(r.blobs, id)
	return nil
}
