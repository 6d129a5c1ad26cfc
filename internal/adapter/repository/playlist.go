package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/samber/lo"

	"github.com/eslsoft/cliploop/internal/entity"
	"github.com/eslsoft/cliploop/internal/repository"
)

// playlistItemRow is the JSON shape persisted in the playlists.items column.
type playlistItemRow struct {
	VideoID            string `json:"video_id"`
	ReviewType         string `json:"review_type"`
	ReviewNumber       int    `json:"review_number"`
	DaysSinceFirstPlay int    `json:"days_since_first_play"`
	RecommendVideo     bool   `json:"recommend_video"`
}

func encodeItems(items []entity.PlaylistItem) (string, error) {
	rows := lo.Map(items, func(item entity.PlaylistItem, _ int) playlistItemRow {
		return playlistItemRow{
			VideoID:            item.VideoID,
			ReviewType:         string(item.ReviewType),
			ReviewNumber:       item.ReviewNumber,
			DaysSinceFirstPlay: item.DaysSinceFirstPlay,
			RecommendVideo:     item.RecommendVideo,
		}
	})
	raw, err := json.Marshal(rows)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decodeItems(raw string) ([]entity.PlaylistItem, error) {
	var rows []playlistItemRow
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		return nil, err
	}
	return lo.Map(rows, func(row playlistItemRow, _ int) entity.PlaylistItem {
		return entity.PlaylistItem{
			VideoID:            row.VideoID,
			ReviewType:         entity.ReviewType(row.ReviewType),
			ReviewNumber:       row.ReviewNumber,
			DaysSinceFirstPlay: row.DaysSinceFirstPlay,
			RecommendVideo:     row.RecommendVideo,
		}
	}), nil
}

type playlistRepository struct {
	store *Store
}

// NewPlaylistRepository exposes the store's session collection.
func NewPlaylistRepository(store *Store) repository.PlaylistRepository {
	return &playlistRepository{store: store}
}

func (s *Store) loadPlaylists(ctx context.Context) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, date, type, extra, items, last_played_index, completed, created_at, position
		FROM playlists ORDER BY position DESC`)
	if err != nil {
		s.logger.WithError(err).Warn("load playlists, starting empty")
		return
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p         entity.Playlist
			date      string
			typ       string
			extra     int
			items     string
			completed int
			createdAt string
			position  int64
		)
		if err := rows.Scan(&p.ID, &date, &typ, &extra, &items, &p.LastPlayedIndex, &completed, &createdAt, &position); err != nil {
			s.logger.WithError(err).Warn("skipping unreadable playlist row")
			continue
		}
		p.Type = entity.ReviewType(typ)
		p.Extra = extra != 0
		p.Completed = completed != 0
		if p.Date, err = parseTime(date); err != nil {
			s.logger.WithError(err).WithField("playlist_id", p.ID).Warn("skipping playlist row with bad date")
			continue
		}
		if p.CreatedAt, err = parseTime(createdAt); err != nil {
			s.logger.WithError(err).WithField("playlist_id", p.ID).Warn("skipping playlist row with bad created_at")
			continue
		}
		if p.Items, err = decodeItems(items); err != nil {
			s.logger.WithError(err).WithField("playlist_id", p.ID).Warn("skipping playlist row with bad items")
			continue
		}
		s.playlists[p.ID] = &p
		s.playlistOrder = append(s.playlistOrder, p.ID)
		if position >= s.playlistSeq {
			s.playlistSeq = position + 1
		}
	}
	if err := rows.Err(); err != nil {
		s.logger.WithError(err).Warn("playlist load ended early")
	}
	s.logger.WithField("count", len(s.playlistOrder)).Debug("playlists loaded")
}

func (s *Store) mirrorPlaylist(playlist *entity.Playlist, position int64) {
	p := playlist.Clone()
	s.enqueue("save playlist", func(db *sql.DB) error {
		items, err := encodeItems(p.Items)
		if err != nil {
			return err
		}
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback() //nolint:errcheck
		if _, err := tx.Exec(s.q(`DELETE FROM playlists WHERE id = ?`), p.ID); err != nil {
			return err
		}
		_, err = tx.Exec(s.q(`INSERT INTO playlists (id, date, type, extra, items, last_played_index, completed, created_at, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			p.ID, fmtTime(p.Date), string(p.Type), boolToInt(p.Extra), items, p.LastPlayedIndex, boolToInt(p.Completed), fmtTime(p.CreatedAt), position)
		if err != nil {
			return err
		}
		return tx.Commit()
	})
}

func (r *playlistRepository) Create(ctx context.Context, playlist *entity.Playlist) (*entity.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := playlist.Clone()
	position := s.playlistSeq
	s.playlistSeq++
	s.playlists[stored.ID] = stored
	s.playlistOrder = append([]string{stored.ID}, s.playlistOrder...)
	s.mirrorPlaylist(stored, position)
	return stored.Clone(), nil
}

func (r *playlistRepository) Update(ctx context.Context, playlist *entity.Playlist) (*entity.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.playlists[playlist.ID]; !ok {
		return nil, entity.ErrPlaylistNotFound
	}
	stored := playlist.Clone()
	s.playlists[stored.ID] = stored
	s.mirrorPlaylist(stored, s.playlistPosition(stored.ID))
	return stored.Clone(), nil
}

// playlistPosition maps newest-first slice index back to the persisted
// sequence so an update keeps its recency slot. Caller holds s.mu.
func (s *Store) playlistPosition(id string) int64 {
	for i, existing := range s.playlistOrder {
		if existing == id {
			return s.playlistSeq - 1 - int64(i)
		}
	}
	return s.playlistSeq
}

func (r *playlistRepository) GetByID(ctx context.Context, id string) (*entity.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	playlist, ok := s.playlists[id]
	if !ok {
		return nil, entity.ErrPlaylistNotFound
	}
	return playlist.Clone(), nil
}

func (r *playlistRepository) FindOpen(ctx context.Context, day time.Time, typ entity.ReviewType, extra bool) (*entity.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.playlistOrder {
		playlist := s.playlists[id]
		if !playlist.Completed && playlist.MatchesKey(day, typ, extra) {
			return playlist.Clone(), nil
		}
	}
	return nil, nil
}

func (r *playlistRepository) ListOpen(ctx context.Context) ([]entity.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []entity.Playlist
	for _, id := range s.playlistOrder {
		if playlist := s.playlists[id]; !playlist.Completed {
			out = append(out, *playlist.Clone())
		}
	}
	return out, nil
}

func (r *playlistRepository) List(ctx context.Context, query *repository.ListPlaylistQuery) ([]entity.Playlist, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	s := r.store
	s.mu.RLock()
	matched := make([]entity.Playlist, 0, len(s.playlistOrder))
	for _, id := range s.playlistOrder {
		playlist := s.playlists[id]
		if query.Type != "" && playlist.Type != query.Type {
			continue
		}
		matched = append(matched, *playlist.Clone())
	}
	s.mu.RUnlock()

	total := int64(len(matched))
	return paginate(matched, query.Pagination), total, nil
}

func (r *playlistRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.playlists[id]; !ok {
		return entity.ErrPlaylistNotFound
	}
	delete(s.playlists, id)
	for i, existing := range s.playlistOrder {
		if existing == id {
			s.playlistOrder = append(s.playlistOrder[:i], s.playlistOrder[i+1:]...)
			break
		}
	}
	s.enqueue("delete playlist", func(db *sql.DB) error {
		_, err := db.Exec(s.q(`DELETE FROM playlists WHERE id = ?`), id)
		return err
	})
	return nil
}
