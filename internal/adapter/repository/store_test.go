package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/cliploop/internal/entity"
	"github.com/eslsoft/cliploop/internal/repository"
)

func listQuery(filter, orderBy, collectionID string, pageNo, pageSize int32) *repository.ListVideoQuery {
	return &repository.ListVideoQuery{
		Pagination:   repository.Pagination{PageNo: pageNo, PageSize: pageSize},
		FilterOrder:  repository.FilterOrder{Filter: filter, OrderBy: orderBy},
		CollectionID: collectionID,
	}
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "cliploop.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func openTestStore(t *testing.T, db *sql.DB) *Store {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	store, cleanup, err := Open(context.Background(), db, "sqlite3", logger)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(cleanup)
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	db := openTestDB(t)
	store := openTestStore(t, db)
	ctx := context.Background()

	collections := NewCollectionRepository(store)
	videos := NewVideoRepository(store)
	playlists := NewPlaylistRepository(store)
	progress := NewProgressRepository(store)

	now := time.Date(2024, 5, 10, 9, 30, 0, 0, time.Local)
	if _, err := collections.Create(ctx, &entity.Collection{ID: "c1", Name: "Podcasts", IsActive: true, CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("create collection: %v", err)
	}
	first := now
	next := entity.DayStart(now).AddDate(0, 0, 1)
	if _, err := videos.Create(ctx, &entity.Video{
		ID: "v1", CollectionID: "c1", Filename: "a.mp3", MediaType: entity.MediaTypeAudio,
		MimeType: "audio/mpeg", SizeBytes: 10, Status: entity.VideoStatusLearning,
		ReviewCount: 1, DateAdded: now, FirstPlayDate: &first, NextReviewDate: &next,
	}); err != nil {
		t.Fatalf("create video: %v", err)
	}
	if _, err := playlists.Create(ctx, &entity.Playlist{
		ID: "p1", Date: entity.DayStart(now), Type: entity.ReviewTypeNew,
		Items: []entity.PlaylistItem{{VideoID: "v1", ReviewType: entity.ReviewTypeNew, ReviewNumber: 1}},
		LastPlayedIndex: 1, CreatedAt: now,
	}); err != nil {
		t.Fatalf("create playlist: %v", err)
	}
	if err := progress.Save(ctx, &entity.ResumePoint{VideoID: "v1", Position: 42, Duration: 300, UpdatedAt: now}); err != nil {
		t.Fatalf("save progress: %v", err)
	}

	store.Flush()

	reopened := openTestStore(t, db)

	video, err := NewVideoRepository(reopened).GetByID(ctx, "v1")
	if err != nil {
		t.Fatalf("reload video: %v", err)
	}
	if video.Status != entity.VideoStatusLearning || video.ReviewCount != 1 {
		t.Errorf("unexpected reloaded video: %+v", video)
	}
	if video.NextReviewDate == nil || !video.NextReviewDate.Equal(next) {
		t.Errorf("expected next review %v, got %v", next, video.NextReviewDate)
	}

	playlist, err := NewPlaylistRepository(reopened).GetByID(ctx, "p1")
	if err != nil {
		t.Fatalf("reload playlist: %v", err)
	}
	if len(playlist.Items) != 1 || playlist.Items[0].VideoID != "v1" || playlist.LastPlayedIndex != 1 {
		t.Errorf("unexpected reloaded playlist: %+v", playlist)
	}

	point, err := NewProgressRepository(reopened).Get(ctx, "v1")
	if err != nil {
		t.Fatalf("reload progress: %v", err)
	}
	if point == nil || point.Position != 42 {
		t.Errorf("unexpected reloaded resume point: %+v", point)
	}
}

func TestStoreUpdateAndDeleteMirror(t *testing.T) {
	db := openTestDB(t)
	store := openTestStore(t, db)
	ctx := context.Background()
	videos := NewVideoRepository(store)

	now := time.Date(2024, 5, 10, 9, 30, 0, 0, time.Local)
	for _, id := range []string{"v1", "v2"} {
		if _, err := videos.Create(ctx, &entity.Video{ID: id, CollectionID: "c1", Status: entity.VideoStatusNew, DateAdded: now}); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	updated := &entity.Video{ID: "v1", CollectionID: "c1", Status: entity.VideoStatusLearning, ReviewCount: 1, DateAdded: now}
	if _, err := videos.Update(ctx, updated); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := videos.Delete(ctx, "v2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	store.Flush()

	reopened := openTestStore(t, db)
	all, err := NewVideoRepository(reopened).Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(all) != 1 || all[0].ID != "v1" || all[0].Status != entity.VideoStatusLearning {
		t.Fatalf("expected single updated video, got %+v", all)
	}
}

func TestStoreSkipsCorruptRows(t *testing.T) {
	db := openTestDB(t)
	store := openTestStore(t, db)
	ctx := context.Background()
	videos := NewVideoRepository(store)

	now := time.Date(2024, 5, 10, 9, 30, 0, 0, time.Local)
	if _, err := videos.Create(ctx, &entity.Video{ID: "good", CollectionID: "c1", Status: entity.VideoStatusNew, DateAdded: now}); err != nil {
		t.Fatalf("create: %v", err)
	}
	store.Flush()

	_, err := db.Exec(`INSERT INTO videos (id, collection_id, status, review_count, date_added, position)
		VALUES ('bad', 'c1', 'new', 0, 'not-a-date', 99)`)
	if err != nil {
		t.Fatalf("seed corrupt row: %v", err)
	}

	reopened := openTestStore(t, db)
	all, err := NewVideoRepository(reopened).Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(all) != 1 || all[0].ID != "good" {
		t.Fatalf("expected corrupt row skipped, got %+v", all)
	}
}

func TestStoreListFiltersAndPaginates(t *testing.T) {
	db := openTestDB(t)
	store := openTestStore(t, db)
	ctx := context.Background()
	videos := NewVideoRepository(store)

	base := time.Date(2024, 5, 10, 9, 0, 0, 0, time.Local)
	seed := []entity.Video{
		{ID: "v1", CollectionID: "c1", Filename: "alpha.mp3", Status: entity.VideoStatusNew, DateAdded: base},
		{ID: "v2", CollectionID: "c1", Filename: "bravo.mp3", Status: entity.VideoStatusLearning, ReviewCount: 2, DateAdded: base.Add(time.Hour)},
		{ID: "v3", CollectionID: "c2", Filename: "charlie.mp3", Status: entity.VideoStatusLearning, ReviewCount: 4, DateAdded: base.Add(2 * time.Hour)},
	}
	for i := range seed {
		if _, err := videos.Create(ctx, &seed[i]); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	got, total, err := videos.List(ctx, listQuery(`status == "learning"`, "filename asc", "", 1, 10))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(got) != 2 || got[0].ID != "v2" || got[1].ID != "v3" {
		t.Fatalf("unexpected filtered list: total=%d %+v", total, got)
	}

	got, total, err = videos.List(ctx, listQuery("", "", "c1", 1, 1))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(got) != 1 || got[0].ID != "v2" {
		t.Fatalf("expected newest c1 clip on page one, got total=%d %+v", total, got)
	}
}

func TestQRebindsForPostgres(t *testing.T) {
	s := &Store{driver: "postgres"}
	got := s.q(`UPDATE t SET a = ?, b = ? WHERE id = ?`)
	want := `UPDATE t SET a = $1, b = $2 WHERE id = $3`
	if got != want {
		t.Fatalf("q() = %q, want %q", got, want)
	}
	s.driver = "sqlite3"
	if got := s.q(`SELECT ?`); got != `SELECT ?` {
		t.Fatalf("sqlite rebind should be identity, got %q", got)
	}
}
