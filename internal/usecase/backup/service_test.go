package backup

import (
	"bytes"
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	adapterrepo "github.com/eslsoft/cliploop/internal/adapter/repository"
	"github.com/eslsoft/cliploop/internal/entity"
	"github.com/eslsoft/cliploop/internal/repository"
)

type fixture struct {
	videos      repository.VideoRepository
	playlists   repository.PlaylistRepository
	collections repository.CollectionRepository
	svc         *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "backup.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	store, cleanup, err := adapterrepo.Open(context.Background(), db, "sqlite3", logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(cleanup)

	f := &fixture{
		videos:      adapterrepo.NewVideoRepository(store),
		playlists:   adapterrepo.NewPlaylistRepository(store),
		collections: adapterrepo.NewCollectionRepository(store),
	}
	f.svc = NewService(f.videos, f.playlists, f.collections, logger)
	return f
}

func seed(t *testing.T, f *fixture) {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.Local)

	if _, err := f.collections.Create(ctx, &entity.Collection{ID: "c1", Name: "Podcasts", IsActive: true, CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("seed collection: %v", err)
	}
	next := entity.DayStart(now).AddDate(0, 0, 4)
	first := now.AddDate(0, 0, -1)
	if _, err := f.videos.Create(ctx, &entity.Video{
		ID: "v1", CollectionID: "c1", Filename: "a.mp3", MediaType: entity.MediaTypeAudio,
		Status: entity.VideoStatusLearning, ReviewCount: 2, DateAdded: now,
		FirstPlayDate: &first, NextReviewDate: &next,
	}); err != nil {
		t.Fatalf("seed video: %v", err)
	}
	if _, err := f.playlists.Create(ctx, &entity.Playlist{
		ID: "p1", Date: entity.DayStart(now), Type: entity.ReviewTypeReview,
		Items:           []entity.PlaylistItem{{VideoID: "v1", ReviewType: entity.ReviewTypeReview, ReviewNumber: 3, DaysSinceFirstPlay: 1}},
		LastPlayedIndex: 1, Completed: true, CreatedAt: now,
	}); err != nil {
		t.Fatalf("seed playlist: %v", err)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	src := newFixture(t)
	seed(t, src)

	var buf bytes.Buffer
	exported, err := src.svc.Export(context.Background(), &buf)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if exported.Videos != 1 || exported.Playlists != 1 || exported.Collections != 1 {
		t.Fatalf("unexpected export summary: %+v", exported)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 records, got %d lines", len(lines))
	}
	if !strings.Contains(lines[0], `"format_version":1`) {
		t.Fatalf("missing header: %s", lines[0])
	}

	dst := newFixture(t)
	imported, err := dst.svc.Import(context.Background(), bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if imported != exported {
		t.Fatalf("import summary %+v != export summary %+v", imported, exported)
	}

	video, err := dst.videos.GetByID(context.Background(), "v1")
	if err != nil {
		t.Fatalf("restored video: %v", err)
	}
	if video.Status != entity.VideoStatusLearning || video.ReviewCount != 2 || video.NextReviewDate == nil {
		t.Fatalf("unexpected restored video: %+v", video)
	}
	playlist, err := dst.playlists.GetByID(context.Background(), "p1")
	if err != nil {
		t.Fatalf("restored playlist: %v", err)
	}
	if !playlist.Completed || len(playlist.Items) != 1 || playlist.Items[0].ReviewNumber != 3 {
		t.Fatalf("unexpected restored playlist: %+v", playlist)
	}
}

func TestImportRejectsGarbage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Import(ctx, strings.NewReader("")); err == nil {
		t.Error("expected error for empty stream")
	}
	if _, err := f.svc.Import(ctx, strings.NewReader("not-json\n")); err == nil {
		t.Error("expected error for junk header")
	}
	if _, err := f.svc.Import(ctx, strings.NewReader(`{"format_version":99}`+"\n")); err == nil {
		t.Error("expected error for future format version")
	}

	stream := `{"format_version":1,"exported_at":"2024-05-10T09:00:00Z"}` + "\n" +
		`{"collection":"widgets","record":{}}` + "\n"
	if _, err := f.svc.Import(ctx, strings.NewReader(stream)); err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("expected line-numbered error for unknown collection, got %v", err)
	}
}
