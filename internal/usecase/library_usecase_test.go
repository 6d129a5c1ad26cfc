package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/eslsoft/cliploop/internal/entity"
)

type libraryFixture struct {
	videos      *fakeVideoRepo
	collections *fakeCollectionRepo
	playlists   *fakePlaylistRepo
	progress    *fakeProgressRepo
	media       *fakeMediaRepo
	uc          LibraryUsecase
}

func newLibraryFixture(t *testing.T) *libraryFixture {
	t.Helper()
	f := &libraryFixture{
		videos:      newFakeVideoRepo(),
		collections: newFakeCollectionRepo(),
		playlists:   newFakePlaylistRepo(),
		progress:    newFakeProgressRepo(),
		media:       newFakeMediaRepo(),
	}
	f.uc = NewLibraryUsecase(f.videos, f.collections, f.playlists, f.progress, f.media)
	impl := f.uc.(*libraryUsecase)
	impl.clock = func() time.Time { return schedDay(0).Add(10 * time.Hour) }
	return f
}

func TestCreateCollectionDefaults(t *testing.T) {
	f := newLibraryFixture(t)
	created, err := f.uc.CreateCollection(context.Background(), "  Daily French  ")
	if err != nil {
		t.Fatalf("CreateCollection: %v", err)
	}
	if created.ID == "" {
		t.Error("expected generated ID")
	}
	if created.Name != "Daily French" {
		t.Errorf("expected trimmed name, got %q", created.Name)
	}
	if !created.IsActive {
		t.Error("new collections start active")
	}

	if _, err := f.uc.CreateCollection(context.Background(), "   "); !errors.Is(err, entity.ErrInvalidCollectionName) {
		t.Errorf("expected ErrInvalidCollectionName, got %v", err)
	}
}

func TestAddVideoIngestsBlobAndRecord(t *testing.T) {
	f := newLibraryFixture(t)
	collection, err := f.uc.CreateCollection(context.Background(), "Podcasts")
	if err != nil {
		t.Fatalf("CreateCollection: %v", err)
	}

	video, err := f.uc.AddVideo(context.Background(), &AddVideoInput{
		CollectionID: collection.ID,
		Filename:     "lesson-01.mp3",
		MimeType:     "audio/mpeg",
		SizeBytes:    1024,
		Content:      strings.NewReader("not-really-audio"),
	})
	if err != nil {
		t.Fatalf("AddVideo: %v", err)
	}
	if video.Status != entity.VideoStatusNew || video.ReviewCount != 0 {
		t.Fatalf("ingested clip must start unseen, got %+v", video)
	}
	if video.MediaType != entity.MediaTypeAudio {
		t.Errorf("expected media type derived from MIME, got %q", video.MediaType)
	}
	if _, err := f.media.Get(context.Background(), video.ID); err != nil {
		t.Errorf("expected stored blob, got %v", err)
	}

	if _, err := f.uc.AddVideo(context.Background(), &AddVideoInput{CollectionID: "ghost", Content: strings.NewReader("x")}); !errors.Is(err, entity.ErrCollectionNotFound) {
		t.Errorf("expected ErrCollectionNotFound, got %v", err)
	}
	if _, err := f.uc.AddVideo(context.Background(), &AddVideoInput{CollectionID: collection.ID}); !errors.Is(err, entity.ErrEmptyMedia) {
		t.Errorf("expected ErrEmptyMedia, got %v", err)
	}
}

func TestDeleteVideoPurgesEverywhere(t *testing.T) {
	f := newLibraryFixture(t)
	collection, err := f.uc.CreateCollection(context.Background(), "Podcasts")
	if err != nil {
		t.Fatalf("CreateCollection: %v", err)
	}
	video, err := f.uc.AddVideo(context.Background(), &AddVideoInput{
		CollectionID: collection.ID,
		Filename:     "lesson.mp4",
		MimeType:     "video/mp4",
		Content:      strings.NewReader("bytes"),
	})
	if err != nil {
		t.Fatalf("AddVideo: %v", err)
	}
	keep, err := f.uc.AddVideo(context.Background(), &AddVideoInput{
		CollectionID: collection.ID,
		Filename:     "other.mp4",
		MimeType:     "video/mp4",
		Content:      strings.NewReader("bytes"),
	})
	if err != nil {
		t.Fatalf("AddVideo: %v", err)
	}
	_, err = f.playlists.Create(context.Background(), &entity.Playlist{
		ID: "open", Date: schedDay(0), Type: entity.ReviewTypeNew,
		Items: []entity.PlaylistItem{
			{VideoID: video.ID, ReviewType: entity.ReviewTypeNew, ReviewNumber: 1},
			{VideoID: keep.ID, ReviewType: entity.ReviewTypeNew, ReviewNumber: 1},
		},
	})
	if err != nil {
		t.Fatalf("seed playlist: %v", err)
	}
	if err := f.progress.Save(context.Background(), &entity.ResumePoint{VideoID: video.ID, Position: 30, Duration: 100}); err != nil {
		t.Fatalf("seed progress: %v", err)
	}

	if err := f.uc.DeleteVideo(context.Background(), video.ID); err != nil {
		t.Fatalf("DeleteVideo: %v", err)
	}

	if _, err := f.videos.GetByID(context.Background(), video.ID); !errors.Is(err, entity.ErrVideoNotFound) {
		t.Errorf("expected deleted record, got %v", err)
	}
	if _, err := f.media.Get(context.Background(), video.ID); !errors.Is(err, entity.ErrMediaNotFound) {
		t.Errorf("expected deleted blob, got %v", err)
	}
	if point, _ := f.progress.Get(context.Background(), video.ID); point != nil {
		t.Error("expected cleared resume point")
	}
	playlist, err := f.playlists.GetByID(context.Background(), "open")
	if err != nil {
		t.Fatalf("GetByID(open): %v", err)
	}
	if len(playlist.Items) != 1 || playlist.Items[0].VideoID != keep.ID {
		t.Errorf("expected reference purged from open session, got %+v", playlist.Items)
	}
}

func TestListCollectionsDerivesTotals(t *testing.T) {
	f := newLibraryFixture(t)
	collection, err := f.uc.CreateCollection(context.Background(), "Podcasts")
	if err != nil {
		t.Fatalf("CreateCollection: %v", err)
	}
	for i, status := range []entity.VideoStatus{entity.VideoStatusNew, entity.VideoStatusLearning, entity.VideoStatusCompleted} {
		_, err := f.videos.Create(context.Background(), &entity.Video{
			ID: string(rune('a' + i)), CollectionID: collection.ID, Status: status,
		})
		if err != nil {
			t.Fatalf("create video: %v", err)
		}
	}

	stats, err := f.uc.ListCollections(context.Background())
	if err != nil {
		t.Fatalf("ListCollections: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("expected one collection, got %d", len(stats))
	}
	if stats[0].TotalVideos != 3 || stats[0].CompletedVideos != 1 {
		t.Fatalf("expected totals 3/1, got %d/%d", stats[0].TotalVideos, stats[0].CompletedVideos)
	}
}

func TestDeleteCollectionRefusesWhenPopulated(t *testing.T) {
	f := newLibraryFixture(t)
	collection, err := f.uc.CreateCollection(context.Background(), "Podcasts")
	if err != nil {
		t.Fatalf("CreateCollection: %v", err)
	}
	if _, err := f.videos.Create(context.Background(), &entity.Video{ID: "v1", CollectionID: collection.ID, Status: entity.VideoStatusNew}); err != nil {
		t.Fatalf("create video: %v", err)
	}

	if err := f.uc.DeleteCollection(context.Background(), collection.ID); !errors.Is(err, entity.ErrCollectionNotEmpty) {
		t.Fatalf("expected ErrCollectionNotEmpty, got %v", err)
	}
	if err := f.videos.Delete(context.Background(), "v1"); err != nil {
		t.Fatalf("delete video: %v", err)
	}
	if err := f.uc.DeleteCollection(context.Background(), collection.ID); err != nil {
		t.Fatalf("DeleteCollection: %v", err)
	}
}

func TestSetCollectionActiveSkipsRedundantWrites(t *testing.T) {
	f := newLibraryFixture(t)
	collection, err := f.uc.CreateCollection(context.Background(), "Podcasts")
	if err != nil {
		t.Fatalf("CreateCollection: %v", err)
	}
	paused, err := f.uc.SetCollectionActive(context.Background(), collection.ID, false)
	if err != nil {
		t.Fatalf("SetCollectionActive: %v", err)
	}
	if paused.IsActive {
		t.Error("expected paused collection")
	}
	writes := f.collections.updates
	if _, err := f.uc.SetCollectionActive(context.Background(), collection.ID, false); err != nil {
		t.Fatalf("SetCollectionActive repeat: %v", err)
	}
	if f.collections.updates != writes {
		t.Error("no-op toggle must not rewrite the record")
	}
}
