package repositories

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"testing"

	"github.com/desertthunder/soundscript/internal/models"
	"github.com/desertthunder/soundscript/internal/services"
	"github.com/desertthunder/soundscript/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// stubAPI records the status it was asked for and returns canned results.
type stubAPI struct {
	status   string
	contents services.Result[models.ContentResponse]
	detail   services.Result[models.ContentDetailResponse]
}

func (s *stubAPI) GetContents(_ context.Context, status string) services.Result[models.ContentResponse] {
	s.status = status
	return s.contents
}

func (s *stubAPI) GetContentDetail(_ context.Context, id string) services.Result[models.ContentDetailResponse] {
	return s.detail
}

func sampleTracks() []models.Track {
	return []models.Track{
		{ID: "c1", Name: "One", Artist: "Host", Audio: "http://a/1.mp3", Images: []string{"http://a/1.png"}},
		{ID: "c2", Name: "Two", Audio: "http://a/2.mp3"},
		{ID: "c3", Name: "Three", Audio: "http://a/3.mp3", HeroImage: "http://a/3.png"},
	}
}

func TestRemoteTrackRepository(t *testing.T) {
	t.Run("Uses Default Status", func(t *testing.T) {
		api := &stubAPI{contents: services.Success(models.ContentResponse{})}
		repo := NewRemoteTrackRepository(api, "")

		repo.GetContents(context.Background())

		if api.status != "DRAFT" {
			t.Errorf("expected DRAFT, got %q", api.status)
		}
	})

	t.Run("Uses Configured Status", func(t *testing.T) {
		api := &stubAPI{contents: services.Success(models.ContentResponse{})}
		repo := NewRemoteTrackRepository(api, "PUBLISHED")

		repo.GetContents(context.Background())

		if api.status != "PUBLISHED" || repo.Status() != "PUBLISHED" {
			t.Errorf("expected PUBLISHED, got %q", api.status)
		}
	})
}

func TestTrackStore(t *testing.T) {
	t.Run("SaveTracks And ListTracks", func(t *testing.T) {
		store := NewTrackStore(setupTestDB(t))

		if err := store.SaveTracks("DRAFT", sampleTracks()); err != nil {
			t.Fatalf("failed to save tracks: %v", err)
		}

		tracks, err := store.ListTracks("DRAFT")
		if err != nil {
			t.Fatalf("failed to list tracks: %v", err)
		}

		if len(tracks) != 3 {
			t.Fatalf("expected 3 tracks, got %d", len(tracks))
		}
		if tracks[0].ID != "c1" || tracks[2].ID != "c3" {
			t.Errorf("tracks out of order: %v, %v", tracks[0].ID, tracks[2].ID)
		}
		if len(tracks[0].Images) != 1 || tracks[0].Artist != "Host" {
			t.Errorf("unexpected first track %+v", tracks[0])
		}
		if tracks[1].Images != nil || tracks[1].Artist != "" {
			t.Errorf("optional fields should be empty, got %+v", tracks[1])
		}
		if tracks[2].HeroImage != "http://a/3.png" {
			t.Errorf("unexpected hero image %q", tracks[2].HeroImage)
		}
	})

	t.Run("SaveTracks Reorders And Prunes", func(t *testing.T) {
		store := NewTrackStore(setupTestDB(t))
		all := sampleTracks()

		if err := store.SaveTracks("DRAFT", all); err != nil {
			t.Fatalf("failed to save tracks: %v", err)
		}
		if err := store.SaveTracks("DRAFT", []models.Track{all[2], all[0]}); err != nil {
			t.Fatalf("failed to save tracks: %v", err)
		}

		tracks, err := store.ListTracks("DRAFT")
		if err != nil {
			t.Fatalf("failed to list tracks: %v", err)
		}
		if len(tracks) != 2 || tracks[0].ID != "c3" || tracks[1].ID != "c1" {
			t.Errorf("unexpected tracks after resave: %+v", tracks)
		}

		if _, err := store.GetTrack("c2"); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected pruned track to be missing, got %v", err)
		}
	})

	t.Run("SaveTracks Empty List Prunes All", func(t *testing.T) {
		store := NewTrackStore(setupTestDB(t))

		if err := store.SaveTracks("DRAFT", sampleTracks()); err != nil {
			t.Fatalf("failed to save tracks: %v", err)
		}
		if err := store.SaveTracks("DRAFT", nil); err != nil {
			t.Fatalf("failed to save empty list: %v", err)
		}

		tracks, _ := store.ListTracks("DRAFT")
		if len(tracks) != 0 {
			t.Errorf("expected no tracks, got %d", len(tracks))
		}
	})

	t.Run("Statuses Are Separate", func(t *testing.T) {
		store := NewTrackStore(setupTestDB(t))

		if err := store.SaveTracks("DRAFT", sampleTracks()[:1]); err != nil {
			t.Fatalf("failed to save tracks: %v", err)
		}

		tracks, err := store.ListTracks("PUBLISHED")
		if err != nil {
			t.Fatalf("failed to list tracks: %v", err)
		}
		if len(tracks) != 0 {
			t.Errorf("expected no PUBLISHED tracks, got %d", len(tracks))
		}
	})

	t.Run("DeleteTrack", func(t *testing.T) {
		store := NewTrackStore(setupTestDB(t))

		if err := store.SaveTracks("DRAFT", sampleTracks()); err != nil {
			t.Fatalf("failed to save tracks: %v", err)
		}
		if err := store.SaveDetail(models.TrackDetail{ID: "c1", Audio: "u"}); err != nil {
			t.Fatalf("failed to save detail: %v", err)
		}

		if err := store.DeleteTrack("c1"); err != nil {
			t.Fatalf("failed to delete track: %v", err)
		}

		if _, err := store.GetTrack("c1"); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound, got %v", err)
		}
		if _, err := store.GetDetail("c1"); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected detail to be deleted, got %v", err)
		}
		if err := store.DeleteTrack("c1"); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected second delete to fail, got %v", err)
		}
	})

	t.Run("Upsert Revives Deleted Track", func(t *testing.T) {
		store := NewTrackStore(setupTestDB(t))

		if err := store.SaveTracks("DRAFT", sampleTracks()); err != nil {
			t.Fatalf("failed to save tracks: %v", err)
		}
		if err := store.DeleteTrack("c2"); err != nil {
			t.Fatalf("failed to delete track: %v", err)
		}
		if err := store.SaveTracks("DRAFT", sampleTracks()); err != nil {
			t.Fatalf("failed to resave tracks: %v", err)
		}

		if _, err := store.GetTrack("c2"); err != nil {
			t.Errorf("expected track to be revived, got %v", err)
		}
	})

	t.Run("SaveDetail And GetDetail", func(t *testing.T) {
		store := NewTrackStore(setupTestDB(t))
		detail := models.TrackDetail{
			ID:            "c1",
			Name:          "One",
			Audio:         "http://a/1.mp3",
			Status:        "DRAFT",
			Summary:       "short",
			Tags:          []string{"news", "tech"},
			Transcription: "hello world",
		}

		if err := store.SaveDetail(detail); err != nil {
			t.Fatalf("failed to save detail: %v", err)
		}

		detail.Summary = "updated"
		if err := store.SaveDetail(detail); err != nil {
			t.Fatalf("failed to update detail: %v", err)
		}

		got, err := store.GetDetail("c1")
		if err != nil {
			t.Fatalf("failed to get detail: %v", err)
		}
		if got.Summary != "updated" || got.Transcription != "hello world" || len(got.Tags) != 2 {
			t.Errorf("unexpected detail %+v", got)
		}
	})

	t.Run("GetDetail Not Found", func(t *testing.T) {
		store := NewTrackStore(setupTestDB(t))

		if _, err := store.GetDetail("missing"); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound, got %v", err)
		}
	})

	t.Run("Waveforms", func(t *testing.T) {
		store := NewTrackStore(setupTestDB(t))

		if _, ok, err := store.GetWaveform("u", 4); err != nil || ok {
			t.Fatalf("expected cache miss, got ok=%v err=%v", ok, err)
		}

		if err := store.SaveWaveform("u", 4, []int{1, 50, 100}); err != nil {
			t.Fatalf("failed to save waveform: %v", err)
		}
		if err := store.SaveWaveform("u", 4, []int{2, 60}); err != nil {
			t.Fatalf("failed to replace waveform: %v", err)
		}

		amps, ok, err := store.GetWaveform("u", 4)
		if err != nil || !ok {
			t.Fatalf("expected cache hit, got ok=%v err=%v", ok, err)
		}
		if len(amps) != 2 || amps[1] != 60 {
			t.Errorf("unexpected amplitudes %v", amps)
		}

		if _, ok, _ := store.GetWaveform("u", 8); ok {
			t.Error("different resolution should miss")
		}
	})
}

func TestCachedTrackRepository(t *testing.T) {
	logger := shared.NewLogger(io.Discard)

	t.Run("Success Writes Through", func(t *testing.T) {
		store := NewTrackStore(setupTestDB(t))
		api := &stubAPI{
			contents: services.Success(models.ContentResponse{Data: sampleTracks(), Status: "success"}),
			detail:   services.Success(models.ContentDetailResponse{Data: models.TrackDetail{ID: "c1", Audio: "u", Summary: "s"}}),
		}
		repo := NewCachedTrackRepository(NewRemoteTrackRepository(api, ""), store, "", logger)

		if r := repo.GetContents(context.Background()); r.Kind != services.KindSuccess || r.Data.Status != "success" {
			t.Fatalf("unexpected result %+v", r)
		}
		if r := repo.GetContentDetail(context.Background(), "c1"); r.Kind != services.KindSuccess {
			t.Fatalf("unexpected result %+v", r)
		}

		tracks, _ := store.ListTracks("DRAFT")
		if len(tracks) != 3 {
			t.Errorf("expected 3 cached tracks, got %d", len(tracks))
		}
		if d, err := repo.Store().GetDetail("c1"); err != nil || d.Summary != "s" {
			t.Errorf("expected cached detail, got %+v, %v", d, err)
		}
	})

	t.Run("Exception Falls Back To Cache", func(t *testing.T) {
		store := NewTrackStore(setupTestDB(t))
		if err := store.SaveTracks("DRAFT", sampleTracks()); err != nil {
			t.Fatalf("failed to seed tracks: %v", err)
		}
		if err := store.SaveDetail(models.TrackDetail{ID: "c1", Audio: "u", Transcription: "t"}); err != nil {
			t.Fatalf("failed to seed detail: %v", err)
		}

		offline := errors.New("offline")
		api := &stubAPI{
			contents: services.Exception[models.ContentResponse](offline),
			detail:   services.Exception[models.ContentDetailResponse](offline),
		}
		repo := NewCachedTrackRepository(NewRemoteTrackRepository(api, ""), store, "", logger)

		r := repo.GetContents(context.Background())
		if r.Kind != services.KindSuccess || r.Data.Status != CachedStatus || len(r.Data.Data) != 3 {
			t.Errorf("expected cached tracks, got %+v", r)
		}

		d := repo.GetContentDetail(context.Background(), "c1")
		if d.Kind != services.KindSuccess || d.Data.Data.Transcription != "t" {
			t.Errorf("expected cached detail, got %+v", d)
		}
	})

	t.Run("Exception Without Cache Passes Through", func(t *testing.T) {
		store := NewTrackStore(setupTestDB(t))
		offline := errors.New("offline")
		api := &stubAPI{
			contents: services.Exception[models.ContentResponse](offline),
			detail:   services.Exception[models.ContentDetailResponse](offline),
		}
		repo := NewCachedTrackRepository(NewRemoteTrackRepository(api, ""), store, "", logger)

		if r := repo.GetContents(context.Background()); r.Kind != services.KindException || !errors.Is(r.Err, offline) {
			t.Errorf("expected original exception, got %+v", r)
		}
		if r := repo.GetContentDetail(context.Background(), "c9"); r.Kind != services.KindException {
			t.Errorf("expected original exception, got %+v", r)
		}
	})

	t.Run("HTTP Error Is Not Masked", func(t *testing.T) {
		store := NewTrackStore(setupTestDB(t))
		if err := store.SaveTracks("DRAFT", sampleTracks()); err != nil {
			t.Fatalf("failed to seed tracks: %v", err)
		}

		api := &stubAPI{contents: services.Failure[models.ContentResponse](500, "boom")}
		repo := NewCachedTrackRepository(NewRemoteTrackRepository(api, ""), store, "", logger)

		if r := repo.GetContents(context.Background()); r.Kind != services.KindError || r.Code != 500 {
			t.Errorf("expected error to pass through, got %+v", r)
		}
	})
}
