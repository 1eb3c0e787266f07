package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/soundscript/internal/models"
	"github.com/desertthunder/soundscript/internal/shared"
)

// TrackStore caches tracks, track details and waveform amplitudes in SQLite.
//
// Rows are keyed by the backend content id. Deletes are soft and an upsert revives a deleted row.
type TrackStore struct {
	db *sql.DB
}

// NewTrackStore creates a new TrackStore with the given database connection
func NewTrackStore(db *sql.DB) *TrackStore {
	return &TrackStore{db: db}
}

// SaveTracks upserts tracks under status, in list order.
//
// Tracks previously stored under status but absent from tracks are soft-deleted.
func (s *TrackStore) SaveTracks(status string, tracks []models.Track) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	query := `
		INSERT INTO tracks (id, content_id, position, name, artist, audio, hero_image, images, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(content_id) DO UPDATE SET
			position = excluded.position,
			name = excluded.name,
			artist = excluded.artist,
			audio = excluded.audio,
			hero_image = excluded.hero_image,
			images = excluded.images,
			status = excluded.status,
			updated_at = excluded.updated_at,
			deleted_at = NULL
	`

	ids := make([]any, 0, len(tracks)+2)
	ids = append(ids, now, status)
	for i, t := range tracks {
		images, err := encodeList(t.Images)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(query, shared.GenerateID(), t.ID, i, t.Name, t.Artist, t.Audio, t.HeroImage, images, status, now, now); err != nil {
			return fmt.Errorf("failed to upsert track %s: %w", t.ID, err)
		}
		ids = append(ids, t.ID)
	}

	prune := `UPDATE tracks SET deleted_at = ? WHERE status = ? AND deleted_at IS NULL`
	if len(tracks) > 0 {
		prune += " AND content_id NOT IN (" + placeholders(len(tracks)) + ")"
	}
	if _, err := tx.Exec(prune, ids...); err != nil {
		return fmt.Errorf("failed to prune tracks: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tracks: %w", err)
	}
	return nil
}

// ListTracks returns the live tracks stored under status in list order.
func (s *TrackStore) ListTracks(status string) ([]models.Track, error) {
	query := `
		SELECT content_id, name, artist, audio, hero_image, images
		FROM tracks
		WHERE status = ? AND deleted_at IS NULL
		ORDER BY position ASC
	`

	rows, err := s.db.Query(query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	tracks := []models.Track{}
	for rows.Next() {
		var (
			t                         models.Track
			artist, heroImage, images sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.Name, &artist, &t.Audio, &heroImage, &images); err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		t.Artist = artist.String
		t.HeroImage = heroImage.String
		if t.Images, err = decodeList(images.String); err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tracks: %w", err)
	}

	return tracks, nil
}

// GetTrack retrieves a live track by content id.
func (s *TrackStore) GetTrack(contentID string) (models.Track, error) {
	query := `
		SELECT content_id, name, artist, audio, hero_image, images
		FROM tracks
		WHERE content_id = ? AND deleted_at IS NULL
	`

	var (
		t                         models.Track
		artist, heroImage, images sql.NullString
	)
	err := s.db.QueryRow(query, contentID).Scan(&t.ID, &t.Name, &artist, &t.Audio, &heroImage, &images)
	if errors.Is(err, sql.ErrNoRows) {
		return t, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, contentID)
	}
	if err != nil {
		return t, fmt.Errorf("failed to get track: %w", err)
	}

	t.Artist = artist.String
	t.HeroImage = heroImage.String
	t.Images, err = decodeList(images.String)
	return t, err
}

// DeleteTrack soft-deletes the track and its detail.
func (s *TrackStore) DeleteTrack(contentID string) error {
	now := time.Now()

	result, err := s.db.Exec("UPDATE tracks SET deleted_at = ? WHERE content_id = ? AND deleted_at IS NULL", now, contentID)
	if err != nil {
		return fmt.Errorf("failed to delete track: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrTrackNotFound, contentID)
	}

	if _, err := s.db.Exec("UPDATE track_details SET deleted_at = ? WHERE content_id = ? AND deleted_at IS NULL", now, contentID); err != nil {
		return fmt.Errorf("failed to delete track detail: %w", err)
	}

	return nil
}

// SaveDetail upserts a content detail.
func (s *TrackStore) SaveDetail(d models.TrackDetail) error {
	images, err := encodeList(d.Images)
	if err != nil {
		return err
	}
	tags, err := encodeList(d.Tags)
	if err != nil {
		return err
	}

	now := time.Now()
	query := `
		INSERT INTO track_details (id, content_id, name, artist, audio, hero_image, images, status, summary, tags, transcription, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(content_id) DO UPDATE SET
			name = excluded.name,
			artist = excluded.artist,
			audio = excluded.audio,
			hero_image = excluded.hero_image,
			images = excluded.images,
			status = excluded.status,
			summary = excluded.summary,
			tags = excluded.tags,
			transcription = excluded.transcription,
			updated_at = excluded.updated_at,
			deleted_at = NULL
	`

	_, err = s.db.Exec(query,
		shared.GenerateID(),
		d.ID,
		d.Name,
		d.Artist,
		d.Audio,
		d.HeroImage,
		images,
		d.Status,
		d.Summary,
		tags,
		d.Transcription,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert track detail: %w", err)
	}

	return nil
}

// GetDetail retrieves a live content detail by content id.
func (s *TrackStore) GetDetail(contentID string) (models.TrackDetail, error) {
	query := `
		SELECT content_id, name, artist, audio, hero_image, images, status, summary, tags, transcription
		FROM track_details
		WHERE content_id = ? AND deleted_at IS NULL
	`

	var (
		d                               models.TrackDetail
		name, artist, heroImage, images sql.NullString
		summary, tags, transcription    sql.NullString
	)
	err := s.db.QueryRow(query, contentID).Scan(
		&d.ID, &name, &artist, &d.Audio, &heroImage, &images, &d.Status, &summary, &tags, &transcription,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return d, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, contentID)
	}
	if err != nil {
		return d, fmt.Errorf("failed to get track detail: %w", err)
	}

	d.Name = name.String
	d.Artist = artist.String
	d.HeroImage = heroImage.String
	d.Summary = summary.String
	d.Transcription = transcription.String
	if d.Images, err = decodeList(images.String); err != nil {
		return d, err
	}
	if d.Tags, err = decodeList(tags.String); err != nil {
		return d, err
	}

	return d, nil
}

// SaveWaveform stores amplitudes for audio at resolution samples per second, replacing any previous value.
func (s *TrackStore) SaveWaveform(audio string, resolution int, amplitudes []int) error {
	data, err := json.Marshal(amplitudes)
	if err != nil {
		return fmt.Errorf("failed to encode amplitudes: %w", err)
	}

	query := `
		INSERT INTO waveforms (id, audio, resolution, amplitudes, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(audio, resolution) DO UPDATE SET
			amplitudes = excluded.amplitudes,
			created_at = excluded.created_at
	`
	if _, err := s.db.Exec(query, shared.GenerateID(), audio, resolution, string(data), time.Now()); err != nil {
		return fmt.Errorf("failed to save waveform: %w", err)
	}
	return nil
}

// GetWaveform returns cached amplitudes. ok is false on a cache miss.
func (s *TrackStore) GetWaveform(audio string, resolution int) (amplitudes []int, ok bool, err error) {
	var data string
	err = s.db.QueryRow("SELECT amplitudes FROM waveforms WHERE audio = ? AND resolution = ?", audio, resolution).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get waveform: %w", err)
	}

	if err := json.Unmarshal([]byte(data), &amplitudes); err != nil {
		return nil, false, fmt.Errorf("failed to decode amplitudes: %w", err)
	}
	return amplitudes, true, nil
}

func encodeList(values []string) (sql.NullString, error) {
	if len(values) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode list: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func decodeList(data string) ([]string, error) {
	if data == "" {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, fmt.Errorf("failed to decode list: %w", err)
	}
	return values, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
