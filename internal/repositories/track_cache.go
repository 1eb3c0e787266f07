package repositories

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundscript/internal/models"
	"github.com/desertthunder/soundscript/internal/services"
)

// CachedStatus marks a content response served from the local store.
const CachedStatus string = "cached"

// CachedTrackRepository decorates a [TrackRepository] with the [TrackStore].
//
// Successful results are written through to the store. An exception (network
// failure) falls back to stored data when there is any; HTTP errors pass through.
type CachedTrackRepository struct {
	upstream TrackRepository
	store    *TrackStore
	status   string
	logger   *log.Logger
}

// NewCachedTrackRepository caches upstream's content list under status.
func NewCachedTrackRepository(upstream TrackRepository, store *TrackStore, status string, logger *log.Logger) *CachedTrackRepository {
	if status == "" {
		status = DefaultStatus
	}
	if logger == nil {
		logger = log.Default()
	}
	return &CachedTrackRepository{upstream: upstream, store: store, status: status, logger: logger}
}

func (r *CachedTrackRepository) GetContents(ctx context.Context) services.Result[models.ContentResponse] {
	result := r.upstream.GetContents(ctx)

	switch result.Kind {
	case services.KindSuccess:
		if err := r.store.SaveTracks(r.status, result.Data.Data); err != nil {
			r.logger.Warn("failed to cache tracks", "error", err)
		}
	case services.KindException:
		tracks, err := r.store.ListTracks(r.status)
		if err != nil {
			r.logger.Warn("failed to read cached tracks", "error", err)
			return result
		}
		if len(tracks) == 0 {
			return result
		}
		r.logger.Info("serving cached tracks", "count", len(tracks), "cause", result.Err)
		return services.Success(models.ContentResponse{Data: tracks, Status: CachedStatus})
	}

	return result
}

func (r *CachedTrackRepository) GetContentDetail(ctx context.Context, id string) services.Result[models.ContentDetailResponse] {
	result := r.upstream.GetContentDetail(ctx, id)

	switch result.Kind {
	case services.KindSuccess:
		if err := r.store.SaveDetail(result.Data.Data); err != nil {
			r.logger.Warn("failed to cache track detail", "id", id, "error", err)
		}
	case services.KindException:
		detail, err := r.store.GetDetail(id)
		if err != nil {
			r.logger.Debug("no cached detail", "id", id, "error", err)
			return result
		}
		r.logger.Info("serving cached detail", "id", id, "cause", result.Err)
		return services.Success(models.ContentDetailResponse{Data: detail, Status: CachedStatus})
	}

	return result
}

// Store exposes the backing store for waveform caching and exports.
func (r *CachedTrackRepository) Store() *TrackStore { return r.store }
