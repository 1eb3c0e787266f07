package repositories

import (
	"context"

	"github.com/desertthunder/soundscript/internal/models"
	"github.com/desertthunder/soundscript/internal/services"
)

// DefaultStatus is the content status listed when none is configured.
const DefaultStatus string = "DRAFT"

// TrackRepository is the source of content for screens.
type TrackRepository interface {
	GetContents(ctx context.Context) services.Result[models.ContentResponse]
	GetContentDetail(ctx context.Context, id string) services.Result[models.ContentDetailResponse]
}

// ContentAPI is the subset of [services.ContentService] the remote repository needs.
type ContentAPI interface {
	GetContents(ctx context.Context, status string) services.Result[models.ContentResponse]
	GetContentDetail(ctx context.Context, id string) services.Result[models.ContentDetailResponse]
}

// RemoteTrackRepository implements [TrackRepository] over HTTP.
type RemoteTrackRepository struct {
	api    ContentAPI
	status string
}

// NewRemoteTrackRepository lists content with status, or [DefaultStatus] when empty.
func NewRemoteTrackRepository(api ContentAPI, status string) *RemoteTrackRepository {
	if status == "" {
		status = DefaultStatus
	}
	return &RemoteTrackRepository{api: api, status: status}
}

func (r *RemoteTrackRepository) Status() string { return r.status }

func (r *RemoteTrackRepository) GetContents(ctx context.Context) services.Result[models.ContentResponse] {
	return r.api.GetContents(ctx, r.status)
}

func (r *RemoteTrackRepository) GetContentDetail(ctx context.Context, id string) services.Result[models.ContentDetailResponse] {
	return r.api.GetContentDetail(ctx, id)
}
