package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/soundscript/internal/models"
	"github.com/desertthunder/soundscript/internal/repositories"
	"github.com/desertthunder/soundscript/internal/shared"
	"golang.org/x/time/rate"
)

// DetailResult is the outcome of fetching one content detail.
type DetailResult struct {
	Track       models.Track
	Detail      *models.TrackDetail
	Amplitudes  int   // Number of waveform values computed, 0 when skipped
	WaveformErr error // Waveform failures do not fail the item
	Error       error
}

// SyncResult contains all data from a catalog sync.
type SyncResult struct {
	Tracks         []models.Track
	Results        []DetailResult
	Cached         bool // The list came from the local store
	SuccessCount   int
	FailedCount    int
	WaveformsCount int
}

// SyncOpts configures [SyncEngine.Sync].
type SyncOpts struct {
	NumWorkers int     // Concurrent detail fetches (default: 4, max: 10)
	RateLimit  float64 // Detail requests per second (default: 5)
	Waveforms  bool    // Also compute waveform amplitudes
}

// SyncEngine defines long-running catalog operations.
type SyncEngine interface {
	// Sync fetches the track list and every content detail.
	Sync(ctx context.Context, progress chan<- ProgressUpdate, opts SyncOpts) (*SyncResult, error)

	// BulkExport writes each detail to files in opts.Format.
	BulkExport(ctx context.Context, progress chan<- ProgressUpdate, details []models.TrackDetail, opts BulkExportOpts) (*BulkExportResult, error)
}

// WaveformSource computes amplitudes for an audio URL.
type WaveformSource interface {
	Amplitudes(ctx context.Context, url string) ([]int, error)
}

// CatalogEngine implements [SyncEngine] over a [repositories.TrackRepository].
type CatalogEngine struct {
	repo      repositories.TrackRepository
	waveforms WaveformSource
	status    string
}

// NewCatalogEngine creates an engine. waveforms may be nil, disabling [SyncOpts.Waveforms].
func NewCatalogEngine(repo repositories.TrackRepository, waveforms WaveformSource, status string) *CatalogEngine {
	if status == "" {
		status = repositories.DefaultStatus
	}
	return &CatalogEngine{repo: repo, waveforms: waveforms, status: status}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *CatalogEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Sync fetches the track list, then every detail through a worker pool.
//
// Detail failures are recorded per item and reported as [shared.ErrAPIRequest]
// alongside the partial result.
func (e *CatalogEngine) Sync(ctx context.Context, progress chan<- ProgressUpdate, opts SyncOpts) (*SyncResult, error) {
	if e.repo == nil {
		return nil, fmt.Errorf("%w: repository not initialized", shared.ErrServiceUnavailable)
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	e.sendProgress(progress, fetchingListUpdate(e.status))

	list := e.repo.GetContents(ctx)
	if err := list.AsError(); err != nil {
		return nil, fmt.Errorf("failed to fetch contents: %w", err)
	}

	tracks := list.Data.Data
	result := &SyncResult{
		Tracks:  tracks,
		Cached:  list.Data.Status == repositories.CachedStatus,
		Results: make([]DetailResult, 0, len(tracks)),
	}
	e.sendProgress(progress, fetchedListUpdate(tracks, result.Cached))

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan models.Track, len(tracks))
	results := make(chan DetailResult, len(tracks))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.detailWorker(ctx, &wg, limiter, jobs, results, opts)
	}

	for _, tr := range tracks {
		jobs <- tr
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Error != nil {
			result.FailedCount++
			e.sendProgress(progress, detailFailedUpdate(completed, len(tracks), res.Track.Name, res.Error))
			continue
		}

		result.SuccessCount++
		e.sendProgress(progress, detailCompletedUpdate(completed, len(tracks), res.Track.Name))

		if opts.Waveforms && e.waveforms != nil {
			if res.WaveformErr == nil {
				result.WaveformsCount++
			}
			e.sendProgress(progress, waveformUpdate(completed, len(tracks), res.Track.Name, res.WaveformErr))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("sync interrupted: %w", err)
	}
	if result.FailedCount > 0 {
		return result, fmt.Errorf("%w: %d of %d details failed", shared.ErrAPIRequest, result.FailedCount, len(tracks))
	}
	return result, nil
}

// detailWorker fetches details for tracks from the jobs channel.
func (e *CatalogEngine) detailWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan models.Track,
	results chan<- DetailResult,
	opts SyncOpts,
) {
	defer wg.Done()

	for tr := range jobs {
		res := DetailResult{Track: tr}

		if err := limiter.Wait(ctx); err != nil {
			res.Error = fmt.Errorf("%w: %v", shared.ErrTimeout, err)
			results <- res
			continue
		}

		e.repo.GetContentDetail(ctx, tr.ID).
			OnSuccess(func(resp models.ContentDetailResponse) {
				detail := resp.Data
				res.Detail = &detail
			}).
			OnError(func(code int, message string) {
				res.Error = fmt.Errorf("%w: %d %s", shared.ErrAPIRequest, code, message)
			}).
			OnException(func(err error) {
				res.Error = fmt.Errorf("%w: %w", shared.ErrServiceUnavailable, err)
			})

		if res.Error == nil && opts.Waveforms && e.waveforms != nil {
			amps, err := e.waveforms.Amplitudes(ctx, tr.Audio)
			res.Amplitudes, res.WaveformErr = len(amps), err
		}

		results <- res
	}
}

var _ SyncEngine = (*CatalogEngine)(nil)
