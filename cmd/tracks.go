package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/soundscript/internal/formatter"
	"github.com/desertthunder/soundscript/internal/models"
	"github.com/desertthunder/soundscript/internal/repositories"
	"github.com/desertthunder/soundscript/internal/shared"
	"github.com/desertthunder/soundscript/internal/tasks"
	"github.com/urfave/cli/v3"
)

// TracksList prints the track list for a status.
func (r *Runner) TracksList(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.repository(cmd.String("status"))
	if err != nil {
		return err
	}

	res := repo.GetContents(ctx)
	if err := res.AsError(); err != nil {
		return fmt.Errorf("failed to fetch contents: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(res.Data, cmd.Bool("pretty"))
	}

	title := fmt.Sprintf("Tracks (%d)", len(res.Data.Data))
	if res.Data.Status == repositories.CachedStatus {
		title += " · offline, from cache"
	}
	r.writePlainHeader(title)
	for i, t := range res.Data.Data {
		line := fmt.Sprintf("%3d. %s", i+1, t.Name)
		if t.Artist != "" {
			line += " · " + t.Artist
		}
		r.writePlain("%s\n     id: %s\n", line, t.ID)
	}
	return nil
}

// TracksShow prints one content detail in the requested format.
func (r *Runner) TracksShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.String("id")
	if id == "" {
		return fmt.Errorf("%w: --id is required", shared.ErrMissingArgument)
	}

	format, err := formatter.NormalizeFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if format == formatter.FormatCSV {
		return fmt.Errorf("%w: details cannot be shown as csv", shared.ErrInvalidFlag)
	}

	repo, err := r.repository("")
	if err != nil {
		return err
	}

	res := repo.GetContentDetail(ctx, id)
	if err := res.AsError(); err != nil {
		return fmt.Errorf("failed to fetch content %s: %w", id, err)
	}

	if format == formatter.FormatJSON {
		return r.writeJSON(res.Data.Data, cmd.Bool("pretty"))
	}

	data, err := formatter.RenderDetail(res.Data.Data, format)
	if err != nil {
		return err
	}
	return r.writePlain("%s\n", data)
}

// TracksSync fetches the list and every detail through the catalog engine, caching them in the store.
func (r *Runner) TracksSync(ctx context.Context, cmd *cli.Command) error {
	status := r.statusOr(cmd.String("status"))
	repo, err := r.repository(status)
	if err != nil {
		return err
	}

	engine := tasks.NewCatalogEngine(repo, r.waveforms(repo.Store(), 0), status)
	result, err := r.runSync(ctx, engine, tasks.SyncOpts{
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
		Waveforms:  cmd.Bool("waveforms"),
	})
	if err != nil && (result == nil || !errors.Is(err, shared.ErrAPIRequest)) {
		return err
	}

	r.writePlainln("✓ Sync complete")
	r.writePlain("  Tracks:   %d\n", len(result.Tracks))
	r.writePlain("  Details:  %d ok, %d failed\n", result.SuccessCount, result.FailedCount)
	if cmd.Bool("waveforms") {
		r.writePlain("  Waveforms: %d\n", result.WaveformsCount)
	}
	if result.Cached {
		r.writePlain("  Note: the backend was unreachable, the list came from the local cache\n")
	}
	return err
}

// TracksExport writes the track list to a file.
func (r *Runner) TracksExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.NormalizeFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	repo, err := r.repository(cmd.String("status"))
	if err != nil {
		return err
	}

	res := repo.GetContents(ctx)
	if err := res.AsError(); err != nil {
		return fmt.Errorf("failed to fetch contents: %w", err)
	}

	path, err := formatter.WriteTracksExport(res.Data.Data, format, cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("exported tracks", "count", len(res.Data.Data), "format", format, "path", path)
	return r.writePlain("✓ Exported %d tracks to %s\n", len(res.Data.Data), path)
}

// TracksExportDetails syncs every detail and writes them to a directory with a manifest.
func (r *Runner) TracksExportDetails(ctx context.Context, cmd *cli.Command) error {
	status := r.statusOr(cmd.String("status"))
	repo, err := r.repository(status)
	if err != nil {
		return err
	}

	engine := tasks.NewCatalogEngine(repo, nil, status)
	synced, syncErr := r.runSync(ctx, engine, tasks.SyncOpts{})
	if syncErr != nil && (synced == nil || !errors.Is(syncErr, shared.ErrAPIRequest)) {
		return syncErr
	}

	details := make([]models.TrackDetail, 0, synced.SuccessCount)
	for _, res := range synced.Results {
		if res.Detail != nil {
			details = append(details, *res.Detail)
		}
	}

	progress := make(chan tasks.ProgressUpdate, 32)
	done := r.printProgress(progress)

	result, err := engine.BulkExport(ctx, progress, details, tasks.BulkExportOpts{
		Format:     cmd.String("format"),
		OutputDir:  cmd.String("output"),
		NumWorkers: cmd.Int("workers"),
	})
	close(progress)
	<-done
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	r.writePlainln("✓ Exported %d/%d details as %s", result.SuccessfulExports, result.TotalItems, result.Format)
	r.writePlain("  Directory: %s\n", result.OutputDirectory)
	r.writePlain("  Manifest:  %s\n", result.ManifestPath)
	if synced.FailedCount > 0 {
		r.writePlain("  Skipped %d tracks whose details could not be fetched\n", synced.FailedCount)
	}
	return syncErr
}

// TracksWaveform prints the amplitudes of one track's audio.
func (r *Runner) TracksWaveform(ctx context.Context, cmd *cli.Command) error {
	id := cmd.String("id")
	if id == "" {
		return fmt.Errorf("%w: --id is required", shared.ErrMissingArgument)
	}

	repo, err := r.repository("")
	if err != nil {
		return err
	}

	res := repo.GetContentDetail(ctx, id)
	if err := res.AsError(); err != nil {
		return fmt.Errorf("failed to fetch content %s: %w", id, err)
	}
	audio := res.Data.Data.Audio
	if audio == "" {
		return fmt.Errorf("%w: content %s has no audio", shared.ErrInvalidInput, id)
	}

	src := r.waveforms(repo.Store(), cmd.Int("resolution"))
	amplitudes, err := src.Amplitudes(ctx, audio)
	if err != nil {
		return fmt.Errorf("failed to compute waveform: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(amplitudes, false)
	}

	values := make([]string, len(amplitudes))
	for i, a := range amplitudes {
		values[i] = fmt.Sprint(a)
	}
	r.writePlain("%d values at %d/s\n", len(amplitudes), src.Resolution())
	return r.writePlain("%s\n", strings.Join(values, " "))
}

// TracksOpen hands a track's audio (or hero image) URL to the desktop.
func (r *Runner) TracksOpen(ctx context.Context, cmd *cli.Command) error {
	id := cmd.String("id")
	if id == "" {
		return fmt.Errorf("%w: --id is required", shared.ErrMissingArgument)
	}

	repo, err := r.repository("")
	if err != nil {
		return err
	}

	res := repo.GetContentDetail(ctx, id)
	if err := res.AsError(); err != nil {
		return fmt.Errorf("failed to fetch content %s: %w", id, err)
	}

	url := res.Data.Data.Audio
	if cmd.Bool("image") {
		url = res.Data.Data.HeroImage
		if url == "" && len(res.Data.Data.Images) > 0 {
			url = res.Data.Data.Images[0]
		}
	}

	if err := shared.OpenURL(url); err != nil {
		return err
	}
	return r.writePlain("Opened %s\n", url)
}

// runSync runs engine.Sync while printing progress.
func (r *Runner) runSync(ctx context.Context, engine tasks.SyncEngine, opts tasks.SyncOpts) (*tasks.SyncResult, error) {
	progress := make(chan tasks.ProgressUpdate, 32)
	done := r.printProgress(progress)

	result, err := engine.Sync(ctx, progress, opts)
	close(progress)
	<-done

	if err != nil {
		return result, fmt.Errorf("sync failed: %w", err)
	}
	return result, nil
}

// printProgress writes each update's message until progress is closed.
func (r *Runner) printProgress(progress <-chan tasks.ProgressUpdate) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()
	return done
}
