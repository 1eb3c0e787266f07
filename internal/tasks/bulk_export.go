package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/soundscript/internal/formatter"
	"github.com/desertthunder/soundscript/internal/models"
	"github.com/desertthunder/soundscript/internal/shared"
)

// BulkExportOpts contains configuration for bulk detail exports.
type BulkExportOpts struct {
	Format     string // Export format: json, md, txt
	OutputDir  string // Base output directory (default: transcripts_{epoch})
	NumWorkers int    // Concurrent workers (default: 5)
}

// ExportResult is the outcome of exporting one content detail.
type ExportResult struct {
	ContentID string   `json:"content_id"`
	Name      string   `json:"name"`
	Success   bool     `json:"success"`
	Files     []string `json:"files,omitempty"`
	Error     error    `json:"-"`
	ErrorText string   `json:"error,omitempty"`
}

// BulkExportResult summarises a bulk export and is written as the manifest.
type BulkExportResult struct {
	Format            string         `json:"format"`
	TotalItems        int            `json:"total_items"`
	SuccessfulExports int            `json:"successful_exports"`
	FailedExports     int            `json:"failed_exports"`
	OutputDirectory   string         `json:"output_directory"`
	ManifestPath      string         `json:"-"`
	Results           []ExportResult `json:"results"`
}

// BulkExport exports content details concurrently and writes export_manifest.json.
func (e *CatalogEngine) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	details []models.TrackDetail,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	format, err := formatter.NormalizeFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	if format == formatter.FormatCSV {
		return nil, fmt.Errorf("%w: details cannot be exported as csv", shared.ErrInvalidFlag)
	}

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("transcripts_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		Format:          format,
		TotalItems:      len(details),
		OutputDirectory: opts.OutputDir,
		Results:         make([]ExportResult, 0, len(details)),
	}

	jobs := make(chan models.TrackDetail, len(details))
	results := make(chan ExportResult, len(details))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, format, opts.OutputDir)
	}

	for _, d := range details {
		jobs <- d
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		if res.Error != nil {
			res.ErrorText = res.Error.Error()
		}
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(details), res.Name, len(res.Files)))
		} else {
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(completed, len(details), res.Name, res.Error))
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker is a worker goroutine that exports details from the jobs channel.
func (e *CatalogEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan models.TrackDetail,
	results chan<- ExportResult,
	format, outputDir string,
) {
	defer wg.Done()

	for d := range jobs {
		if err := ctx.Err(); err != nil {
			results <- ExportResult{ContentID: d.ID, Name: d.Name, Error: err}
			continue
		}
		results <- exportSingleDetail(d, format, outputDir)
	}
}

// exportSingleDetail exports a single detail to the appropriate format.
func exportSingleDetail(d models.TrackDetail, format, outputDir string) ExportResult {
	result := ExportResult{
		ContentID: d.ID,
		Name:      d.Name,
		Files:     []string{},
	}

	switch format {
	case formatter.FormatMarkdown:
		mdRes, err := formatter.WriteDetailMarkdown(d, filepath.Join(outputDir, d.ID))
		if err != nil {
			result.Error = fmt.Errorf("markdown export failed: %w", err)
			return result
		}
		result.Files = mdRes.Files
	case formatter.FormatText:
		path, err := formatter.WriteDetailText(d, filepath.Join(outputDir, d.ID+"_transcript.txt"))
		if err != nil {
			result.Error = fmt.Errorf("text export failed: %w", err)
			return result
		}
		result.Files = []string{path}
	default:
		jsonPath := filepath.Join(outputDir, d.ID+".json")
		data, err := shared.MarshalJSON(d, true)
		if err != nil {
			result.Error = fmt.Errorf("JSON marshal failed: %w", err)
			return result
		}
		if err := os.WriteFile(jsonPath, data, 0644); err != nil {
			result.Error = fmt.Errorf("JSON write failed: %w", err)
			return result
		}
		result.Files = []string{jsonPath}
	}

	result.Success = true
	return result
}
