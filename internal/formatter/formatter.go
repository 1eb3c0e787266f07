// package formatter renders tracks and content details as CSV, Markdown and plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/soundscript/internal/models"
	"github.com/desertthunder/soundscript/internal/shared"
)

// Supported export formats
const (
	FormatCSV      = "csv"
	FormatMarkdown = "md"
	FormatText     = "txt"
	FormatJSON     = "json"
)

// NormalizeFormat maps aliases such as "markdown" onto the Format constants.
func NormalizeFormat(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	case "json", "":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
}

// TracksToCSV converts tracks to CSV with columns: Position, ID, Name, Artist, Audio, HeroImage, Images
func TracksToCSV(tracks []models.Track) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "ID", "Name", "Artist", "Audio", "HeroImage", "Images"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, track := range tracks {
		record := []string{
			strconv.Itoa(i + 1),
			track.ID,
			track.Name,
			track.Artist,
			track.Audio,
			track.HeroImage,
			strings.Join(track.Images, ";"),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// TracksToMarkdown renders a numbered track list under title
func TracksToMarkdown(title string, tracks []models.Track) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n\n", len(tracks)))

	for i, track := range tracks {
		buf.WriteString(fmt.Sprintf("%d. [%s](%s)%s\n", i+1, track.Name, track.Audio, artistSuffix(track.Artist)))
	}

	return buf.Bytes(), nil
}

// TracksToText renders one "n. Artist - Name" line per track
func TracksToText(tracks []models.Track) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", len(tracks)))
	for i, track := range tracks {
		if track.Artist != "" {
			buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, track.Artist, track.Name))
		} else {
			buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, track.Name))
		}
	}

	return buf.Bytes(), nil
}

// DetailToMarkdown renders a content detail with optional cover image
func DetailToMarkdown(d models.TrackDetail, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", d.Name))

	if imageFilename != "" {
		buf.WriteString(fmt.Sprintf("![Cover](%s)\n\n", imageFilename))
	}

	if d.Artist != "" {
		buf.WriteString(fmt.Sprintf("**Artist**: %s\n", d.Artist))
	}
	if d.Status != "" {
		buf.WriteString(fmt.Sprintf("**Status**: %s\n", d.Status))
	}
	if len(d.Tags) > 0 {
		buf.WriteString(fmt.Sprintf("**Tags**: %s\n", strings.Join(d.Tags, ", ")))
	}
	buf.WriteString(fmt.Sprintf("**Audio**: %s\n\n", d.Audio))

	buf.WriteString("## Summary\n\n")
	buf.WriteString(orPlaceholder(d.Summary))
	buf.WriteString("\n\n## Transcript\n\n")
	buf.WriteString(orPlaceholder(d.Transcription))
	buf.WriteString("\n")

	return buf.Bytes(), nil
}

// DetailToText renders a content detail as plain text
func DetailToText(d models.TrackDetail) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Title: %s\n", d.Name))
	if d.Artist != "" {
		buf.WriteString(fmt.Sprintf("Artist: %s\n", d.Artist))
	}
	if len(d.Tags) > 0 {
		buf.WriteString(fmt.Sprintf("Tags: %s\n", strings.Join(d.Tags, ", ")))
	}

	buf.WriteString("\nSummary:\n")
	buf.WriteString(textOr(d.Summary, "(not available)"))
	buf.WriteString("\n\nTranscript:\n")
	buf.WriteString(textOr(d.Transcription, "(not available)"))
	buf.WriteString("\n")

	return buf.Bytes(), nil
}

// RenderTracks renders tracks in one of the Format constants
func RenderTracks(tracks []models.Track, format string) ([]byte, error) {
	switch format {
	case FormatCSV:
		return TracksToCSV(tracks)
	case FormatMarkdown:
		return TracksToMarkdown("Tracks", tracks)
	case FormatText:
		return TracksToText(tracks)
	case FormatJSON:
		return shared.MarshalJSON(tracks, true)
	default:
		return nil, fmt.Errorf("%w: %s", shared.ErrUnsupportedType, format)
	}
}

// RenderDetail renders a content detail in one of the Format constants except CSV
func RenderDetail(d models.TrackDetail, format string) ([]byte, error) {
	switch format {
	case FormatMarkdown:
		return DetailToMarkdown(d, "")
	case FormatText:
		return DetailToText(d)
	case FormatJSON:
		return shared.MarshalJSON(d, true)
	default:
		return nil, fmt.Errorf("%w: %s", shared.ErrUnsupportedType, format)
	}
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// WriteTracksExport writes tracks to path in format.
//
// Defaults to tracks.{format} in the working directory.
func WriteTracksExport(tracks []models.Track, format, path string) (string, error) {
	if path == "" {
		path = "tracks." + format
	}

	data, err := RenderTracks(tracks, format)
	if err != nil {
		return "", fmt.Errorf("failed to generate export: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

// MarkdownExportResult contains information about files created by WriteDetailMarkdown
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteDetailMarkdown exports a content detail to Markdown in a dedicated directory.
//
// Directory name defaults to the content ID.
// When the detail has a hero image it is downloaded next to the document; failures only skip the cover.
// Creates a directory structure: {dir}/README.md and optionally {dir}/cover.jpg
func WriteDetailMarkdown(d models.TrackDetail, outputDir string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = d.ID
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if d.HeroImage != "" {
		imageData, err := DownloadImage(d.HeroImage)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to download cover image: %v\n", err)
		} else {
			coverImageFilename = "cover.jpg"
			coverImagePath := filepath.Join(outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save cover image: %v\n", err)
				coverImageFilename = ""
			} else {
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdData, err := DetailToMarkdown(d, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteDetailText exports a content detail to plain text.
//
// Defaults to {detail.ID}_transcript.txt as the filename.
func WriteDetailText(d models.TrackDetail, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s_transcript.txt", d.ID)
	}

	textData, err := DetailToText(d)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}

// WriteManifest writes v as indented JSON to path
func WriteManifest(v any, path string) error {
	data, err := shared.MarshalJSON(v, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

func artistSuffix(artist string) string {
	if artist == "" {
		return ""
	}
	return " - " + artist
}

func orPlaceholder(s string) string {
	return textOr(s, "_Not available._")
}

func textOr(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
