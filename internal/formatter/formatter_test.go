package formatter

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/soundscript/internal/models"
	"github.com/desertthunder/soundscript/internal/shared"
	th "github.com/desertthunder/soundscript/internal/testing"
)

func sampleTracks() []models.Track {
	return []models.Track{
		{ID: "c1", Name: "Episode One", Artist: "Host A", Audio: "http://a/1.mp3", Images: []string{"http://a/1.png", "http://a/1b.png"}},
		{ID: "c2", Name: "Episode, Two", Audio: "http://a/2.mp3"},
	}
}

func sampleDetail() models.TrackDetail {
	return models.TrackDetail{
		ID:            "c1",
		Name:          "Episode One",
		Artist:        "Host A",
		Audio:         "http://a/1.mp3",
		Status:        "DRAFT",
		Summary:       "A short summary.",
		Tags:          []string{"news", "tech"},
		Transcription: "Hello and welcome.",
	}
}

func TestExporters(t *testing.T) {
	t.Run("TracksToCSV", func(t *testing.T) {
		data, err := TracksToCSV(sampleTracks())
		if err != nil {
			t.Fatalf("TracksToCSV failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "Position,ID,Name,Artist,Audio,HeroImage,Images") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "1,c1,Episode One,Host A,http://a/1.mp3,,http://a/1.png;http://a/1b.png") {
			t.Errorf("CSV missing first record, got: %s", output)
		}
		if !strings.Contains(output, `"Episode, Two"`) {
			t.Errorf("CSV should quote names with commas, got: %s", output)
		}
	})

	t.Run("TracksToMarkdown", func(t *testing.T) {
		data, err := TracksToMarkdown("Drafts", sampleTracks())
		if err != nil {
			t.Fatalf("TracksToMarkdown failed: %v", err)
		}

		output := string(data)

		if !strings.HasPrefix(output, "# Drafts\n") {
			t.Errorf("Markdown missing title, got: %s", output)
		}
		if !strings.Contains(output, "**Tracks**: 2") {
			t.Errorf("Markdown missing track count")
		}
		if !strings.Contains(output, "1. [Episode One](http://a/1.mp3) - Host A") {
			t.Errorf("Markdown missing first track, got: %s", output)
		}
		if !strings.Contains(output, "2. [Episode, Two](http://a/2.mp3)\n") {
			t.Errorf("Markdown second track should have no artist, got: %s", output)
		}
	})

	t.Run("TracksToText", func(t *testing.T) {
		data, err := TracksToText(sampleTracks())
		if err != nil {
			t.Fatalf("TracksToText failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "Tracks: 2") {
			t.Errorf("Text missing track count")
		}
		if !strings.Contains(output, "1. Host A - Episode One") || !strings.Contains(output, "2. Episode, Two") {
			t.Errorf("Text missing tracks, got: %s", output)
		}
	})

	t.Run("DetailToMarkdown", func(t *testing.T) {
		data, err := DetailToMarkdown(sampleDetail(), "cover.jpg")
		if err != nil {
			t.Fatalf("DetailToMarkdown failed: %v", err)
		}

		output := string(data)

		for _, want := range []string{
			"# Episode One",
			"![Cover](cover.jpg)",
			"**Tags**: news, tech",
			"## Summary\n\nA short summary.",
			"## Transcript\n\nHello and welcome.",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got: %s", want, output)
			}
		}
	})

	t.Run("DetailToMarkdown Missing Sections", func(t *testing.T) {
		data, _ := DetailToMarkdown(models.TrackDetail{ID: "x", Name: "Bare"}, "")

		output := string(data)
		if strings.Count(output, "_Not available._") != 2 {
			t.Errorf("expected placeholders for summary and transcript, got: %s", output)
		}
		if strings.Contains(output, "![Cover]") {
			t.Error("expected no cover without image")
		}
	})

	t.Run("DetailToText", func(t *testing.T) {
		data, err := DetailToText(sampleDetail())
		if err != nil {
			t.Fatalf("DetailToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Title: Episode One") || !strings.Contains(output, "Transcript:\nHello and welcome.") {
			t.Errorf("unexpected text export: %s", output)
		}
	})
}

func TestNormalizeFormat(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"csv", FormatCSV},
		{"Markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{"text", FormatText},
		{"", FormatJSON},
	}

	for _, tt := range tests {
		got, err := NormalizeFormat(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("NormalizeFormat(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}

	if _, err := NormalizeFormat("xml"); !errors.Is(err, shared.ErrInvalidFlag) {
		t.Errorf("expected ErrInvalidFlag, got %v", err)
	}
}

func TestRender(t *testing.T) {
	t.Run("Tracks JSON", func(t *testing.T) {
		data, err := RenderTracks(sampleTracks(), FormatJSON)
		if err != nil {
			t.Fatalf("RenderTracks failed: %v", err)
		}

		var decoded []models.Track
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(decoded) != 2 || decoded[0].ID != "c1" {
			t.Errorf("unexpected decoded tracks %+v", decoded)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		if _, err := RenderTracks(nil, "xml"); !errors.Is(err, shared.ErrUnsupportedType) {
			t.Errorf("expected ErrUnsupportedType, got %v", err)
		}
		if _, err := RenderDetail(sampleDetail(), FormatCSV); !errors.Is(err, shared.ErrUnsupportedType) {
			t.Errorf("expected ErrUnsupportedType for CSV detail, got %v", err)
		}
	})

	t.Run("Detail Formats", func(t *testing.T) {
		for _, format := range []string{FormatMarkdown, FormatText, FormatJSON} {
			data, err := RenderDetail(sampleDetail(), format)
			if err != nil {
				t.Errorf("%s: unexpected error %v", format, err)
			}
			if !strings.Contains(string(data), "Hello and welcome.") {
				t.Errorf("%s: missing transcript", format)
			}
		}
	})
}

func TestWriters(t *testing.T) {
	t.Run("WriteTracksExport", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.csv")

		got, err := WriteTracksExport(sampleTracks(), FormatCSV, path)
		if err != nil {
			t.Fatalf("WriteTracksExport failed: %v", err)
		}
		if got != path {
			t.Errorf("expected %s, got %s", path, got)
		}
		if !strings.Contains(th.MustReadFile(t, path), "Episode One") {
			t.Error("export file missing content")
		}
	})

	t.Run("WriteTracksExport Bad Directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "out.txt")

		if _, err := WriteTracksExport(sampleTracks(), FormatText, path); err == nil {
			t.Error("expected error writing to a missing directory")
		}
	})

	t.Run("WriteDetailMarkdown With Cover", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("jpeg-bytes"))
		}))
		defer server.Close()

		d := sampleDetail()
		d.HeroImage = server.URL + "/cover.jpg"
		dir := filepath.Join(t.TempDir(), "c1")

		result, err := WriteDetailMarkdown(d, dir)
		if err != nil {
			t.Fatalf("WriteDetailMarkdown failed: %v", err)
		}

		if len(result.Files) != 2 || result.CoverImage == "" {
			t.Errorf("expected cover and README, got %+v", result)
		}
		th.AssertFileExists(t, filepath.Join(dir, "README.md"))
		if !strings.Contains(th.MustReadFile(t, filepath.Join(dir, "README.md")), "![Cover](cover.jpg)") {
			t.Error("README should reference the cover")
		}
	})

	t.Run("WriteDetailMarkdown Cover Failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		d := sampleDetail()
		d.HeroImage = server.URL
		dir := t.TempDir()

		result, err := WriteDetailMarkdown(d, dir)
		if err != nil {
			t.Fatalf("WriteDetailMarkdown failed: %v", err)
		}
		if result.CoverImage != "" || len(result.Files) != 1 {
			t.Errorf("expected README only, got %+v", result)
		}
	})

	t.Run("WriteDetailText", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "c1.txt")

		if _, err := WriteDetailText(sampleDetail(), path); err != nil {
			t.Fatalf("WriteDetailText failed: %v", err)
		}
		if !strings.Contains(th.MustReadFile(t, path), "Summary:\nA short summary.") {
			t.Error("text export missing summary")
		}
	})

	t.Run("WriteManifest", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "manifest.json")

		if err := WriteManifest(map[string]int{"count": 2}, path); err != nil {
			t.Fatalf("WriteManifest failed: %v", err)
		}

		var decoded map[string]int
		data, _ := os.ReadFile(path)
		if err := json.Unmarshal(data, &decoded); err != nil || decoded["count"] != 2 {
			t.Errorf("unexpected manifest %s", data)
		}
	})

	t.Run("DownloadImage Empty URL", func(t *testing.T) {
		if _, err := DownloadImage(""); err == nil {
			t.Error("expected error for empty URL")
		}
	})
}
