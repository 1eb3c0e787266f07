// Package waveform computes amplitude bars for the full player's seek display.
package waveform

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundscript/internal/repositories"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
)

// DefaultResolution is the number of amplitude values per second of audio.
const DefaultResolution = 4

const chunkSize = 512

// Compute reads streamer to the end and returns one peak value per 1/perSecond of audio, scaled to 0..100.
//
// A trailing partial bucket is included.
func Compute(streamer beep.Streamer, format beep.Format, perSecond int) ([]int, error) {
	if perSecond <= 0 {
		perSecond = DefaultResolution
	}
	bucket := max(format.SampleRate.N(time.Second)/perSecond, 1)

	var (
		amplitudes []int
		peak       float64
		filled     int
		buf        = make([][2]float64, chunkSize)
	)

	for {
		n, ok := streamer.Stream(buf)
		for _, sample := range buf[:n] {
			peak = math.Max(peak, math.Max(math.Abs(sample[0]), math.Abs(sample[1])))
			filled++
			if filled == bucket {
				amplitudes = append(amplitudes, scale(peak))
				peak, filled = 0, 0
			}
		}
		if !ok {
			break
		}
	}

	if filled > 0 {
		amplitudes = append(amplitudes, scale(peak))
	}

	if err := streamer.Err(); err != nil {
		return amplitudes, fmt.Errorf("failed to read audio: %w", err)
	}
	return amplitudes, nil
}

func scale(peak float64) int {
	return int(math.Round(min(peak, 1) * 100))
}

// Fetch downloads the mp3 at url and computes its amplitudes.
func Fetch(ctx context.Context, client *http.Client, url string, perSecond int) ([]int, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download audio: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to download audio: status %d", resp.StatusCode)
	}

	streamer, format, err := mp3.Decode(resp.Body)
	if err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to decode audio: %w", err)
	}
	defer streamer.Close()

	return Compute(streamer, format, perSecond)
}

// Source serves amplitudes from the track store, computing and storing them on a miss.
type Source struct {
	store      *repositories.TrackStore
	client     *http.Client
	resolution int
	logger     *log.Logger
	fetch      func(ctx context.Context, url string) ([]int, error)
}

// NewSource creates a Source. A nil store disables caching.
func NewSource(store *repositories.TrackStore, client *http.Client, resolution int, logger *log.Logger) *Source {
	if resolution <= 0 {
		resolution = DefaultResolution
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &Source{store: store, client: client, resolution: resolution, logger: logger}
	s.fetch = func(ctx context.Context, url string) ([]int, error) {
		return Fetch(ctx, s.client, url, s.resolution)
	}
	return s
}

func (s *Source) Resolution() int { return s.resolution }

// Amplitudes returns the waveform for the audio at url.
func (s *Source) Amplitudes(ctx context.Context, url string) ([]int, error) {
	if s.store != nil {
		cached, ok, err := s.store.GetWaveform(url, s.resolution)
		if err != nil {
			s.logger.Warn("waveform cache read failed", "url", url, "error", err)
		} else if ok {
			return cached, nil
		}
	}

	amplitudes, err := s.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	if s.store != nil {
		if err := s.store.SaveWaveform(url, s.resolution, amplitudes); err != nil {
			s.logger.Warn("waveform cache write failed", "url", url, "error", err)
		}
	}
	return amplitudes, nil
}
