package server

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/desertthunder/soundscript/internal/models"
	"github.com/desertthunder/soundscript/internal/shared"
)

// Seeder is the write side of the track store.
type Seeder interface {
	SaveTracks(status string, tracks []models.Track) error
	SaveDetail(d models.TrackDetail) error
}

// LoadSeedFile reads a JSON array of content details.
func LoadSeedFile(path string) ([]models.TrackDetail, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var details []models.TrackDetail
	if err := json.Unmarshal(data, &details); err != nil {
		return nil, fmt.Errorf("%w: seed file %s: %v", shared.ErrInvalidInput, path, err)
	}
	return details, nil
}

// Seed stores details under status, replacing that status's list.
//
// A detail's own Status overrides status for its list entry.
func Seed(store Seeder, status string, details []models.TrackDetail) error {
	lists := map[string][]models.Track{}
	order := []string{}

	for _, d := range details {
		if d.ID == "" {
			return fmt.Errorf("%w: seed entry %q has no _id", shared.ErrInvalidInput, d.Name)
		}
		s := status
		if d.Status != "" {
			s = d.Status
		}
		if _, ok := lists[s]; !ok {
			order = append(order, s)
		}
		lists[s] = append(lists[s], d.Track())

		if err := store.SaveDetail(d); err != nil {
			return fmt.Errorf("failed to save detail %s: %w", d.ID, err)
		}
	}

	for _, s := range order {
		if err := store.SaveTracks(s, lists[s]); err != nil {
			return fmt.Errorf("failed to save %s tracks: %w", s, err)
		}
	}
	return nil
}
