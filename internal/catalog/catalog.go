// Package catalog is the read-only track supply. The playback core looks
// tracks up here; writing rows is the scanner's (dev) or an external
// service's job.
package catalog

import (
	"fmt"

	database "wavepilot/internal/db"
	"wavepilot/internal/models"
)

type Service struct {
	db *database.Client
}

func New(db *database.Client) *Service {
	return &Service{db: db}
}

func (s *Service) ByID(id uint) (models.Track, error) {
	var t models.Track
	if err := s.db.DB.First(&t, id).Error; err != nil {
		return models.Track{}, fmt.Errorf("track %d: %w", id, err)
	}
	return t, nil
}

func (s *Service) ByIDs(ids []uint) ([]models.Track, error) {
	var rows []models.Track
	if err := s.db.DB.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("tracks: %w", err)
	}

	// Preserve the requested order: a queue is ordered, the DB isn't.
	byID := make(map[uint]models.Track, len(rows))
	for _, t := range rows {
		byID[t.ID] = t
	}
	out := make([]models.Track, 0, len(ids))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Service) List(limit int) ([]models.Track, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var rows []models.Track
	err := s.db.DB.Order("artist, album, title").Limit(limit).Find(&rows).Error
	return rows, err
}
