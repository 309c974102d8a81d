package telemetry

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	database "wavepilot/internal/db"
	"wavepilot/internal/models"
)

// Metrics
var (
	playsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "player_plays_started_total", Help: "Play sessions started"},
	)
	playsCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "player_plays_completed_total", Help: "Tracks played to natural end"},
	)
	reportsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "player_telemetry_dropped_total", Help: "Telemetry reports dropped on error"},
	)
)

func RegisterMetrics() {
	prometheus.MustRegister(playsStarted, playsCompleted, reportsDropped)
}

// Reporter receives start/periodic/terminal listening reports. Playback
// never blocks on a reporter: callers log and drop on error.
type Reporter interface {
	// Start opens a play session and returns its opaque playId.
	Start(identity string, trackID uint, source string) (string, error)
	// Report updates a session with elapsed seconds and the completion flag.
	Report(playID string, elapsedSeconds float64, completed bool) error
}

// Store persists play records through gorm.
type Store struct {
	db *database.Client
}

func NewStore(db *database.Client) *Store {
	return &Store{db: db}
}

func (s *Store) Start(identity string, trackID uint, source string) (string, error) {
	rec := models.PlayRecord{
		PlayID:   uuid.NewString(),
		TrackID:  trackID,
		Identity: identity,
		Source:   source,
	}
	if err := s.db.DB.Create(&rec).Error; err != nil {
		reportsDropped.Inc()
		return "", fmt.Errorf("create play record: %w", err)
	}
	playsStarted.Inc()
	return rec.PlayID, nil
}

func (s *Store) Report(playID string, elapsedSeconds float64, completed bool) error {
	res := s.db.DB.Model(&models.PlayRecord{}).
		Where("play_id = ?", playID).
		Updates(map[string]interface{}{
			"duration":  elapsedSeconds,
			"completed": completed,
		})
	if res.Error != nil {
		reportsDropped.Inc()
		return fmt.Errorf("update play record: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		log.Printf("⚠️ Telemetry report for unknown playId %s", playID)
	}
	if completed {
		playsCompleted.Inc()
	}
	return nil
}
