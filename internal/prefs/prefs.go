// Package prefs persists the three scalar player preferences. Missing
// rows fall back to defaults, so a fresh database behaves like a fresh
// install.
package prefs

import (
	"fmt"
	"strconv"

	"gorm.io/gorm/clause"

	database "wavepilot/internal/db"
	"wavepilot/internal/models"
	"wavepilot/internal/queue"
)

const (
	keyShuffle   = "shuffle"
	keyRepeat    = "repeat"
	keyCrossfade = "crossfade_seconds"
)

type Store struct {
	db *database.Client
}

func NewStore(db *database.Client) *Store {
	return &Store{db: db}
}

func (s *Store) Load() (queue.Settings, error) {
	var rows []models.Preference
	if err := s.db.DB.Find(&rows).Error; err != nil {
		return queue.Settings{}, fmt.Errorf("load preferences: %w", err)
	}

	settings := queue.Settings{} // defaults: shuffle off, repeat off, no crossfade
	for _, row := range rows {
		switch row.Key {
		case keyShuffle:
			settings.Shuffle = row.Value == "true"
		case keyRepeat:
			settings.Repeat = queue.ParseRepeatMode(row.Value)
		case keyCrossfade:
			if v, err := strconv.Atoi(row.Value); err == nil {
				settings.CrossfadeSeconds = v
			}
		}
	}
	return settings, nil
}

func (s *Store) Save(settings queue.Settings) error {
	rows := []models.Preference{
		{Key: keyShuffle, Value: strconv.FormatBool(settings.Shuffle)},
		{Key: keyRepeat, Value: settings.Repeat.String()},
		{Key: keyCrossfade, Value: strconv.Itoa(settings.CrossfadeSeconds)},
	}
	return s.db.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rows).Error
}

var _ queue.PreferenceStore = (*Store)(nil)
