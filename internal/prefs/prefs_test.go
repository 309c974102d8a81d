package prefs

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	database "wavepilot/internal/db"
	"wavepilot/internal/models"
	"wavepilot/internal/queue"
)

func testDB(t *testing.T) *database.Client {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.Preference{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return &database.Client{DB: db}
}

func TestLoadDefaultsOnEmptyDatabase(t *testing.T) {
	store := NewStore(testDB(t))

	settings, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := queue.Settings{}
	if settings != want {
		t.Errorf("expected fresh-install defaults, got %+v", settings)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := NewStore(testDB(t))

	saved := queue.Settings{Shuffle: true, Repeat: queue.RepeatAll, CrossfadeSeconds: 8}
	if err := store.Save(saved); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != saved {
		t.Errorf("round trip mismatch: saved %+v, loaded %+v", saved, loaded)
	}
}

func TestSaveUpsertsExistingRows(t *testing.T) {
	store := NewStore(testDB(t))

	if err := store.Save(queue.Settings{Shuffle: true, Repeat: queue.RepeatOne, CrossfadeSeconds: 4}); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := store.Save(queue.Settings{Shuffle: false, Repeat: queue.RepeatOff, CrossfadeSeconds: 0}); err != nil {
		t.Fatalf("second save: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != (queue.Settings{}) {
		t.Errorf("expected the second save to win, got %+v", loaded)
	}

	var count int64
	store.db.DB.Model(&models.Preference{}).Count(&count)
	if count != 3 {
		t.Errorf("expected 3 preference rows after upsert, got %d", count)
	}
}

func TestLoadIgnoresMalformedCrossfade(t *testing.T) {
	client := testDB(t)
	client.DB.Create(&models.Preference{Key: "crossfade_seconds", Value: "not-a-number"})

	settings, err := NewStore(client).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if settings.CrossfadeSeconds != 0 {
		t.Errorf("malformed value must fall back to default, got %d", settings.CrossfadeSeconds)
	}
}
