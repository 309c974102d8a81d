package catalog

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	database "wavepilot/internal/db"
	"wavepilot/internal/models"
)

func testDB(t *testing.T) *database.Client {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.Track{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return &database.Client{DB: db}
}

func seed(t *testing.T, client *database.Client, titles ...string) []models.Track {
	t.Helper()
	tracks := make([]models.Track, len(titles))
	for i, title := range titles {
		tracks[i] = models.Track{Title: title, Artist: "Artist", SourceURI: "local:/music/" + title + ".flac"}
	}
	if err := client.DB.Create(&tracks).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	return tracks
}

func TestByID(t *testing.T) {
	client := testDB(t)
	seeded := seed(t, client, "alpha", "beta")
	svc := New(client)

	got, err := svc.ByID(seeded[1].ID)
	if err != nil {
		t.Fatalf("byID: %v", err)
	}
	if got.Title != "beta" {
		t.Errorf("expected beta, got %q", got.Title)
	}

	if _, err := svc.ByID(9999); err == nil {
		t.Error("expected an error for an unknown id")
	}
}

func TestByIDsPreservesRequestedOrder(t *testing.T) {
	client := testDB(t)
	seeded := seed(t, client, "alpha", "beta", "gamma")
	svc := New(client)

	// Request in reverse of insertion: the DB would return id order.
	want := []uint{seeded[2].ID, seeded[0].ID, seeded[1].ID}
	got, err := svc.ByIDs(want)
	if err != nil {
		t.Fatalf("byIDs: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 tracks, got %d", len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("slot %d: expected id %d, got %d", i, id, got[i].ID)
		}
	}
}

func TestByIDsSkipsUnknownIDs(t *testing.T) {
	client := testDB(t)
	seeded := seed(t, client, "alpha")
	svc := New(client)

	got, err := svc.ByIDs([]uint{seeded[0].ID, 9999})
	if err != nil {
		t.Fatalf("byIDs: %v", err)
	}
	if len(got) != 1 || got[0].ID != seeded[0].ID {
		t.Errorf("expected only the known track, got %v", got)
	}
}

func TestListOrdersAndLimits(t *testing.T) {
	client := testDB(t)
	seed(t, client, "charlie", "alpha", "bravo")
	svc := New(client)

	got, err := svc.List(2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected limit 2, got %d", len(got))
	}
	if got[0].Title != "alpha" || got[1].Title != "bravo" {
		t.Errorf("expected title order alpha,bravo; got %q,%q", got[0].Title, got[1].Title)
	}
}
