package catalog

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"gorm.io/gorm/clause"

	database "wavepilot/internal/db"
	"wavepilot/internal/models"
)

var audioExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".ogg":  true,
	".m4a":  true,
	".wav":  true,
}

// Scanner seeds the catalog from a local music directory. Dev/test
// convenience; production catalogs arrive from the catalog service.
type Scanner struct {
	db *database.Client
}

func NewScanner(db *database.Client) *Scanner {
	return &Scanner{db: db}
}

// Scan walks dir, probes tags and upserts one Track per audio file keyed
// on its source URI.
func (s *Scanner) Scan(dir string) (int, error) {
	count := 0

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		ext := strings.ToLower(filepath.Ext(path))
		if !audioExtensions[ext] {
			return nil
		}

		track := s.probe(path, ext)
		res := s.db.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "source_uri"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "artist", "album", "format"}),
		}).Create(&track)
		if res.Error != nil {
			log.Printf("⚠️ Skipping %s: %v", path, res.Error)
			return nil
		}
		count++
		return nil
	})

	if err != nil {
		return count, err
	}
	log.Printf("✅ Catalog scan complete: %d tracks", count)
	return count, nil
}

func (s *Scanner) probe(path, ext string) models.Track {
	track := models.Track{
		SourceURI: "local:" + path,
		Format:    strings.TrimPrefix(ext, "."),
		Title:     cleanFilename(filepath.Base(path)),
	}

	f, err := os.Open(path)
	if err != nil {
		return track
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		// Untagged files keep their filename-derived title.
		return track
	}

	if t := meta.Title(); t != "" {
		track.Title = t
	}
	track.Artist = meta.Artist()
	track.Album = meta.Album()
	return track
}

func cleanFilename(name string) string {
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return strings.ReplaceAll(name, "_", " ")
}
