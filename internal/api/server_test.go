package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"wavepilot/internal/analyzer"
	"wavepilot/internal/catalog"
	"wavepilot/internal/config"
	database "wavepilot/internal/db"
	"wavepilot/internal/gate"
	"wavepilot/internal/models"
	"wavepilot/internal/queue"
)

type grantAllGate struct{}

func (grantAllGate) Evaluate(ctx context.Context, identity string, rule gate.Rule) (gate.Decision, error) {
	return gate.Decision{HasAccess: true}, nil
}

type nullReporter struct{ n int }

func (r *nullReporter) Start(identity string, trackID uint, source string) (string, error) {
	r.n++
	return fmt.Sprintf("play-%d", r.n), nil
}

func (r *nullReporter) Report(playID string, elapsed float64, completed bool) error { return nil }

type silentSource struct{ id string }

func (s *silentSource) ID() string { return s.id }

func (s *silentSource) ReadWindow(dst []float64) (int, error) { return len(dst), nil }

func (s *silentSource) Rewind() error { return nil }

func (s *silentSource) Close() error { return nil }

func newTestServer(t *testing.T) (*Server, []models.Track) {
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
	client := &database.Client{DB: db}

	tracks := []models.Track{
		{Title: "One", Artist: "A", SourceURI: "local:/music/one.pcm"},
		{Title: "Two", Artist: "A", SourceURI: "local:/music/two.pcm"},
	}
	if err := db.Create(&tracks).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	seq := 0
	manager := queue.New(queue.Deps{
		Gate:      grantAllGate{},
		Telemetry: &nullReporter{},
		Resolver: queue.ResolverFunc(func(uri string) (queue.PlayableSource, error) {
			seq++
			return &silentSource{id: fmt.Sprintf("src-%d", seq)}, nil
		}),
		Clock:       &queue.MockClock{MockTime: time.Now()},
		ReportEvery: time.Hour,
	})
	t.Cleanup(manager.Close)

	cfg := &config.Config{}
	cfg.Server.JWTSecret = "test-secret"

	return New(cfg, manager, analyzer.New(analyzer.Options{}), catalog.New(client)), tracks
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	w := doJSON(t, s, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestPlayAndReadBackState(t *testing.T) {
	s, tracks := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/v1/player/play", map[string]any{"track_id": tracks[0].ID})
	if w.Code != http.StatusOK {
		t.Fatalf("play: expected 200, got %d (%s)", w.Code, w.Body)
	}

	w = doJSON(t, s, http.MethodGet, "/api/v1/player", nil)
	var snap struct {
		State   string `json:"state"`
		Playing bool   `json:"playing"`
		Current *struct {
			Track struct {
				Title string `json:"title"`
			} `json:"track"`
		} `json:"current"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if !snap.Playing || snap.State != "Playing" {
		t.Errorf("expected playing state, got %+v", snap)
	}
	if snap.Current == nil || snap.Current.Track.Title != "One" {
		t.Errorf("expected track One current, got %+v", snap.Current)
	}
}

func TestPlayUnknownTrackIs404(t *testing.T) {
	s, _ := newTestServer(t)
	w := doJSON(t, s, http.MethodPost, "/api/v1/player/play", map[string]any{"track_id": 9999})
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestPlayManyRespectsStartIndex(t *testing.T) {
	s, tracks := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/v1/player/play-many", map[string]any{
		"track_ids":   []uint{tracks[0].ID, tracks[1].ID},
		"start_index": 1,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body)
	}

	var snap struct {
		Index int `json:"index"`
		Queue []struct {
			Track struct {
				Title string `json:"title"`
			} `json:"track"`
		} `json:"queue"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Index != 1 || len(snap.Queue) != 2 {
		t.Errorf("expected index 1 over 2 items, got %+v", snap)
	}
	if snap.Queue[1].Track.Title != "Two" {
		t.Errorf("expected Two at slot 1, got %+v", snap.Queue)
	}
}

func TestShuffleAndRepeatToggles(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/v1/player/shuffle", nil)
	var shuffleResp struct {
		Shuffle bool `json:"shuffle"`
	}
	json.Unmarshal(w.Body.Bytes(), &shuffleResp)
	if !shuffleResp.Shuffle {
		t.Error("expected shuffle on after first toggle")
	}

	w = doJSON(t, s, http.MethodPost, "/api/v1/player/repeat", nil)
	var repeatResp struct {
		Repeat string `json:"repeat"`
	}
	json.Unmarshal(w.Body.Bytes(), &repeatResp)
	if repeatResp.Repeat != "all" {
		t.Errorf("expected repeat all after first toggle, got %q", repeatResp.Repeat)
	}
}

func TestCrossfadeClampedOverHTTP(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/v1/player/crossfade", map[string]any{"seconds": 99})
	var resp struct {
		CrossfadeSeconds int `json:"crossfade_seconds"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.CrossfadeSeconds != 12 {
		t.Errorf("expected clamp to 12, got %d", resp.CrossfadeSeconds)
	}
}

func TestRemoveUnknownQueueItemIs404(t *testing.T) {
	s, _ := newTestServer(t)
	w := doJSON(t, s, http.MethodDelete, "/api/v1/player/queue/not-a-queue-id", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestFrequencySnapshotEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/api/v1/player/frequency", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var data struct {
		Intensity float64 `json:"intensity"`
		Bass      float64 `json:"bass_level"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data.Intensity != 0 || data.Bass != 0 {
		t.Errorf("expected silent output with nothing bound, got %+v", data)
	}
}
