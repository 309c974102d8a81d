// Package queue owns the playback queue state machine: ordered queue,
// index, history, shuffle/repeat/crossfade settings, and every transition
// between tracks. Gated tracks go through an asynchronous entitlement
// check before any audio source is swapped in.
package queue

import (
	"context"
	"crypto/rand"
	"io"
	"log"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"wavepilot/internal/gate"
	"wavepilot/internal/models"
)

// Metrics
var (
	tracksPlayed = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "player_queue_tracks_total", Help: "Successful track transitions"},
	)
	gateDenials = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "player_gate_denials_total", Help: "Gated transitions denied"},
	)
	unplayableSkips = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "player_unplayable_skips_total", Help: "Tracks skipped as unplayable"},
	)
)

func RegisterMetrics() {
	prometheus.MustRegister(tracksPlayed, gateDenials, unplayableSkips)
}

const (
	historyCap = 50
	// Previous restarts the current track instead of going back once this
	// much has been heard.
	previousRestartAfter = 3 * time.Second
	maxCrossfadeSeconds  = 12
	// playoutWindow samples per pump tick; 2048 every ~46ms approximates
	// 44.1kHz mono real time.
	playoutWindow = 2048
)

// Item is one queue slot. QueueID decouples the slot's identity from the
// track's identity, so the same track can sit in the queue twice without
// ambiguity. Minted on enqueue, gone on removal.
type Item struct {
	Track   models.Track `json:"track"`
	QueueID string       `json:"queue_id"`
}

func newItem(t models.Track) Item {
	return Item{Track: t, QueueID: uuid.NewString()}
}

// Settings are the three persisted player preferences.
type Settings struct {
	Shuffle          bool       `json:"shuffle"`
	Repeat           RepeatMode `json:"repeat"`
	CrossfadeSeconds int        `json:"crossfade_seconds"`
}

// TelemetryReporter receives listening duration reports. Failures are
// logged and dropped; playback never blocks on telemetry.
type TelemetryReporter interface {
	Start(identity string, trackID uint, source string) (string, error)
	Report(playID string, elapsedSeconds float64, completed bool) error
}

// PreferenceStore persists the three scalar settings.
type PreferenceStore interface {
	Load() (Settings, error)
	Save(Settings) error
}

// PlayableSource is the audio handle a resolved track plays from. The
// manager owns it exclusively and swaps it on every transition.
type PlayableSource interface {
	ID() string
	ReadWindow(dst []float64) (int, error)
	Rewind() error
	Close() error
}

// SourceResolver turns a track's source URI into a playable handle.
type SourceResolver interface {
	Resolve(uri string) (PlayableSource, error)
}

type ResolverFunc func(uri string) (PlayableSource, error)

func (f ResolverFunc) Resolve(uri string) (PlayableSource, error) { return f(uri) }

// Binder rebinds the signal analyzer to the current source. Bind(nil)
// unbinds.
type Binder interface {
	Bind(src PlayableSource)
}

type BinderFunc func(src PlayableSource)

func (f BinderFunc) Bind(src PlayableSource) { f(src) }

// Deps are the manager's collaborators. Gate, Telemetry and Resolver are
// required; the rest default.
type Deps struct {
	Gate      gate.Evaluator
	Telemetry TelemetryReporter
	Prefs     PreferenceStore
	Resolver  SourceResolver
	Binder    Binder
	Clock     Clock

	// GateTimeout bounds every entitlement check; expiry resolves as a
	// retryable failure, never an indefinite "checking".
	GateTimeout time.Duration
	// ReportEvery is the periodic telemetry cadence while playing.
	ReportEvery time.Duration
	// PumpEvery is the playout drain cadence: each tick consumes one
	// window from the bound source so its natural end is noticed and the
	// queue advances without an external next().
	PumpEvery time.Duration
}

// Manager drives all queue transitions. All mutation funnels through one
// mutex; asynchronous gate checks re-acquire it and are generation-stamped
// so a superseded check's decision is discarded on arrival.
type Manager struct {
	mu   sync.Mutex
	deps Deps

	items    []Item
	original []Item // pre-shuffle order, for deterministic un-shuffling
	index    int    // -1 when nothing is current
	history  []Item
	settings Settings
	state    State // Playing/Paused/Ended; Empty/Pending are derived

	identity   string
	gateStatus gate.Status
	generation uint64

	handle      PlayableSource
	pumpEnded   PlayableSource // last source the pump exhausted; one advance per source
	playID      string
	startedAt   time.Time
	accumulated time.Duration
	failStreak  int

	stop      chan struct{}
	closeOnce sync.Once
}

// Snapshot is the externally visible state, copied under lock.
type Snapshot struct {
	State          State       `json:"state"`
	Playing        bool        `json:"playing"`
	Current        *Item       `json:"current,omitempty"`
	Index          int         `json:"index"`
	Queue          []Item      `json:"queue"`
	History        []Item      `json:"history"`
	Settings       Settings    `json:"settings"`
	Gate           gate.Status `json:"gate"`
	ElapsedSeconds float64     `json:"elapsed_seconds"`
}

func New(deps Deps) *Manager {
	if deps.Clock == nil {
		deps.Clock = RealClock{}
	}
	if deps.GateTimeout <= 0 {
		deps.GateTimeout = 5 * time.Second
	}
	if deps.ReportEvery <= 0 {
		deps.ReportEvery = 30 * time.Second
	}
	if deps.PumpEvery <= 0 {
		deps.PumpEvery = 46 * time.Millisecond
	}

	m := &Manager{
		deps:  deps,
		index: -1,
		state: StateEmpty,
		stop:  make(chan struct{}),
	}

	if deps.Prefs != nil {
		if s, err := deps.Prefs.Load(); err == nil {
			m.settings = s
		} else {
			log.Printf("⚠️ Preference load failed, using defaults: %v", err)
		}
	}
	m.settings.CrossfadeSeconds = clampCrossfade(m.settings.CrossfadeSeconds)

	go m.reportLoop()
	go m.playoutLoop()
	return m
}

// Close stops the background loops, finalizes any live play record as
// abandoned and releases the audio source.
func (m *Manager) Close() {
	m.closeOnce.Do(func() { close(m.stop) })

	m.mu.Lock()
	defer m.mu.Unlock()
	m.supersedeLocked()
	m.finalizeTelemetryLocked(false)
	m.releaseSourceLocked()
	m.index = -1
	m.items = nil
	m.state = StateEmpty
}

// SetIdentity binds the authenticated listener whose entitlements gate
// checks run against. Empty means anonymous: automatic denial for any
// gated track.
func (m *Manager) SetIdentity(identity string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identity = identity
}

// PlayTrack plays a single track. Requesting the track that is already
// current toggles play/pause instead; anything else replaces the queue
// with a singleton.
func (m *Manager) PlayTrack(t models.Track) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cur := m.currentLocked(); cur != nil && cur.Track.ID == t.ID {
		m.togglePlayLocked()
		return
	}

	item := newItem(t)
	m.requestTransitionLocked(pendingTransition{
		item:     item,
		index:    0,
		queue:    []Item{item},
		original: []Item{item},
	})
}

// PlayTracks replaces the queue wholesale and transitions to startIndex.
// With shuffle on, the startIndex item stays first and the remainder is
// shuffled.
func (m *Manager) PlayTracks(tracks []models.Track, startIndex int) {
	if len(tracks) == 0 {
		return
	}
	if startIndex < 0 || startIndex >= len(tracks) {
		startIndex = 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	items := make([]Item, len(tracks))
	for i, t := range tracks {
		items[i] = newItem(t)
	}
	original := copyItems(items)

	target := startIndex
	if m.settings.Shuffle {
		first := items[startIndex]
		rest := make([]Item, 0, len(items)-1)
		rest = append(rest, items[:startIndex]...)
		rest = append(rest, items[startIndex+1:]...)
		shuffleItems(rest)
		items = append([]Item{first}, rest...)
		target = 0
	}

	m.requestTransitionLocked(pendingTransition{
		item:     items[target],
		index:    target,
		queue:    items,
		original: original,
	})
}

// TogglePlay flips Playing/Paused. No-op when nothing is current.
func (m *Manager) TogglePlay() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.togglePlayLocked()
}

// Next advances by the repeat rules. The outgoing track is always
// reported completed before the transition starts.
func (m *Manager) Next() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advanceLocked()
}

// Previous restarts the current track when 3s or more have been heard
// (a scrub, not a skip); otherwise it moves back one slot, wrapping only
// under repeat-all.
func (m *Manager) Previous() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.items) == 0 || m.index < 0 {
		return
	}

	if m.elapsedLocked() >= previousRestartAfter {
		m.restartCurrentLocked()
		return
	}

	prev := m.index - 1
	if prev < 0 {
		if m.settings.Repeat == RepeatAll {
			prev = len(m.items) - 1
		} else {
			// No earlier slot to go to: restart the head.
			m.restartCurrentLocked()
			return
		}
	}
	m.requestTransitionLocked(pendingTransition{item: m.items[prev], index: prev})
}

// AddToQueue appends a track and returns its queue slot.
func (m *Manager) AddToQueue(t models.Track) Item {
	m.mu.Lock()
	defer m.mu.Unlock()

	item := newItem(t)
	m.items = append(m.items, item)
	m.original = append(m.original, item)
	return item
}

// AddNext inserts a track right after the current slot.
func (m *Manager) AddNext(t models.Track) Item {
	m.mu.Lock()
	defer m.mu.Unlock()

	item := newItem(t)
	at := m.index + 1
	if at > len(m.items) {
		at = len(m.items)
	}
	m.items = insertItem(m.items, at, item)
	if m.settings.Shuffle {
		m.original = append(m.original, item)
	} else {
		m.original = copyItems(m.items)
	}
	return item
}

// RemoveFromQueue deletes a slot by queueId. Removing the current slot
// transitions to whatever now occupies its index.
func (m *Manager) RemoveFromQueue(queueID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := indexOf(m.items, queueID)
	if idx < 0 {
		return false
	}

	wasCurrent := idx == m.index
	m.items = append(m.items[:idx], m.items[idx+1:]...)
	if oidx := indexOf(m.original, queueID); oidx >= 0 {
		m.original = append(m.original[:oidx], m.original[oidx+1:]...)
	}

	switch {
	case wasCurrent:
		if len(m.items) == 0 {
			m.resetToEmptyLocked()
			return true
		}
		next := m.index
		if next >= len(m.items) {
			next = len(m.items) - 1
		}
		m.requestTransitionLocked(pendingTransition{item: m.items[next], index: next})
	case idx < m.index:
		m.index--
	}
	return true
}

// ReorderQueue moves the slot at from to position to. The current slot is
// relocated by queueId afterwards.
func (m *Manager) ReorderQueue(from, to int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if from < 0 || from >= len(m.items) || to < 0 || to >= len(m.items) || from == to {
		return false
	}

	var currentID string
	if cur := m.currentLocked(); cur != nil {
		currentID = cur.QueueID
	}

	item := m.items[from]
	m.items = append(m.items[:from], m.items[from+1:]...)
	m.items = insertItem(m.items, to, item)

	if currentID != "" {
		m.index = indexOf(m.items, currentID)
	}
	if !m.settings.Shuffle {
		m.original = copyItems(m.items)
	}
	return true
}

// SkipTo jumps to a slot by queueId through the same gated transition
// path as PlayTrack.
func (m *Manager) SkipTo(queueID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := indexOf(m.items, queueID)
	if idx < 0 {
		return false
	}
	m.requestTransitionLocked(pendingTransition{item: m.items[idx], index: idx})
	return true
}

// ToggleShuffle shuffles only the upcoming slice when enabling, leaving
// history and the current slot untouched. Disabling restores the
// pre-shuffle order and relocates the index by queueId lookup — never by
// track equality, since a track can repeat in the queue.
func (m *Manager) ToggleShuffle() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.supersedeLocked()

	if !m.settings.Shuffle {
		m.settings.Shuffle = true
		m.original = copyItems(m.items)
		if m.index+1 < len(m.items) {
			shuffleItems(m.items[m.index+1:])
		}
	} else {
		m.settings.Shuffle = false
		var currentID string
		if cur := m.currentLocked(); cur != nil {
			currentID = cur.QueueID
		}
		m.items = copyItems(m.original)
		m.index = indexOf(m.items, currentID)
	}

	m.persistSettingsLocked()
	return m.settings.Shuffle
}

// ToggleRepeat cycles off → all → one → off.
func (m *Manager) ToggleRepeat() RepeatMode {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.supersedeLocked()
	m.settings.Repeat = m.settings.Repeat.Cycle()
	m.persistSettingsLocked()
	return m.settings.Repeat
}

// SetCrossfade clamps to [0,12] seconds and persists. Scheduling contract
// only; mixing happens downstream.
func (m *Manager) SetCrossfade(seconds int) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.settings.CrossfadeSeconds = clampCrossfade(seconds)
	m.persistSettingsLocked()
	return m.settings.CrossfadeSeconds
}

// RecordPlay finalizes the live play record with the given completion
// flag, for hosts that detect track end themselves.
func (m *Manager) RecordPlay(completed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finalizeTelemetryLocked(completed)
}

// Snapshot copies the externally visible state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		State:          m.stateLocked(),
		Playing:        m.state == StatePlaying,
		Current:        m.currentLocked(),
		Index:          m.index,
		Queue:          copyItems(m.items),
		History:        copyItems(m.history),
		Settings:       m.settings,
		Gate:           m.gateStatus,
		ElapsedSeconds: m.elapsedLocked().Seconds(),
	}
}

// --- internals (all *Locked funcs expect m.mu held) ---

// pendingTransition is a candidate transition. A replacement queue rides
// along and only commits on gate success, so a denial leaves the previous
// queue, index and state untouched. completeOutgoing marks a natural-end
// advance: the outgoing track's terminal report then waits for the
// commit, so a denied or failed check leaves its session live.
type pendingTransition struct {
	item             Item
	index            int
	queue            []Item
	original         []Item
	completeOutgoing bool
}

func (m *Manager) requestTransitionLocked(p pendingTransition) {
	// Stamp: any in-flight check for an earlier target is now stale.
	m.generation++
	gen := m.generation

	rule := p.item.Track.Rule()
	if !gate.IsGated(rule) {
		m.gateStatus = gate.Status{HasAccess: true}
		m.commitTransitionLocked(p)
		return
	}

	// No identity is an automatic denial for any gated rule.
	if m.identity == "" {
		m.gateStatus = gate.Denied(rule, gate.Decision{})
		gateDenials.Inc()
		return
	}

	// While the check is pending no audio output may start; the source
	// swap happens in commit, strictly after a positive decision.
	m.gateStatus = gate.Status{Checking: true}
	identity := m.identity
	timeout := m.deps.GateTimeout

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		dec, err := m.deps.Gate.Evaluate(ctx, identity, rule)

		m.mu.Lock()
		defer m.mu.Unlock()

		if gen != m.generation {
			// A later request superseded this check: the decision is for
			// a target that no longer matters. Discard on arrival.
			return
		}

		if err != nil {
			log.Printf("⚠️ Gate check failed: %v", err)
			m.gateStatus = gate.Status{Err: err.Error()}
			return
		}
		if !dec.HasAccess {
			m.gateStatus = gate.Denied(rule, dec)
			gateDenials.Inc()
			return
		}

		m.gateStatus = gate.Status{HasAccess: true, Balance: dec.Balance}
		m.commitTransitionLocked(p)
	}()
}

func (m *Manager) commitTransitionLocked(p pendingTransition) {
	outgoing := m.currentLocked()

	if p.queue != nil {
		m.items = p.queue
		m.original = p.original
	} else {
		// The queue may have been mutated while a check was in flight:
		// the slot's position is only authoritative at commit time.
		idx := indexOf(m.items, p.item.QueueID)
		if idx < 0 {
			// Target removed mid-check; nothing to transition to.
			return
		}
		p.index = idx
	}

	src, err := m.deps.Resolver.Resolve(p.item.Track.SourceURI)
	if err != nil {
		log.Printf("❌ Unplayable: %s (%v)", p.item.Track.SourceURI, err)
		unplayableSkips.Inc()

		if outgoing != nil {
			m.pushHistoryLocked(*outgoing)
		}
		m.finalizeTelemetryLocked(p.completeOutgoing)
		m.releaseSourceLocked()

		// The failed track still reports: zero duration, not completed.
		if pid, serr := m.deps.Telemetry.Start(m.identity, p.item.Track.ID, "queue"); serr == nil {
			if rerr := m.deps.Telemetry.Report(pid, 0, false); rerr != nil {
				log.Printf("⚠️ Telemetry report dropped: %v", rerr)
			}
		}

		m.index = p.index
		m.failStreak++
		if m.failStreak >= len(m.items) {
			log.Printf("❌ Nothing playable in queue, stopping")
			m.failStreak = 0
			m.state = StateEnded
			return
		}
		// Advance one step instead of stalling; bounded by the streak.
		m.advanceLocked()
		return
	}

	if outgoing != nil {
		m.pushHistoryLocked(*outgoing)
	}
	// The outgoing record closes here, completed on a natural-end advance
	// and abandoned otherwise — always before the new session starts.
	m.finalizeTelemetryLocked(p.completeOutgoing)

	// The single audio output changes hands here, and only here.
	m.releaseSourceLocked()
	m.handle = src
	m.pumpEnded = nil
	if m.deps.Binder != nil {
		m.deps.Binder.Bind(src)
	}

	m.index = p.index
	m.state = StatePlaying
	m.startedAt = m.deps.Clock.Now()
	m.accumulated = 0
	m.failStreak = 0
	tracksPlayed.Inc()

	pid, err := m.deps.Telemetry.Start(m.identity, p.item.Track.ID, "queue")
	if err != nil {
		log.Printf("⚠️ Telemetry start dropped: %v", err)
		return
	}
	m.playID = pid
}

func (m *Manager) advanceLocked() {
	if len(m.items) == 0 {
		return
	}

	// The outgoing track played to its end: its completed report fires in
	// the commit, strictly before the incoming session starts. Finalizing
	// here would close the session while a gate check could still deny
	// the advance and leave the track playing.
	switch {
	case m.settings.Repeat == RepeatOne:
		idx := m.index
		if idx < 0 {
			idx = 0
		}
		m.requestTransitionLocked(pendingTransition{item: m.items[idx], index: idx, completeOutgoing: true})
	case m.index+1 < len(m.items):
		m.requestTransitionLocked(pendingTransition{item: m.items[m.index+1], index: m.index + 1, completeOutgoing: true})
	case m.settings.Repeat == RepeatAll:
		m.requestTransitionLocked(pendingTransition{item: m.items[0], index: 0, completeOutgoing: true})
	default:
		m.finalizeTelemetryLocked(true)
		m.state = StateEnded
	}
}

func (m *Manager) togglePlayLocked() {
	switch m.state {
	case StatePlaying:
		m.accumulated += m.deps.Clock.Now().Sub(m.startedAt)
		m.state = StatePaused
	case StatePaused:
		m.startedAt = m.deps.Clock.Now()
		m.state = StatePlaying
	}
}

func (m *Manager) restartCurrentLocked() {
	m.startedAt = m.deps.Clock.Now()
	m.accumulated = 0
	if m.handle != nil {
		if err := m.handle.Rewind(); err != nil {
			log.Printf("⚠️ Rewind failed: %v", err)
		}
	}
	m.pumpEnded = nil // a rewound source can reach its end again
	m.state = StatePlaying
}

func (m *Manager) resetToEmptyLocked() {
	m.finalizeTelemetryLocked(false)
	m.releaseSourceLocked()
	m.index = -1
	m.state = StateEmpty
}

func (m *Manager) releaseSourceLocked() {
	if m.handle == nil {
		return
	}
	m.handle.Close()
	m.handle = nil
	if m.deps.Binder != nil {
		m.deps.Binder.Bind(nil)
	}
}

// supersedeLocked discards any in-flight gate check's eventual result.
func (m *Manager) supersedeLocked() {
	m.generation++
	if m.gateStatus.Checking {
		m.gateStatus = gate.Status{}
	}
}

func (m *Manager) finalizeTelemetryLocked(completed bool) {
	if m.playID == "" {
		return
	}
	pid := m.playID
	elapsed := m.elapsedLocked().Seconds()
	m.playID = ""

	if err := m.deps.Telemetry.Report(pid, elapsed, completed); err != nil {
		log.Printf("⚠️ Telemetry report dropped: %v", err)
	}
}

func (m *Manager) persistSettingsLocked() {
	if m.deps.Prefs == nil {
		return
	}
	if err := m.deps.Prefs.Save(m.settings); err != nil {
		log.Printf("⚠️ Preference save failed: %v", err)
	}
}

func (m *Manager) pushHistoryLocked(it Item) {
	m.history = append(m.history, it)
	if len(m.history) > historyCap {
		m.history = m.history[len(m.history)-historyCap:]
	}
}

func (m *Manager) currentLocked() *Item {
	if m.index < 0 || m.index >= len(m.items) {
		return nil
	}
	it := m.items[m.index]
	return &it
}

func (m *Manager) elapsedLocked() time.Duration {
	el := m.accumulated
	if m.state == StatePlaying {
		el += m.deps.Clock.Now().Sub(m.startedAt)
	}
	return el
}

func (m *Manager) stateLocked() State {
	if m.gateStatus.Checking {
		return StatePending
	}
	if len(m.items) == 0 {
		return StateEmpty
	}
	return m.state
}

func (m *Manager) reportLoop() {
	ticker := time.NewTicker(m.deps.ReportEvery)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.mu.Lock()
			pid := m.playID
			elapsed := m.elapsedLocked().Seconds()
			playing := m.state == StatePlaying
			m.mu.Unlock()

			if !playing || pid == "" {
				continue
			}
			if err := m.deps.Telemetry.Report(pid, elapsed, false); err != nil {
				log.Printf("⚠️ Telemetry report dropped: %v", err)
			}
		}
	}
}

// playoutLoop drains the bound source window by window so the natural
// end of a track is noticed and the queue advances on its own. Reads run
// outside the lock; the advance only fires if the same source is still
// bound and playing, and only once per source.
func (m *Manager) playoutLoop() {
	ticker := time.NewTicker(m.deps.PumpEvery)
	defer ticker.Stop()
	window := make([]float64, playoutWindow)

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.mu.Lock()
			h := m.handle
			idle := h == nil || m.state != StatePlaying || m.gateStatus.Checking || h == m.pumpEnded
			m.mu.Unlock()
			if idle {
				continue
			}

			if _, err := h.ReadWindow(window); err == nil {
				continue
			} else if err != io.EOF {
				log.Printf("⚠️ Source read failed: %v", err)
			}

			m.mu.Lock()
			if m.handle == h && m.state == StatePlaying {
				m.pumpEnded = h
				m.advanceLocked()
			}
			m.mu.Unlock()
		}
	}
}

// --- helpers ---

func copyItems(xs []Item) []Item {
	out := make([]Item, len(xs))
	copy(out, xs)
	return out
}

func insertItem(xs []Item, at int, it Item) []Item {
	xs = append(xs, Item{})
	copy(xs[at+1:], xs[at:])
	xs[at] = it
	return xs
}

func indexOf(xs []Item, queueID string) int {
	for i, it := range xs {
		if it.QueueID == queueID {
			return i
		}
	}
	return -1
}

// Fisher–Yates, crypto-seeded.
func shuffleItems(xs []Item) {
	for i := len(xs) - 1; i > 0; i-- {
		jBig, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			break
		}
		j := int(jBig.Int64())
		xs[i], xs[j] = xs[j], xs[i]
	}
}

func clampCrossfade(seconds int) int {
	if seconds < 0 {
		return 0
	}
	if seconds > maxCrossfadeSeconds {
		return maxCrossfadeSeconds
	}
	return seconds
}
