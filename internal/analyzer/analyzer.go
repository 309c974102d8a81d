// Package analyzer computes banded spectral energy from the active audio
// source at display-refresh cadence, for visualization consumers.
package analyzer

import (
	"log"
	"math"
	"math/cmplx"
	"sync"
	"time"
)

// FrequencyData is one frame of banded spectral energy, each value in
// [0,1]. Consumers must treat all-zero as a valid steady state (silent or
// unbound source), not an error.
type FrequencyData struct {
	Intensity float64 `json:"intensity"`
	Bass      float64 `json:"bass_level"`
	Mid       float64 `json:"mid_level"`
	High      float64 `json:"high_level"`
}

// Source is the opaque audio handle the analyzer samples from. Identity
// decides whether a Bind rebuilds the processing graph; the queue manager
// owns swapping it, the analyzer only reads.
type Source interface {
	ID() string
	ReadWindow(dst []float64) (int, error)
}

// Analyzer runs one spectral sample per frame while at least one consumer
// is subscribed. Smoothing relies solely on the fixed per-bin constant;
// no extra buffering, to bound latency.
type Analyzer struct {
	mu        sync.Mutex
	src       Source
	bins      int
	smoothing float64
	interval  time.Duration

	window   []float64
	smoothed []float64
	latest   FrequencyData

	subscribers int
	stop        chan struct{}
	rebuilds    int
}

type Options struct {
	Bins       int           // magnitude bins, default 128
	Smoothing  float64       // per-bin smoothing constant, default 0.8
	FrameEvery time.Duration // sampling interval, default 16ms (~60fps)
}

func New(opts Options) *Analyzer {
	if opts.Bins <= 0 {
		opts.Bins = 128
	}
	// The radix-2 transform needs a power-of-two length.
	opts.Bins = ceilPow2(opts.Bins)
	if opts.Smoothing <= 0 || opts.Smoothing >= 1 {
		opts.Smoothing = 0.8
	}
	if opts.FrameEvery <= 0 {
		opts.FrameEvery = 16 * time.Millisecond
	}
	return &Analyzer{
		bins:      opts.Bins,
		smoothing: opts.Smoothing,
		interval:  opts.FrameEvery,
		window:    make([]float64, opts.Bins*2),
		smoothed:  make([]float64, opts.Bins),
	}
}

// Bind swaps the sampled source. Rebinding a source with the same
// identity is a no-op: the underlying graph can bind an output only once,
// so play/pause must not tear it down. Binding nil unbinds and drives the
// output to zero immediately.
func (a *Analyzer) Bind(src Source) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if src != nil && a.src != nil && src.ID() == a.src.ID() {
		return
	}

	a.src = src
	a.rebuilds++
	for i := range a.smoothed {
		a.smoothed[i] = 0
	}
	a.latest = FrequencyData{}
}

// Subscribe registers a consumer. The sampling loop starts with the first
// subscriber and stops with the last unsubscribe.
func (a *Analyzer) Subscribe() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.subscribers++
	if a.subscribers == 1 {
		a.stop = make(chan struct{})
		go a.run(a.stop, a.interval)
	}
}

func (a *Analyzer) Unsubscribe() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.subscribers == 0 {
		return
	}
	a.subscribers--
	if a.subscribers == 0 {
		close(a.stop)
		a.stop = nil
	}
}

// Snapshot returns the latest frame.
func (a *Analyzer) Snapshot() FrequencyData {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.latest
}

func (a *Analyzer) run(stop chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			a.Step()
		}
	}
}

// Step takes one spectral sample. Exported so a host without a timer can
// drive the cadence itself; the internal loop just calls it per tick.
func (a *Analyzer) Step() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.src == nil {
		a.latest = FrequencyData{}
		return
	}

	n, err := a.src.ReadWindow(a.window)
	if err != nil || n == 0 {
		// Track ended or the graph broke: degrade to constant zero.
		if err != nil {
			log.Printf("analyzer: source read failed: %v", err)
		}
		for i := range a.smoothed {
			a.smoothed[i] = 0
		}
		a.latest = FrequencyData{}
		return
	}
	for i := n; i < len(a.window); i++ {
		a.window[i] = 0
	}

	fftSize := len(a.window)
	buf := make([]complex128, fftSize)
	for i, s := range a.window {
		buf[i] = complex(s*hann(i, fftSize), 0)
	}
	fft(buf)

	scale := 2.0 / float64(fftSize)
	for k := 0; k < a.bins; k++ {
		mag := cmplx.Abs(buf[k]) * scale
		if mag > 1 {
			mag = 1
		}
		a.smoothed[k] = a.smoothing*a.smoothed[k] + (1-a.smoothing)*mag
	}

	a.latest = a.bandsLocked()
}

// bandsLocked splits the spectrum into perceptual bands: lowest ~10% of
// bins = bass, next ~40% = mid, upper half = high.
func (a *Analyzer) bandsLocked() FrequencyData {
	bassEnd := a.bins / 10
	if bassEnd < 1 {
		bassEnd = 1
	}
	midEnd := a.bins / 2

	bass := average(a.smoothed[:bassEnd])
	mid := average(a.smoothed[bassEnd:midEnd])
	high := average(a.smoothed[midEnd:])

	return FrequencyData{
		// Bass-weighted so the visualizer tracks the beat.
		Intensity: clamp01(0.5*bass + 0.3*mid + 0.2*high),
		Bass:      clamp01(bass),
		Mid:       clamp01(mid),
		High:      clamp01(high),
	}
}

func average(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func clamp01(x float64) float64 {
	return math.Min(1, math.Max(0, x))
}
