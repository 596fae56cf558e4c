package beat

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/jsphweid/mirlive/model"
)

const (
	historySize = 100
	minOnsets   = 6

	// intervals at or above this are musical pauses, not tempo information
	pauseInterval = 2.0

	phaseInterval = 10 * time.Millisecond

	// a new estimate this weak does not displace the current one
	adoptThreshold = 0.3
	adaptationRate = 0.3

	sureThreshold  = 0.4
	maybeThreshold = 0.2

	// how close to a beat boundary (as a fraction of the period) counts as
	// being on the beat
	beatWindow = 0.08
)

// Tracker estimates beat period and confidence from note onsets and emits
// beat ticks from an independent phase clock.
type Tracker struct {
	mu sync.Mutex

	onsets []time.Time

	period     float64 // seconds between beats, 0 until detected
	confidence float64
	bpm        int
	anchor     time.Time // timestamp of a known beat, zero until detected
	lastEmit   time.Time

	ticks    chan model.BeatTick
	stopOnce sync.Once
	done     chan struct{}
}

func New() *Tracker {
	t := newTracker()
	go t.phaseLoop()
	return t
}

func newTracker() *Tracker {
	return &Tracker{
		ticks: make(chan model.BeatTick, 16),
		done:  make(chan struct{}),
	}
}

// Onset registers a note-on timestamp and re-analyzes the onset history.
// Callers should only pass onsets with velocity > 0.
func (t *Tracker) Onset(at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.onsets) == historySize {
		copy(t.onsets, t.onsets[1:])
		t.onsets = t.onsets[:historySize-1]
	}
	t.onsets = append(t.onsets, at)
	t.analyze()
}

// Ticks delivers beat ticks produced by the phase clock. A tick nobody
// drains before the next one is stale and gets dropped.
func (t *Tracker) Ticks() <-chan model.BeatTick {
	return t.ticks
}

// Estimate returns the current BPM and confidence; ok is false until a
// first confident detection has happened.
func (t *Tracker) Estimate() (bpm int, confidence float64, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bpm, t.confidence, t.period != 0
}

// Stop halts the phase loop. Safe to call more than once.
func (t *Tracker) Stop() {
	t.stopOnce.Do(func() {
		close(t.done)
	})
}

func (t *Tracker) analyze() {
	if len(t.onsets) < minOnsets {
		return
	}

	var intervals []float64
	for i := 1; i < len(t.onsets); i++ {
		v := t.onsets[i].Sub(t.onsets[i-1]).Seconds()
		if v < pauseInterval {
			intervals = append(intervals, v)
		}
	}
	if len(intervals) == 0 {
		return
	}

	interval, confidence, ok := findBeatInterval(intervals)
	if !ok || confidence <= adoptThreshold {
		return
	}

	// fold into 40-240 BPM; one halving/doubling step covers every
	// reachable bin center
	newBPM := int(math.Round(60 / interval))
	if newBPM < 40 {
		interval /= 2
	} else if newBPM > 240 {
		interval *= 2
	}
	newBPM = int(math.Round(60 / interval))

	if t.period != 0 {
		// blend toward the new estimate for stability
		t.period = (1-adaptationRate)*t.period + adaptationRate*interval
		t.confidence = (1-adaptationRate)*t.confidence + adaptationRate*confidence
		t.bpm = int(math.Round(60 / t.period))
	} else {
		t.period = interval
		t.confidence = confidence
		t.bpm = newBPM
	}

	if t.anchor.IsZero() {
		t.anchor = t.onsets[len(t.onsets)-1]
	}
}

// step checks whether the phase clock sits on a beat boundary at the given
// instant and, if so, produces at most one tick per half period.
func (t *Tracker) step(now time.Time) (model.BeatTick, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.period == 0 || t.anchor.IsZero() {
		return model.BeatTick{}, false
	}

	beats := now.Sub(t.anchor).Seconds() / t.period
	fraction := beats - math.Floor(beats)
	if fraction >= beatWindow && fraction <= 1-beatWindow {
		return model.BeatTick{}, false
	}

	var tick model.BeatTick
	var emitted bool
	if now.Sub(t.lastEmit).Seconds() > t.period*0.5 {
		switch {
		case t.confidence > sureThreshold:
			tick = model.BeatTick{Class: model.BeatSure, BPM: t.bpm, Confidence: t.confidence, Time: now}
			emitted = true
		case t.confidence > maybeThreshold:
			tick = model.BeatTick{Class: model.BeatMaybe, BPM: t.bpm, Confidence: t.confidence, Time: now}
			emitted = true
		}
		t.lastEmit = now
	}

	// advance the anchor by whole periods so long-run phase error cannot
	// accumulate; never reset it to "now"
	if whole := math.Floor(beats); whole > 0 {
		t.anchor = t.anchor.Add(time.Duration(whole * t.period * float64(time.Second)))
	}

	return tick, emitted
}

func (t *Tracker) phaseLoop() {
	ticker := time.NewTicker(phaseInterval)
	defer ticker.Stop()
	for {
		select {
		case <-t.done:
			return
		case now := <-ticker.C:
			if tick, ok := t.step(now); ok {
				select {
				case t.ticks <- tick:
				default:
				}
			}
		}
	}
}

type peak struct {
	height float64
	center float64
}

// findBeatInterval histograms the intervals, smooths the distribution and
// returns the dominant peak's bin center. Confidence is that peak's height,
// discounted by how close the runner-up comes to it.
func findBeatInterval(intervals []float64) (float64, float64, bool) {
	hist, total := histogram(intervals)
	if total == 0 {
		return 0, 0, false
	}

	normalized := make([]float64, histBins)
	for i, count := range hist {
		normalized[i] = float64(count) / float64(total)
	}
	smoothed := smooth(normalized)

	var peaks []peak
	for i := 1; i < histBins-1; i++ {
		if smoothed[i] > smoothed[i-1] && smoothed[i] > smoothed[i+1] && smoothed[i] > peakFloor {
			peaks = append(peaks, peak{height: smoothed[i], center: binCenter(i)})
		}
	}
	if len(peaks) == 0 {
		return 0, 0, false
	}

	sort.Slice(peaks, func(i, j int) bool {
		return peaks[i].height > peaks[j].height
	})

	confidence := peaks[0].height
	if len(peaks) > 1 {
		// an alternative nearly as tall collapses confidence toward zero;
		// only the top two peaks are ever considered
		confidence *= 1 - peaks[1].height/peaks[0].height
	}

	return peaks[0].center, confidence, true
}
