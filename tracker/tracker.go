package tracker

import (
	"container/heap"
	"sync"
	"time"

	"github.com/jsphweid/mirlive/model"
	"github.com/jsphweid/mirlive/util"
	"golang.org/x/exp/slices"
)

const (
	sweepInterval = 10 * time.Millisecond

	// a released key rings for a short tail instead of cutting to silence
	releaseTail = 200 * time.Millisecond

	loudVelocity = 75
	loudHold     = 3 * time.Second
	softHold     = 2 * time.Second
)

// Pedal describes which control change toggles the sustain pedal. Values
// other than On/Off on the same controller are ignored.
type Pedal struct {
	Controller uint8
	On         uint8
	Off        uint8
}

// DefaultPedal matches the keyboard the original rig was built around.
var DefaultPedal = Pedal{Controller: 72, On: 110, Off: 64}

type soundingNote struct {
	velocity   uint8
	expiresAt  time.Time
	releasedAt time.Time // zero until the key is released under the pedal
}

type expiryEntry struct {
	at   time.Time
	note uint8
}

// expiryQueue is a min-heap keyed by expiry time with lazy deletion: an
// entry whose time no longer matches the note's live expiry is discarded
// on pop rather than removed eagerly.
type expiryQueue []expiryEntry

func (q expiryQueue) Len() int            { return len(q) }
func (q expiryQueue) Less(i, j int) bool  { return q[i].at.Before(q[j].at) }
func (q expiryQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *expiryQueue) Push(x interface{}) { *q = append(*q, x.(expiryEntry)) }
func (q *expiryQueue) Pop() interface{} {
	old := *q
	n := len(old)
	x := old[n-1]
	*q = old[:n-1]
	return x
}

// Tracker maintains the set of currently sounding notes under sustain-pedal
// rules and publishes the sorted set whenever it changes.
type Tracker struct {
	mu    sync.Mutex
	cond  *sync.Cond
	pedal Pedal

	notes        map[uint8]*soundingNote
	queue        expiryQueue
	sustain      bool
	lastReported model.Notes

	pending  []pendingUpdate
	updates  chan model.Notes
	stopped  bool
	stopOnce sync.Once
	done     chan struct{}
}

func New(pedal Pedal) *Tracker {
	t := newTracker(pedal)
	go t.sweepLoop()
	go t.pump()
	return t
}

func newTracker(pedal Pedal) *Tracker {
	t := &Tracker{
		pedal:   pedal,
		notes:   make(map[uint8]*soundingNote),
		sustain: true, // the pedal starts engaged
		updates: make(chan model.Notes),
		done:    make(chan struct{}),
	}
	t.cond = sync.NewCond(&t.mu)
	return t
}

// ProcessEvent updates the sounding set synchronously. It never blocks on
// the updates consumer; unknown events are no-ops.
func (t *Tracker) ProcessEvent(ev model.NoteEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case ev.Kind == model.EventNoteOn && ev.Velocity > 0:
		hold := softHold
		if ev.Velocity > loudVelocity {
			hold = loudHold
		}
		expires := ev.Time.Add(hold)
		t.notes[ev.Note] = &soundingNote{velocity: ev.Velocity, expiresAt: expires}
		heap.Push(&t.queue, expiryEntry{at: expires, note: ev.Note})

	case ev.Kind == model.EventNoteOff || ev.Kind == model.EventNoteOn:
		// note on with velocity 0 is a note off
		n, ok := t.notes[ev.Note]
		if !ok {
			return
		}
		if t.sustain {
			// the pedal keeps it sounding; remember when the key came up
			n.releasedAt = ev.Time
		} else {
			t.tighten(ev.Note, n, ev.Time.Add(releaseTail))
		}

	case ev.Kind == model.EventControlChange && ev.Controller == t.pedal.Controller:
		switch ev.Value {
		case t.pedal.On:
			t.sustain = true
		case t.pedal.Off:
			wasOn := t.sustain
			t.sustain = false
			if wasOn {
				for note, n := range t.notes {
					if !n.releasedAt.IsZero() {
						t.tighten(note, n, n.releasedAt.Add(releaseTail))
					}
				}
			}
		}

	default:
		return
	}

	t.publishLocked(ev.Time)
}

// tighten shortens a note's expiry. A release never lengthens.
func (t *Tracker) tighten(note uint8, n *soundingNote, at time.Time) {
	if at.Before(n.expiresAt) {
		n.expiresAt = at
		heap.Push(&t.queue, expiryEntry{at: at, note: note})
	}
}

// Sounding returns the current sounding set, sorted ascending.
func (t *Tracker) Sounding() model.Notes {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

// Updates delivers each distinct sounding set, in publish order. The feed
// is unbounded so a bursty stream can never drop or reorder a change. The
// channel is closed by Stop.
func (t *Tracker) Updates() <-chan model.Notes {
	return t.updates
}

// Stop halts the sweep and notification pump. Safe to call more than once.
func (t *Tracker) Stop() {
	t.stopOnce.Do(func() {
		close(t.done)
		t.mu.Lock()
		t.stopped = true
		t.mu.Unlock()
		t.cond.Broadcast()
	})
}

func (t *Tracker) snapshotLocked() model.Notes {
	notes := util.GetKeys(t.notes)
	slices.Sort(notes)
	return notes
}

// pendingUpdate remembers which instant produced a snapshot so that a
// burst of changes at the same timestamp collapses into one notification.
type pendingUpdate struct {
	at    time.Time
	notes model.Notes
}

func (t *Tracker) publishLocked(at time.Time) {
	snapshot := t.snapshotLocked()
	if slices.Equal(snapshot, t.lastReported) {
		return
	}
	t.lastReported = snapshot
	if n := len(t.pending); n > 0 && t.pending[n-1].at.Equal(at) {
		t.pending[n-1].notes = snapshot
	} else {
		t.pending = append(t.pending, pendingUpdate{at: at, notes: snapshot})
	}
	t.cond.Signal()
}

// sweep removes every note whose expiry has passed. Stale heap entries
// (rescheduled notes) are popped and ignored.
func (t *Tracker) sweep(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for len(t.queue) > 0 && !t.queue[0].at.After(now) {
		entry := heap.Pop(&t.queue).(expiryEntry)
		n, ok := t.notes[entry.note]
		if ok && n.expiresAt.Equal(entry.at) {
			delete(t.notes, entry.note)
		}
	}
	t.publishLocked(now)
}

func (t *Tracker) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-t.done:
			return
		case now := <-ticker.C:
			t.sweep(now)
		}
	}
}

// pump moves queued notifications onto the updates channel so publishers
// never wait on the consumer.
func (t *Tracker) pump() {
	for {
		t.mu.Lock()
		for len(t.pending) == 0 && !t.stopped {
			t.cond.Wait()
		}
		if t.stopped {
			t.mu.Unlock()
			close(t.updates)
			return
		}
		batch := t.pending
		t.pending = nil
		t.mu.Unlock()

		for _, update := range batch {
			t.updates <- update.notes
		}
	}
}
