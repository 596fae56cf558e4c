package replay

import (
	"container/heap"
	"sync"
	"time"

	"github.com/jsphweid/mirlive/model"
	"gitlab.com/gomidi/midi/v2"
)

const drainInterval = time.Millisecond

type scheduled struct {
	at  time.Time
	msg midi.Message
}

type messageQueue []scheduled

func (q messageQueue) Len() int            { return len(q) }
func (q messageQueue) Less(i, j int) bool  { return q[i].at.Before(q[j].at) }
func (q messageQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *messageQueue) Push(x interface{}) { *q = append(*q, x.(scheduled)) }
func (q *messageQueue) Pop() interface{} {
	old := *q
	n := len(old)
	x := old[n-1]
	*q = old[:n-1]
	return x
}

// Scheduler echoes note events after a delay, pitch-shifted, through the
// given send func (typically midi.SendTo on an out port).
type Scheduler struct {
	mu    sync.Mutex
	queue messageQueue
	send  func(midi.Message) error

	stopOnce sync.Once
	done     chan struct{}
}

func New(send func(midi.Message) error) *Scheduler {
	s := newScheduler(send)
	go s.loop()
	return s
}

func newScheduler(send func(midi.Message) error) *Scheduler {
	return &Scheduler{send: send, done: make(chan struct{})}
}

// Schedule queues the echoed counterpart of a note event for delivery at
// the event time plus the delay. Non-note events are ignored. The note off
// must shift by the same amount as its note on or the echo never ends.
func (s *Scheduler) Schedule(ev model.NoteEvent, delay time.Duration, shift int) {
	var msg midi.Message
	switch {
	case ev.Kind == model.EventNoteOn && ev.Velocity > 0:
		msg = midi.NoteOn(0, shiftNote(ev.Note, shift), ev.Velocity)
	case ev.Kind == model.EventNoteOff || ev.Kind == model.EventNoteOn:
		msg = midi.NoteOff(0, shiftNote(ev.Note, shift))
	default:
		return
	}

	s.mu.Lock()
	heap.Push(&s.queue, scheduled{at: ev.Time.Add(delay), msg: msg})
	s.mu.Unlock()
}

// Stop halts the drain loop. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
}

// flushDue sends every message whose time has come, in time order.
func (s *Scheduler) flushDue(now time.Time) {
	s.mu.Lock()
	var due []midi.Message
	for len(s.queue) > 0 && !s.queue[0].at.After(now) {
		due = append(due, heap.Pop(&s.queue).(scheduled).msg)
	}
	s.mu.Unlock()

	for _, msg := range due {
		// a failed send drops the message; the port is gone, not us
		_ = s.send(msg)
	}
}

func (s *Scheduler) loop() {
	ticker := time.NewTicker(drainInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.flushDue(now)
		}
	}
}

func shiftNote(n uint8, shift int) uint8 {
	v := int(n) + shift
	if v < 0 {
		v = 0
	}
	if v > 127 {
		v = 127
	}
	return uint8(v)
}
