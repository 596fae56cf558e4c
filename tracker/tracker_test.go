package tracker

import (
	"testing"
	"time"

	"github.com/jsphweid/mirlive/model"
	"github.com/stretchr/testify/assert"
)

var base = time.Date(2023, 4, 1, 12, 0, 0, 0, time.UTC)

func at(d time.Duration) time.Time {
	return base.Add(d)
}

func pedalOff(tr *Tracker, t time.Time) {
	tr.ProcessEvent(model.ControlChange(DefaultPedal.Controller, DefaultPedal.Off, t))
}

func pedalOn(tr *Tracker, t time.Time) {
	tr.ProcessEvent(model.ControlChange(DefaultPedal.Controller, DefaultPedal.On, t))
}

func TestVelocityScaledExpiry(t *testing.T) {
	assert := assert.New(t)
	tr := newTracker(DefaultPedal)
	pedalOff(tr, at(0))

	tr.ProcessEvent(model.NoteOn(60, 100, at(0)))
	tr.ProcessEvent(model.NoteOn(62, 50, at(0)))

	tr.sweep(at(1999 * time.Millisecond))
	assert.Equal(model.Notes{60, 62}, tr.Sounding())

	// soft note lasts 2s, loud note 3s
	tr.sweep(at(2 * time.Second))
	assert.Equal(model.Notes{60}, tr.Sounding())

	tr.sweep(at(3 * time.Second))
	assert.Empty(tr.Sounding())
}

func TestReleaseTailWithoutSustain(t *testing.T) {
	assert := assert.New(t)
	tr := newTracker(DefaultPedal)
	pedalOff(tr, at(0))

	tr.ProcessEvent(model.NoteOn(60, 100, at(0)))
	tr.ProcessEvent(model.NoteOff(60, at(50*time.Millisecond)))

	// released keys ring for 200ms, not until the 3s timeout
	tr.sweep(at(240 * time.Millisecond))
	assert.Equal(model.Notes{60}, tr.Sounding())

	tr.sweep(at(251 * time.Millisecond))
	assert.Empty(tr.Sounding())
}

func TestReleaseNeverLengthens(t *testing.T) {
	assert := assert.New(t)
	tr := newTracker(DefaultPedal)
	pedalOff(tr, at(0))

	tr.ProcessEvent(model.NoteOn(60, 100, at(0)))
	// a release tail ending after the scheduled expiry changes nothing
	tr.ProcessEvent(model.NoteOff(60, at(2900*time.Millisecond)))

	tr.sweep(at(2999 * time.Millisecond))
	assert.Equal(model.Notes{60}, tr.Sounding())

	tr.sweep(at(3 * time.Second))
	assert.Empty(tr.Sounding())
}

func TestSustainHoldsReleasedNotes(t *testing.T) {
	assert := assert.New(t)
	tr := newTracker(DefaultPedal) // pedal starts engaged

	tr.ProcessEvent(model.NoteOn(60, 100, at(0)))
	tr.ProcessEvent(model.NoteOff(60, at(100*time.Millisecond)))

	// the pedal keeps the note alive past the release
	tr.sweep(at(150 * time.Millisecond))
	assert.Equal(model.Notes{60}, tr.Sounding())

	// pedal up: the note ends 200ms after its key release
	pedalOff(tr, at(200*time.Millisecond))
	tr.sweep(at(290 * time.Millisecond))
	assert.Equal(model.Notes{60}, tr.Sounding())
	tr.sweep(at(301 * time.Millisecond))
	assert.Empty(tr.Sounding())
}

func TestNoteOnVelocityZeroIsNoteOff(t *testing.T) {
	assert := assert.New(t)
	tr := newTracker(DefaultPedal)
	pedalOff(tr, at(0))

	tr.ProcessEvent(model.NoteOn(60, 100, at(0)))
	tr.ProcessEvent(model.NoteOn(60, 0, at(50*time.Millisecond)))

	tr.sweep(at(251 * time.Millisecond))
	assert.Empty(tr.Sounding())
}

func TestRetriggerClearsPendingRelease(t *testing.T) {
	assert := assert.New(t)
	tr := newTracker(DefaultPedal)

	tr.ProcessEvent(model.NoteOn(60, 100, at(0)))
	tr.ProcessEvent(model.NoteOff(60, at(100*time.Millisecond)))
	// retrigger while the pedal is down: the stale release must not apply
	tr.ProcessEvent(model.NoteOn(60, 100, at(200*time.Millisecond)))

	pedalOff(tr, at(300*time.Millisecond))
	tr.sweep(at(1 * time.Second))
	assert.Equal(model.Notes{60}, tr.Sounding())

	tr.sweep(at(3200 * time.Millisecond))
	assert.Empty(tr.Sounding())
}

func TestStaleExpiryEntriesIgnored(t *testing.T) {
	assert := assert.New(t)
	tr := newTracker(DefaultPedal)
	pedalOff(tr, at(0))

	tr.ProcessEvent(model.NoteOn(60, 100, at(0)))
	// reschedules expiry to 4s; the 3s heap entry goes stale
	tr.ProcessEvent(model.NoteOn(60, 100, at(1*time.Second)))

	tr.sweep(at(3 * time.Second))
	assert.Equal(model.Notes{60}, tr.Sounding())

	tr.sweep(at(4 * time.Second))
	assert.Empty(tr.Sounding())
}

func TestPedalIdempotent(t *testing.T) {
	assert := assert.New(t)
	tr := newTracker(DefaultPedal)

	pedalOn(tr, at(0))
	pedalOn(tr, at(10*time.Millisecond))
	assert.True(tr.sustain)
	assert.Empty(tr.pending)

	// a value that is neither on nor off is ignored
	tr.ProcessEvent(model.ControlChange(DefaultPedal.Controller, 42, at(20*time.Millisecond)))
	assert.True(tr.sustain)
}

func TestIgnoresUnknownEvents(t *testing.T) {
	assert := assert.New(t)
	tr := newTracker(DefaultPedal)

	tr.ProcessEvent(model.NoteEvent{Kind: model.EventOther, Time: at(0)})
	tr.ProcessEvent(model.ControlChange(1, 127, at(0)))
	tr.ProcessEvent(model.NoteOff(60, at(0))) // note off for a silent note

	assert.Empty(tr.Sounding())
	assert.Empty(tr.pending)
}

func TestSameInstantChangesCoalesce(t *testing.T) {
	assert := assert.New(t)
	tr := newTracker(DefaultPedal)

	tr.ProcessEvent(model.NoteOn(60, 100, at(0)))
	tr.ProcessEvent(model.NoteOn(64, 100, at(0)))

	// one notification carrying the final set, not two
	assert.Len(tr.pending, 1)
	assert.Equal(model.Notes{60, 64}, tr.pending[0].notes)
}

func TestUpdatesArriveInOrder(t *testing.T) {
	assert := assert.New(t)
	tr := newTracker(DefaultPedal)
	go tr.pump()
	defer tr.Stop()

	tr.ProcessEvent(model.NoteOn(60, 100, at(0)))
	tr.ProcessEvent(model.NoteOn(64, 100, at(10*time.Millisecond)))
	tr.ProcessEvent(model.NoteOn(67, 100, at(20*time.Millisecond)))

	assert.Equal(model.Notes{60}, <-tr.Updates())
	assert.Equal(model.Notes{60, 64}, <-tr.Updates())
	assert.Equal(model.Notes{60, 64, 67}, <-tr.Updates())
}

func TestStopIsIdempotent(t *testing.T) {
	tr := New(DefaultPedal)
	tr.Stop()
	tr.Stop()

	_, open := <-tr.Updates()
	assert.False(t, open)
}
