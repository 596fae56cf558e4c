package model

import "time"

type Notes = []uint8

type EventKind uint8

const (
	EventNoteOn EventKind = iota
	EventNoteOff
	EventControlChange
	// EventOther covers clock, sysex, aftertouch... everything the
	// analysis engine accepts and ignores.
	EventOther
)

// NoteEvent is the shared input payload for all trackers. Immutable once
// produced; the transport layer translates raw MIDI messages into these.
type NoteEvent struct {
	Kind       EventKind
	Note       uint8
	Velocity   uint8
	Controller uint8
	Value      uint8
	Time       time.Time
}

func NoteOn(note, velocity uint8, t time.Time) NoteEvent {
	return NoteEvent{Kind: EventNoteOn, Note: note, Velocity: velocity, Time: t}
}

func NoteOff(note uint8, t time.Time) NoteEvent {
	return NoteEvent{Kind: EventNoteOff, Note: note, Time: t}
}

func ControlChange(controller, value uint8, t time.Time) NoteEvent {
	return NoteEvent{Kind: EventControlChange, Controller: controller, Value: value, Time: t}
}
