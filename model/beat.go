package model

import "time"

type BeatClass uint8

const (
	BeatNone BeatClass = iota
	BeatMaybe
	BeatSure
)

// BeatTick is emitted by the beat tracker's phase loop when the clock
// crosses a beat boundary with enough confidence to say so.
type BeatTick struct {
	Class      BeatClass
	BPM        int
	Confidence float64
	Time       time.Time
}
