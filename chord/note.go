package chord

import "fmt"

// sharps only, no enharmonic flats
var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

func NoteName(n uint8) string {
	return noteNames[n%12]
}

// NoteNameOctave renders e.g. 60 as "C4".
func NoteNameOctave(n uint8) string {
	return fmt.Sprintf("%v%v", noteNames[n%12], int(n/12)-1)
}
