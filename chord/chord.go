package chord

import (
	"fmt"
	"sort"

	"github.com/jsphweid/mirlive/model"
)

// template is an interval pattern measured in semitones from the root.
// Intervals above 11 (9ths, 11ths, 13ths) are folded mod 12 when matching,
// since the input is reduced to pitch classes.
type template struct {
	intervals []int
	name      string
}

var triads = []template{
	{[]int{0, 4, 7}, "Major"},
	{[]int{0, 3, 7}, "Minor"},
	{[]int{0, 3, 6}, "Diminished"},
	{[]int{0, 4, 8}, "Augmented"},
	{[]int{0, 5, 7}, "Sus4"},
	{[]int{0, 2, 7}, "Sus2"},
}

var sevenths = []template{
	{[]int{0, 4, 7, 10}, "7"},
	{[]int{0, 4, 7, 11}, "Maj7"},
	{[]int{0, 3, 7, 10}, "m7"},
	{[]int{0, 3, 6, 10}, "m7b5"},
	{[]int{0, 3, 6, 9}, "dim7"},
	{[]int{0, 3, 7, 11}, "mMaj7"},
	{[]int{0, 4, 8, 11}, "Aug7"},
	{[]int{0, 4, 8, 10}, "7#5"},
	{[]int{0, 4, 6, 10}, "7b5"},
	{[]int{0, 5, 7, 10}, "7sus4"},
}

var ninths = []template{
	{[]int{0, 4, 7, 10, 14}, "9"},
	{[]int{0, 4, 7, 11, 14}, "Maj9"},
	{[]int{0, 3, 7, 10, 14}, "m9"},
	{[]int{0, 4, 7, 10, 13}, "7b9"},
	{[]int{0, 4, 7, 10, 15}, "7#9"},
}

var extended = []template{
	{[]int{0, 4, 7, 10, 14, 17}, "11"},
	{[]int{0, 4, 7, 11, 14, 17}, "Maj11"},
	{[]int{0, 3, 7, 10, 14, 17}, "m11"},
	{[]int{0, 4, 7, 10, 14, 17, 21}, "13"},
	{[]int{0, 4, 7, 11, 14, 17, 21}, "Maj13"},
	{[]int{0, 3, 7, 10, 14, 17, 21}, "m13"},
}

var addedNote = []template{
	{[]int{0, 4, 7, 14}, "add9"},
	{[]int{0, 3, 7, 14}, "madd9"},
	{[]int{0, 4, 7, 17}, "add11"},
	{[]int{0, 3, 7, 17}, "madd11"},
	{[]int{0, 4, 7, 21}, "add13"},
	{[]int{0, 3, 7, 21}, "madd13"},
}

var sixths = []template{
	{[]int{0, 4, 7, 9}, "6"},
	{[]int{0, 3, 7, 9}, "m6"},
	{[]int{0, 4, 7, 9, 14}, "6/9"},
}

// families in match order: largest interval sets first so that a voicing
// carrying a 7th and a 9th names the richer chord, not its triad subset.
var families = [][]template{extended, ninths, sevenths, sixths, addedNote, triads}

// Identify names the chord formed by the given note numbers, as a slash
// chord when the lowest note is not the root. Returns false when fewer than
// three distinct pitch classes are sounding or nothing matches.
func Identify(notes model.Notes) (string, bool) {
	if len(notes) < 3 {
		return "", false
	}

	bass := notes[0]
	for _, n := range notes {
		if n < bass {
			bass = n
		}
	}

	seen := make(map[int]bool)
	var pitchClasses []int
	for _, n := range notes {
		pc := int(n % 12)
		if !seen[pc] {
			seen[pc] = true
			pitchClasses = append(pitchClasses, pc)
		}
	}
	if len(pitchClasses) < 3 {
		return "", false
	}
	sort.Ints(pitchClasses)

	root, name, ok := identify(pitchClasses)
	if !ok {
		return "", false
	}

	res := fmt.Sprintf("%v %v", NoteName(uint8(root)), name)
	if int(bass%12) != root {
		res += "/" + NoteName(bass)
	}
	return res, true
}

func identify(pitchClasses []int) (int, string, bool) {
	for root := 0; root < 12; root++ {
		normalized := make(map[int]bool, len(pitchClasses))
		for _, pc := range pitchClasses {
			normalized[(pc-root+12)%12] = true
		}
		for _, family := range families {
			for _, t := range family {
				if matches(normalized, t) {
					return root, t.name, true
				}
			}
		}
	}
	return 0, "", false
}

func matches(normalized map[int]bool, t template) bool {
	for _, interval := range t.intervals {
		if !normalized[interval%12] {
			return false
		}
	}
	// Tolerate up to 2 passing/extra notes beyond the pattern. This trades
	// the occasional over-match for far fewer false negatives.
	return len(normalized) <= len(t.intervals)+2
}
