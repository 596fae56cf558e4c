package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jsphweid/mirlive/chord"
	"github.com/jsphweid/mirlive/model"
	"github.com/jsphweid/mirlive/util"
)

const NoChord = "no chord"

var (
	chordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	sureStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("9")).Bold(true)
	maybeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

// ChordLine renders one line per sounding-set change: the chord name in a
// fixed-width column followed by every sounding note.
func ChordLine(name string, ok bool, notes model.Notes, width int) string {
	label := NoChord
	style := dimStyle
	if ok {
		label = name
		style = chordStyle
	}
	label = label[:util.Min(len(label), width)]
	padded := strings.Repeat(" ", width-len(label)) + label

	names := "none"
	if len(notes) > 0 {
		parts := make([]string, len(notes))
		for i, n := range notes {
			parts[i] = chord.NoteNameOctave(n)
		}
		names = strings.Join(parts, " ")
	}

	return fmt.Sprintf("%v  %v", style.Render(padded), names)
}

// BeatLine renders a beat tick; empty for BeatNone.
func BeatLine(t model.BeatTick) string {
	var marker string
	switch t.Class {
	case model.BeatSure:
		marker = sureStyle.Render(" BEAT ")
	case model.BeatMaybe:
		marker = maybeStyle.Render("beat? ")
	default:
		return ""
	}
	return fmt.Sprintf("%v %v", marker,
		infoStyle.Render(fmt.Sprintf("BPM ≈ %v (confidence: %.2f)", t.BPM, t.Confidence)))
}
