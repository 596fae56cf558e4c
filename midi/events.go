package midi

import (
	"sort"
	"time"

	"github.com/jsphweid/mirlive/model"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Events flattens every track of an SMF file into wall-clock note events
// relative to base, as if the file were being performed live. Note offs
// sort before note ons at the same instant so retriggered notes survive.
func Events(s *smf.SMF, base time.Time) []model.NoteEvent {
	var events []model.NoteEvent

	for _, track := range s.Tracks {
		var absTicks int64
		for _, event := range track {
			absTicks += int64(event.Delta)
			at := base.Add(time.Duration(s.TimeAt(absTicks)) * time.Microsecond)
			var channel, key, velocity, controller, value uint8
			switch {
			case event.Message.GetNoteOn(&channel, &key, &velocity):
				events = append(events, model.NoteOn(key, velocity, at))
			case event.Message.GetNoteOff(&channel, &key, &velocity):
				events = append(events, model.NoteOff(key, at))
			case event.Message.GetControlChange(&channel, &controller, &value):
				events = append(events, model.ControlChange(controller, value, at))
			}
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Time.Equal(events[j].Time) {
			return events[i].Time.Before(events[j].Time)
		}
		return events[i].Kind == model.EventNoteOff && events[j].Kind != model.EventNoteOff
	})

	return events
}
