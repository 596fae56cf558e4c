package cmd

import (
	"fmt"
	"time"

	"github.com/jsphweid/mirlive/beat"
	"github.com/jsphweid/mirlive/chord"
	"github.com/jsphweid/mirlive/config"
	"github.com/jsphweid/mirlive/model"
	"github.com/jsphweid/mirlive/render"
	"github.com/jsphweid/mirlive/replay"
	"github.com/jsphweid/mirlive/server"
	"github.com/jsphweid/mirlive/tracker"
)

// engine wires the analysis components together and prints their output.
// Both listen and simulate drive it, one from a port, one from a file.
type engine struct {
	cfg     config.Config
	tracker *tracker.Tracker
	beat    *beat.Tracker
	store   *server.Store
	echo    *replay.Scheduler
}

func newEngine(cfg config.Config, store *server.Store, echo *replay.Scheduler) *engine {
	pedal := tracker.Pedal{
		Controller: cfg.SustainController,
		On:         cfg.SustainOnValue,
		Off:        cfg.SustainOffValue,
	}
	e := &engine{
		cfg:     cfg,
		tracker: tracker.New(pedal),
		beat:    beat.New(),
		store:   store,
		echo:    echo,
	}
	go e.chordLoop()
	go e.beatLoop()
	return e
}

func (e *engine) handle(ev model.NoteEvent) {
	e.tracker.ProcessEvent(ev)
	if ev.Kind == model.EventNoteOn && ev.Velocity > 0 {
		e.beat.Onset(ev.Time)
	}
	if e.echo != nil {
		e.echo.Schedule(ev, time.Duration(e.cfg.EchoDelayMs)*time.Millisecond, e.cfg.SemitoneShift)
	}
}

func (e *engine) chordLoop() {
	for notes := range e.tracker.Updates() {
		name, ok := chord.Identify(notes)
		fmt.Println(render.ChordLine(name, ok, notes, e.cfg.ChordColumnWidth))
		if e.store != nil {
			if !ok {
				name = ""
			}
			e.store.SetChord(name, notes)
		}
	}
}

func (e *engine) beatLoop() {
	for tick := range e.beat.Ticks() {
		if line := render.BeatLine(tick); line != "" {
			fmt.Println(line)
		}
		if e.store != nil {
			e.store.SetBeat(tick.BPM, tick.Confidence)
		}
	}
}

func (e *engine) stop() {
	e.tracker.Stop()
	e.beat.Stop()
	if e.echo != nil {
		e.echo.Stop()
	}
}

func mustConfig(path string) config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		panic("Could not load config: " + err.Error())
	}
	return cfg
}
