package cmd

import (
	"fmt"
	"time"

	midifile "github.com/jsphweid/mirlive/midi"
	"github.com/spf13/cobra"
)

var simulateConfig string

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().StringVar(&simulateConfig, "config", "", "path to yaml config")
}

var simulateCmd = &cobra.Command{
	Use:   "simulate <file.mid>",
	Short: "Plays a MIDI file through the live analysis engine",
	Long:  `Plays a MIDI file through the live analysis engine`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			panic("Need 1 arg...")
		}
		simulate(args[0])
	},
}

func simulate(path string) {
	cfg := mustConfig(simulateConfig)

	s, err := midifile.ReadFile(path)
	if err != nil {
		panic("Could not read midi file: " + err.Error())
	}

	events := midifile.Events(s, time.Now().Add(500*time.Millisecond))
	fmt.Printf("Simulating %v events from %v\n", len(events), path)

	eng := newEngine(cfg, nil, nil)
	for _, ev := range events {
		time.Sleep(time.Until(ev.Time))
		eng.handle(ev)
	}

	// let the final release tails ring out before tearing down
	time.Sleep(3 * time.Second)
	eng.stop()
}
