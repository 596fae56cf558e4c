package cmd

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jsphweid/mirlive/model"
	"github.com/jsphweid/mirlive/replay"
	"github.com/jsphweid/mirlive/server"
	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver
)

var (
	listenPortName string
	listenEcho     string
	listenHTTP     bool
	listenConfig   string
)

func init() {
	rootCmd.AddCommand(listenCmd)
	listenCmd.Flags().StringVar(&listenPortName, "port", "", "MIDI input port name (substring match)")
	listenCmd.Flags().StringVar(&listenEcho, "echo", "", "MIDI output port for the delayed pitch-shifted echo")
	listenCmd.Flags().BoolVar(&listenHTTP, "http", false, "serve the analysis snapshot over HTTP")
	listenCmd.Flags().StringVar(&listenConfig, "config", "", "path to yaml config")
}

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Analyzes live MIDI input",
	Long:  `Analyzes live MIDI input`,
	Run: func(cmd *cobra.Command, args []string) {
		listen()
	},
}

func chooseInPort() drivers.In {
	if listenPortName != "" {
		in, err := midi.FindInPort(listenPortName)
		if err != nil {
			panic("Could not find MIDI input " + listenPortName)
		}
		return in
	}

	ins := midi.GetInPorts()
	switch len(ins) {
	case 0:
		panic("No MIDI input ports detected!")
	case 1:
		fmt.Printf("Automatically selected input port: %v\n", ins[0])
		return ins[0]
	}

	fmt.Println("Available MIDI input ports:")
	for i, in := range ins {
		fmt.Printf("  %v: %v\n", i, in)
	}
	var idx int
	fmt.Print("\nSelect MIDI input port number: ")
	if _, err := fmt.Scanln(&idx); err != nil || idx < 0 || idx >= len(ins) {
		panic("Invalid port selection")
	}
	return ins[idx]
}

func listen() {
	cfg := mustConfig(listenConfig)
	defer midi.CloseDriver()

	in := chooseInPort()

	var store *server.Store
	if listenHTTP {
		store = server.NewStore()
		go func() {
			log.Fatal(http.ListenAndServe(cfg.HTTPAddr, server.Router(store)))
		}()
	}

	var echo *replay.Scheduler
	if listenEcho != "" {
		out, err := midi.FindOutPort(listenEcho)
		if err != nil {
			panic("Could not find MIDI output " + listenEcho)
		}
		send, err := midi.SendTo(out)
		if err != nil {
			panic("Could not open MIDI output: " + err.Error())
		}
		echo = replay.New(send)
	}

	eng := newEngine(cfg, store, echo)

	stop, err := midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		now := time.Now()
		var ch, key, vel, ctrl, val uint8
		switch {
		case msg.GetNoteStart(&ch, &key, &vel):
			eng.handle(model.NoteOn(key, vel, now))
		case msg.GetNoteEnd(&ch, &key):
			// note on with velocity 0 lands here too
			eng.handle(model.NoteOff(key, now))
		case msg.GetControlChange(&ch, &ctrl, &val):
			eng.handle(model.ControlChange(ctrl, val, now))
		default:
			// clock etc: accepted, ignored
		}
	})
	if err != nil {
		panic("Could not listen to MIDI input: " + err.Error())
	}

	fmt.Printf("Connected to %v. Press Ctrl+C to exit.\n", in)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	stop()
	eng.stop()
}
