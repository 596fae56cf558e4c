package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver
)

func init() {
	rootCmd.AddCommand(portsCmd)
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "Lists MIDI ports",
	Long:  `Lists MIDI ports`,
	Run: func(cmd *cobra.Command, args []string) {
		listPorts()
	},
}

func listPorts() {
	defer midi.CloseDriver()

	fmt.Println("Available MIDI input ports:")
	for i, in := range midi.GetInPorts() {
		fmt.Printf("  %v: %v\n", i, in)
	}
	fmt.Println("\nAvailable MIDI output ports:")
	for i, out := range midi.GetOutPorts() {
		fmt.Printf("  %v: %v\n", i, out)
	}
}
