package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mirlive",
	Short: "Live MIR from a MIDI stream",
	Long:  `Live music information retrieval: chord naming, sounding-note tracking and beat detection from MIDI input.`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
