package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "midiin",
	Short: "MIDI input device tool",
	Long:  `Enumerate MIDI input devices and monitor incoming events.`,
}

func main() {
	cobra.CheckErr(rootCmd.Execute())
}
