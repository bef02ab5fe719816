package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leandrodaf/midiin/sdk/midi"
)

func init() {
	rootCmd.AddCommand(devicesCmd)
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List available MIDI input devices",
	RunE: func(cmd *cobra.Command, args []string) error {
		port, err := midi.NewInPort()
		if err != nil {
			return err
		}
		defer port.Close()

		devices, err := port.Devices()
		if err != nil {
			return err
		}
		if len(devices) == 0 {
			fmt.Println("no MIDI input devices found")
			return nil
		}

		for _, dev := range devices {
			line := fmt.Sprintf("%s  %s", dev.ID, dev.Name)
			if dev.Manufacturer != "" {
				line += fmt.Sprintf("  (%s)", dev.Manufacturer)
			}
			fmt.Println(line)
		}
		return nil
	},
}
