package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/leandrodaf/midiin/sdk/contracts"
	"github.com/leandrodaf/midiin/sdk/midi"
)

var listenDeviceID string

func init() {
	listenCmd.Flags().StringVarP(&listenDeviceID, "device", "d", "0", "device id to listen to")
	rootCmd.AddCommand(listenCmd)
}

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Connect to a device and print incoming events",
	RunE: func(cmd *cobra.Command, args []string) error {
		port, err := midi.NewInPort(
			contracts.WithDeviceChangeDebounce(250 * time.Millisecond),
		)
		if err != nil {
			return err
		}
		defer port.Close()

		events := port.EventsReceived().Subscribe(func(batch []contracts.TimedEvent) {
			for _, ev := range batch {
				fmt.Printf("%d  %s\n", ev.Timestamp, ev.Event.Message.String())
			}
		})
		defer events.Unsubscribe()

		// On hot-plug churn the positional id may point elsewhere; just try
		// to reattach to the configured id.
		changed := port.DevicesChanged().Subscribe(func(struct{}) {
			if port.IsConnected() {
				return
			}
			if err := port.Connect(listenDeviceID); err != nil {
				fmt.Fprintf(os.Stderr, "reconnect failed: %v\n", err)
			}
		})
		defer changed.Unsubscribe()

		if err := port.Connect(listenDeviceID); err != nil {
			return err
		}
		fmt.Printf("listening on device %s (%s), press Ctrl+C to exit\n",
			port.DeviceID(), port.Protocol())

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		port.Disconnect()
		return nil
	},
}
