package main

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"

	"github.com/leandrodaf/midiin/internal/logger"
	"github.com/leandrodaf/midiin/sdk/contracts"
	midiin "github.com/leandrodaf/midiin/sdk/midi"
)

func main() {
	log := logger.NewZapLogger()

	port, err := midiin.NewInPort(
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.InfoLevel),
		contracts.WithEventFilter(contracts.EventFilter{
			Types: []midi.Type{midi.NoteOnMsg, midi.NoteOffMsg},
		}),
	)
	if err != nil {
		log.Error("failed to initialize MIDI input port", log.Field().Error("error", err))
		return
	}
	defer port.Close()

	devices, err := port.Devices()
	if err != nil || len(devices) == 0 {
		log.Error("no MIDI devices found", log.Field().Error("error", err))
		return
	}
	fmt.Println("Available MIDI devices:", devices)

	sub := port.EventsReceived().Subscribe(func(batch []contracts.TimedEvent) {
		for _, ev := range batch {
			log.Info("MIDI event",
				log.Field().Uint64("timestamp", ev.Timestamp),
				log.Field().String("message", ev.Event.Message.String()),
			)
		}
	})
	defer sub.Unsubscribe()

	if err = port.Connect(devices[0].ID); err != nil {
		log.Error("failed to connect MIDI device", log.Field().Error("error", err))
		return
	}

	fmt.Println("Capturing MIDI events... Press Ctrl+C to exit.")
	select {} // Run indefinitely
}
