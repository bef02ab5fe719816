package midi

import (
	"github.com/leandrodaf/midiin/internal/logger"
	"github.com/leandrodaf/midiin/sdk/contracts"
)

// applyDefaultOptions sets default values for ClientOptions if not
// explicitly provided.
func applyDefaultOptions(opts ...contracts.Option) (contracts.ClientOptions, error) {
	options := &contracts.ClientOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.Logger == nil {
		options.Logger = logger.NewZapLogger()
	}
	if options.LogLevel == 0 {
		options.LogLevel = contracts.InfoLevel
	}
	if options.CoreMIDIConfig == nil {
		options.CoreMIDIConfig = &contracts.CoreMIDIConfig{
			ClientName: "midiin",
			PortName:   "midiin input port",
		}
	}
	if options.CoreMIDIConfig.PortName == "" {
		options.CoreMIDIConfig.PortName = options.CoreMIDIConfig.ClientName + " input port"
	}
	if options.LogFilePath != "" {
		options.Logger.SetDestination(contracts.FileLog, options.LogFilePath)
	}

	options.Logger.SetLevel(options.LogLevel)
	return *options, nil
}
