package inputwatcher

import "github.com/bft-labs/scalesim/pkg/scalesim"

// WithInputWatcher returns a scalesim Option that reloads the input file
// whenever it changes on disk.
//
// Usage:
//
//	sim, err := scalesim.New(cfg,
//	    inputwatcher.WithInputWatcher(inputwatcher.Config{
//	        DebounceDelay: 500 * time.Millisecond,
//	    }),
//	)
func WithInputWatcher(cfg Config) scalesim.Option {
	return scalesim.WithPlugin(New(cfg))
}
