package scalesim

import (
	"github.com/bft-labs/scalesim/pkg/log"
	"github.com/bft-labs/scalesim/pkg/packet"
)

// Version information for the scalesim module.
const (
	Version              = "1.0.0"
	MinCompatibleVersion = "1.0.0"
)

// ModuleVersions returns the versions of the modules the simulator is built from.
func ModuleVersions() map[string]string {
	return map[string]string{
		"scalesim": Version,
		"packet":   packet.Version,
		"log":      log.Version,
	}
}
