// Package domain contains the core domain entities and value objects for scalesim.
//
// This package represents the innermost layer of the Clean Architecture. It has
// no dependencies on infrastructure concerns (serial ports, file system, logging)
// and contains only the playback data model.
//
// # Entities
//
//   - [Reading]: One recorded row of per-channel masses
//   - [Session]: The readings, cadence and mode of one playback invocation
//
// Frame bytes themselves are produced by pkg/packet.
package domain
