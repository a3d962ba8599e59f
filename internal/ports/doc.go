// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters.
//
// # Port Interfaces
//
//   - [FrameSink]: Transmits encoded scale frames (serial line, stdout, ...)
//   - [ReadingSource]: Loads the recorded readings to replay
//   - [Logger]: Structured logging abstraction
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with concrete
// implementations (go.bug.st/serial, CSV files, zerolog, etc.).
package ports
