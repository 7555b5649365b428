// Package sim is the backend-abstracted client for driving simulator cases.
// Two interchangeable backends expose the same capability set: Automation
// talks to a live session through pkg/flowsheet, Mock is the in-memory
// stand-in for development and CI machines without the simulator installed.
package sim

import "errors"

var (
	// ErrNotConnected is returned by operations issued before Connect.
	ErrNotConnected = errors.New("backend not connected")

	// ErrNoCase is returned by stream operations issued before OpenCase.
	ErrNoCase = errors.New("no case loaded")

	// ErrUnknownBackend is returned by NewClient for an unrecognized kind.
	ErrUnknownBackend = errors.New("unknown backend")
)

// Stream is a named material or energy stream. Temperature and pressure are
// nil when unknown; units follow whatever convention the open case uses.
type Stream struct {
	Name        string             `json:"name"`
	Flow        float64            `json:"flow"`
	Temperature *float64           `json:"temperature,omitempty"`
	Pressure    *float64           `json:"pressure,omitempty"`
	Composition map[string]float64 `json:"composition,omitempty"`
}

// Backend is the capability set shared by every client backend. All methods
// are synchronous; one backend owns one logical session for its lifetime.
type Backend interface {
	// Connect acquires the session. Connecting an already-connected
	// backend is a no-op.
	Connect() error

	// OpenCase loads a case file, replacing whatever was loaded before.
	OpenCase(path string) error

	// Run triggers a solve and blocks until the backend returns control.
	Run() error

	// Streams reads the currently known streams. Order is not guaranteed
	// to be meaningful; entries are best-effort snapshots.
	Streams() ([]Stream, error)

	// SetStream writes a stream's fields by name. Nil temperature and
	// pressure are left untouched.
	SetStream(name string, s Stream) error

	// Save writes the case back out; an empty path means save in place.
	// It reports the path the case ended up at, empty when the backend
	// saved in place without one.
	Save(path string) (string, error)

	// Close releases the session. Closing twice is safe.
	Close() error
}
