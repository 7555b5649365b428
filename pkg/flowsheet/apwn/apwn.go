// Package apwn drives the vendor's automation document (ProgID
// "Apwn.Document") as a flowsheet.Engine. A live session only exists on
// Windows with the simulator installed; on every other platform New fails
// fast with flowsheet.ErrAutomationUnavailable so callers can fall back to
// flowsheet.MemEngine without probing the OS themselves.
package apwn

import (
	"cmp"
	"time"
)

// DefaultProgID is the automation document class the simulator registers.
const DefaultProgID = "Apwn.Document"

// Options configure a session. The zero value is usable: hidden UI, dialogs
// suppressed off, a handful of busy retries.
type Options struct {
	// ProgID overrides the automation class, e.g. a version-pinned
	// "Apwn.Document.40.0".
	ProgID string

	// Visible shows the simulator UI. Both property spellings observed in
	// the wild (Visible, VisibleApp) are tried; refusal is not an error.
	Visible bool

	// SuppressDialogs asks the document to answer its own modal prompts,
	// which would otherwise hang an unattended sweep.
	SuppressDialogs bool

	// BusyRetries and BusyBackoff govern retries of calls rejected while
	// the automation server is busy. Solve calls are never retried.
	BusyRetries int
	BusyBackoff time.Duration
}

func (o Options) withDefaults() Options {
	o.ProgID = cmp.Or(o.ProgID, DefaultProgID)
	o.BusyRetries = cmp.Or(o.BusyRetries, 5)
	o.BusyBackoff = cmp.Or(o.BusyBackoff, 200*time.Millisecond)
	return o
}

// Method names are probed in declared order, mirroring how case archives and
// solve entrypoints moved across simulator releases. An entry's first element
// names a child dispatch to route through; empty means the document itself.
var (
	openMethods = []string{"InitFromArchive", "InitFromFile", "Open"}

	runEntrypoints = [][2]string{
		{"Engine", "Run2"},
		{"Engine", "Run"},
		{"", "Run2"},
		{"", "Run"},
	}
)
