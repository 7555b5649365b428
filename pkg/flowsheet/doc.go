// Package flowsheet defines the contract with the simulator's hierarchical
// data tree and the stream/block accessors built on top of it.
//
// The simulator exposes every input and result as a named node reachable by a
// backslash-separated path such as
//
//	\Data\Streams\S1\Input\TEMP\MIXED
//
// Node names vary across simulator versions, so each scalar operation is
// declared as an ordered list of candidate paths tried in order. Engine
// implementations provide the transport: apwn.Engine drives the vendor COM
// object on Windows, MemEngine is the in-memory stand-in for offline
// development and tests.
package flowsheet
