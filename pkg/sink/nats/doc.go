// Package nats publishes sweep results to NATS JetStream.
//
// NATS subject (aka topic) patterns:
//   - Case-sensitive, dot-separated, no spaces
//   - Valid chars: alphanumeric, `-` or `_`
//   - Max length: 255 bytes
//
// Results are published to `prefix.runName.index`, one message per sweep
// point, and retained in a JetStream stream so a consumer can follow a
// run live or replay it after the fact.
package nats
