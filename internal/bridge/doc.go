// Package bridge owns the receiving side of the tdsMsg protocol.
//
// Ownership boundary:
// - origin check of every inbound event against the configured pattern
// - envelope decoding and per-kind dispatch
// - GO ticket checks and the ERROR code policy
//
// Sending is fire-and-forget through a Poster; nothing is retried.
package bridge
