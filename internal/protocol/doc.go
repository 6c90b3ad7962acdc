// Package protocol groups the tdsMsg wire contract.
//
// Ownership boundary:
// - envelope: message kinds, constructors, JSON wire form
// - origin: sender origin patterns and validation
// - channel: inbound stream adapter
package protocol
