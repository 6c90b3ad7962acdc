// Package envelope owns the tdsMsg message taxonomy.
//
// Ownership boundary:
// - the six envelope kinds and their constructors
// - error code and navigation action constants
// - JSON wire form and per-kind field population checks
//
// Constructors never validate string contents; size and encoding limits
// belong to the transport.
package envelope
