// Package registry is the per-conversion Block Registry.
//
// It maps each source block identifier to the destination block it became
// and carries a "handled" bit per source block. A source block is handled
// exactly once: either mapped to a destination block or explicitly ignored
// (handled with no destination). Rules consult the handled bit before
// recursing into children so that cyclic references terminate on the
// second visit.
package registry
