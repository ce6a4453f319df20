// Package controller converts animation controller chains and assembles
// the sequences that drive them.
//
// Conversion happens in two phases. Attach and Sequence run while the
// dispatcher walks the source graph: every controller reachable from an
// owner is rebuilt and appended to the owner's chain, and a controller that
// several owners share gets one clone per extra owner. FinalizeSequences
// runs once the whole destination graph exists and rewrites the controlled
// entries of every sequence: type names are back-filled and every clone
// gains its own entry.
package controller
