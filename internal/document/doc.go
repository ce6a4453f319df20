// Package document is the in-memory model shared by both sides of a
// conversion.
//
// A document is an arena of typed blocks addressed by dense integer
// identifiers. Fields hold scalars, strings, vectors, nested structs,
// arrays or links. A link stores the identifier of another block of the
// same document, -1 when absent. Ref links own their target (children);
// Ptr links are back references and never drive traversal.
//
// Field paths use "/" as separator and numeric segments to index arrays,
// e.g. "Controlled Blocks/2/Node Name".
package document
