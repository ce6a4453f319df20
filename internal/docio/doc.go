// Package docio persists documents as YAML, optionally wrapped in a zstd
// stream. The format is a stand-in for the binary encodings of either
// schema version: every block is written with its type tag and an ordered
// list of typed fields.
package docio
