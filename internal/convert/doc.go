// Package convert hosts the per-type transformation rules and runs them
// over a whole source document.
//
// A Dispatcher maps source type tags to rules. Modules register their
// rules at startup; registering a tag twice panics. Convert drives one
// document through the ordered phases: every root is dispatched, deferred
// links are resolved, controller sequences and controlled owners are
// finalized, the LOD restructuring pass runs when the shaders flagged the
// document as a LOD tile, and finally every source block still unhandled
// is reported.
package convert
