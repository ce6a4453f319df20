// Package cli turns the nifconv command line into an app.Config. It owns the
// process exit codes: usage errors exit with 2, runtime errors with 1 and a
// batch with failed documents with 3.
package cli
