// Package batch converts many documents concurrently. Each document is an
// independent conversion run on a worker pool; the workers share only the
// progress aggregator and the output writer, both serialized by a mutex.
// Cancellation is checked between documents, never inside one.
package batch
