// Package types provides shared data structures for the ReportDeck backend.
//
// This package defines core types used across all backend components,
// ensuring type safety and consistent data structures.
//
// Core Types:
//   - WidgetRecord: One persisted widget placement within a container
//   - RecordSet: Insertion-ordered collection of records keyed by alias
//   - Event: Stream notification emitted after container mutations
//
// A container is never stored as an object of its own: it is the RecordSet
// materialized from one preference entry and written back wholesale on every
// mutation. RecordSet keeps insertion order stable across JSON round trips so
// that records sharing a sortOrder keep their relative order on display.
package types
