// Package otel bridges the gateway's metric snapshots into OpenTelemetry
// observable instruments. Registration is pull-based: values are read from a
// snapshot inside the meter callback, never pushed from the hot path.
package otel
