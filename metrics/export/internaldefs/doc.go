// Package internaldefs holds the shared metric name table the exporters
// render from. It exists so the Prometheus and OTel exporters agree on names,
// help text, and histogram bucket layout without importing each other.
package internaldefs
