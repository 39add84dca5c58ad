// Package model defines the core data structures used throughout portscan.
//
// This package contains the following main types:
//   - PortResult: The atomic outcome record for one scanned port
//   - ScanReport: The complete result of one scan invocation
//   - ScanSummary: Aggregated counts for human-readable output
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (scan, report, database, tui) need to use
// these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
