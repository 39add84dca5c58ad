package model

import "time"

// PortStatus is the reachability outcome for a single scanned port.
// Exactly two values exist: StatusOpen and StatusClosed.
//
// Design decision: We deliberately do not distinguish "timed out" from
// "actively refused". Consumers (table output, CSV/JSON export, history
// comparison) rely only on the open/closed distinction, and a third status
// would break the stability of the export formats.
type PortStatus string

const (
	// StatusOpen means the TCP handshake completed within the connect timeout.
	StatusOpen PortStatus = "open"

	// StatusClosed means the connection attempt failed for any reason:
	// actively refused, timed out, or an OS-level network error.
	StatusClosed PortStatus = "closed"
)

// PortResult is the atomic outcome record for one scanned port.
// It is created by a single probe task and never mutated afterwards.
type PortResult struct {
	// Port is the scanned TCP port number (1-65535).
	Port int `json:"port"`

	// Status is the reachability outcome: open or closed.
	Status PortStatus `json:"status"`

	// Service is the inferred service label (e.g. "ssh", "https").
	// Empty when neither the port table nor the banner matched anything.
	Service string `json:"service,omitempty"`

	// Banner is the trimmed service greeting read from the connection.
	// Empty when the peer sent nothing before the banner timeout.
	Banner string `json:"banner,omitempty"`
}

// Open reports whether the port accepted a TCP connection.
func (r PortResult) Open() bool {
	return r.Status == StatusOpen
}

// ScanReport is the complete result of one scan invocation.
// It carries the metadata consumed by the JSON export and the database
// layer (target, resolved address, timestamp, port count) plus the ordered
// per-port records.
type ScanReport struct {
	// Target is the host exactly as the user supplied it
	// (hostname or dotted IPv4 literal).
	Target string `json:"target"`

	// IP is the resolved IPv4 address that was actually probed.
	IP string `json:"ip"`

	// ScannedAt is when the scan started.
	ScannedAt time.Time `json:"scanned_at"`

	// PortsScanned is the number of ports probed in this scan.
	PortsScanned int `json:"ports_scanned"`

	// Elapsed is the wall-clock duration of the scan.
	Elapsed time.Duration `json:"elapsed,omitempty"`

	// Results holds one record per scanned port, sorted ascending by port
	// number. The scan coordinator guarantees the ordering; consumers must
	// not rely on anything else.
	Results []PortResult `json:"results"`
}

// NewScanReport creates a report for the given target and resolved address.
// Results are attached by the caller once the scan completes.
func NewScanReport(target, ip string) *ScanReport {
	return &ScanReport{
		Target:    target,
		IP:        ip,
		ScannedAt: time.Now(),
		Results:   make([]PortResult, 0),
	}
}

// SetResults attaches the scan outcome and keeps PortsScanned in sync.
func (r *ScanReport) SetResults(results []PortResult) {
	r.Results = results
	r.PortsScanned = len(results)
}

// OpenPorts returns only the records whose status is open, preserving the
// ascending port order of Results.
func (r *ScanReport) OpenPorts() []PortResult {
	open := make([]PortResult, 0, len(r.Results))
	for _, res := range r.Results {
		if res.Open() {
			open = append(open, res)
		}
	}
	return open
}
