package model

import (
	"fmt"
	"time"
)

// ScanSummary is the condensed view of a ScanReport used by the simple and
// markdown writers, the TUI footer, and the database history listing.
type ScanSummary struct {
	// Target is the host as the user supplied it.
	Target string `json:"target"`

	// IP is the resolved IPv4 address.
	IP string `json:"ip"`

	// ScannedAt is when the scan started.
	ScannedAt time.Time `json:"scanned_at"`

	// PortsScanned is the total number of ports probed.
	PortsScanned int `json:"ports_scanned"`

	// OpenCount is the number of ports with status open.
	OpenCount int `json:"open_count"`

	// ClosedCount is the number of ports with status closed.
	ClosedCount int `json:"closed_count"`

	// OpenServices lists the open ports with their inferred service labels,
	// e.g. "22/tcp ssh". Ports without an inferred service appear as
	// "8443/tcp unknown". Ordered ascending by port.
	OpenServices []string `json:"open_services,omitempty"`
}

// NewScanSummary derives a summary from a complete report.
func NewScanSummary(report *ScanReport) *ScanSummary {
	s := &ScanSummary{
		Target:       report.Target,
		IP:           report.IP,
		ScannedAt:    report.ScannedAt,
		PortsScanned: len(report.Results),
	}

	for _, r := range report.Results {
		if !r.Open() {
			s.ClosedCount++
			continue
		}
		s.OpenCount++

		label := r.Service
		if label == "" {
			label = "unknown"
		}
		s.OpenServices = append(s.OpenServices, fmt.Sprintf("%d/tcp %s", r.Port, label))
	}

	return s
}

// HasOpenPorts reports whether at least one scanned port was open.
func (s *ScanSummary) HasOpenPorts() bool {
	return s.OpenCount > 0
}
