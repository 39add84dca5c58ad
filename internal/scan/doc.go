// Package scan implements the TCP port scanning engine.
//
// The engine is built from small, independently testable parts:
//   - ParsePortSpec: turns a user port specification into an ordered port set
//   - ResolveIPv4: resolves the target to a single IPv4 address
//   - Scanner: coordinates one concurrency-bounded scan and aggregates results
//   - InferService: maps (port, banner) to a best-guess service label
//
// Design decision: The whole engine lives in one package rather than being
// split into prober/banner/inference packages because:
// 1. The parts share the Scanner's timeouts and dialer and nothing else uses them
// 2. The probe -> banner -> inference flow is one logical unit of work
// 3. Smaller API surface: only the Scanner and the pure helpers are exported
//
// All connection attempts go through a ContextDialer, so the same engine
// scans directly or through a SOCKS5 proxy without any code change.
package scan
