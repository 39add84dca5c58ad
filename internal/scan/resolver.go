package scan

import (
	"fmt"
	"net"
)

// ResolutionError is returned when the scan target cannot be resolved to an
// IPv4 address. It is the only fatal error the engine produces: without an
// address there is nothing to scan, whereas individual port failures are
// ordinary results.
//
// Design decision: We use a dedicated error type rather than a sentinel
// because the target name and the underlying cause (DNS failure, no A
// records, IPv6-only host) differ per call and belong in the message.
// Callers match with errors.As and can unwrap the cause.
type ResolutionError struct {
	// Target is the host as the user supplied it.
	Target string

	// Err is the underlying cause, nil when resolution succeeded but
	// produced no usable IPv4 address.
	Err error
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to resolve %s: %v", e.Target, e.Err)
	}
	return fmt.Sprintf("failed to resolve %s: no IPv4 address found", e.Target)
}

// Unwrap returns the underlying cause for errors.Is/errors.As chains.
func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// ResolveIPv4 resolves the target (hostname or IP literal) to a single IPv4
// address in dotted-quad form.
//
// An IPv4 literal is returned as-is without any network call. A hostname is
// looked up and the first IPv4 candidate wins. IPv6 literals and hosts that
// resolve only to IPv6 addresses produce a *ResolutionError: the prober
// dials "tcp" against a single address family by design, and silently
// scanning a different address than the user expects would be worse than
// refusing.
func ResolveIPv4(target string) (string, error) {
	if ip := net.ParseIP(target); ip != nil {
		if ip4 := ip.To4(); ip4 != nil {
			return ip4.String(), nil
		}
		return "", &ResolutionError{Target: target}
	}

	ips, err := net.LookupIP(target)
	if err != nil {
		return "", &ResolutionError{Target: target, Err: err}
	}

	for _, ip := range ips {
		if ip4 := ip.To4(); ip4 != nil {
			return ip4.String(), nil
		}
	}

	// The name exists but has no A records we can use.
	return "", &ResolutionError{Target: target}
}
