package scan

import (
	"context"
	"net"
	"strconv"
)

// probe attempts one TCP connection to the given port, bounded by the
// configured connect timeout.
//
// Every failure mode collapses into (nil, false): a refused connection, a
// timeout and an unreachable network are all reported as a closed port.
// The distinction never appears in results; the underlying error is logged
// at debug level for troubleshooting only.
//
// On success, ownership of the connection transfers to the caller, which
// must close it (readBanner does so on every path).
func (s *Scanner) probe(ctx context.Context, port int) (net.Conn, bool) {
	ctx, cancel := context.WithTimeout(ctx, s.connectTimeout)
	defer cancel()

	address := net.JoinHostPort(s.address, strconv.Itoa(port))
	conn, err := s.dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		s.logger.Debug("connect failed", "address", address, "error", err)
		return nil, false
	}

	return conn, true
}
