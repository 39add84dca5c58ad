package scan

import (
	"net"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// bannerReadSize is the maximum number of banner bytes read from an open
// connection. 256 bytes covers every common unsolicited greeting (SSH
// version strings, SMTP/FTP hello lines) without pulling an arbitrary
// amount of peer-controlled data into memory.
const bannerReadSize = 256

// bannerScrubber drops bytes that must never reach reports or terminals:
// ill-formed UTF-8 (utf8.RuneError in the set removes invalid input bytes
// entirely) and control runes. CR, LF and TAB survive because multi-line
// banners are legitimate; the report writers sanitize line breaks for their
// own formats.
var bannerScrubber = runes.Remove(runes.Predicate(func(r rune) bool {
	if r == '\r' || r == '\n' || r == '\t' {
		return false
	}
	return r == utf8.RuneError || unicode.In(r, unicode.C)
}))

// readBanner attempts a single bounded read of the service greeting from an
// open connection. Many services announce themselves immediately after the
// TCP handshake; many others send nothing, so an empty result is an
// expected, non-error outcome.
//
// The function owns the connection and closes it on every path. The read
// deadline is the only bound: one read, at most bannerReadSize bytes, and
// whatever arrived by the deadline is the banner.
func readBanner(conn net.Conn, timeout time.Duration) string {
	defer conn.Close()

	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return ""
	}

	// A peer may send its greeting and close in one step, so the read can
	// return bytes together with io.EOF. Bytes win; the error only matters
	// when nothing arrived.
	buf := make([]byte, bannerReadSize)
	n, _ := conn.Read(buf)
	if n == 0 {
		// Timeout, clean close, reset: the peer sent no greeting.
		return ""
	}

	banner, _, err := transform.String(bannerScrubber, string(buf[:n]))
	if err != nil {
		return ""
	}

	return strings.TrimSpace(banner)
}
