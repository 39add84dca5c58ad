package scan

import (
	"sort"
	"strconv"
	"strings"
)

// topTCPPorts is the curated default port list used when no port
// specification is given. It covers the services most commonly exposed by a
// single host (remote access, mail, name service, web, file sharing,
// databases, remote desktop) and keeps the default scan fast.
var topTCPPorts = []int{
	21, 22, 23, 25, 53, 80, 110, 111, 135, 139, 143, 443, 445,
	587, 993, 995, 3306, 3389, 5900, 8080,
}

// TopPorts returns a copy of the curated default port list.
// Callers receive their own slice and may modify it freely.
func TopPorts() []int {
	ports := make([]int, len(topTCPPorts))
	copy(ports, topTCPPorts)
	return ports
}

// ParsePortSpec parses a port specification string into a sorted,
// deduplicated port list. Supported forms:
//   - single: "22"
//   - list: "22,80,443"
//   - range: "1-1024" (inclusive on both ends)
//   - mixed: "22-25,80,443"
//
// An empty (or whitespace-only) specification returns the curated default
// list from TopPorts.
//
// Design decision: Invalid tokens are dropped silently rather than reported
// as errors:
// 1. A typo in one token should not abort a scan of the remaining ports
// 2. Out-of-range ports (outside 1-65535) can never be scanned, so keeping
//    them only to fail later helps nobody
// 3. A range with start > end ("22-20") is an empty range, not a mistake the
//    parser can repair; it simply contributes nothing
//
// A specification consisting solely of invalid tokens therefore yields an
// empty list: accepted input, zero ports to scan.
func ParsePortSpec(spec string) []int {
	if strings.TrimSpace(spec) == "" {
		return TopPorts()
	}

	seen := make(map[int]struct{})
	for _, token := range strings.Split(spec, ",") {
		token = strings.TrimSpace(token)

		if strings.Contains(token, "-") {
			bounds := strings.SplitN(token, "-", 2)
			start, err := strconv.Atoi(strings.TrimSpace(bounds[0]))
			if err != nil {
				continue
			}
			end, err := strconv.Atoi(strings.TrimSpace(bounds[1]))
			if err != nil {
				continue
			}

			// Clamp to the scannable range; anything outside could never
			// produce a result. An inverted range stays empty.
			if start < minPort {
				start = minPort
			}
			if end > maxPort {
				end = maxPort
			}
			for p := start; p <= end; p++ {
				seen[p] = struct{}{}
			}
			continue
		}

		p, err := strconv.Atoi(token)
		if err != nil || p < minPort || p > maxPort {
			continue
		}
		seen[p] = struct{}{}
	}

	ports := make([]int, 0, len(seen))
	for p := range seen {
		ports = append(ports, p)
	}
	sort.Ints(ports)

	return ports
}

// Valid TCP port range. Port 0 is reserved and never scannable.
const (
	minPort = 1
	maxPort = 65535
)
