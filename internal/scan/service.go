package scan

import "strings"

// wellKnownServices maps port numbers to service labels for ports whose
// assignment is unambiguous in practice. A port found here wins over any
// banner content.
var wellKnownServices = map[int]string{
	21:   "ftp",
	22:   "ssh",
	23:   "telnet",
	25:   "smtp",
	53:   "dns",
	80:   "http",
	110:  "pop3",
	143:  "imap",
	443:  "https",
	3306: "mysql",
	3389: "rdp",
	5900: "vnc",
	8080: "http-alt",
}

// bannerRule matches a set of case-insensitive keywords to a service label.
type bannerRule struct {
	keywords []string
	label    string
}

// bannerRules is checked in order; the first rule with a matching keyword
// wins. Order matters: an SSH banner also containing "http" in a comment
// must still classify as ssh.
var bannerRules = []bannerRule{
	{keywords: []string{"ssh"}, label: "ssh"},
	{keywords: []string{"http", "apache", "nginx"}, label: "http"},
	{keywords: []string{"smtp"}, label: "smtp"},
	{keywords: []string{"mysql", "mariadb"}, label: "mysql"},
	{keywords: []string{"rdp", "mstsc"}, label: "rdp"},
}

// InferService maps (port, banner) to a best-guess service label.
// It is a pure function: no I/O, no state, deterministic for equal inputs.
//
// Precedence: the well-known port table is consulted first and a hit
// returns immediately without looking at the banner (the port assignment is
// stronger evidence than text an arbitrary peer chose to send). Only for
// unrecognized ports does the banner keyword matching run. When neither
// matches, the label is empty and the port is reported without a service.
func InferService(port int, banner string) string {
	if service, ok := wellKnownServices[port]; ok {
		return service
	}

	if banner == "" {
		return ""
	}

	lower := strings.ToLower(banner)
	for _, rule := range bannerRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.label
			}
		}
	}

	return ""
}
