// Package main provides the entry point for the portscan CLI.
//
// portscan is a fast TCP port scanner for a single host. It probes the
// requested ports concurrently, grabs service banners from open ports,
// and reports the results as text, JSON, Markdown, CSV, or an
// interactive terminal table.
//
// Usage:
//
//	portscan scan <host>
//	portscan scan -p 22,80,8000-8080 <host>
//	portscan history <host> --diff
//
// See --help for all available options.
package main

// main is the entry point for portscan.
func main() {
	Execute()
}
