package config

// TargetConfig holds per-target scan settings.
// This allows pinning port ranges, timing, and proxy settings for hosts
// that are scanned repeatedly, so they don't have to be retyped as flags.
type TargetConfig struct {
	// Ports is the port specification for this target, e.g. "22,80,8000-8080".
	// If empty, the global port specification is used.
	Ports string `yaml:"ports,omitempty"`

	// Timeout is the connection timeout as a Go duration string ("3s", "500ms").
	// If empty, the global connect timeout is used.
	Timeout string `yaml:"timeout,omitempty"`

	// BannerTimeout is the banner read timeout as a Go duration string.
	// If empty, the global banner timeout is used.
	BannerTimeout string `yaml:"bannerTimeout,omitempty"`

	// Concurrency overrides the number of concurrent connection attempts.
	// If zero, the global concurrency is used.
	Concurrency int `yaml:"concurrency,omitempty"`

	// OnlyOpen restricts report output to open ports for this target.
	// A pointer distinguishes "not set" (nil) from an explicit false,
	// so a target can turn the setting off even when the defaults enable it.
	OnlyOpen *bool `yaml:"onlyOpen,omitempty"`

	// Proxy is a SOCKS5 proxy address ("host:port") to dial through.
	// If empty, connections are made directly.
	Proxy string `yaml:"proxy,omitempty"`
}

// File represents the structure of the .portscan configuration file.
type File struct {
	// Targets maps host names or IP addresses to their target-specific
	// settings. Keys should match the target exactly as passed on the
	// command line (e.g., "192.168.1.10" or "scanme.example.com").
	Targets map[string]TargetConfig `yaml:"targets,omitempty"`

	// Defaults contains settings applied to every target unless overridden
	// in the target-specific configuration.
	Defaults TargetConfig `yaml:"defaults,omitempty"`
}

// GetTargetConfig returns the configuration for a specific target.
// It merges the target-specific configuration with defaults.
func (cf *File) GetTargetConfig(target string) TargetConfig {
	// Start with defaults
	result := cf.Defaults

	// Override with target-specific configuration if present
	if tc, ok := cf.Targets[target]; ok {
		if tc.Ports != "" {
			result.Ports = tc.Ports
		}
		if tc.Timeout != "" {
			result.Timeout = tc.Timeout
		}
		if tc.BannerTimeout != "" {
			result.BannerTimeout = tc.BannerTimeout
		}
		if tc.Concurrency != 0 {
			result.Concurrency = tc.Concurrency
		}
		if tc.OnlyOpen != nil {
			result.OnlyOpen = tc.OnlyOpen
		}
		if tc.Proxy != "" {
			result.Proxy = tc.Proxy
		}
	}

	return result
}
