package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values are chosen to give fast, reliable results against hosts on
// typical LAN and internet paths without tripping connection-rate limits.
const (
	// DefaultConnectTimeout is set to 3 seconds, long enough to cross most
	// internet paths yet short enough that filtered ports (which silently
	// drop SYN packets) do not stall the scan. A shorter timeout would
	// misreport open ports on high-latency links as closed.
	DefaultConnectTimeout = 3 * time.Second

	// DefaultBannerTimeout is the wait for a service greeting after a port
	// is confirmed open. 800ms covers chatty protocols like SSH, SMTP, and
	// FTP that announce themselves immediately. Silent protocols (HTTP
	// waits for a request) never send anything, so waiting longer only
	// slows the scan without capturing more data.
	DefaultBannerTimeout = 800 * time.Millisecond

	// DefaultConcurrency of 200 concurrent connection attempts keeps a full
	// 65535-port sweep under a few minutes while staying well below common
	// file descriptor limits (1024 soft on most Linux systems). Higher
	// values risk EMFILE errors and SYN flood detection on the target.
	DefaultConcurrency = 200

	// DefaultExportPrefix is the file name prefix for timestamped report
	// exports ("scan_20240131_154500.json").
	DefaultExportPrefix = "scan"

	// AppName is the application name used for XDG directory paths.
	AppName = "portscan"
)

// Config holds all configuration options for the port scanner.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., ScanConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
// If the configuration grows significantly, consider refactoring into sub-structs.
type Config struct {
	// Target is the host name or IP address to scan.
	// Host names are resolved to their first IPv4 address before scanning.
	Target string

	// PortSpec is the raw port specification, e.g. "22,80,8000-8080".
	// Single ports and inclusive ranges may be mixed, separated by commas.
	// When empty, a curated list of the most common TCP ports is scanned.
	PortSpec string

	// ConnectTimeout is the TCP connection timeout for each port probe.
	// This applies to individual connections, not the overall scan duration.
	ConnectTimeout time.Duration

	// BannerTimeout is how long to wait for a service banner after a
	// successful connection. Services that stay silent simply yield an
	// empty banner once this expires.
	BannerTimeout time.Duration

	// Concurrency is the maximum number of in-flight connection attempts.
	// Higher values speed up large sweeps but consume file descriptors
	// and may look like a SYN flood to the target.
	Concurrency int

	// OnlyOpen restricts report output to open ports.
	// Closed ports are still probed; they are just omitted from reports.
	OnlyOpen bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// JSONReport enables JSON report output instead of human-readable format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of human-readable
	// format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// ExportPrefix is the file name prefix for timestamped JSON/CSV exports
	// triggered by the --export flag or the interactive viewer's save key.
	ExportPrefix string

	// ExportResults triggers a timestamped JSON and CSV export of the scan
	// results into the current directory after the scan completes.
	ExportResults bool

	// ProxyAddress is a SOCKS5 proxy in "host:port" format to dial through.
	// When empty, connections are made directly.
	ProxyAddress string

	// TUI enables the interactive terminal viewer for browsing results
	// instead of printing a report to stdout.
	TUI bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .portscan in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// TargetConfigs holds per-target configurations loaded from the config
	// file. This is populated by LoadConfigFile and consulted before scanning.
	TargetConfigs *File

	// DBDir is the directory path for storing the SQLite database.
	// When set, scan results are saved to the database for historical
	// comparison. Defaults to the XDG data directory.
	DBDir string

	// SaveToDB indicates whether to save scan results to the database.
	// Disabled with the --no-db flag.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeouts, concurrency).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		ConnectTimeout: DefaultConnectTimeout,
		BannerTimeout:  DefaultBannerTimeout,
		Concurrency:    DefaultConcurrency,
		ExportPrefix:   DefaultExportPrefix,
	}
}

// XDGDataDir returns the XDG data directory for the port scanner.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/portscan
// On macOS: ~/Library/Application Support/portscan
// On Windows: %LOCALAPPDATA%\portscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for the port scanner.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/portscan
// On macOS: ~/Library/Application Support/portscan
// On Windows: %APPDATA%\portscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for the port scanner.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.cache/portscan
// On macOS: ~/Library/Caches/portscan
// On Windows: %LOCALAPPDATA%\portscan\cache
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any scanning begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have a target to scan
	if c.Target == "" {
		return ErrNoTarget
	}

	// Connect timeout must be positive; zero would cause immediate failures
	if c.ConnectTimeout <= 0 {
		return ErrInvalidTimeout
	}

	// Banner timeout must be positive; zero would never capture a greeting
	if c.BannerTimeout <= 0 {
		return ErrInvalidBannerTimeout
	}

	// Concurrency must be positive; zero would mean no scanning
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
