package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/nao1215/portscan/internal/config"
	"github.com/nao1215/portscan/internal/database"
	"github.com/nao1215/portscan/internal/log"
	"github.com/nao1215/portscan/internal/model"
	"github.com/nao1215/portscan/internal/report"
	"github.com/nao1215/portscan/internal/scan"
	"github.com/nao1215/portscan/internal/tui"
	"github.com/spf13/cobra"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [target]",
		Short: "Scan a host for open TCP ports",
		Long: `Scan probes the TCP ports of a single host and reports which are open.

Each open port gets a short banner read, and the service behind it is
inferred from the port number and the banner content.

Examples:
  # Scan the default set of common ports
  portscan scan 192.168.1.10

  # Scan specific ports and ranges
  portscan scan -p 22,80,8000-8080 scanme.example.com

  # Faster timeout and higher concurrency for a LAN host
  portscan scan -t 500ms -c 500 192.168.1.10

  # Output JSON report
  portscan scan --json scanme.example.com

  # Export timestamped JSON and CSV files
  portscan scan --export audit scanme.example.com

  # Browse results in an interactive terminal table
  portscan scan --tui scanme.example.com

  # Scan through a SOCKS5 proxy
  portscan scan --proxy 127.0.0.1:1080 scanme.example.com

Configuration file (.portscan) example:
  defaults:
    timeout: 3s
    concurrency: 200
  targets:
    192.168.1.10:
      ports: "22,80,443"
      onlyOpen: true`,
		Args: cobra.MaximumNArgs(1),
		RunE: runScanCmd,
	}

	// Port selection flags
	cmd.Flags().StringP("ports", "p", "",
		"Ports to scan, e.g. \"22,80,8000-8080\" (default: common ports)")

	// Timing flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultConnectTimeout,
		"Connection timeout for each port")
	cmd.Flags().DurationP("banner-timeout", "B", config.DefaultBannerTimeout,
		"Timeout for reading the service banner from an open port")
	cmd.Flags().IntP("concurrency", "c", config.DefaultConcurrency,
		"Maximum number of concurrent connection attempts")

	// Proxy flag
	cmd.Flags().String("proxy", "",
		"Scan through a SOCKS5 proxy at the specified address (e.g., 127.0.0.1:1080)")

	// Configuration file
	cmd.Flags().String("config", "",
		"Configuration file path (default: .portscan in current or home directory)")

	// Report flags
	cmd.Flags().Bool("only-open", false,
		"Show only open ports in the report")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().StringP("export", "e", "",
		"Export timestamped JSON and CSV files with the given name prefix")

	// Display flags
	cmd.Flags().Bool("tui", false,
		"Browse results in an interactive terminal viewer")

	// Persistence flags
	cmd.Flags().Bool("no-db", false,
		"Do not save the scan report to the history database")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with banner scrubbing
	verbose := getVerboseFlag(cmd)
	logger := log.NewScrubLogger(os.Stderr, verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runScan(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	// Get flag values
	var err error

	cfg.PortSpec, err = cmd.Flags().GetString("ports")
	if err != nil {
		return nil, err
	}

	cfg.ConnectTimeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.BannerTimeout, err = cmd.Flags().GetDuration("banner-timeout")
	if err != nil {
		return nil, err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.ProxyAddress, err = cmd.Flags().GetString("proxy")
	if err != nil {
		return nil, err
	}

	cfg.OnlyOpen, err = cmd.Flags().GetBool("only-open")
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	exportPrefix, err := cmd.Flags().GetString("export")
	if err != nil {
		return nil, err
	}
	if exportPrefix != "" {
		cfg.ExportResults = true
		cfg.ExportPrefix = exportPrefix
	}

	cfg.TUI, err = cmd.Flags().GetBool("tui")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load per-target configurations from config file
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.TargetConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		// Use empty config if no file found and user didn't explicitly specify one
		cfg.TargetConfigs = &config.File{
			Targets: make(map[string]config.TargetConfig),
		}
	}

	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB
	cfg.DBDir = config.XDGDataDir()

	// Get positional argument (scan target)
	if len(args) > 0 {
		cfg.Target = args[0]
	}

	// Merge per-target settings from the config file
	if err := applyTargetConfig(cmd, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyTargetConfig merges per-target settings from the configuration file
// into cfg. Flags the user set explicitly always win; file settings only
// fill in values still at their defaults.
func applyTargetConfig(cmd *cobra.Command, cfg *config.Config) error {
	if cfg.Target == "" || cfg.TargetConfigs == nil {
		return nil
	}

	tc := cfg.TargetConfigs.GetTargetConfig(cfg.Target)

	if tc.Ports != "" && !cmd.Flags().Changed("ports") {
		cfg.PortSpec = tc.Ports
	}
	if tc.Timeout != "" && !cmd.Flags().Changed("timeout") {
		d, err := time.ParseDuration(tc.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q in config file: %w", tc.Timeout, err)
		}
		cfg.ConnectTimeout = d
	}
	if tc.BannerTimeout != "" && !cmd.Flags().Changed("banner-timeout") {
		d, err := time.ParseDuration(tc.BannerTimeout)
		if err != nil {
			return fmt.Errorf("invalid bannerTimeout %q in config file: %w", tc.BannerTimeout, err)
		}
		cfg.BannerTimeout = d
	}
	if tc.Concurrency > 0 && !cmd.Flags().Changed("concurrency") {
		cfg.Concurrency = tc.Concurrency
	}
	if tc.OnlyOpen != nil && !cmd.Flags().Changed("only-open") {
		cfg.OnlyOpen = *tc.OnlyOpen
	}
	if tc.Proxy != "" && !cmd.Flags().Changed("proxy") {
		cfg.ProxyAddress = tc.Proxy
	}

	return nil
}

// runScan executes the scan.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	ports := scan.ParsePortSpec(cfg.PortSpec)

	logger.Info("starting scan",
		"target", cfg.Target,
		"ports", len(ports),
		"concurrency", cfg.Concurrency,
		"saveToDB", cfg.SaveToDB,
	)

	// Resolve the target up front; without an address there is nothing
	// to scan, so resolution failures abort before any resources open.
	ip, err := scan.ResolveIPv4(cfg.Target)
	if err != nil {
		return err
	}

	// Open database connection if saving is enabled
	var db *database.ScanDB
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	opts := []scan.ScannerOption{
		scan.WithConnectTimeout(cfg.ConnectTimeout),
		scan.WithBannerTimeout(cfg.BannerTimeout),
		scan.WithConcurrency(cfg.Concurrency),
		scan.WithLogger(logger),
	}

	if cfg.ProxyAddress != "" {
		dialer, err := scan.NewSOCKS5Dialer(cfg.ProxyAddress)
		if err != nil {
			return fmt.Errorf("failed to create proxy dialer: %w", err)
		}
		opts = append(opts, scan.WithDialer(dialer))
		logger.Info("scanning through SOCKS5 proxy", "proxy", cfg.ProxyAddress)
	}

	scanner := scan.NewScanner(ip, ports, opts...)
	scanReport := model.NewScanReport(cfg.Target, ip)

	fmt.Printf("Scanning %s (%s): %d ports...\n", cfg.Target, ip, len(ports))
	startTime := time.Now()

	results, err := scanner.Run(ctx)
	if err != nil {
		return err
	}

	elapsed := time.Since(startTime)
	fmt.Printf("Scan completed in %s\n\n", elapsed.Round(time.Millisecond))

	scanReport.SetResults(results)
	scanReport.Elapsed = elapsed

	// The interactive viewer replaces the stdout report; a file report
	// is still written when one was requested.
	if !cfg.TUI || cfg.ReportFile != "" {
		if err := outputReport(cfg, scanReport); err != nil {
			logger.Error("report failed", "target", cfg.Target, "error", err)
		}
	}

	// Save to database if enabled
	if err := saveScanReport(ctx, db, scanReport, logger); err != nil {
		logger.Error("failed to save scan report", "target", cfg.Target, "error", err)
	}

	if cfg.ExportResults {
		jsonPath, csvPath, err := report.ExportFiles(".", cfg.ExportPrefix, scanReport)
		if err != nil {
			logger.Error("export failed", "target", cfg.Target, "error", err)
		} else {
			fmt.Printf("Exported %s and %s\n", jsonPath, csvPath)
		}
	}

	if cfg.TUI {
		return tui.Run(scanReport, ".", cfg.ExportPrefix)
	}

	return nil
}

// outputReport outputs the scan report in the requested format.
func outputReport(cfg *config.Config, scanReport *model.ScanReport) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Create/overwrite the output file with secure permissions (0600)
		// Reports reveal which ports a host exposes and should only be
		// readable by the owner
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	// JSON output (detailed report with all data)
	if cfg.JSONReport {
		writer := report.NewFullJSONWriter(output, report.WithPrettyPrint())
		_, err := writer.Write(scanReport)
		return err
	}

	// Markdown output
	if cfg.MarkdownReport {
		writer := report.NewMarkdownWriter(output)
		_, err := writer.Write(scanReport)
		return err
	}

	// Human-readable report (default)
	writer := report.NewSimpleWriter(output, report.WithOnlyOpen(cfg.OnlyOpen))
	_, err := writer.Write(scanReport)
	return err
}

// saveScanReport saves the scan report to the database if enabled.
// If db is nil, this function is a no-op.
func saveScanReport(ctx context.Context, db *database.ScanDB, scanReport *model.ScanReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	if err := db.SaveScanReport(ctx, scanReport); err != nil {
		return fmt.Errorf("failed to save scan report: %w", err)
	}

	logger.Info("scan report saved to database", "target", scanReport.Target)
	return nil
}
