package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/portscan/internal/config"
	"github.com/nao1215/portscan/internal/database"
	"github.com/nao1215/portscan/internal/model"
	"github.com/spf13/cobra"
)

// Constants for exposure direction in comparison output.
const (
	exposureDirectionWidened   = "widened"
	exposureDirectionNarrowed  = "narrowed"
	exposureDirectionUnchanged = "unchanged"
)

// NewHistoryCmd creates the history command.
// This command lists stored scan results and compares them over time.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [target]",
		Short: "Show and compare stored scan results",
		Long: `History lists the scans stored in the database for a host and compares them.

By default it lists every stored scan for the target with its ID, date,
and open-port count. With --diff it compares two scans and shows:
- Ports that are newly open since the earlier scan
- Ports that are no longer open
- The overall change in exposure

The comparison requires at least two scans in the database for the
specified target. Use 'portscan scan' to perform scans and save results.

Examples:
  # List scan history for a host
  portscan history scanme.example.com

  # Compare the latest two scans
  portscan history --diff scanme.example.com

  # Compare the latest scan with a specific scan by ID
  portscan history --diff --with-scan-id 5 scanme.example.com

  # Compare with the first scan after a date
  portscan history --diff --since "2025-01-01" scanme.example.com

  # Output the comparison in JSON format
  portscan history --diff --json scanme.example.com

  # List all scanned targets in the database
  portscan history --list-targets`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list-targets", "L", false,
		"List all scanned targets in the database")

	// Comparison flags
	cmd.Flags().BoolP("diff", "d", false,
		"Compare two scans instead of listing history")
	cmd.Flags().Int64P("with-scan-id", "i", 0,
		"Compare the latest scan with a specific scan by ID (implies --diff)")
	cmd.Flags().StringP("since", "s", "",
		"Compare with the first scan after this date, format YYYY-MM-DD (implies --diff)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	// Handle --list-targets flag first (requires database but no target)
	listTargets, err := cmd.Flags().GetBool("list-targets")
	if err != nil {
		return err
	}

	// Validate arguments before opening database (unless --list-targets)
	// This prevents database lock issues when validation fails
	var target string
	if !listTargets {
		// Require a target for other operations
		if len(args) == 0 {
			return errors.New("target is required (use --list-targets to see scanned hosts)")
		}
		target = args[0]
	}

	// Use XDG data directory for database
	dbDir := config.XDGDataDir()

	// Open database
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Handle --list-targets flag
	if listTargets {
		return listScannedTargets(ctx, db)
	}

	// Get comparison flags; --with-scan-id and --since imply --diff
	diff, err := cmd.Flags().GetBool("diff")
	if err != nil {
		return err
	}
	withScanID, err := cmd.Flags().GetInt64("with-scan-id")
	if err != nil {
		return err
	}
	sinceDate, err := cmd.Flags().GetString("since")
	if err != nil {
		return err
	}

	if !diff && withScanID == 0 && sinceDate == "" {
		return listScanHistory(ctx, db, target)
	}

	// Get output format flags
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}

	// Perform comparison
	return runComparison(ctx, db, target, withScanID, sinceDate, jsonOutput, markdownOutput)
}

// listScannedTargets lists all targets that have scan records in the database.
func listScannedTargets(ctx context.Context, db *database.ScanDB) error {
	targets, err := db.ListScannedTargets(ctx)
	if err != nil {
		return fmt.Errorf("failed to list targets: %w", err)
	}

	if len(targets) == 0 {
		fmt.Println("No scanned targets found in the database.")
		fmt.Println("\nUse 'portscan scan <host>' to scan a host.")
		return nil
	}

	fmt.Printf("Scanned targets (%d):\n\n", len(targets))
	for _, t := range targets {
		fmt.Printf("  • %s\n", t)
	}
	fmt.Println("\nUse 'portscan history <host>' to see scan history for a target.")

	return nil
}

// listScanHistory lists all scan records for a specific target.
func listScanHistory(ctx context.Context, db *database.ScanDB, target string) error {
	reports, err := db.GetScanHistoryWithMetadata(ctx, target)
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}

	if len(reports) == 0 {
		fmt.Printf("No scan history found for %s\n", target)
		fmt.Println("\nUse 'portscan scan' to scan this host.")
		return nil
	}

	fmt.Printf("Scan history for %s (%d scans):\n\n", target, len(reports))
	fmt.Printf("  %-6s  %-20s  %-15s  %s\n", "ID", "Date", "IP", "Open/Scanned")
	fmt.Println("  " + strings.Repeat("-", 60))

	for _, meta := range reports {
		fmt.Printf("  %-6d  %-20s  %-15s  %d/%d\n",
			meta.ID,
			meta.ScannedAt.Format("2006-01-02 15:04:05"),
			meta.IP,
			meta.OpenCount,
			meta.PortsScanned,
		)
	}

	fmt.Println("\nUse 'portscan history --diff <host>' to compare the latest two scans.")
	fmt.Println("Use 'portscan history --diff --with-scan-id <id> <host>' to compare with a specific scan.")

	return nil
}

// runComparison performs the actual comparison between scan reports.
func runComparison(ctx context.Context, db *database.ScanDB, target string, withScanID int64, sinceDate string, jsonOutput, markdownOutput bool) error {
	// Get the scan history
	reports, err := db.GetScanHistory(ctx, target)
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}

	if len(reports) == 0 {
		return fmt.Errorf("no scan history found for %s", target)
	}

	if len(reports) < 2 && withScanID == 0 && sinceDate == "" {
		return fmt.Errorf("at least 2 scans are required for comparison (found %d)", len(reports))
	}

	// Determine which reports to compare
	var currentReport, previousReport *model.ScanReport

	// Latest report is always the current one
	currentReport = reports[0]

	if withScanID > 0 {
		// Find the report with the specified ID
		previousReport, err = db.GetScanReportByID(ctx, withScanID)
		if err != nil {
			return fmt.Errorf("failed to get scan with ID %d: %w", withScanID, err)
		}
		if previousReport == nil {
			return fmt.Errorf("scan with ID %d not found", withScanID)
		}
		// Validate that the scan ID belongs to the same target
		if previousReport.Target != target {
			return fmt.Errorf("scan ID %d belongs to %s, not %s", withScanID, previousReport.Target, target)
		}
	} else if sinceDate != "" {
		// Parse the date and find the first (oldest) report at or after the specified date
		parsedDate, err := time.Parse("2006-01-02", sinceDate)
		if err != nil {
			return fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
		}

		// Reports are sorted by timestamp DESC (newest first), so iterate in reverse
		// to find the first (oldest) report at or after the date
		for i := len(reports) - 1; i >= 0; i-- {
			r := reports[i]
			if r.ScannedAt.After(parsedDate) || r.ScannedAt.Equal(parsedDate) {
				previousReport = r
				break // Stop at the first (oldest) matching report
			}
		}
		if previousReport == nil {
			return fmt.Errorf("no scans found since %s", sinceDate)
		}
		// If only one scan matches and it's the current report, we can't compare
		if previousReport == currentReport {
			return fmt.Errorf("only one scan found since %s; at least 2 scans are required for comparison", sinceDate)
		}
	} else {
		// Default: compare with the previous scan
		previousReport = reports[1]
	}

	// Generate comparison result
	comparison := compareReports(previousReport, currentReport)

	// Output the result
	if jsonOutput {
		return outputComparisonJSON(comparison)
	}
	if markdownOutput {
		return outputComparisonMarkdown(comparison)
	}
	return outputComparisonText(comparison)
}

// ComparisonResult holds the result of comparing two scan reports.
type ComparisonResult struct {
	// Target is the scanned host.
	Target string `json:"target"`

	// PreviousScan contains metadata about the previous scan.
	PreviousScan ScanMetadata `json:"previous_scan"`

	// CurrentScan contains metadata about the current scan.
	CurrentScan ScanMetadata `json:"current_scan"`

	// NewlyOpen contains ports that are open now but were not before.
	NewlyOpen []model.PortResult `json:"newly_open,omitempty"`

	// NewlyClosed contains ports that were open before but are not anymore.
	NewlyClosed []model.PortResult `json:"newly_closed,omitempty"`

	// UnchangedOpenCount is the number of ports open in both scans.
	UnchangedOpenCount int `json:"unchanged_open_count"`

	// ExposureChange describes the overall change in exposure.
	ExposureChange ExposureChange `json:"exposure_change"`
}

// ScanMetadata contains metadata about a scan for comparison display.
type ScanMetadata struct {
	// ScannedAt is when the scan was performed.
	ScannedAt time.Time `json:"scanned_at"`

	// PortsScanned is the number of ports probed in this scan.
	PortsScanned int `json:"ports_scanned"`

	// OpenCount is the number of open ports found.
	OpenCount int `json:"open_count"`
}

// ExposureChange describes the change in exposure between scans.
type ExposureChange struct {
	// Direction is "widened", "narrowed", or "unchanged".
	Direction string `json:"direction"`

	// OpenDelta is the change in open port count.
	OpenDelta int `json:"open_delta"`
}

// compareReports compares two scan reports and generates a comparison result.
func compareReports(previous, current *model.ScanReport) *ComparisonResult {
	result := &ComparisonResult{
		Target: current.Target,
		PreviousScan: ScanMetadata{
			ScannedAt:    previous.ScannedAt,
			PortsScanned: previous.PortsScanned,
			OpenCount:    len(previous.OpenPorts()),
		},
		CurrentScan: ScanMetadata{
			ScannedAt:    current.ScannedAt,
			PortsScanned: current.PortsScanned,
			OpenCount:    len(current.OpenPorts()),
		},
	}

	// Build open-port maps for comparison
	previousOpen := make(map[int]model.PortResult)
	for _, r := range previous.OpenPorts() {
		previousOpen[r.Port] = r
	}
	currentOpen := make(map[int]model.PortResult)
	for _, r := range current.OpenPorts() {
		currentOpen[r.Port] = r
	}

	// Find newly open ports (open now but not before)
	for port, r := range currentOpen {
		if _, exists := previousOpen[port]; !exists {
			result.NewlyOpen = append(result.NewlyOpen, r)
		}
	}

	// Find newly closed ports (open before but not anymore)
	for port, r := range previousOpen {
		if _, exists := currentOpen[port]; !exists {
			result.NewlyClosed = append(result.NewlyClosed, r)
		} else {
			result.UnchangedOpenCount++
		}
	}

	// Map iteration order is random; sort so output is stable
	sort.Slice(result.NewlyOpen, func(i, j int) bool {
		return result.NewlyOpen[i].Port < result.NewlyOpen[j].Port
	})
	sort.Slice(result.NewlyClosed, func(i, j int) bool {
		return result.NewlyClosed[i].Port < result.NewlyClosed[j].Port
	})

	// Calculate exposure change
	result.ExposureChange = calculateExposureChange(result.PreviousScan, result.CurrentScan)

	return result
}

// calculateExposureChange calculates the change in exposure between two scans.
func calculateExposureChange(previous, current ScanMetadata) ExposureChange {
	change := ExposureChange{
		OpenDelta: current.OpenCount - previous.OpenCount,
	}

	if change.OpenDelta > 0 {
		change.Direction = exposureDirectionWidened
	} else if change.OpenDelta < 0 {
		change.Direction = exposureDirectionNarrowed
	} else {
		change.Direction = exposureDirectionUnchanged
	}

	return change
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(result *ComparisonResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonMarkdown outputs the comparison result in Markdown format.
func outputComparisonMarkdown(result *ComparisonResult) error {
	fmt.Printf("# Scan Comparison: %s\n\n", result.Target)

	// Exposure change summary
	fmt.Println("## Summary")
	fmt.Printf("\n**Exposure:** %s\n\n", formatExposureDirection(result.ExposureChange.Direction))

	// Scan metadata table
	fmt.Println("| Metric | Previous | Current | Change |")
	fmt.Println("|--------|----------|---------|--------|")
	fmt.Printf("| Date | %s | %s | - |\n",
		result.PreviousScan.ScannedAt.Format("2006-01-02 15:04"),
		result.CurrentScan.ScannedAt.Format("2006-01-02 15:04"))
	fmt.Printf("| Ports scanned | %d | %d | %s |\n",
		result.PreviousScan.PortsScanned,
		result.CurrentScan.PortsScanned,
		formatDelta(result.CurrentScan.PortsScanned-result.PreviousScan.PortsScanned))
	fmt.Printf("| **Open ports** | **%d** | **%d** | **%s** |\n",
		result.PreviousScan.OpenCount,
		result.CurrentScan.OpenCount,
		formatDelta(result.ExposureChange.OpenDelta))

	// Newly open ports
	if len(result.NewlyOpen) > 0 {
		fmt.Printf("\n## Newly Open Ports (%d)\n\n", len(result.NewlyOpen))
		for _, r := range result.NewlyOpen {
			fmt.Printf("- **%d/tcp** %s\n", r.Port, r.Service)
			if r.Banner != "" {
				fmt.Printf("  - Banner: `%s`\n", r.Banner)
			}
		}
	}

	// Newly closed ports
	if len(result.NewlyClosed) > 0 {
		fmt.Printf("\n## Newly Closed Ports (%d)\n\n", len(result.NewlyClosed))
		for _, r := range result.NewlyClosed {
			fmt.Printf("- ~~**%d/tcp** %s~~\n", r.Port, r.Service)
		}
	}

	// Unchanged count
	if result.UnchangedOpenCount > 0 {
		fmt.Printf("\n---\n\n*%d ports remain open*\n", result.UnchangedOpenCount)
	}

	return nil
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(result *ComparisonResult) error {
	fmt.Printf("Scan Comparison: %s\n", result.Target)
	fmt.Println(strings.Repeat("=", 60))

	// Exposure change summary
	fmt.Printf("\nExposure: %s\n", formatExposureDirection(result.ExposureChange.Direction))

	// Scan dates
	fmt.Printf("\nPrevious scan: %s\n", result.PreviousScan.ScannedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Current scan:  %s\n", result.CurrentScan.ScannedAt.Format("2006-01-02 15:04:05"))

	// Summary table
	fmt.Println("\nPort Summary:")
	fmt.Printf("  %-15s  %-10s  %-10s  %-10s\n", "", "Previous", "Current", "Change")
	fmt.Println("  " + strings.Repeat("-", 50))
	fmt.Printf("  %-15s  %-10d  %-10d  %-10s\n", "Ports scanned",
		result.PreviousScan.PortsScanned, result.CurrentScan.PortsScanned,
		formatDelta(result.CurrentScan.PortsScanned-result.PreviousScan.PortsScanned))
	fmt.Printf("  %-15s  %-10d  %-10d  %-10s\n", "Open ports",
		result.PreviousScan.OpenCount, result.CurrentScan.OpenCount,
		formatDelta(result.ExposureChange.OpenDelta))

	// Newly open ports
	if len(result.NewlyOpen) > 0 {
		fmt.Printf("\nNewly Open Ports (%d):\n", len(result.NewlyOpen))
		for _, r := range result.NewlyOpen {
			fmt.Printf("  [+] %d/tcp %s\n", r.Port, r.Service)
			if r.Banner != "" {
				fmt.Printf("      Banner: %s\n", r.Banner)
			}
		}
	}

	// Newly closed ports
	if len(result.NewlyClosed) > 0 {
		fmt.Printf("\nNewly Closed Ports (%d):\n", len(result.NewlyClosed))
		for _, r := range result.NewlyClosed {
			fmt.Printf("  [-] %d/tcp %s\n", r.Port, r.Service)
		}
	}

	// Unchanged count
	if result.UnchangedOpenCount > 0 {
		fmt.Printf("\nUnchanged: %d ports remain open\n", result.UnchangedOpenCount)
	}

	return nil
}

// formatExposureDirection formats the exposure change direction for display.
func formatExposureDirection(direction string) string {
	switch direction {
	case exposureDirectionWidened:
		return "WIDENED (more ports open)"
	case exposureDirectionNarrowed:
		return "NARROWED (fewer ports open)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	} else if delta < 0 {
		return strconv.Itoa(delta)
	}
	return "0"
}
