// Package main provides the entry point for the portscan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for portscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portscan",
		Short: "Fast TCP port scanner with banner grabbing",
		Long: `portscan is a fast TCP port scanner for a single host.
It probes the requested ports concurrently, reads service banners from
open ports, and infers the service running behind each one.

Results can be printed as text, JSON, or Markdown, exported to
timestamped JSON/CSV files, browsed in an interactive terminal table,
and compared against earlier scans of the same host.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
