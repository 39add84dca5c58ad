// Package config provides configuration structures and utilities for the
// port scanner. It defines the main configuration options for probing
// targets, timing and concurrency settings, and report generation
// preferences, plus YAML loading of per-target overrides.
package config
