// Package cmd contains the CLI commands for calbridge.
package cmd
