// Package cmd provides planpilot's CLI command structure: sync,
// validate, map-sync, and clean, each a thin wire-up of the config,
// plan, render, tracker, and engine packages. Output formatting beyond
// what's needed to report results and exit codes is not this layer's
// concern.
package cmd

import (
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "planpilot",
	Short:         "Reconcile a declarative plan against an external issue tracker",
	SilenceErrors: true,
	Long: `planpilot syncs a hierarchical plan of epics, stories, and tasks
against an external issue tracker, creating and updating items and
converging their parent/blocked-by relations to match the plan.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "planpilot.json", "path to the config file")

	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(mapSyncCmd)
	rootCmd.AddCommand(cleanCmd)
}

// silentError signals that a command already printed its own structured
// failure output and Cobra should not print a second, redundant error.
type silentError struct{ cause error }

func (e *silentError) Error() string { return e.cause.Error() }
func (e *silentError) Unwrap() error { return e.cause }
