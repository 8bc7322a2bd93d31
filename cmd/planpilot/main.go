// Command planpilot reconciles a declarative plan of epics, stories, and
// tasks against an external issue tracker.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/aryeko/planpilot/internal/cmd"
	ppErrors "github.com/aryeko/planpilot/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		cause := unwrapSilent(err)
		fmt.Fprintln(os.Stderr, "error:", cause)
		os.Exit(ppErrors.ExitCode(cause))
	}
}

// unwrapSilent returns the underlying cause of a command's silentError
// wrapper (or err itself when nothing is wrapped). The root command sets
// SilenceErrors, so main is the only place the error is printed.
func unwrapSilent(err error) error {
	var cause interface{ Unwrap() error }
	if errors.As(err, &cause) {
		if u := cause.Unwrap(); u != nil {
			return u
		}
	}
	return err
}
