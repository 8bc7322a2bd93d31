package cmd

import (
	"bytes"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// executeCommand runs a cobra command with args and returns cobra's own
// captured output (SetOut/SetErr). RunE handlers in this package report
// results via fmt.Printf rather than cmd.Println, so tests that need a
// command's printed output use captureStdout instead.
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err = root.Execute()
	return buf.String(), err
}

// captureStdout runs f and returns everything it wrote to os.Stdout.
func captureStdout(f func() error) (string, error) {
	r, w, pipeErr := os.Pipe()
	if pipeErr != nil {
		return "", pipeErr
	}
	orig := os.Stdout
	os.Stdout = w

	runErr := f()

	_ = w.Close()
	os.Stdout = orig

	out, _ := io.ReadAll(r)
	return string(out), runErr
}
