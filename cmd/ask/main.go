// Package main is a command-line client of the answer pipeline. It loads
// the same configuration as the server and answers one question locally,
// which is handy for checking sheet edits and prompt changes.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(buildAnswerer).Execute(); err != nil {
		os.Exit(1)
	}
}
