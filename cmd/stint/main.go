package main

import (
	"os"

	"github.com/stintio/stint"
	"github.com/stintio/stint/internal/cli"
)

// Main is the entry point for the application
// It's exported to make it testable
func Main() int {
	// Worker subprocesses serve one measurement request and exit inside
	// this call; it is a no-op in a normal invocation.
	stint.WorkerMain()

	if err := cli.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(Main())
}
