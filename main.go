// The main package for the content-sync executable.
package main

import (
	"github.com/interautonomy/content-sync/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
