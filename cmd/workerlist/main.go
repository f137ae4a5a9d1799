// The main package for the workerlist executable.
package main

import (
	"github.com/JakeFAU/workerlist/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
