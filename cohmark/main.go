// Command cohmark runs the shared-memory coherency benchmark.
package main

import (
	"github.com/tebeka/atexit"

	"github.com/cohlab/cohmark/cohmark/cmd"
)

func main() {
	cmd.Execute()
	atexit.Exit(0)
}
