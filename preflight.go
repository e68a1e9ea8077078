package main

import "github.com/modelstream/preflight/cmd"

// Preflight is a single executable of storage access diagnostics. We use the
// subcommand pattern as is common for many cloud utilities.
func main() {
	cmd.Execute()
}
