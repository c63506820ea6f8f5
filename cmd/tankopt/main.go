// Command tankopt runs cylindrical tank cost optimizations from the command
// line and prints the iteration trajectory.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
