// Package main is the entry point for the Costco Germany market-entry
// analysis engine. It runs the stochastic scenario simulation, stores the
// resulting tables in the results database, and serves them over HTTP.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
