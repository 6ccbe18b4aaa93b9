// Command fuelctl checks fuel-purchase CSV files and uploads their valid rows
// to the fleet log API.
//
//	fuelctl template [-o FILE]
//	fuelctl check FILE [--fix ROW:FIELD=VALUE ...]
//	fuelctl submit FILE [--fix ROW:FIELD=VALUE ...] [--api URL]
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
