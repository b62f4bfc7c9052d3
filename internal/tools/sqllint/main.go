// Command sqllint fails when a SQL constant lacks its "--sql <uuid>" audit
// marker or reuses a marker already taken by another query.
package main

import (
	"flag"
	"fmt"
	"os"
)

func main() {
	flag.Parse()
	targets := flag.Args()
	if len(targets) == 0 {
		targets = []string{"internal/sqlinline"}
	}

	report, err := lintPaths(targets)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sqllint: %v\n", err)
		os.Exit(1)
	}
	if len(report) == 0 {
		return
	}
	fmt.Fprintln(os.Stderr, "sqllint: audit marker problems")
	for _, f := range report {
		fmt.Fprintf(os.Stderr, "  %s\n", f)
	}
	os.Exit(1)
}
