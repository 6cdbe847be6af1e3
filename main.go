// Command simplex reads an MPS instance and certifies a solution to it via
// the two-level revised simplex / iterative-refinement solver.
//
// Grounded on the teacher's own main.go driver shape (read instance, print
// inputs, run solve, report), generalized from the teacher's one
// hard-coded artificial-variable pipeline to the flag-driven refine.Solve
// entry point.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/go-revsimplex/core/instance"
	"github.com/go-revsimplex/core/logging"
	"github.com/go-revsimplex/core/refine"
	"github.com/go-revsimplex/core/simplex"
)

func main() {
	var (
		maxRounds = flag.Int("max-rounds", 20, "maximum refinement rounds")
		delta     = flag.Float64("delta", 1e-9, "exact-violation tolerance")
		verbose   = flag.Bool("v", false, "debug-level logging")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: simplex [flags] <file.mps>")
		os.Exit(2)
	}
	filename := flag.Arg(0)

	lp, err := instance.NewReader(filename).Read()
	if err != nil {
		fmt.Fprintf(os.Stderr, "simplex: %v\n", err)
		os.Exit(1)
	}

	level := logging.Info
	if *verbose {
		level = logging.Debug
	}
	params := refine.NewParams(
		refine.WithMaxRounds(*maxRounds),
		refine.WithTolerance(*delta),
		refine.WithLogLevel(level),
	)

	result, err := refine.Solve(lp, params)
	if err != nil && result == nil {
		fmt.Fprintf(os.Stderr, "simplex: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("status:    %s\n", result.Outcome)
	fmt.Printf("rounds:    %d\n", result.Rounds)
	if result.Outcome == simplex.Optimal {
		fmt.Printf("objective: %.12g\n", result.Objective)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "simplex: %v\n", err)
		os.Exit(1)
	}
}
