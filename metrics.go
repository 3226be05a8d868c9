package main

import (
	"fmt"
	"time"

	"github.com/cs-au-dk/guardflow/analysis/checker"
	"github.com/cs-au-dk/guardflow/analysis/defs"
	"github.com/cs-au-dk/guardflow/analysis/genkill"
)

func gatherMetrics(results map[defs.FunctionID]*checker.Result, elapsed time.Duration) {
	if !opts.Metrics() || len(results) == 0 {
		return
	}

	msg := "================ Results =====================\n\n"

	total := genkill.Stats{}
	aborted := 0
	for _, fn := range checker.Functions(results) {
		r := results[fn]
		msg += "Function: " + fn.String() + "\n"
		msg += "Solver: " + r.Stats.String() + "\n"
		if len(r.Live) > 0 {
			msg += fmt.Sprintf("Blocks with live lock guards: %d/%d\n", len(r.Live), r.Stats.Blocks)
		}
		msg += fmt.Sprintf("Distinct pairs: %d\n", len(checker.Dedup(r.Pairs)))
		msg += "Function finished\n\n"

		total.Blocks += r.Stats.Blocks
		total.Iterations += r.Stats.Iterations
		total.Updates += r.Stats.Updates
		total.Emitted += r.Stats.Emitted
		if r.Stats.Aborted {
			aborted++
		}
	}

	msg += fmt.Sprintf("Functions: %d, aborted: %d\n", len(results), aborted)
	msg += fmt.Sprintf("Total: %d blocks, %d iterations, %d updates, %d pairs\n",
		total.Blocks, total.Iterations, total.Updates, total.Emitted)
	msg += "Time: " + elapsed.String() + "\n"
	msg += "================ Results ====================="
	fmt.Println(msg)
}
