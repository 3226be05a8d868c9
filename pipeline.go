package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/cs-au-dk/guardflow/analysis/checker"
	"github.com/cs-au-dk/guardflow/analysis/defs"
	"github.com/cs-au-dk/guardflow/analysis/genkill"
	u "github.com/cs-au-dk/guardflow/analysis/upfront"
)

// pipeline is a wrapper around the analysis of a problem file.
type pipeline struct {
	prob *u.Problem
}

// loadPipeline parses the problem file given by -input.
func loadPipeline() pipeline {
	if opts.Input() == "" {
		log.Fatalln("No problem file provided. Use -input")
	}

	prob, err := u.LoadProblem(opts.Input())
	if err != nil {
		log.Println("Failed loading problem")
		log.Fatalln(err)
	}

	return pipeline{prob}
}

// tasks returns the solver tasks of the problem, restricted to -fun if given.
func (p pipeline) tasks() []checker.Task {
	tasks := make([]checker.Task, 0, len(p.prob.Functions))
	for _, fn := range p.prob.Functions {
		if opts.Function() != "" && string(fn.ID) != opts.Function() {
			continue
		}
		tasks = append(tasks, checker.Task{
			Fn:      fn.ID,
			Cfg:     fn.Cfg,
			Context: fn.Context,
		})
	}

	if len(tasks) == 0 {
		log.Fatalf("No function named \"%s\" in %s", opts.Function(), opts.Input())
	}
	return tasks
}

// run solves every task. An interrupt stops the run.
func (p pipeline) run() map[defs.FunctionID]*checker.Result {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	tasks := p.tasks()
	log.Printf("Analyzing %d functions with %d jobs...", len(tasks), opts.Jobs())

	start := time.Now()
	results, err := checker.Run(ctx, p.prob.Guards, tasks, checker.Config{
		Jobs:    opts.Jobs(),
		Options: genkill.FlagOptions(),
	})
	if err != nil {
		log.Fatalln("Analysis failed:", err)
	}
	log.Println("Analysis done")

	gatherMetrics(results, time.Since(start))
	return results
}
