package main

import (
	"fmt"
	"log"
	"os"

	"github.com/cs-au-dk/guardflow/analysis/checker"
	"github.com/cs-au-dk/guardflow/analysis/defs"
	"github.com/cs-au-dk/guardflow/utils"

	"github.com/fatih/color"
)

var (
	opts = utils.Opts()
	task = opts.Task()
)

func main() {
	utils.ParseArgs()

	if task.IsGoCfg() {
		goCfg(utils.MakePath())
		return
	}

	pl := loadPipeline()

	switch {
	case task.IsCfgToDot():
		pl.cfgToDot()
	case task.IsLive():
		results := pl.run()
		for _, fn := range checker.Functions(results) {
			if err := results[fn].Solver.WriteLive(os.Stdout); err != nil {
				log.Fatalln(err)
			}
		}
	case task.IsClusters():
		results := pl.run()
		clusters := checker.Clusters(pl.prob.Guards, results)
		fmt.Println("Resources connected by co-held lock guards:", len(clusters))
		for i, cluster := range clusters {
			fmt.Printf("%s %v\n", color.CyanString("Cluster %d:", i+1), cluster)
		}
	case task.IsAnalyze():
		fallthrough
	default:
		pl.report(pl.run())
	}
}

// report prints the co-held pairs of every function.
func (p pipeline) report(results map[defs.FunctionID]*checker.Result) {
	total := 0
	for _, fn := range checker.Functions(results) {
		res := results[fn]
		pairs := res.Pairs
		if opts.Dedup() {
			pairs = checker.Dedup(pairs)
		}
		total += len(pairs)

		switch {
		case res.Stats.Aborted:
			fmt.Println("Function", fn, color.YellowString("(run limit reached, results are partial)"))
		case len(pairs) == 0:
			fmt.Println("Function", fn, color.GreenString("has no co-held lock guards"))
			continue
		default:
			fmt.Println("Function", fn)
		}

		for _, pair := range pairs {
			fmt.Println("  ", pair, "over",
				p.prob.Guards.ResourceOf(pair.First), "and", p.prob.Guards.ResourceOf(pair.Second))
		}
	}

	if total > 0 {
		fmt.Println(color.RedString("Found %d co-held lock guard pairs", total))
	} else {
		fmt.Println(color.GreenString("No co-held lock guard pairs found"))
	}
}
