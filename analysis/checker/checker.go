// Package checker runs the lock guard analysis over many functions at once
// and post-processes the reported pairs.
package checker

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/cs-au-dk/guardflow/analysis/cfg"
	"github.com/cs-au-dk/guardflow/analysis/defs"
	"github.com/cs-au-dk/guardflow/analysis/genkill"
	L "github.com/cs-au-dk/guardflow/analysis/lattice"
	"github.com/cs-au-dk/guardflow/utils"

	uf "github.com/spakin/disjoint"
	"golang.org/x/sync/errgroup"
)

var opts = utils.Opts()

// Task is a function to analyze together with the guards it inherits.
type Task struct {
	Fn      defs.FunctionID
	Cfg     cfg.Cfg
	Context L.GuardSet
}

// Config controls a checker run.
type Config struct {
	// Maximum number of functions analyzed at the same time. Values below 1
	// mean one.
	Jobs int
	// Options passed to every solver.
	Options []genkill.Option
}

// Result is the outcome of analyzing a single function.
type Result struct {
	Fn    defs.FunctionID
	Pairs []defs.OperationSequenceInfo
	// Live guards at the entry of every block where some guard may be live.
	Live  map[cfg.Block]L.GuardSet
	Stats genkill.Stats
	// The solver, kept for visualization.
	Solver *genkill.GenKill
}

// Run analyzes every task with a private solver. Solvers share the lock
// guard table, which must not be modified during the run. Tasks are started
// in order and the run stops starting new tasks once ctx is done.
func Run(ctx context.Context, table defs.LockGuards, tasks []Task, conf Config) (map[defs.FunctionID]*Result, error) {
	jobs := conf.Jobs
	if jobs < 1 {
		jobs = 1
	}

	var (
		mu      sync.Mutex
		results = make(map[defs.FunctionID]*Result, len(tasks))
	)

	for _, task := range tasks {
		if _, dup := results[task.Fn]; dup {
			return nil, fmt.Errorf("function %s is analyzed more than once", task.Fn)
		}
		results[task.Fn] = nil
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(jobs)

	for _, task := range tasks {
		task := task
		if egCtx.Err() != nil {
			break
		}

		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}

			res := analyze(table, task, conf.Options)

			mu.Lock()
			defer mu.Unlock()
			results[task.Fn] = res
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

func analyze(table defs.LockGuards, task Task, options []genkill.Option) *Result {
	if opts.Verbose() {
		log.Println("Analyzing", task.Fn)
	}

	G := genkill.New(task.Fn, task.Cfg, table, task.Context, options...)
	pairs := G.Analyze()

	live := make(map[cfg.Block]L.GuardSet)
	for _, b := range task.Cfg.Blocks() {
		if s, ok := G.LiveLockGuards(b); ok {
			live[b] = s
		}
	}

	return &Result{
		Fn:     task.Fn,
		Pairs:  pairs,
		Live:   live,
		Stats:  G.Stats(),
		Solver: G,
	}
}

// Dedup removes repeated pairs, keeping the first occurrence of each.
func Dedup(pairs []defs.OperationSequenceInfo) []defs.OperationSequenceInfo {
	seen := make(map[defs.OperationSequenceInfo]struct{}, len(pairs))
	res := make([]defs.OperationSequenceInfo, 0, len(pairs))
	for _, p := range pairs {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		res = append(res, p)
	}
	return res
}

// Functions returns the analyzed functions in sorted order.
func Functions(results map[defs.FunctionID]*Result) []defs.FunctionID {
	fns := make([]defs.FunctionID, 0, len(results))
	for fn := range results {
		fns = append(fns, fn)
	}
	sort.Slice(fns, func(i, j int) bool { return fns[i] < fns[j] })
	return fns
}

// Clusters partitions the resources occurring in reported pairs: two
// resources are in the same cluster if a chain of co-held pairs connects
// them. Clusters and their members are sorted.
func Clusters(table defs.LockGuards, results map[defs.FunctionID]*Result) [][]defs.Resource {
	elements := map[defs.Resource]*uf.Element{}
	element := func(r defs.Resource) *uf.Element {
		if el, ok := elements[r]; ok {
			return el
		}
		el := uf.NewElement()
		elements[r] = el
		return el
	}

	for _, fn := range Functions(results) {
		for _, p := range results[fn].Pairs {
			uf.Union(
				element(table.ResourceOf(p.First)),
				element(table.ResourceOf(p.Second)))
		}
	}

	sets := map[*uf.Element][]defs.Resource{}
	for r, el := range elements {
		rep := el.Find()
		sets[rep] = append(sets[rep], r)
	}

	clusters := make([][]defs.Resource, 0, len(sets))
	for _, rs := range sets {
		sort.Slice(rs, func(i, j int) bool { return rs[i] < rs[j] })
		clusters = append(clusters, rs)
	}
	sort.Slice(clusters, func(i, j int) bool { return clusters[i][0] < clusters[j][0] })

	return clusters
}
