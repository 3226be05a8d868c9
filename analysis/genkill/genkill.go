// Package genkill computes the lock guards that may be live at every basic
// block of a single function, and the pairs of guards over different
// resources that become live together.
//
// The analysis is a forward may-analysis: predecessor states are joined with
// set union, and every block applies its kill set before its gen set. The
// run is bounded by a limit on the total number of worklist pops; hitting
// the limit ends the run early with a partial result.
package genkill

import (
	"log"

	"github.com/cs-au-dk/guardflow/analysis/cfg"
	"github.com/cs-au-dk/guardflow/analysis/defs"
	L "github.com/cs-au-dk/guardflow/analysis/lattice"
	"github.com/cs-au-dk/guardflow/utils"

	"github.com/fatih/color"
)

var opts = utils.Opts()

// DefaultRunLimit bounds the number of worklist pops of one run.
const DefaultRunLimit = utils.DefaultRunLimit

// Stats summarizes a run of the solver.
type Stats struct {
	// Number of blocks in the control-flow graph.
	Blocks int
	// Number of worklist pops.
	Iterations int
	// Number of times a block's exit state changed.
	Updates int
	// Number of emitted co-held pairs, duplicates included.
	Emitted int
	// Whether the run limit stopped the run before the worklist was drained.
	Aborted bool
}

// GenKill holds the dataflow state of one function. It is not safe for
// concurrent use, but any number of instances may share a lock guard table.
type GenKill struct {
	fn  defs.FunctionID
	cfg cfg.Cfg

	gen  map[cfg.Block]L.GuardSet
	kill map[cfg.Block]L.GuardSet

	// before accumulates the live guards at block entry across iterations.
	before map[cfg.Block]*L.Accumulator
	// after is the live guards at block exit under the latest transfer.
	after map[cfg.Block]L.GuardSet

	worklist   pending
	lockGuards defs.LockGuards
	resources  L.Resources

	conf  config
	stats Stats
}

// New prepares the analysis of fn. Gen and kill sets are built from the
// guards of the table owned by fn; context is the set of guards already live
// when fn is entered. Block references are not validated.
func New(
	fn defs.FunctionID,
	G cfg.Cfg,
	lockGuards defs.LockGuards,
	context L.GuardSet,
	options ...Option,
) *GenKill {
	conf := defaultConfig()
	for _, opt := range options {
		opt(&conf)
	}

	gen := make(map[cfg.Block]L.GuardSet)
	kill := make(map[cfg.Block]L.GuardSet)
	for id, lockGuard := range lockGuards {
		if id.Fn != fn {
			continue
		}
		for _, bb := range lockGuard.GenBlocks {
			gen[bb] = gen[bb].Add(id)
		}
		for _, bb := range lockGuard.KillBlocks {
			kill[bb] = kill[bb].Add(id)
		}
	}

	blocks := G.Blocks()
	before := make(map[cfg.Block]*L.Accumulator, len(blocks))
	after := make(map[cfg.Block]L.GuardSet, len(blocks))
	W := conf.order.worklist(G)
	for _, bb := range blocks {
		before[bb] = L.NewAccumulator(L.GuardSet{})
		after[bb] = L.GuardSet{}
		W.add(bb)
	}
	if _, ok := before[G.Entry()]; ok {
		before[G.Entry()] = L.NewAccumulator(context)
	}

	return &GenKill{
		fn:         fn,
		cfg:        G,
		gen:        gen,
		kill:       kill,
		before:     before,
		after:      after,
		worklist:   W,
		lockGuards: lockGuards,
		resources:  L.Over(lockGuards),
		conf:       conf,
		stats:      Stats{Blocks: len(blocks)},
	}
}

// Analyze drains the worklist and returns every co-held pair emitted on the
// way, in emission order and with duplicates. The returned pairs are
// candidates for the caller to judge, not confirmed defects.
// The worklist is consumed: calling Analyze again returns no pairs.
func (g *GenKill) Analyze() []defs.OperationSequenceInfo {
	conflictLockInfo := []defs.OperationSequenceInfo{}

	count := 0
	for !g.worklist.isEmpty() && count <= g.conf.runLimit {
		count++
		cur := g.worklist.next()

		var newBefore L.GuardSet
		if prevs := g.cfg.Preds(cur); len(prevs) > 0 {
			for _, prev := range prevs {
				newBefore = newBefore.Join(g.after[prev])
			}
			g.before[cur].Merge(newBefore)
		} else {
			newBefore = g.before[cur].Get()
		}

		newBefore, conflicts := g.Transfer(cur, newBefore)
		conflictLockInfo = append(conflictLockInfo, conflicts...)

		changed := !g.resources.Eq(newBefore, g.after[cur])
		if changed {
			g.after[cur] = newBefore
			g.stats.Updates++
			for _, succ := range g.cfg.Succs(cur) {
				g.worklist.add(succ)
			}
		}

		if g.conf.trace != nil {
			g.conf.trace(Step{
				Iteration: count,
				Block:     cur,
				Before:    g.before[cur].Get(),
				After:     g.after[cur],
				Changed:   changed,
				Emitted:   conflicts,
			})
		}
	}

	g.stats.Iterations += count
	g.stats.Emitted += len(conflictLockInfo)
	if !g.worklist.isEmpty() {
		g.stats.Aborted = true
		if g.conf.logging || opts.Verbose() {
			log.Println(color.YellowString("Run limit of %d iterations reached in", g.conf.runLimit),
				g.fn, color.YellowString("- live lock guards are incomplete"))
		}
	}

	return conflictLockInfo
}

// Transfer applies the transfer function of block b to the live guards in:
// first every guard sharing a resource with a guard of kill[b] is removed,
// then gen[b] is added. It returns the new live set and the co-held pairs
// formed by a generated guard and a different-resource guard that survived
// the kill.
func (g *GenKill) Transfer(b cfg.Block, in L.GuardSet) (L.GuardSet, []defs.OperationSequenceInfo) {
	out := in
	if lockGuards, ok := g.kill[b]; ok {
		out = g.killKillSet(out, lockGuards)
	}

	var conflicts []defs.OperationSequenceInfo
	if lockGuards, ok := g.gen[b]; ok {
		out, conflicts = g.unionGenSet(out, lockGuards)
	}

	return out, conflicts
}

func (g *GenKill) killKillSet(live, lockGuards L.GuardSet) L.GuardSet {
	return g.resources.Kill(live, lockGuards)
}

func (g *GenKill) unionGenSet(live, lockGuards L.GuardSet) (L.GuardSet, []defs.OperationSequenceInfo) {
	conflictLocks := []defs.OperationSequenceInfo{}

	seconds := lockGuards.Entries()
	for _, first := range live.Entries() {
		for _, second := range seconds {
			if !g.resources.Same(first, second) {
				conflictLocks = append(conflictLocks, defs.OperationSequenceInfo{
					First:  first,
					Second: second,
				})
			}
		}
	}

	return live.Join(lockGuards), conflictLocks
}

// LiveLockGuards returns the guards that may be live at the entry of bb.
// It reports false when nothing is known to be live, whether because bb is
// not part of the function or because its entry set is empty.
func (g *GenKill) LiveLockGuards(bb cfg.Block) (L.GuardSet, bool) {
	if acc, ok := g.before[bb]; ok {
		if context := acc.Get(); !context.Empty() {
			return context, true
		}
	}
	return L.GuardSet{}, false
}

// Before returns the accumulated entry set of bb. Unlike LiveLockGuards it
// distinguishes a known block with an empty set from an unknown block.
func (g *GenKill) Before(bb cfg.Block) (L.GuardSet, bool) {
	acc, ok := g.before[bb]
	if !ok {
		return L.GuardSet{}, false
	}
	return acc.Get(), true
}

// After returns the exit set of bb.
func (g *GenKill) After(bb cfg.Block) (L.GuardSet, bool) {
	s, ok := g.after[bb]
	return s, ok
}

// Gen returns the guards generated in bb.
func (g *GenKill) Gen(bb cfg.Block) L.GuardSet {
	return g.gen[bb]
}

// Kill returns the guards killed in bb.
func (g *GenKill) Kill(bb cfg.Block) L.GuardSet {
	return g.kill[bb]
}

// Function returns the analyzed function.
func (g *GenKill) Function() defs.FunctionID {
	return g.fn
}

// Cfg returns the analyzed control-flow graph.
func (g *GenKill) Cfg() cfg.Cfg {
	return g.cfg
}

// Stats returns statistics of the runs so far.
func (g *GenKill) Stats() Stats {
	return g.stats
}
