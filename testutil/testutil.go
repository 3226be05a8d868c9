// Package testutil provides fixtures for tests of the lock guard analyses.
package testutil

import (
	"math/rand"
	"sort"

	"github.com/cs-au-dk/guardflow/analysis/cfg"
	"github.com/cs-au-dk/guardflow/analysis/defs"
	L "github.com/cs-au-dk/guardflow/analysis/lattice"
)

// Fixture is a function under analysis together with its lock guards.
type Fixture struct {
	Fn     defs.FunctionID
	Cfg    *cfg.Graph
	Guards defs.LockGuards
}

// NewFixture creates a fixture for function fn with the given CFG and an
// empty lock guard table.
func NewFixture(fn string, G *cfg.Graph) *Fixture {
	return &Fixture{
		Fn:     defs.FunctionID(fn),
		Cfg:    G,
		Guards: make(defs.LockGuards),
	}
}

// ID returns the handle of the local statement of the fixture's function.
func (f *Fixture) ID(local int) defs.StatementID {
	return defs.StatementID{Fn: f.Fn, Local: local}
}

// Guard registers a lock guard of the fixture's function.
func (f *Fixture) Guard(local int, resource string, gen, kill []cfg.Block) defs.StatementID {
	id := f.ID(local)
	f.Guards[id] = defs.StatementInfo{
		Resource:   defs.Resource(resource),
		GenBlocks:  gen,
		KillBlocks: kill,
	}
	return id
}

// Foreign registers a lock guard owned by another function, e.g. a guard
// inherited from a caller.
func (f *Fixture) Foreign(fn string, local int, resource string, gen, kill []cfg.Block) defs.StatementID {
	id := defs.StatementID{Fn: defs.FunctionID(fn), Local: local}
	f.Guards[id] = defs.StatementInfo{
		Resource:   defs.Resource(resource),
		GenBlocks:  gen,
		KillBlocks: kill,
	}
	return id
}

// Blocks is shorthand for a list of blocks.
func Blocks(bs ...int) []cfg.Block {
	res := make([]cfg.Block, len(bs))
	for i, b := range bs {
		res[i] = cfg.Block(b)
	}
	return res
}

// Set is shorthand for a guard set.
func Set(ids ...defs.StatementID) L.GuardSet {
	return L.MakeGuardSet(ids...)
}

// PairKeys prints pairs without colors, sorted.
func PairKeys(pairs []defs.OperationSequenceInfo) []string {
	keys := make([]string, len(pairs))
	for i, p := range pairs {
		keys[i] = p.Key()
	}
	sort.Strings(keys)
	return keys
}

// Random creates a pseudo-random fixture: a CFG with the given number of
// blocks, where every block has between one and two successors (the last
// block has none), and the given number of guards over a small pool of
// resources. Equal seeds yield equal fixtures.
func Random(seed int64, blocks, guards int) *Fixture {
	rnd := rand.New(rand.NewSource(seed))

	G := cfg.New(blocks)
	for b := 0; b < blocks-1; b++ {
		G.AddEdge(cfg.Block(b), cfg.Block(b+1))
		if rnd.Intn(2) == 0 {
			G.AddEdge(cfg.Block(b), cfg.Block(rnd.Intn(blocks)))
		}
	}

	f := NewFixture("rand", G)
	resources := []string{"a", "b", "c", "d"}
	for i := 0; i < guards; i++ {
		gen := Blocks(rnd.Intn(blocks))
		var kill []cfg.Block
		if rnd.Intn(3) > 0 {
			kill = Blocks(rnd.Intn(blocks))
		}
		f.Guard(i, resources[rnd.Intn(len(resources))], gen, kill)
	}
	return f
}
