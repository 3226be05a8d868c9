package cfg

import (
	"fmt"

	"github.com/cs-au-dk/guardflow/utils/graph"
)

// Block identifies a basic block by its index in the enclosing function.
type Block int

func (b Block) String() string {
	return fmt.Sprintf("b%d", int(b))
}

// Cfg is the per-function control-flow graph handed to the analysis by the
// program representation provider. Edges are ordered.
type Cfg interface {
	// Entry is the block control enters the function at.
	Entry() Block
	// Blocks returns every block of the function in index order.
	Blocks() []Block
	Preds(Block) []Block
	Succs(Block) []Block
}

// Graph is a Cfg with explicitly constructed edges.
type Graph struct {
	entry Block
	preds [][]Block
	succs [][]Block
}

// New creates a control-flow graph with blocks 0..n-1 and no edges.
// Block 0 is the entry block.
func New(n int) *Graph {
	return &Graph{
		preds: make([][]Block, n),
		succs: make([][]Block, n),
	}
}

// Chain creates the straight-line graph 0 → 1 → ... → n-1.
func Chain(n int) *Graph {
	g := New(n)
	for i := 1; i < n; i++ {
		g.AddEdge(Block(i-1), Block(i))
	}
	return g
}

func (g *Graph) check(b Block) {
	if int(b) < 0 || int(b) >= len(g.succs) {
		panic(fmt.Errorf("block %s is not part of a graph with %d blocks", b, len(g.succs)))
	}
}

// SetEntry changes the entry block.
func (g *Graph) SetEntry(b Block) *Graph {
	g.check(b)
	g.entry = b
	return g
}

// AddEdge adds the control-flow edge from → to.
func (g *Graph) AddEdge(from, to Block) *Graph {
	g.check(from)
	g.check(to)
	g.succs[from] = append(g.succs[from], to)
	g.preds[to] = append(g.preds[to], from)
	return g
}

func (g *Graph) Entry() Block {
	return g.entry
}

func (g *Graph) Blocks() []Block {
	bs := make([]Block, len(g.succs))
	for i := range bs {
		bs[i] = Block(i)
	}
	return bs
}

func (g *Graph) Preds(b Block) []Block {
	g.check(b)
	return g.preds[b]
}

func (g *Graph) Succs(b Block) []Block {
	g.check(b)
	return g.succs[b]
}

// NumBlocks returns the number of blocks in the graph.
func (g *Graph) NumBlocks() int {
	return len(g.succs)
}

var _ Cfg = (*Graph)(nil)

// AsGraph views the successor relation of a Cfg as a generic graph.
func AsGraph(c Cfg) graph.Graph[Block] {
	return graph.OfHashable(c.Succs)
}

// ReversePostorder orders the blocks reachable from the entry by reverse
// postorder. Blocks unreachable from the entry are appended in index order.
func ReversePostorder(c Cfg) []Block {
	order := AsGraph(c).ReversePostorder(c.Entry())
	if len(order) == len(c.Blocks()) {
		return order
	}

	seen := make(map[Block]bool, len(order))
	for _, b := range order {
		seen[b] = true
	}
	for _, b := range c.Blocks() {
		if !seen[b] {
			order = append(order, b)
		}
	}
	return order
}
