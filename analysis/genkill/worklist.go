package genkill

import (
	"fmt"

	"github.com/cs-au-dk/guardflow/analysis/cfg"
	"github.com/cs-au-dk/guardflow/utils/pq"
	"github.com/cs-au-dk/guardflow/utils/worklist"
)

// Order selects how pending blocks are popped from the worklist.
type Order int

const (
	// OrderLIFO pops the most recently queued block. Blocks may be queued
	// more than once.
	OrderLIFO Order = iota
	// OrderFIFO pops the least recently queued block. Blocks may be queued
	// more than once.
	OrderFIFO
	// OrderReversePostorder pops the pending block that comes first in a
	// reverse postorder of the CFG. A block is queued at most once.
	OrderReversePostorder
)

func (o Order) String() string {
	switch o {
	case OrderLIFO:
		return "lifo"
	case OrderFIFO:
		return "fifo"
	case OrderReversePostorder:
		return "rpo"
	default:
		return fmt.Sprintf("Order(%d)", int(o))
	}
}

type pending interface {
	add(cfg.Block)
	next() cfg.Block
	isEmpty() bool
}

func (o Order) worklist(G cfg.Cfg) pending {
	switch o {
	case OrderLIFO:
		return &stack{worklist.Empty[cfg.Block]()}
	case OrderFIFO:
		return &queue{worklist.Empty[cfg.Block]()}
	case OrderReversePostorder:
		prio := make(map[cfg.Block]int)
		for i, b := range cfg.ReversePostorder(G) {
			prio[b] = i
		}
		return &prioritized{pq.Empty(func(a, b cfg.Block) bool {
			return prio[a] < prio[b]
		})}
	default:
		panic(fmt.Errorf("unknown worklist order %v", o))
	}
}

type stack struct{ W worklist.Worklist[cfg.Block] }

func (s *stack) add(b cfg.Block) { s.W.Add(b) }
func (s *stack) next() cfg.Block { return s.W.Pop() }
func (s *stack) isEmpty() bool   { return s.W.IsEmpty() }

type queue struct{ W worklist.Worklist[cfg.Block] }

func (q *queue) add(b cfg.Block) { q.W.Add(b) }
func (q *queue) next() cfg.Block { return q.W.GetNext() }
func (q *queue) isEmpty() bool   { return q.W.IsEmpty() }

type prioritized struct{ Q pq.PriorityQueue[cfg.Block] }

func (p *prioritized) add(b cfg.Block) { p.Q.Add(b) }
func (p *prioritized) next() cfg.Block { return p.Q.GetNext() }
func (p *prioritized) isEmpty() bool   { return p.Q.IsEmpty() }
