package genkill

import (
	"fmt"

	"github.com/cs-au-dk/guardflow/analysis/cfg"
	"github.com/cs-au-dk/guardflow/analysis/defs"
	L "github.com/cs-au-dk/guardflow/analysis/lattice"
)

// Step describes one worklist iteration. It is passed to the trace function
// installed with WithTrace.
type Step struct {
	Iteration int
	Block     cfg.Block
	// Accumulated entry set of Block after the iteration.
	Before L.GuardSet
	// Exit set of Block after the iteration.
	After   L.GuardSet
	Changed bool
	Emitted []defs.OperationSequenceInfo
}

type config struct {
	runLimit int
	order    Order
	trace    func(Step)
	logging  bool
}

func defaultConfig() config {
	return config{
		runLimit: DefaultRunLimit,
		order:    OrderLIFO,
	}
}

// Option configures a solver.
type Option func(*config)

// WithRunLimit bounds the total number of worklist pops. A negative limit is
// treated as zero.
func WithRunLimit(n int) Option {
	return func(c *config) {
		if n < 0 {
			n = 0
		}
		c.runLimit = n
	}
}

// WithOrder selects the order in which pending blocks are visited. The
// order affects the number of iterations, not the fixed point.
func WithOrder(o Order) Option {
	return func(c *config) {
		c.order = o
	}
}

// WithTrace installs a function called after every worklist iteration.
func WithTrace(trace func(Step)) Option {
	return func(c *config) {
		c.trace = trace
	}
}

// WithLogging enables logging of solver events, e.g. reaching the run limit.
func WithLogging(enabled bool) Option {
	return func(c *config) {
		c.logging = enabled
	}
}

// FlagOptions returns the solver options selected on the command line.
func FlagOptions() []Option {
	order := OrderLIFO
	switch {
	case opts.Order().FIFO():
		order = OrderFIFO
	case opts.Order().ReversePostorder():
		order = OrderReversePostorder
	}

	return []Option{
		WithRunLimit(opts.RunLimit()),
		WithOrder(order),
		WithLogging(opts.LogSolver()),
	}
}

func (s Stats) String() string {
	return fmt.Sprintf("%d blocks, %d iterations, %d updates, %d pairs, aborted: %v",
		s.Blocks, s.Iterations, s.Updates, s.Emitted, s.Aborted)
}
