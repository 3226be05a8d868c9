package utils

import (
	"flag"
	"fmt"
	"log"
	"strings"
)

type options struct {
	runLimit     uint
	jobs         uint
	minlen       uint
	nodesep      float64
	function     string
	input        string
	order        string
	outputFormat string
	gopath       string
	modulePath   string
	task         string
	logSolver    bool
	metrics      bool
	noColorize   bool
	verbose      bool
	dedup        bool
	includeTests bool
}

const (
	_ANALYZE = iota
	_LIVE
	_CLUSTERS
	_CFG_TO_DOT
	_GO_CFG
)

const (
	_ORDER_LIFO = iota
	_ORDER_FIFO
	_ORDER_RPO
)

// DefaultRunLimit is the default bound on worklist pops for a single function.
const DefaultRunLimit = 10000

func CanColorize(col func(...interface{}) string) func(...interface{}) string {
	if opts.noColorize {
		return func(is ...interface{}) string {
			return fmt.Sprintf(strings.Repeat("%s", len(is)), is...)
		}
	}
	return col
}

var task = []struct{ flag, explanation string }{{
	"analyze",
	"Report co-held lock guard pairs for every function in the input problem",
}, {
	"live",
	"Print the lock guards live at the entry of every basic block",
}, {
	"clusters",
	"Group lock resources that are connected through co-held pairs",
}, {
	"cfg-to-dot",
	"Render the control-flow graph of -fun annotated with live lock guards",
}, {
	"go-cfg",
	"Render the control-flow graph of the Go function -fun found in the packages at -modulepath",
}}

var order = []struct{ flag, explanation string }{{
	"lifo",
	"Pop the most recently queued block first",
}, {
	"fifo",
	"Pop the least recently queued block first",
}, {
	"rpo",
	"Pop blocks by reverse postorder of the control-flow graph",
}}

var opts = &options{}

type optInterface struct{}

type taskInterface struct{}

type orderInterface struct{}

func Opts() optInterface {
	return optInterface{}
}

func (optInterface) NoColorize() bool {
	return opts.noColorize
}

// SetNoColorize toggles colorized pretty printing. Mostly useful for tests
// that compare printed output.
func (optInterface) SetNoColorize(b bool) {
	opts.noColorize = b
}

func (optInterface) RunLimit() int {
	return int(opts.runLimit)
}
func (optInterface) Jobs() int {
	return int(opts.jobs)
}
func (optInterface) Minlen() uint {
	return opts.minlen
}
func (optInterface) Nodesep() float64 {
	return opts.nodesep
}
func (optInterface) Function() string {
	return opts.function
}
func (optInterface) Input() string {
	return opts.input
}
func (optInterface) OutputFormat() string {
	return opts.outputFormat
}
func (optInterface) GoPath() string {
	return opts.gopath
}
func (optInterface) ModulePath() string {
	return opts.modulePath
}
func (optInterface) IncludeTests() bool {
	return opts.includeTests
}
func (optInterface) LogSolver() bool {
	return opts.logSolver
}
func (optInterface) Metrics() bool {
	return opts.metrics
}
func (optInterface) Verbose() bool {
	return opts.verbose
}
func (optInterface) Dedup() bool {
	return opts.dedup
}
func (optInterface) Task() taskInterface {
	return taskInterface{}
}
func (taskInterface) IsAnalyze() bool {
	return opts.task == task[_ANALYZE].flag
}
func (taskInterface) IsLive() bool {
	return opts.task == task[_LIVE].flag
}
func (taskInterface) IsClusters() bool {
	return opts.task == task[_CLUSTERS].flag
}
func (taskInterface) IsCfgToDot() bool {
	return opts.task == task[_CFG_TO_DOT].flag
}
func (taskInterface) IsGoCfg() bool {
	return opts.task == task[_GO_CFG].flag
}
func (optInterface) Order() orderInterface {
	return orderInterface{}
}
func (orderInterface) LIFO() bool {
	return opts.order == order[_ORDER_LIFO].flag
}
func (orderInterface) FIFO() bool {
	return opts.order == order[_ORDER_FIFO].flag
}
func (orderInterface) ReversePostorder() bool {
	return opts.order == order[_ORDER_RPO].flag
}

func init() {
	taskFlag := "\n"
	for _, task := range task {
		taskFlag += task.flag + " -- " + task.explanation + "\n"
	}
	taskFlag += "\n"
	orderFlag := "\n"
	for _, order := range order {
		orderFlag += order.flag + " -- " + order.explanation + "\n"
	}
	orderFlag += "\n"

	flag.UintVar(&(opts.runLimit), "run-limit", DefaultRunLimit, "Upper bound on worklist iterations per function. Exceeding it yields a partial result.")
	flag.UintVar(&(opts.jobs), "jobs", 4, "Number of functions analyzed concurrently.")
	flag.UintVar(&(opts.minlen), "minlen", 2, "Minimum edge length (for wider output).")
	flag.Float64Var(&(opts.nodesep), "nodesep", 0.35, "Minimum space between two adjacent nodes in the same rank (for taller output).")
	flag.StringVar(&(opts.function), "fun", "", "target a specific function w. r. t. the given task.\n"+
		"- For problem files, this is the function name as written in the file.\n"+
		"- For -task go-cfg, function names need not be qualified with the package path.\n")
	flag.StringVar(&(opts.input), "input", "", "path to a YAML problem file describing control-flow graphs and lock guards")
	flag.StringVar(&(opts.order), "order", order[_ORDER_LIFO].flag, "Worklist order used by the solver. Options:"+orderFlag)
	flag.StringVar(&(opts.outputFormat), "format", "svg", "output file format [svg | png | jpg | ...]")
	flag.StringVar(&(opts.gopath), "gopath", ".", "specify GOPATH to be used for packages.Load")
	flag.StringVar(&(opts.modulePath), "modulepath", "", `specify a path to a directory containing a Go module.
- If provided this will make our code loading tools (that piggyback on Go's tools) run
in "module-aware" mode (GO111MODULE=on).`)
	flag.StringVar(&(opts.task), "task", task[_ANALYZE].flag, "Set the task to do during execution. Options:"+taskFlag)
	flag.BoolVar(&(opts.logSolver), "solver-logging", false, "Enable logging of specific events during fixed-point solving")
	flag.BoolVar(&(opts.metrics), "metrics", false, "Enable collection of solver metrics")
	flag.BoolVar(&(opts.noColorize), "no-colorize", false, "Disable pretty printer colorization")
	flag.BoolVar(&(opts.verbose), "verbose", false, "enable verbose output")
	flag.BoolVar(&(opts.dedup), "dedup", false, "remove duplicate co-held pairs before reporting")
	flag.BoolVar(&(opts.includeTests), "include-tests", false, "include test files when loading Go packages.")

	// Set up logging
	log.SetFlags(log.Ltime | log.Lshortfile)
}

func ParseArgs() {
	// Calling flag.Parse in init messes up unit tests.
	flag.Parse()

	validTask := false
	for _, task := range task {
		if task.flag == opts.task {
			validTask = true
			break
		}
	}

	if !validTask {
		log.Fatalf("Value \"%s\" is not valid for -task", opts.task)
	}

	validOrder := false
	for _, order := range order {
		if order.flag == opts.order {
			validOrder = true
			break
		}
	}

	if !validOrder {
		log.Fatalf("Value \"%s\" is not valid for -order", opts.order)
	}

	if opts.jobs == 0 {
		opts.jobs = 1
	}
	if Opts().Task().IsCfgToDot() || Opts().Task().IsGoCfg() {
		opts.noColorize = true
	}
}

func (optInterface) OnVerbose(do func()) {
	if Opts().Verbose() {
		do()
	}
}
